// Package excel imports question banks from spreadsheets.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"exam-simulator/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import layout.
type ImportConfig struct {
	FilePath     string // .xlsx or .csv
	SheetName    string // ignored for CSV
	TestColumn   string
	PromptColumn string

	// OptionColumns are read in order; empty cells are skipped.
	OptionColumns []string
	AnswerColumn  string
	StartRow      int // 1-based
}

// DefaultImportConfig returns the A..G layout with a header row.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:     "Sheet1",
		TestColumn:    "A",
		PromptColumn:  "B",
		OptionColumns: []string{"C", "D", "E", "F"},
		AnswerColumn:  "G",
		StartRow:      2,
	}
}

// ImportResult holds the outcome of an import.
type ImportResult struct {
	Tests          []domain.Test // in order of first appearance
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// Import reads questions from an Excel or CSV file. Malformed rows are
// reported in ImportResult.Errors and skipped.
func Import(cfg ImportConfig) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		rows, err = readCSV(cfg.FilePath)
	} else {
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}
	return importRows(rows, cfg)
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func importRows(rows [][]string, cfg ImportConfig) (*ImportResult, error) {
	layout, err := resolveLayout(cfg)
	if err != nil {
		return nil, err
	}
	start := cfg.StartRow
	if start < 1 {
		start = 1
	}

	result := &ImportResult{Errors: make([]string, 0)}
	index := make(map[domain.TestID]int)
	for i, row := range rows {
		if i < start-1 || blank(row) {
			continue
		}
		result.TotalProcessed++

		testID, question, err := layout.parse(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		pos, ok := index[testID]
		if !ok {
			pos = len(result.Tests)
			index[testID] = pos
			result.Tests = append(result.Tests, domain.Test{ID: testID, Title: domain.Title(testID)})
		}
		result.Tests[pos].Questions = append(result.Tests[pos].Questions, question)
		result.Imported++
	}
	return result, nil
}

type layout struct {
	test    int
	prompt  int
	options []int
	answer  int
}

func resolveLayout(cfg ImportConfig) (layout, error) {
	var l layout
	var err error
	if l.test, err = columnIndex(cfg.TestColumn); err != nil {
		return l, err
	}
	if l.prompt, err = columnIndex(cfg.PromptColumn); err != nil {
		return l, err
	}
	if l.answer, err = columnIndex(cfg.AnswerColumn); err != nil {
		return l, err
	}
	for _, name := range cfg.OptionColumns {
		idx, err := columnIndex(name)
		if err != nil {
			return l, err
		}
		l.options = append(l.options, idx)
	}
	return l, nil
}

func (l layout) parse(row []string) (domain.TestID, domain.Question, error) {
	testID := domain.TestID(strings.ToLower(cell(row, l.test)))
	if testID == "" {
		return "", domain.Question{}, fmt.Errorf("missing test id")
	}
	q := domain.Question{Prompt: cell(row, l.prompt)}
	answer, err := parseAnswer(cell(row, l.answer))
	if err != nil {
		return "", domain.Question{}, err
	}
	if answer >= len(l.options) {
		return "", domain.Question{}, fmt.Errorf("answer %q points past the option columns", cell(row, l.answer))
	}
	// the answer names a column; blank cells are dropped so remap it
	q.Answer = -1
	for pos, idx := range l.options {
		opt := cell(row, idx)
		if opt == "" {
			continue
		}
		if pos == answer {
			q.Answer = len(q.Options)
		}
		q.Options = append(q.Options, opt)
	}
	if q.Answer < 0 {
		return "", domain.Question{}, fmt.Errorf("answer %q points at an empty option", cell(row, l.answer))
	}
	if err := q.Validate(); err != nil {
		return "", domain.Question{}, err
	}
	return testID, q, nil
}

// parseAnswer accepts a letter (A, b, ...) or a 1-based option number.
func parseAnswer(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing answer")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("answer %q out of range", raw)
		}
		return n - 1, nil
	}
	if len(raw) == 1 {
		c := strings.ToUpper(raw)[0]
		if c >= 'A' && c <= 'Z' {
			return int(c - 'A'), nil
		}
	}
	return 0, fmt.Errorf("invalid answer %q", raw)
}

func columnIndex(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
