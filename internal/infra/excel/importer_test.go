package excel

import (
	"os"
	"path/filepath"
	"testing"

	"exam-simulator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}
	path := filepath.Join(t.TempDir(), "bank.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"test", "prompt", "a", "b", "c", "d", "answer"},
		{"Day-1", "2 + 2?", "3", "4", "5", "6", "B"},
		{"day-1", "Capital of France?", "Rome", "Paris", "", "", 2},
		{"pre-test", "Largest planet?", "Mars", "Jupiter", "Venus", "Earth", "b"},
		{"day-1", "", "x", "y", "", "", "A"},
		{"day-1", "Broken answer", "x", "y", "", "", "Z"},
		{"", "No test", "x", "y", "", "", "A"},
	})

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	result, err := Import(cfg)
	require.NoError(t, err)

	assert.Equal(t, 6, result.TotalProcessed)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "Row 5")

	require.Len(t, result.Tests, 2)
	day1 := result.Tests[0]
	assert.Equal(t, domain.TestID("day-1"), day1.ID)
	assert.Equal(t, "Day 1 test", day1.Title)
	require.Len(t, day1.Questions, 2)
	assert.Equal(t, 1, day1.Questions[0].Answer)
	assert.Equal(t, []string{"Rome", "Paris"}, day1.Questions[1].Options)
	assert.Equal(t, 1, day1.Questions[1].Answer)
	assert.Equal(t, domain.PreTest, result.Tests[1].ID)
}

func TestImportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	data := "test,prompt,a,b,c,d,answer\n" +
		"post-test,\"Pick one, please\",yes,no,,,1\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	result, err := Import(cfg)
	require.NoError(t, err)
	require.Len(t, result.Tests, 1)
	assert.Equal(t, "Pick one, please", result.Tests[0].Questions[0].Prompt)
	assert.Equal(t, 0, result.Tests[0].Questions[0].Answer)
}

func TestImportRemapsAnswerAcrossBlankOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	data := "test,prompt,a,b,c,d,answer\n" +
		"day-1,Pick right,wrong1,,right,wrong2,C\n" +
		"day-1,Pick last,one,,,two,4\n" +
		"day-1,Blank answer,one,,two,,B\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	result, err := Import(cfg)
	require.NoError(t, err)

	require.Len(t, result.Tests, 1)
	questions := result.Tests[0].Questions
	require.Len(t, questions, 2)
	assert.Equal(t, []string{"wrong1", "right", "wrong2"}, questions[0].Options)
	assert.Equal(t, "right", questions[0].Options[questions[0].Answer])
	assert.Equal(t, "two", questions[1].Options[questions[1].Answer])

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 4")
	assert.Contains(t, result.Errors[0], "empty option")
}

func TestImportMissingSheet(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{{"day-1", "q", "a", "b", "", "", "A"}})
	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.SheetName = "Questions"
	_, err := Import(cfg)
	assert.Error(t, err)
}

func TestParseAnswer(t *testing.T) {
	cases := map[string]int{"A": 0, "c": 2, "1": 0, " 4 ": 3}
	for raw, want := range cases {
		got, err := parseAnswer(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"", "0", "-2", "AB", "?"} {
		_, err := parseAnswer(raw)
		assert.Error(t, err, raw)
	}
}
