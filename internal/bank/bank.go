// Package bank parses and validates question bank files.
package bank

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"exam-simulator/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultBank []byte

type file struct {
	Tests []domain.Test `yaml:"tests"`
}

// Default returns the embedded question bank.
func Default() (map[domain.TestID]domain.Test, error) {
	return Parse(defaultBank)
}

// LoadFile reads a YAML question bank from path.
func LoadFile(path string) (map[domain.TestID]domain.Test, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tests, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tests, nil
}

// Parse decodes a YAML bank and validates every test.
func Parse(data []byte) (map[domain.TestID]domain.Test, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	tests := make(map[domain.TestID]domain.Test, len(f.Tests))
	for _, t := range f.Tests {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: test without id", domain.ErrInvalidQuestion)
		}
		if _, dup := tests[t.ID]; dup {
			return nil, fmt.Errorf("duplicate test %q", t.ID)
		}
		if err := Validate(t); err != nil {
			return nil, err
		}
		tests[t.ID] = t
	}
	return tests, nil
}

// Validate checks that a test is non-empty and every question is well formed.
func Validate(t domain.Test) error {
	if len(t.Questions) == 0 {
		return fmt.Errorf("test %q: %w", t.ID, domain.ErrEmptyTest)
	}
	for i, q := range t.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("test %q question %d: %w", t.ID, i+1, err)
		}
	}
	return nil
}

// Marshal renders tests as a YAML bank, ordered by id.
func Marshal(tests map[domain.TestID]domain.Test) ([]byte, error) {
	ids := make([]string, 0, len(tests))
	for id := range tests {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	f := file{Tests: make([]domain.Test, 0, len(ids))}
	for _, id := range ids {
		f.Tests = append(f.Tests, tests[domain.TestID(id)])
	}
	return yaml.Marshal(f)
}
