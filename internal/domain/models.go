package domain

import (
	"fmt"
	"strings"
	"time"
)

// Question models an MCQ item with exactly one correct option.
type Question struct {
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []string `json:"options" yaml:"options"`
	Answer  int      `json:"answer" yaml:"answer"` // zero-based index into Options
}

// Validate reports malformed question content.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: need at least 2 options, got %d", ErrInvalidQuestion, len(q.Options))
	}
	if q.Answer < 0 || q.Answer >= len(q.Options) {
		return fmt.Errorf("%w: answer %d out of range", ErrInvalidQuestion, q.Answer)
	}
	return nil
}

// Test is an ordered, fixed set of questions selected by a TestID.
type Test struct {
	ID        TestID     `json:"id" yaml:"id"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// DisplayTitle falls back to the catalog title when none is stored.
func (t Test) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return Title(t.ID)
}

// User is the signed-in learner. The name is the only identity captured.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SignedInAt time.Time `json:"signedInAt"`
}

// TestStatus is the dashboard state of a catalog test.
type TestStatus string

const (
	StatusNotStarted TestStatus = "not-started"
	StatusPassed     TestStatus = "passed"
	StatusFailed     TestStatus = "failed"
)

// StatusOf derives the dashboard status from the latest stored result.
func StatusOf(result Result, ok bool) TestStatus {
	if !ok {
		return StatusNotStarted
	}
	if result.Passed {
		return StatusPassed
	}
	return StatusFailed
}

// DashboardEntry is one catalog test with its status.
type DashboardEntry struct {
	ID     TestID     `json:"id"`
	Title  string     `json:"title"`
	Kind   TestKind   `json:"kind"`
	Status TestStatus `json:"status"`
	Result *Result    `json:"result,omitempty"`
}

// Dashboard lists the catalog for a user.
type Dashboard struct {
	User      User             `json:"user"`
	Tests     []DashboardEntry `json:"tests"`
	Completed int              `json:"completed"`
	Passed    int              `json:"passed"`
}
