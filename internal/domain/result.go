package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultPassThreshold is the minimum score ratio that counts as a pass.
const DefaultPassThreshold = 0.5

// CompletionReason tells how a session reached completion.
type CompletionReason string

const (
	ReasonFinished CompletionReason = "finished"
	ReasonTimeout  CompletionReason = "timeout"
)

// Result is the immutable outcome of one completed test attempt.
type Result struct {
	TestID         TestID           `json:"testId"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Percentage     int              `json:"percentage"`
	Passed         bool             `json:"passed"`
	TimeSpent      int              `json:"timeSpent"` // wall-clock seconds
	CompletedAt    time.Time        `json:"completedAt"`
	Reason         CompletionReason `json:"reason"`
}

// NewResult derives percentage and pass state from the raw score.
func NewResult(testID TestID, score, total, timeSpent int, completedAt time.Time, threshold float64, reason CompletionReason) Result {
	r := Result{
		TestID:         testID,
		Score:          score,
		TotalQuestions: total,
		TimeSpent:      timeSpent,
		CompletedAt:    completedAt,
		Reason:         reason,
	}
	if total > 0 {
		ratio := float64(score) / float64(total)
		r.Percentage = int(math.Round(ratio * 100))
		r.Passed = ratio >= threshold
	}
	return r
}

// Grade names a percentage band.
func Grade(percentage int) string {
	switch {
	case percentage >= 90:
		return "Excellent"
	case percentage >= 80:
		return "Very good"
	case percentage >= 70:
		return "Good"
	case percentage >= 50:
		return "Acceptable"
	default:
		return "Weak"
	}
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
