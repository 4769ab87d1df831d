package domain

import (
	"testing"
	"time"
)

func TestCatalogAndTitles(t *testing.T) {
	ids := Catalog(3)
	want := []TestID{PreTest, PostTest, "day-1", "day-2", "day-3"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("catalog[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	if Title(PreTest) != "Pre-test" || Title(PostTest) != "Post-test" {
		t.Fatalf("unexpected main titles")
	}
	if Title("day-12") != "Day 12 test" {
		t.Fatalf("unexpected day title %q", Title("day-12"))
	}
	if Title("quiz") != "Test" || Kind("quiz") != KindOther {
		t.Fatalf("unexpected fallback for unknown id")
	}
	if _, ok := DayNumber("day-x"); ok {
		t.Fatalf("expected day-x to be rejected")
	}
}

func TestSummarize(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	results := map[TestID]Result{
		"day-10": NewResult("day-10", 1, 4, 30, at, DefaultPassThreshold, ReasonFinished),
		"day-2":  NewResult("day-2", 3, 4, 45, at, DefaultPassThreshold, ReasonFinished),
		PostTest: NewResult(PostTest, 4, 4, 60, at, DefaultPassThreshold, ReasonFinished),
		PreTest:  NewResult(PreTest, 2, 4, 90, at, DefaultPassThreshold, ReasonTimeout),
	}

	s := Summarize(results)
	if s.Completed != 4 || s.Passed != 3 {
		t.Fatalf("expected 4 completed / 3 passed, got %d / %d", s.Completed, s.Passed)
	}
	// (25 + 75 + 100 + 50) / 4 = 62.5 -> 63
	if s.AverageScore != 63 {
		t.Fatalf("expected average 63, got %d", s.AverageScore)
	}
	if s.TotalTimeSpent != 225 {
		t.Fatalf("expected 225s total, got %d", s.TotalTimeSpent)
	}
	if len(s.MainTests) != 2 || s.MainTests[0].TestID != PreTest {
		t.Fatalf("expected pre-test first, got %+v", s.MainTests)
	}
	if len(s.DailyTests) != 2 || s.DailyTests[0].TestID != "day-2" || s.DailyTests[1].TestID != "day-10" {
		t.Fatalf("expected numeric day order, got %+v", s.DailyTests)
	}
}

func TestSummarizeEmptyFromCatalog(t *testing.T) {
	s := Summarize(nil)
	if s.Completed != 0 || s.AverageScore != 0 || len(s.MainTests) != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestStatusOf(t *testing.T) {
	if StatusOf(Result{}, false) != StatusNotStarted {
		t.Fatalf("expected not started")
	}
	if StatusOf(Result{Passed: true}, true) != StatusPassed {
		t.Fatalf("expected passed")
	}
	if StatusOf(Result{}, true) != StatusFailed {
		t.Fatalf("expected failed")
	}
}
