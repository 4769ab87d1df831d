package domain

import (
	"math"
	"sort"
)

// SummaryEntry is one completed test in the performance summary.
type SummaryEntry struct {
	TestID TestID `json:"testId"`
	Title  string `json:"title"`
	Result Result `json:"result"`
}

// Summary aggregates all completed tests of a user.
type Summary struct {
	Completed      int            `json:"completed"`
	Passed         int            `json:"passed"`
	AverageScore   int            `json:"averageScore"`
	TotalTimeSpent int            `json:"totalTimeSpent"`
	MainTests      []SummaryEntry `json:"mainTests"`
	DailyTests     []SummaryEntry `json:"dailyTests"`
	OtherTests     []SummaryEntry `json:"otherTests,omitempty"`
}

// Summarize projects the results-by-test mapping into a Summary.
func Summarize(results map[TestID]Result) Summary {
	s := Summary{
		MainTests:  []SummaryEntry{},
		DailyTests: []SummaryEntry{},
	}
	percentageSum := 0
	for id, r := range results {
		s.Completed++
		if r.Passed {
			s.Passed++
		}
		percentageSum += r.Percentage
		s.TotalTimeSpent += r.TimeSpent

		entry := SummaryEntry{TestID: id, Title: Title(id), Result: r}
		switch Kind(id) {
		case KindMain:
			s.MainTests = append(s.MainTests, entry)
		case KindDaily:
			s.DailyTests = append(s.DailyTests, entry)
		default:
			s.OtherTests = append(s.OtherTests, entry)
		}
	}
	if s.Completed > 0 {
		s.AverageScore = int(math.Round(float64(percentageSum) / float64(s.Completed)))
	}

	// pre-test before post-test
	sort.Slice(s.MainTests, func(i, j int) bool {
		return s.MainTests[i].TestID == PreTest && s.MainTests[j].TestID != PreTest
	})
	sort.Slice(s.DailyTests, func(i, j int) bool {
		di, _ := DayNumber(s.DailyTests[i].TestID)
		dj, _ := DayNumber(s.DailyTests[j].TestID)
		return di < dj
	})
	sort.Slice(s.OtherTests, func(i, j int) bool {
		return s.OtherTests[i].TestID < s.OtherTests[j].TestID
	})
	return s
}
