package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TestID selects a fixed question set and keys its stored result.
type TestID string

const (
	PreTest  TestID = "pre-test"
	PostTest TestID = "post-test"

	dayPrefix = "day-"
)

// DefaultDailyTests is the number of day-numbered practice tests on the dashboard.
const DefaultDailyTests = 3

// TestKind groups catalog tests on the dashboard and summary.
type TestKind string

const (
	KindMain  TestKind = "main"
	KindDaily TestKind = "daily"
	KindOther TestKind = "other"
)

// Day returns the identifier of the n-th daily practice test.
func Day(n int) TestID {
	return TestID(dayPrefix + strconv.Itoa(n))
}

// DayNumber parses the day of a daily test identifier.
func DayNumber(id TestID) (int, bool) {
	raw, ok := strings.CutPrefix(string(id), dayPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Kind classifies a test identifier.
func Kind(id TestID) TestKind {
	if id == PreTest || id == PostTest {
		return KindMain
	}
	if _, ok := DayNumber(id); ok {
		return KindDaily
	}
	return KindOther
}

// Title is the display title for a test identifier.
func Title(id TestID) string {
	switch id {
	case PreTest:
		return "Pre-test"
	case PostTest:
		return "Post-test"
	}
	if n, ok := DayNumber(id); ok {
		return fmt.Sprintf("Day %d test", n)
	}
	return "Test"
}

// Catalog lists the dashboard tests: pre-test, post-test, then day-1..day-n.
func Catalog(days int) []TestID {
	if days < 0 {
		days = 0
	}
	ids := make([]TestID, 0, days+2)
	ids = append(ids, PreTest, PostTest)
	for i := 1; i <= days; i++ {
		ids = append(ids, Day(i))
	}
	return ids
}
