package app_test

import (
	"sync"
	"time"

	"exam-simulator/internal/app"
	"exam-simulator/internal/domain"
)

// fakeTicker is a hand-driven countdown source.
type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.once.Do(func() { close(f.stopped) }) }

// tickerFactory hands out fake tickers and remembers them in creation order.
type tickerFactory struct {
	created chan *fakeTicker
}

func newTickerFactory() *tickerFactory {
	return &tickerFactory{created: make(chan *fakeTicker, 16)}
}

func (f *tickerFactory) New(time.Duration) app.Ticker {
	t := newFakeTicker()
	f.created <- t
	return t
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// twoQuestionTest: question 1 answer index 1, question 2 answer index 2.
func twoQuestionTest() domain.Test {
	return domain.Test{
		ID: "day-1",
		Questions: []domain.Question{
			{Prompt: "First", Options: []string{"a", "b", "c", "d"}, Answer: 1},
			{Prompt: "Second", Options: []string{"a", "b", "c", "d"}, Answer: 2},
		},
	}
}

func fourQuestionTest(id domain.TestID) domain.Test {
	q := domain.Question{Prompt: "Pick b", Options: []string{"a", "b", "c", "d"}, Answer: 1}
	return domain.Test{ID: id, Questions: []domain.Question{q, q, q, q}}
}
