package app

import "time"

// Ticker is the owned countdown resource of a session.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

// NewTicker wraps time.Ticker.
func NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// runCountdown feeds ticks into the session until it is terminal.
// The ticker is released on every exit path.
func (s *Session) runCountdown(t Ticker) {
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C():
			s.Tick()
		}
	}
}
