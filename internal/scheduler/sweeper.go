package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultInterval is how often idle sessions are swept.
const DefaultInterval = time.Minute

// IdleSweeper abandons sessions that saw no activity for longer than idle.
type IdleSweeper interface {
	SweepIdle(now time.Time, idle time.Duration) int
}

// Sweeper periodically clears idle and terminal sessions.
type Sweeper struct {
	scheduler *gocron.Scheduler
	target    IdleSweeper
	interval  time.Duration
	idle      time.Duration
	now       func() time.Time
}

// NewSweeper creates a sweeper; a non-positive interval uses DefaultInterval.
func NewSweeper(target IdleSweeper, interval, idle time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Sweeper{
		scheduler: s,
		target:    target,
		interval:  interval,
		idle:      idle,
		now:       time.Now,
	}
}

// Start schedules the sweep and runs it in the background. The first sweep
// runs immediately.
func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.RunOnce); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the schedule.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce() {
	if removed := s.target.SweepIdle(s.now(), s.idle); removed > 0 {
		log.Printf("sweeper removed %d sessions", removed)
	}
}
