package app

import (
	"math"
	"sync"
	"time"

	"exam-simulator/internal/domain"
)

// DefaultDuration is the countdown length of a test attempt.
const DefaultDuration = 90 * time.Minute

// State is the lifecycle state of a session.
type State int

const (
	StateActive State = iota
	StateCompleted
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// EventType names session notifications.
type EventType string

const (
	EventQuestion  EventType = "question"
	EventFeedback  EventType = "feedback"
	EventTick      EventType = "tick"
	EventCompleted EventType = "completed"
	EventAbandoned EventType = "abandoned"
)

// Feedback is the correctness notification for one evaluated answer.
type Feedback struct {
	Position     int  `json:"position"`
	Selected     int  `json:"selected"`
	Correct      bool `json:"correct"`
	CorrectIndex int  `json:"correctIndex"`
}

// Event is pushed to session subscribers.
type Event struct {
	Type     EventType `json:"type"`
	Snapshot Snapshot  `json:"snapshot"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	SessionID       string         `json:"sessionId"`
	TestID          domain.TestID  `json:"testId"`
	Title           string         `json:"title"`
	State           string         `json:"state"`
	Position        int            `json:"position"`
	Total           int            `json:"total"`
	Prompt          string         `json:"prompt"`
	Options         []string       `json:"options"`
	Selected        *int           `json:"selected,omitempty"`
	FeedbackVisible bool           `json:"feedbackVisible"`
	Correct         *bool          `json:"correct,omitempty"`
	CorrectIndex    *int           `json:"correctIndex,omitempty"`
	Score           int            `json:"score"`
	Answered        int            `json:"answered"`
	Remaining       int            `json:"remaining"`
	Progress        int            `json:"progress"`
	IsLast          bool           `json:"isLast"`
	Result          *domain.Result `json:"result,omitempty"`
}

// SessionConfig tunes a session. Zero values fall back to defaults.
type SessionConfig struct {
	Owner         string
	Duration      time.Duration
	PassThreshold float64
	Now           func() time.Time
	NewTicker     TickerFunc

	// OnComplete receives the result exactly once, outside the session lock.
	OnComplete func(domain.Result)
}

// Session is one test attempt: position, answer state, score and countdown.
type Session struct {
	id         string
	owner      string
	test       domain.Test
	threshold  float64
	now        func() time.Time
	newTicker  TickerFunc
	onComplete func(domain.Result)

	mu           sync.Mutex
	state        State
	started      bool
	position     int
	selected     int // -1 while unanswered
	feedback     bool
	lastCorrect  bool
	score        int
	remaining    int
	startedAt    time.Time
	lastActivity time.Time
	result       *domain.Result
	subscribers  map[chan Event]struct{}
	done         chan struct{}
}

// NewSession binds a session to the ordered questions of test.
// An empty test is a configuration defect and yields domain.ErrEmptyTest.
func NewSession(id string, test domain.Test, cfg SessionConfig) (*Session, error) {
	if len(test.Questions) == 0 {
		return nil, domain.ErrEmptyTest
	}
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = domain.DefaultPassThreshold
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTicker
	}
	remaining := int(cfg.Duration / time.Second)
	if remaining < 1 {
		remaining = 1
	}

	now := cfg.Now()
	return &Session{
		id:           id,
		owner:        cfg.Owner,
		test:         test,
		threshold:    cfg.PassThreshold,
		now:          cfg.Now,
		newTicker:    cfg.NewTicker,
		onComplete:   cfg.OnComplete,
		state:        StateActive,
		selected:     -1,
		remaining:    remaining,
		startedAt:    now,
		lastActivity: now,
		subscribers:  make(map[chan Event]struct{}),
		done:         make(chan struct{}),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Owner returns the user the session belongs to.
func (s *Session) Owner() string { return s.owner }

// TestID returns the identifier of the test being taken.
func (s *Session) TestID() domain.TestID { return s.test.ID }

// Done is closed once the session is abandoned, or completed and its result
// handed to OnComplete.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start begins the one-second countdown. Calling it again is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	if s.started || s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.runCountdown(s.newTicker(time.Second))
}

// SelectAnswer evaluates the first selection for the current question.
// It reports false when the call is ignored: feedback already shown,
// session terminal, or index out of range.
func (s *Session) SelectAnswer(index int) (Feedback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive || s.feedback {
		return Feedback{}, false
	}
	question := s.test.Questions[s.position]
	if index < 0 || index >= len(question.Options) {
		return Feedback{}, false
	}

	s.selected = index
	s.lastCorrect = index == question.Answer
	if s.lastCorrect {
		s.score++
	}
	s.feedback = true
	s.lastActivity = s.now()

	fb := Feedback{
		Position:     s.position,
		Selected:     index,
		Correct:      s.lastCorrect,
		CorrectIndex: question.Answer,
	}
	s.broadcastLocked(Event{Type: EventFeedback, Snapshot: s.snapshotLocked(), Feedback: &fb})
	return fb, true
}

// Advance moves to the next question once feedback is shown, or completes
// the session on the last question. It reports false when ignored.
func (s *Session) Advance() bool {
	s.mu.Lock()
	if s.state != StateActive || !s.feedback {
		s.mu.Unlock()
		return false
	}
	s.lastActivity = s.now()

	if s.position == len(s.test.Questions)-1 {
		result := s.completeLocked(domain.ReasonFinished)
		s.mu.Unlock()
		s.finish(result)
		return true
	}

	s.position++
	s.selected = -1
	s.feedback = false
	s.lastCorrect = false
	s.broadcastLocked(Event{Type: EventQuestion, Snapshot: s.snapshotLocked()})
	s.mu.Unlock()
	return true
}

// Tick consumes one second of the countdown. Reaching zero completes the
// session whatever the answer state of the current question.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.broadcastLocked(Event{Type: EventTick, Snapshot: s.snapshotLocked()})
		s.mu.Unlock()
		return
	}
	s.remaining = 0
	result := s.completeLocked(domain.ReasonTimeout)
	s.mu.Unlock()
	s.finish(result)
}

// Abandon tears down an incomplete session: the countdown stops and no
// result is emitted. It reports false if the session was already terminal.
func (s *Session) Abandon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return false
	}
	s.state = StateAbandoned
	close(s.done)
	s.broadcastLocked(Event{Type: EventAbandoned, Snapshot: s.snapshotLocked()})
	s.closeSubscribersLocked()
	return true
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the emitted result once the session has completed.
func (s *Session) Result() (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}

// LastActivity is the time of the last accepted user action.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Subscribe returns a channel of session events. The channel is closed when
// the session becomes terminal; callers must still invoke cancel.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	s.mu.Lock()
	if s.state != StateActive {
		ch <- s.terminalEventLocked()
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.lastActivity = s.now()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// completeLocked moves the session to Completed and stops the countdown.
// The caller must pass the returned result to finish after unlocking.
func (s *Session) completeLocked(reason domain.CompletionReason) domain.Result {
	now := s.now()
	timeSpent := int(now.Sub(s.startedAt) / time.Second)
	if timeSpent < 0 {
		timeSpent = 0
	}
	result := domain.NewResult(s.test.ID, s.score, len(s.test.Questions), timeSpent, now, s.threshold, reason)
	s.result = &result
	s.state = StateCompleted
	return result
}

// finish hands the result to the host, then signals done and releases
// subscribers.
func (s *Session) finish(result domain.Result) {
	if s.onComplete != nil {
		s.onComplete(result)
	}
	s.mu.Lock()
	close(s.done)
	s.broadcastLocked(s.terminalEventLocked())
	s.closeSubscribersLocked()
	s.mu.Unlock()
}

func (s *Session) terminalEventLocked() Event {
	typ := EventCompleted
	if s.state == StateAbandoned {
		typ = EventAbandoned
	}
	return Event{Type: typ, Snapshot: s.snapshotLocked()}
}

func (s *Session) broadcastLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// drop the oldest event so slow readers never block the session
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) closeSubscribersLocked() {
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) snapshotLocked() Snapshot {
	question := s.test.Questions[s.position]
	total := len(s.test.Questions)

	snap := Snapshot{
		SessionID:       s.id,
		TestID:          s.test.ID,
		Title:           s.test.DisplayTitle(),
		State:           s.state.String(),
		Position:        s.position,
		Total:           total,
		Prompt:          question.Prompt,
		Options:         append([]string(nil), question.Options...),
		FeedbackVisible: s.feedback,
		Score:           s.score,
		Answered:        s.position,
		Remaining:       s.remaining,
		Progress:        int(math.Round(float64(s.position+1) / float64(total) * 100)),
		IsLast:          s.position == total-1,
	}
	if s.selected >= 0 {
		selected := s.selected
		snap.Selected = &selected
	}
	if s.feedback {
		correct := s.lastCorrect
		answer := question.Answer
		snap.Correct = &correct
		snap.CorrectIndex = &answer
		snap.Answered++
	}
	if s.result != nil {
		result := *s.result
		snap.Result = &result
	}
	return snap
}
