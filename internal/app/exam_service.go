package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"exam-simulator/internal/domain"
	"exam-simulator/internal/metrics"
	"github.com/google/uuid"
)

// QuestionBank returns the ordered, fixed question set of a test.
type QuestionBank interface {
	GetTest(ctx context.Context, testID domain.TestID) (domain.Test, error)
}

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
	List() []*Session
}

// ResultStore is the results-by-test mapping of each signed-in user.
type ResultStore interface {
	Put(ctx context.Context, userID string, result domain.Result) error
	Get(ctx context.Context, userID string, testID domain.TestID) (domain.Result, bool, error)
	All(ctx context.Context, userID string) (map[domain.TestID]domain.Result, error)
	Clear(ctx context.Context, userID string) error
}

// ExamConfig holds the global exam settings.
type ExamConfig struct {
	Duration      time.Duration
	PassThreshold float64
	DailyTests    int

	// Now and NewTicker are overridable for deterministic tests.
	Now       func() time.Time
	NewTicker TickerFunc
}

// ExamService is the session host: it owns users, their active session and
// the results store, and routes finished results into the store.
type ExamService struct {
	bank     QuestionBank
	sessions SessionRepository
	results  ResultStore
	cfg      ExamConfig

	mu     sync.Mutex
	users  map[string]domain.User
	active map[string]string // userID -> sessionID
}

func NewExamService(bank QuestionBank, sessions SessionRepository, results ResultStore, cfg ExamConfig) *ExamService {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = domain.DefaultPassThreshold
	}
	if cfg.DailyTests <= 0 {
		cfg.DailyTests = domain.DefaultDailyTests
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTicker
	}
	return &ExamService{
		bank:     bank,
		sessions: sessions,
		results:  results,
		cfg:      cfg,
		users:    make(map[string]domain.User),
		active:   make(map[string]string),
	}
}

// Login signs a user in with a non-empty name.
func (s *ExamService) Login(_ context.Context, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, domain.ErrEmptyName
	}
	user := domain.User{
		ID:         uuid.NewString(),
		Name:       name,
		SignedInAt: s.cfg.Now(),
	}
	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()
	log.Printf("user %s signed in as %q", user.ID, user.Name)
	return user, nil
}

// Logout abandons the active session and drops every result of the user.
func (s *ExamService) Logout(ctx context.Context, userID string) error {
	if _, err := s.User(userID); err != nil {
		return err
	}
	s.abandonActive(userID)
	if err := s.results.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	s.mu.Lock()
	delete(s.users, userID)
	s.mu.Unlock()
	log.Printf("user %s signed out", userID)
	return nil
}

// User returns a signed-in user.
func (s *ExamService) User(userID string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// Dashboard lists the catalog tests with the user's status for each.
func (s *ExamService) Dashboard(ctx context.Context, userID string) (domain.Dashboard, error) {
	user, err := s.User(userID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	results, err := s.results.All(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, err
	}

	dash := domain.Dashboard{User: user}
	for _, id := range domain.Catalog(s.cfg.DailyTests) {
		result, ok := results[id]
		entry := domain.DashboardEntry{
			ID:     id,
			Title:  domain.Title(id),
			Kind:   domain.Kind(id),
			Status: domain.StatusOf(result, ok),
		}
		if ok {
			entry.Result = &result
		}
		dash.Tests = append(dash.Tests, entry)
	}
	for _, r := range results {
		dash.Completed++
		if r.Passed {
			dash.Passed++
		}
	}
	return dash, nil
}

// StartTest opens a new session for testID. Any session the user still has
// open is abandoned first.
func (s *ExamService) StartTest(ctx context.Context, userID string, testID domain.TestID) (*Session, error) {
	if _, err := s.User(userID); err != nil {
		return nil, err
	}
	test, err := s.bank.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test.ID == "" {
		test.ID = testID
	}

	sessionID := uuid.NewString()
	session, err := NewSession(sessionID, test, SessionConfig{
		Owner:         userID,
		Duration:      s.cfg.Duration,
		PassThreshold: s.cfg.PassThreshold,
		Now:           s.cfg.Now,
		NewTicker:     s.cfg.NewTicker,
		OnComplete: func(result domain.Result) {
			s.complete(userID, sessionID, result)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", testID, err)
	}

	s.sessions.Put(session)
	// at most one active session per user
	s.mu.Lock()
	previous, hadPrevious := s.active[userID]
	s.active[userID] = sessionID
	s.mu.Unlock()
	if hadPrevious {
		s.abandonSession(userID, previous, "user left the test")
	}

	metrics.SessionStarted(string(testID))
	session.Start()
	log.Printf("user %s started %s (session %s)", userID, testID, sessionID)
	return session, nil
}

// Session returns a session owned by userID.
func (s *ExamService) Session(userID, sessionID string) (*Session, error) {
	if _, err := s.User(userID); err != nil {
		return nil, err
	}
	session, ok := s.sessions.Get(sessionID)
	if !ok || session.Owner() != userID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// SelectAnswer forwards a selection; repeated or late selections are ignored.
func (s *ExamService) SelectAnswer(_ context.Context, userID, sessionID string, index int) (Snapshot, error) {
	session, err := s.Session(userID, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	if fb, ok := session.SelectAnswer(index); ok {
		metrics.AnswerRecorded(string(session.TestID()), fb.Correct)
	}
	return session.Snapshot(), nil
}

// Advance moves to the next question or finishes the test.
func (s *ExamService) Advance(_ context.Context, userID, sessionID string) (Snapshot, error) {
	session, err := s.Session(userID, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	session.Advance()
	return session.Snapshot(), nil
}

// Snapshot returns the current view of a session.
func (s *ExamService) Snapshot(_ context.Context, userID, sessionID string) (Snapshot, error) {
	session, err := s.Session(userID, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Abandon discards a session without producing a result.
func (s *ExamService) Abandon(_ context.Context, userID, sessionID string) error {
	session, err := s.Session(userID, sessionID)
	if err != nil {
		return err
	}
	if session.Abandon() {
		metrics.SessionEnded(string(session.TestID()), metrics.OutcomeAbandoned)
		log.Printf("session %s abandoned by user %s", sessionID, userID)
	}
	s.release(userID, sessionID)
	return nil
}

// Result returns the stored result of a completed test.
func (s *ExamService) Result(ctx context.Context, userID string, testID domain.TestID) (domain.Result, error) {
	if _, err := s.User(userID); err != nil {
		return domain.Result{}, err
	}
	result, ok, err := s.results.Get(ctx, userID, testID)
	if err != nil {
		return domain.Result{}, err
	}
	if !ok {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return result, nil
}

// Summary aggregates every stored result of the user.
func (s *ExamService) Summary(ctx context.Context, userID string) (domain.Summary, error) {
	if _, err := s.User(userID); err != nil {
		return domain.Summary{}, err
	}
	results, err := s.results.All(ctx, userID)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(results), nil
}

// SweepIdle abandons sessions without user activity for longer than idle and
// drops terminal sessions from the repository. It returns the number removed.
func (s *ExamService) SweepIdle(now time.Time, idle time.Duration) int {
	removed := 0
	for _, session := range s.sessions.List() {
		if session.State() == StateActive {
			if idle <= 0 || now.Sub(session.LastActivity()) <= idle {
				continue
			}
			if session.Abandon() {
				metrics.SessionEnded(string(session.TestID()), metrics.OutcomeAbandoned)
				log.Printf("session %s abandoned after %s idle", session.ID(), idle)
			}
			s.release(session.Owner(), session.ID())
		}
		s.sessions.Delete(session.ID())
		removed++
	}
	return removed
}

// AbandonAll abandons every active session, releasing their countdowns.
// It returns the number of sessions abandoned.
func (s *ExamService) AbandonAll() int {
	s.mu.Lock()
	active := s.active
	s.active = make(map[string]string)
	s.mu.Unlock()

	abandoned := 0
	for userID, sessionID := range active {
		if s.abandonSession(userID, sessionID, "shutting down") {
			abandoned++
		}
	}
	return abandoned
}

func (s *ExamService) complete(userID, sessionID string, result domain.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.results.Put(ctx, userID, result); err != nil {
		log.Printf("store result of session %s: %v", sessionID, err)
	}
	metrics.SessionEnded(string(result.TestID), string(result.Reason))
	s.release(userID, sessionID)
	log.Printf("session %s completed (%s): %d/%d", sessionID, result.Reason, result.Score, result.TotalQuestions)
}

func (s *ExamService) abandonActive(userID string) {
	s.mu.Lock()
	sessionID, ok := s.active[userID]
	delete(s.active, userID)
	s.mu.Unlock()
	if ok {
		s.abandonSession(userID, sessionID, "user left the test")
	}
}

func (s *ExamService) abandonSession(userID, sessionID, why string) bool {
	session, found := s.sessions.Get(sessionID)
	if !found || !session.Abandon() {
		return false
	}
	metrics.SessionEnded(string(session.TestID()), metrics.OutcomeAbandoned)
	log.Printf("session %s abandoned: %s (user %s)", sessionID, why, userID)
	return true
}

func (s *ExamService) release(userID, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[userID] == sessionID {
		delete(s.active, userID)
	}
}
