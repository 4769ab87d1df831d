package memory

import (
	"context"
	"sync"

	"exam-simulator/internal/domain"
)

// ResultStore keeps each user's results-by-test mapping in memory.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]map[domain.TestID]domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string]map[domain.TestID]domain.Result),
	}
}

// Put inserts or overwrites the result of result.TestID.
func (s *ResultStore) Put(_ context.Context, userID string, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byTest, ok := s.results[userID]
	if !ok {
		byTest = make(map[domain.TestID]domain.Result)
		s.results[userID] = byTest
	}
	byTest[result.TestID] = result
	return nil
}

func (s *ResultStore) Get(_ context.Context, userID string, testID domain.TestID) (domain.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[userID][testID]
	return result, ok, nil
}

// All returns a copy of the user's mapping.
func (s *ResultStore) All(_ context.Context, userID string) (map[domain.TestID]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.TestID]domain.Result, len(s.results[userID]))
	for id, r := range s.results[userID] {
		out[id] = r
	}
	return out, nil
}

func (s *ResultStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, userID)
	return nil
}
