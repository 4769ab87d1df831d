package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exam-simulator/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultStore keeps each user's results-by-test mapping in a Redis hash:
// HSET exam:results:{userID} {testID} {json}
// The hash expires after ttl so results never outlive the login session.
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func (s *ResultStore) Put(ctx context.Context, userID string, result domain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	key := s.key(userID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, string(result.TestID), data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}

func (s *ResultStore) Get(ctx context.Context, userID string, testID domain.TestID) (domain.Result, bool, error) {
	data, err := s.client.HGet(ctx, s.key(userID), string(testID)).Bytes()
	if err == redis.Nil {
		return domain.Result{}, false, nil
	}
	if err != nil {
		return domain.Result{}, false, fmt.Errorf("load result: %w", err)
	}
	var result domain.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.Result{}, false, fmt.Errorf("decode result: %w", err)
	}
	return result, true, nil
}

func (s *ResultStore) All(ctx context.Context, userID string) (map[domain.TestID]domain.Result, error) {
	raw, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	out := make(map[domain.TestID]domain.Result, len(raw))
	for testID, data := range raw {
		var result domain.Result
		if err := json.Unmarshal([]byte(data), &result); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", testID, err)
		}
		out[domain.TestID(testID)] = result
	}
	return out, nil
}

func (s *ResultStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *ResultStore) key(userID string) string {
	return "exam:results:" + userID
}
