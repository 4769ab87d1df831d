package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"exam-simulator/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TestLoader fetches test content from a backing store (bank file, Postgres).
type TestLoader interface {
	LoadTest(ctx context.Context, testID domain.TestID) (domain.Test, error)
}

// QuestionBank caches whole tests in Redis and falls back to a loader on miss.
// Tests are stored as JSON: SET bank:test:{testID} {json} EX ttl
type QuestionBank struct {
	client *redis.Client
	loader TestLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionBank(client *redis.Client, loader TestLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) GetTest(ctx context.Context, testID domain.TestID) (domain.Test, error) {
	key := b.key(testID)
	if test, ok := b.cached(ctx, key); ok {
		return test, nil
	}

	result, err, _ := b.sf.Do(string(testID), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if test, ok := b.cached(ctx, key); ok {
			return test, nil
		}

		test, err := b.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.Test{}, err
		}
		if len(test.Questions) == 0 {
			return domain.Test{}, domain.ErrEmptyTest
		}

		data, err := json.Marshal(test)
		if err != nil {
			return domain.Test{}, err
		}
		if err := b.client.Set(ctx, key, data, b.ttlWithJitter()).Err(); err != nil {
			// serve from the loader even when the cache is unavailable
			log.Printf("cache test %s: %v", testID, err)
		}
		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

func (b *QuestionBank) cached(ctx context.Context, key string) (domain.Test, bool) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Test{}, false
	}
	var test domain.Test
	if err := json.Unmarshal(data, &test); err != nil || len(test.Questions) == 0 {
		return domain.Test{}, false
	}
	return test, true
}

func (b *QuestionBank) key(testID domain.TestID) string {
	return "bank:test:" + string(testID)
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
