package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"exam-simulator/internal/domain"
	"golang.org/x/sync/singleflight"
)

// TestLoader fetches test content from a backing store (bank file, Postgres).
type TestLoader interface {
	LoadTest(ctx context.Context, testID domain.TestID) (domain.Test, error)
}

// QuestionBank caches tests with TTL to avoid repeated loader hits.
// A non-positive TTL caches forever.
type QuestionBank struct {
	loader TestLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[domain.TestID]cachedTest
}

type cachedTest struct {
	test      domain.Test
	expiresAt time.Time // zero means no expiry
}

func NewQuestionBank(loader TestLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.TestID]cachedTest),
	}
}

func (b *QuestionBank) GetTest(ctx context.Context, testID domain.TestID) (domain.Test, error) {
	if test, ok := b.cached(testID, b.clock()); ok {
		return test, nil
	}

	result, err, _ := b.sf.Do(string(testID), func() (interface{}, error) {
		now := b.clock()
		if test, ok := b.cached(testID, now); ok {
			return test, nil
		}

		test, err := b.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.Test{}, err
		}
		if len(test.Questions) == 0 {
			return domain.Test{}, domain.ErrEmptyTest
		}

		entry := cachedTest{test: test}
		if b.ttl > 0 {
			entry.expiresAt = now.Add(b.ttlWithJitter())
		}
		b.mu.Lock()
		b.cache[testID] = entry
		b.mu.Unlock()
		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

func (b *QuestionBank) cached(testID domain.TestID, now time.Time) (domain.Test, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.cache[testID]
	if !ok {
		return domain.Test{}, false
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(now) {
		return domain.Test{}, false
	}
	return entry.test, true
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

// StaticLoader is a loader backed by an in-memory map (bank files, tests, demos).
type StaticLoader struct {
	tests map[domain.TestID]domain.Test
}

func NewStaticLoader(tests map[domain.TestID]domain.Test) *StaticLoader {
	return &StaticLoader{tests: tests}
}

func (l *StaticLoader) LoadTest(_ context.Context, testID domain.TestID) (domain.Test, error) {
	if test, ok := l.tests[testID]; ok {
		return test, nil
	}
	return domain.Test{}, domain.ErrTestNotFound
}
