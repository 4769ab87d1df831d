package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"exam-simulator/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// TestLoader loads test JSONB from Postgres.
type TestLoader struct {
	pool *pgxpool.Pool
}

func NewTestLoader(pool *pgxpool.Pool) *TestLoader {
	return &TestLoader{pool: pool}
}

func (l *TestLoader) LoadTest(ctx context.Context, testID domain.TestID) (domain.Test, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM tests WHERE id=$1`, string(testID)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Test{}, fmt.Errorf("%w: %s", domain.ErrTestNotFound, testID)
	}
	if err != nil {
		return domain.Test{}, fmt.Errorf("load test: %w", err)
	}
	var test domain.Test
	if err := json.Unmarshal(raw, &test); err != nil {
		return domain.Test{}, fmt.Errorf("unmarshal test: %w", err)
	}
	if test.ID == "" {
		test.ID = testID
	}
	return test, nil
}
