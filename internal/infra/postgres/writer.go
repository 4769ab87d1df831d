package postgres

import (
	"context"
	"fmt"
	"time"

	"exam-simulator/internal/domain"
	"github.com/uptrace/bun"
)

type testRow struct {
	bun.BaseModel `bun:"table:tests"`

	ID        string      `bun:"id,pk"`
	Title     string      `bun:"title"`
	Data      domain.Test `bun:"data,type:jsonb"`
	UpdatedAt time.Time   `bun:"updated_at"`
}

// TestWriter upserts imported tests into the tests table.
type TestWriter struct {
	db *bun.DB
}

func NewTestWriter(db *bun.DB) *TestWriter {
	return &TestWriter{db: db}
}

// SaveTests replaces the content of every given test.
func (w *TestWriter) SaveTests(ctx context.Context, tests []domain.Test) error {
	if len(tests) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]testRow, 0, len(tests))
	for _, test := range tests {
		rows = append(rows, testRow{
			ID:        string(test.ID),
			Title:     test.DisplayTitle(),
			Data:      test,
			UpdatedAt: now,
		})
	}
	_, err := w.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save tests: %w", err)
	}
	return nil
}

// Count reports how many tests are stored.
func (w *TestWriter) Count(ctx context.Context) (int, error) {
	return w.db.NewSelect().Model((*testRow)(nil)).Count(ctx)
}
