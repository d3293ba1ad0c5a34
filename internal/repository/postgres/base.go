package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/waitingboard/api/pkg/metrics"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db           *sqlx.DB
	metrics      *metrics.Metrics
	queryTimeout time.Duration
}

// NewBaseRepository creates a new base repository. A zero queryTimeout
// leaves the caller's context untouched; m may be nil.
func NewBaseRepository(db *sqlx.DB, m *metrics.Metrics, queryTimeout time.Duration) BaseRepository {
	return BaseRepository{db: db, metrics: m, queryTimeout: queryTimeout}
}

func (r *BaseRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

// observe records the outcome of operation and returns err unchanged.
func (r *BaseRepository) observe(operation string, start time.Time, err error) error {
	r.metrics.ObserveDB(operation, start, err)
	return err
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
