package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yhk1105/114-1-DBFinal/pkg/metrics"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 100 * time.Millisecond

	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// ErrConflict marks a transient conflict which is safe to retry from scratch.
var ErrConflict = errors.New("transaction conflict")

type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// SQLBeginner opens transactions on a *sql.DB.
type SQLBeginner struct {
	DB *sql.DB
}

func (b SQLBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := b.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

type TxFunc func(Querier) error

func WithTx(ctx context.Context, b Beginner, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := b.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("can't begin tx: %w", err)
	}

	defer func() {
		p := recover()
		switch {
		case p != nil:
			_ = tx.Rollback()
			panic(p)

		case err != nil:
			rbErr := tx.Rollback()
			if rbErr != nil {
				err = fmt.Errorf("can't rollback tx: %w. original error: %w", rbErr, err)
			}

		default:
			err = tx.Commit()
			if err != nil {
				err = fmt.Errorf("can't commit tx: %w", err)
			}
		}
	}()

	err = fn(tx)
	return
}

// IsConflict reports whether err is a serialization failure or a deadlock
// reported by the database, or an explicit ErrConflict.
func IsConflict(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}

	return false
}

// Coordinator runs units of work in serializable transactions.
// A unit that fails with a conflict is rolled back and re-executed from scratch,
// sleeping BaseDelay*attempt in between. When attempts are exhausted,
// model.ErrSystemBusy is returned. Any other error is returned as is without retry.
//
// The unit of work must not have side effects outside the transaction:
// it may be executed up to MaxAttempts times.
type Coordinator struct {
	Beginner    Beginner
	MaxAttempts int
	BaseDelay   time.Duration
	Metrics     *metrics.Metrics

	// Sleep waits between attempts. Defaults to a timer honoring ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewCoordinator(db *sql.DB, maxAttempts int, baseDelay time.Duration, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		Beginner:    SQLBeginner{db},
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Metrics:     m,
	}
}

func (c *Coordinator) Run(ctx context.Context, op string, fn TxFunc) error {
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = WithTx(ctx, c.Beginner, opts, fn)
		if err == nil {
			c.Metrics.TxOutcome(op, metrics.OutcomeCommitted)
			return nil
		}

		if !IsConflict(err) {
			c.Metrics.TxOutcome(op, metrics.OutcomeAborted)
			return err
		}

		c.Metrics.TxOutcome(op, metrics.OutcomeConflict)
		slog.Warn("transaction conflict",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		if attempt == maxAttempts {
			break
		}

		if err := c.sleep(ctx, c.BaseDelay*time.Duration(attempt)); err != nil {
			return err
		}
	}

	c.Metrics.TxOutcome(op, metrics.OutcomeBusy)
	return fmt.Errorf("%w: %s gave up after %d attempts: %v", model.ErrSystemBusy, op, maxAttempts, err)
}

func (c *Coordinator) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
