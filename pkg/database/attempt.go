package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type AttemptRepository interface {
	Add(context.Context, ...model.ReservationAttempt) error
}

type AttemptDatabase struct {
	DB Querier
}

func (ad *AttemptDatabase) Add(ctx context.Context, as ...model.ReservationAttempt) error {
	if len(as) == 0 {
		return nil
	}

	q := buildBatchQuery(len(as))

	args := make([]any, 0, len(as)*attemptColumns)
	for _, a := range as {
		reservationID := sql.NullInt64{Int64: a.ReservationID, Valid: a.ReservationID != 0}
		errMsg := sql.NullString{String: a.Error, Valid: a.Error != ""}

		args = append(args, a.RequestID, a.MemberID, reservationID, a.Lines, a.CreatedAt, errMsg)
	}

	res, err := ad.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert reservation attempts: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if int(affected) != len(as) {
		return fmt.Errorf("expected %d records to be inserted, got %d", len(as), affected)
	}

	return nil
}

const attemptColumns = 6

func buildBatchQuery(rows int) string {
	sb := strings.Builder{}
	sb.WriteString("insert into reservation_attempts (request_id, member_id, reservation_id, lines, created_at, error) values ")

	phs := make([]string, 0, rows)

	for i := range rows {
		ph := make([]string, attemptColumns)
		for j := range attemptColumns {
			ph[j] = fmt.Sprintf("$%d", i*attemptColumns+j+1)
		}
		phs = append(phs, "("+strings.Join(ph, ", ")+")")
	}

	sb.WriteString(strings.Join(phs, ","))
	return sb.String()
}

// AttemptBatchingDatabase buffers attempts and writes them in batches,
// either when batchSize is reached or every flushInterval.
type AttemptBatchingDatabase struct {
	buffer    []model.ReservationAttempt
	ticker    *time.Ticker
	batchSize int
	mu        sync.Mutex
	done      chan struct{}
	wg        sync.WaitGroup

	closed    bool // guarded by mu, attempts added after Close are written directly
	closeOnce sync.Once
	closeErr  error

	*AttemptDatabase
}

func NewAttemptBatchingDatabase(db Querier, batchSize int, flushInterval time.Duration) *AttemptBatchingDatabase {
	ad := &AttemptBatchingDatabase{
		buffer:    make([]model.ReservationAttempt, 0, batchSize),
		ticker:    time.NewTicker(flushInterval),
		batchSize: batchSize,
		done:      make(chan struct{}),

		AttemptDatabase: &AttemptDatabase{db},
	}

	ad.wg.Add(1)
	go ad.loop()

	return ad
}

func (ad *AttemptBatchingDatabase) Add(ctx context.Context, as ...model.ReservationAttempt) error {
	if len(as) == 0 {
		return nil
	}

	ad.mu.Lock()
	if ad.closed {
		ad.mu.Unlock()
		return ad.AttemptDatabase.Add(ctx, as...)
	}

	ad.buffer = append(ad.buffer, as...)
	shouldFlush := len(ad.buffer) >= ad.batchSize
	if shouldFlush {
		ad.wg.Add(1)
	}
	ad.mu.Unlock()

	if shouldFlush {
		go func() {
			defer ad.wg.Done()
			if err := ad.flush(); err != nil {
				slog.Error("can't flush buffer", slog.Any("error", err))
			}
		}()
	}

	return nil
}

// Close stops the periodic flush and writes whatever is left in the buffer.
// Calling it more than once is safe.
func (ad *AttemptBatchingDatabase) Close() error {
	ad.closeOnce.Do(func() {
		ad.mu.Lock()
		ad.closed = true
		ad.mu.Unlock()

		ad.ticker.Stop()
		close(ad.done)
		ad.wg.Wait()

		ad.closeErr = ad.flush()
	})

	return ad.closeErr
}

func (ad *AttemptBatchingDatabase) loop() {
	defer ad.wg.Done()

	for {
		select {
		case <-ad.done:
			return
		case <-ad.ticker.C:
			if err := ad.flush(); err != nil {
				slog.Error("can't flush buffer", slog.Any("error", err))
			}
		}
	}
}

func (ad *AttemptBatchingDatabase) flush() error {
	ad.mu.Lock()
	if len(ad.buffer) == 0 {
		ad.mu.Unlock()
		return nil
	}

	batch := make([]model.ReservationAttempt, len(ad.buffer))
	copy(batch, ad.buffer)
	ad.buffer = ad.buffer[:0]
	ad.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.TODO(), time.Second*10)
	defer cancel()

	if err := ad.AttemptDatabase.Add(ctx, batch...); err != nil {
		return fmt.Errorf("can't insert batch: %w", err)
	}

	return nil
}
