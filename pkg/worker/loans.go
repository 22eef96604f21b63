package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/metrics"
)

type TxRunner interface {
	Run(ctx context.Context, op string, fn database.TxFunc) error
}

// Loans prepares loan records for reservations which are about to start.
type Loans struct {
	Coordinator TxRunner
	Loans       database.LoanRepository
	Ahead       time.Duration
	Metrics     *metrics.Metrics

	Now func() time.Time
}

// Prepare runs a single pass and returns the number of loans created.
func (l *Loans) Prepare(ctx context.Context) (int, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}

	until := now().Add(l.Ahead)

	var created int
	err := l.Coordinator.Run(ctx, "loans.prepare", func(q database.Querier) error {
		n, err := l.Loans.CreateForUpcoming(ctx, q, until)
		created = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("can't prepare loans: %w", err)
	}

	l.Metrics.LoansPrepared(created)
	return created, nil
}

// Start schedules Prepare every interval. The returned func stops the scheduler.
func (l *Loans) Start(interval time.Duration) (stop func() error, err error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("can't create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(l.run),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("can't create loans job: %w", err)
	}

	s.Start()
	return s.Shutdown, nil
}

func (l *Loans) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := l.Prepare(ctx)
	if err != nil {
		slog.Error("loans job failed", slog.Any("error", err))
		return
	}

	slog.Debug("loans prepared", slog.Int("count", n))
}
