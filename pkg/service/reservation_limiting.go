package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yhk1105/114-1-DBFinal/pkg/limiter"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

// ReservationLimiting is a wrapper over Reservation service
// which makes sure that member creates no more than Limiter.Limit reservations per window.
//
// If failed to check limits, the behavior depends on FailOpen flag. If set, current request is allowed.
// Otherwise, an error will be returned.
type ReservationLimiting struct {
	Reservation

	Limiter  *limiter.Limiter
	FailOpen bool
}

func (rl *ReservationLimiting) Create(ctx context.Context, memberID int64, lines []model.ReservationLine) (int64, error) {
	acquired := true

	allowed, err := rl.Limiter.Acquire(ctx, memberID)
	if err != nil {
		if !rl.FailOpen {
			return 0, fmt.Errorf("can't check if limit exceeded: %w", err)
		}

		slog.Error("can't check if limit exceeded", slog.Any("error", err))
		acquired, allowed = false, true
	}

	if !allowed {
		rl.release(ctx, memberID)
		return 0, model.ErrLimitExceeded
	}

	id, err := rl.Reservation.Create(ctx, memberID, lines)
	if err != nil {
		if acquired {
			rl.release(ctx, memberID)
		}
		return 0, err
	}

	return id, nil
}

// release gives the slot back so that only created reservations are counted.
func (rl *ReservationLimiting) release(ctx context.Context, memberID int64) {
	if err := rl.Limiter.Release(ctx, memberID); err != nil {
		slog.Error("can't release member's limit", slog.Any("error", err))
	}
}
