package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type ReservationLogging struct {
	Reservation
}

func (rl *ReservationLogging) Create(ctx context.Context, memberID int64, lines []model.ReservationLine) (id int64, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int64("member_id", memberID),
			slog.Int("lines", len(lines)),
			slog.Int64("reservation_id", id),
			slog.String("delay", time.Since(t0).String()),
		)

		logResult(log, err, "failed to create reservation", "reservation created")
	}(time.Now())

	return rl.Reservation.Create(ctx, memberID, lines)
}

func (rl *ReservationLogging) Cancel(ctx context.Context, memberID, reservationID int64) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int64("member_id", memberID),
			slog.Int64("reservation_id", reservationID),
			slog.String("delay", time.Since(t0).String()),
		)

		logResult(log, err, "failed to cancel reservation", "reservation cancelled")
	}(time.Now())

	return rl.Reservation.Cancel(ctx, memberID, reservationID)
}

// logResult logs business rejections at INFO, as they are expected outcomes.
func logResult(log *slog.Logger, err error, failMsg, okMsg string) {
	var rej *model.RejectionError

	switch {
	case err == nil:
		log.Debug(okMsg)
	case errors.As(err, &rej), errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrLimitExceeded):
		log.Info(failMsg, slog.Any("error", err))
	default:
		log.Error(failMsg, slog.Any("error", err))
	}
}
