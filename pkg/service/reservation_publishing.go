package service

import (
	"context"
	"log/slog"

	"github.com/yhk1105/114-1-DBFinal/pkg/events"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// ReservationPublishing emits events once the wrapped call has committed.
// Publishing failures are logged and never fail the call.
type ReservationPublishing struct {
	Reservation

	Publisher EventPublisher
}

func (rp *ReservationPublishing) Create(ctx context.Context, memberID int64, lines []model.ReservationLine) (int64, error) {
	id, err := rp.Reservation.Create(ctx, memberID, lines)
	if err != nil {
		return 0, err
	}

	rp.publish(ctx, events.New(events.ReservationCreated, memberID, id))
	return id, nil
}

func (rp *ReservationPublishing) Cancel(ctx context.Context, memberID, reservationID int64) error {
	if err := rp.Reservation.Cancel(ctx, memberID, reservationID); err != nil {
		return err
	}

	rp.publish(ctx, events.New(events.ReservationCancelled, memberID, reservationID))
	return nil
}

func (rp *ReservationPublishing) publish(ctx context.Context, e events.Event) {
	if err := rp.Publisher.Publish(ctx, e); err != nil {
		slog.Error("can't publish event",
			slog.String("type", string(e.Type)),
			slog.Int64("reservation_id", e.ReservationID),
			slog.Any("error", err),
		)
	}
}
