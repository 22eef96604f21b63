package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/metrics"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type Reservation interface {
	Create(ctx context.Context, memberID int64, lines []model.ReservationLine) (int64, error)
	Cancel(ctx context.Context, memberID, reservationID int64) error
	AvailablePickupPlaces(ctx context.Context, itemID int64) ([]model.PickupPlace, error)
}

// TxRunner runs a unit of work in a retried serializable transaction.
type TxRunner interface {
	Run(ctx context.Context, op string, fn database.TxFunc) error
}

// ReservationGeneric represents an implementation of Reservation interface containing core logics
// which can be wrapped in other implementations contained in reservation_*.go.
type ReservationGeneric struct {
	Coordinator TxRunner
	DB          database.Querier // for reads outside of transactions

	Items        database.ItemRepository
	Reservations database.ReservationRepository
	Attempts     database.AttemptRepository

	Bans          *BanValidator
	Overlap       *OverlapChecker
	Contributions *ContributionAllocator

	CancelLeadTime time.Duration
	Metrics        *metrics.Metrics
	Now            func() time.Time
}

func (rg *ReservationGeneric) Create(ctx context.Context, memberID int64, lines []model.ReservationLine) (id int64, err error) {
	if memberID <= 0 {
		return 0, model.ErrUnauthenticated
	}

	if err := validateLines(lines); err != nil {
		return 0, err
	}

	defer func() {
		if kind, ok := rejectionKind(err); ok {
			rg.Metrics.Rejection(kind)
		}

		if !shouldSaveAttempt(err) {
			return
		}

		a := model.ReservationAttempt{
			Base:          model.Base{CreatedAt: rg.now()},
			RequestID:     uuid.NewString(),
			MemberID:      memberID,
			ReservationID: id,
			Lines:         len(lines),
		}
		if err != nil {
			a.Error = err.Error()
		}

		if err := rg.Attempts.Add(ctx, a); err != nil {
			slog.Error("can't save reservation attempt", slog.Any("error", err))
		}
	}()

	err = rg.Coordinator.Run(ctx, "reservation.create", func(q database.Querier) error {
		rid, err := rg.Reservations.Create(ctx, q, memberID, rg.now())
		if err != nil {
			return err
		}

		for _, l := range lines {
			if err := rg.reserveLine(ctx, q, memberID, rid, l); err != nil {
				return err
			}
		}

		id = rid
		return nil
	})
	if err != nil {
		id = 0
		return 0, err
	}

	return id, nil
}

func (rg *ReservationGeneric) reserveLine(ctx context.Context, q database.Querier, memberID, reservationID int64, l model.ReservationLine) error {
	item, err := rg.Items.Get(ctx, q, l.ItemID)
	if err != nil {
		return err
	}

	banned, name, err := rg.Bans.IsBanned(ctx, q, memberID, item.CategoryID)
	if err != nil {
		return err
	}
	if banned {
		return model.Banned(name)
	}

	ok, err := rg.Overlap.IsAvailable(ctx, q, l.ItemID, l.PickupPlaceID, l.StartAt, l.DueAt)
	if err != nil {
		return err
	}
	if !ok {
		return model.Unavailable(l.ItemID)
	}

	if _, err := rg.Contributions.EnsureActiveOnReserve(ctx, q, memberID, item.CategoryID); err != nil {
		return err
	}

	d := model.ReservationDetail{
		ReservationID: reservationID,
		ItemID:        l.ItemID,
		PickupPlaceID: l.PickupPlaceID,
		StartAt:       l.StartAt,
		DueAt:         l.DueAt,
	}

	return rg.Reservations.AddDetail(ctx, q, &d)
}

func (rg *ReservationGeneric) Cancel(ctx context.Context, memberID, reservationID int64) error {
	if memberID <= 0 {
		return model.ErrUnauthenticated
	}

	return rg.Coordinator.Run(ctx, "reservation.cancel", func(q database.Querier) error {
		r, err := rg.Reservations.Get(ctx, q, reservationID)
		if err != nil {
			return err
		}

		// someone else's reservation is reported the same way as a missing one
		if r.MemberID != memberID || r.IsDeleted {
			return fmt.Errorf("reservation %d: %w", reservationID, database.ErrNotFound)
		}

		lead := rg.CancelLeadTime
		if lead <= 0 {
			lead = model.DefaultCancelLeadTime
		}

		now := rg.now()
		for _, d := range r.Details {
			if !d.IsDeleted && d.StartAt.Sub(now) < lead {
				return &model.RejectionError{Kind: model.ErrCancelWindow, ItemID: d.ItemID}
			}
		}

		if err := rg.Reservations.Delete(ctx, q, reservationID); err != nil {
			return err
		}

		released := make(map[int64]struct{})
		for _, d := range r.Details {
			if d.IsDeleted {
				continue
			}

			item, err := rg.Items.Get(ctx, q, d.ItemID)
			if err != nil {
				return err
			}

			if _, ok := released[item.CategoryID]; ok {
				continue
			}
			released[item.CategoryID] = struct{}{}

			if _, err := rg.Contributions.ReleaseOnCancelOrDeactivate(ctx, q, memberID, item.CategoryID); err != nil {
				return err
			}
		}

		return nil
	})
}

func (rg *ReservationGeneric) AvailablePickupPlaces(ctx context.Context, itemID int64) ([]model.PickupPlace, error) {
	if _, err := rg.Items.Get(ctx, rg.DB, itemID); err != nil {
		return nil, err
	}

	return rg.Items.PickupPlaces(ctx, rg.DB, itemID)
}

func (rg *ReservationGeneric) now() time.Time {
	if rg.Now != nil {
		return rg.Now()
	}
	return time.Now()
}

func validateLines(lines []model.ReservationLine) error {
	if len(lines) == 0 {
		return model.Validation("at least one reservation line is required")
	}

	if len(lines) > model.MaxReservationLines {
		return model.Validation("no more than %d lines per reservation", model.MaxReservationLines)
	}

	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func shouldSaveAttempt(err error) bool {
	var rej *model.RejectionError
	return err == nil || errors.As(err, &rej) || errors.Is(err, model.ErrSystemBusy)
}

// rejectionKind labels business rejections and exhausted retries.
// Other errors are not rejections.
func rejectionKind(err error) (string, bool) {
	var rej *model.RejectionError
	switch {
	case errors.As(err, &rej):
		switch rej.Kind {
		case model.ErrBanned:
			return "banned", true
		case model.ErrQuotaNotActive:
			return "quota_not_active", true
		case model.ErrCancelWindow:
			return "cancel_window", true
		default:
			return "unavailable", true
		}
	case errors.Is(err, model.ErrSystemBusy):
		return "system_busy", true
	default:
		return "", false
	}
}
