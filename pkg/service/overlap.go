package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type OverlapChecker struct {
	Items        database.ItemRepository
	Reservations database.ReservationRepository
}

// IsAvailable reports whether the item can be booked at the pickup place for [start, due).
// Unmet conditions yield false, errors are only returned for storage failures.
func (oc *OverlapChecker) IsAvailable(ctx context.Context, q database.Querier, itemID, pickupPlaceID int64, start, due time.Time) (bool, error) {
	item, err := oc.Items.Get(ctx, q, itemID)
	if err != nil {
		return false, err
	}

	log := slog.With(slog.Int64("item_id", itemID))

	if !item.Status.Verified() {
		log.Debug("item is not reservable", slog.String("status", string(item.Status)))
		return false, nil
	}

	if due.Sub(start) > item.OutDuration {
		log.Debug("requested duration exceeds item's limit", slog.Duration("limit", item.OutDuration))
		return false, nil
	}

	places, err := oc.Items.PickupPlaces(ctx, q, itemID)
	if err != nil {
		return false, err
	}

	if !slices.ContainsFunc(places, func(p model.PickupPlace) bool { return p.ID == pickupPlaceID }) {
		log.Debug("pickup place is not offered for item", slog.Int64("pickup_place_id", pickupPlaceID))
		return false, nil
	}

	details, err := oc.Reservations.ItemDetails(ctx, q, itemID, start, due)
	if err != nil {
		return false, fmt.Errorf("can't get item's reservations: %w", err)
	}

	for _, d := range details {
		if model.Overlaps(start, due, d.StartAt, d.DueAt) {
			log.Debug("window overlaps existing reservation", slog.Int64("reservation_id", d.ReservationID))
			return false, nil
		}
	}

	return true, nil
}
