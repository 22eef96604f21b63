package model

import (
	"time"
)

const (
	DefaultCancelLeadTime = 24 * time.Hour
	MaxReservationLines   = 20
)

type Reservation struct {
	Base
	MemberID  int64               `json:"member_id"`
	IsDeleted bool                `json:"is_deleted"`
	Details   []ReservationDetail `json:"details"`
}

type ReservationDetail struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	ItemID        int64     `json:"item_id"`
	PickupPlaceID int64     `json:"pickup_place_id"`
	StartAt       time.Time `json:"est_start_at"`
	DueAt         time.Time `json:"est_due_at"`
	IsDeleted     bool      `json:"is_deleted"`
}

// ReservationLine is a single requested line of a reservation.
type ReservationLine struct {
	ItemID        int64     `json:"item_id"`
	PickupPlaceID int64     `json:"pickup_place_id"`
	StartAt       time.Time `json:"est_start_at"`
	DueAt         time.Time `json:"est_due_at"`
}

func (l ReservationLine) Validate() error {
	switch {
	case l.ItemID <= 0:
		return Validation("item_id is required")
	case l.PickupPlaceID <= 0:
		return Validation("pickup_place_id is required for item %d", l.ItemID)
	case l.StartAt.IsZero() || l.DueAt.IsZero():
		return Validation("est_start_at and est_due_at are required for item %d", l.ItemID)
	case !l.DueAt.After(l.StartAt):
		return Validation("est_due_at must be after est_start_at for item %d", l.ItemID)
	}

	return nil
}

// Overlaps reports whether half-open intervals [s1, d1) and [s2, d2) intersect.
// Touching intervals (d1 == s2) don't overlap.
func Overlaps(s1, d1, s2, d2 time.Time) bool {
	return s1.Before(d2) && d1.After(s2)
}

// ReservationAttempt is a record of a single create attempt, successful or not.
type ReservationAttempt struct {
	Base
	RequestID     string
	MemberID      int64
	ReservationID int64
	Lines         int
	Error         string
}

type Loan struct {
	ID                  int64 `json:"id"`
	ReservationDetailID int64 `json:"reservation_detail_id"`
}
