package model

import (
	"time"
)

type ItemStatus string

const (
	ItemNotVerified   ItemStatus = "Not verified"
	ItemReservable    ItemStatus = "Reservable"
	ItemNotReservable ItemStatus = "Not reservable"
	ItemBorrowed      ItemStatus = "Borrowed"
)

// Verified reports whether the item has passed verification at some point,
// i.e. its contribution may count toward the owner's quota.
func (s ItemStatus) Verified() bool {
	return s == ItemReservable || s == ItemBorrowed
}

type Item struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Status      ItemStatus    `json:"status"`
	OwnerID     int64         `json:"owner_id"`
	CategoryID  int64         `json:"category_id"`
	OutDuration time.Duration `json:"out_duration"` // max loan length
}

type PickupPlace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Contribution says that the item counts toward member's quota in its category tree.
type Contribution struct {
	MemberID       int64      `json:"member_id"`
	ItemID         int64      `json:"item_id"`
	IsActive       bool       `json:"is_active"`
	ItemStatus     ItemStatus `json:"item_status"`
	ItemCategoryID int64      `json:"item_category_id"`
}
