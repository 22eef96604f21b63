package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("operation is not allowed for this member")
	ErrValidation      = errors.New("invalid request")
	ErrUnavailable     = errors.New("item is unavailable during selected time")
	ErrBanned          = errors.New("member is banned from category")
	ErrQuotaNotActive  = errors.New("no active contribution in category")
	ErrCancelWindow    = errors.New("reservation can't be cancelled this close to its start")
	ErrLimitExceeded   = errors.New("member exceeded reservations limit")
	ErrSystemBusy      = errors.New("system busy, please try again later")
)

type Base struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// RejectionError is a business rejection detected before commit.
// It unwraps to one of the sentinel kinds above.
type RejectionError struct {
	Kind         error
	ItemID       int64
	CategoryName string
}

func (e *RejectionError) Error() string {
	switch {
	case e.CategoryName != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.CategoryName)
	case e.ItemID != 0:
		return fmt.Sprintf("item %d: %s", e.ItemID, e.Kind)
	default:
		return e.Kind.Error()
	}
}

func (e *RejectionError) Unwrap() error {
	return e.Kind
}

func Unavailable(itemID int64) error {
	return &RejectionError{Kind: ErrUnavailable, ItemID: itemID}
}

func Banned(categoryName string) error {
	return &RejectionError{Kind: ErrBanned, CategoryName: categoryName}
}

func QuotaNotActive(rootName string) error {
	return &RejectionError{Kind: ErrQuotaNotActive, CategoryName: rootName}
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
