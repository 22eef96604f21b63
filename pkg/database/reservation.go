package database

import (
	"context"
	"fmt"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type ReservationRepository interface {
	Create(ctx context.Context, q Querier, memberID int64, createdAt time.Time) (int64, error)
	// AddDetail inserts the detail and sets its ID.
	AddDetail(ctx context.Context, q Querier, d *model.ReservationDetail) error
	// ItemDetails returns live details of the item whose window intersects [from, to).
	ItemDetails(ctx context.Context, q Querier, itemID int64, from, to time.Time) ([]model.ReservationDetail, error)
	Get(ctx context.Context, q Querier, id int64) (model.Reservation, error)
	// Delete soft-deletes the reservation together with all its details.
	Delete(ctx context.Context, q Querier, id int64) error
}

type ReservationDatabase struct{}

func (ReservationDatabase) Create(ctx context.Context, q Querier, memberID int64, createdAt time.Time) (int64, error) {
	query := `
		insert into reservations (member_id, created_at)
		values ($1, $2)
		returning id
	`

	var id int64
	if err := q.QueryRowContext(ctx, query, memberID, createdAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("can't insert reservation: %w", err)
	}

	return id, nil
}

func (ReservationDatabase) AddDetail(ctx context.Context, q Querier, d *model.ReservationDetail) error {
	query := `
		insert into reservation_details (reservation_id, item_id, pickup_place_id, est_start_at, est_due_at)
		values ($1, $2, $3, $4, $5)
		returning id
	`

	err := q.QueryRowContext(ctx, query, d.ReservationID, d.ItemID, d.PickupPlaceID, d.StartAt, d.DueAt).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("can't insert reservation detail: %w", err)
	}

	return nil
}

func (ReservationDatabase) ItemDetails(ctx context.Context, q Querier, itemID int64, from, to time.Time) ([]model.ReservationDetail, error) {
	query := `
		select rd.id, rd.reservation_id, rd.item_id, rd.pickup_place_id, rd.est_start_at, rd.est_due_at
		from reservation_details rd
		join reservations r on r.id = rd.reservation_id
		where rd.item_id = $1
		  and not rd.is_deleted
		  and not r.is_deleted
		  and rd.est_start_at < $3
		  and rd.est_due_at > $2
		order by rd.est_start_at
	`

	rows, err := q.QueryContext(ctx, query, itemID, from, to)
	if err != nil {
		return nil, fmt.Errorf("can't query reservation details: %w", err)
	}
	defer rows.Close()

	var ds []model.ReservationDetail
	for rows.Next() {
		var d model.ReservationDetail
		if err := rows.Scan(&d.ID, &d.ReservationID, &d.ItemID, &d.PickupPlaceID, &d.StartAt, &d.DueAt); err != nil {
			return nil, fmt.Errorf("can't scan reservation detail: %w", err)
		}

		ds = append(ds, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over reservation details: %w", err)
	}

	return ds, nil
}

func (ReservationDatabase) Get(ctx context.Context, q Querier, id int64) (model.Reservation, error) {
	query := `
		select id, member_id, is_deleted, created_at
		from reservations
		where id = $1
	`

	var r model.Reservation
	if err := q.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.MemberID, &r.IsDeleted, &r.CreatedAt); err != nil {
		return model.Reservation{}, fmt.Errorf("can't get reservation %d: %w", id, mapError(err))
	}

	query = `
		select id, reservation_id, item_id, pickup_place_id, est_start_at, est_due_at, is_deleted
		from reservation_details
		where reservation_id = $1
		order by id
	`

	rows, err := q.QueryContext(ctx, query, id)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("can't query reservation details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d model.ReservationDetail
		if err := rows.Scan(&d.ID, &d.ReservationID, &d.ItemID, &d.PickupPlaceID, &d.StartAt, &d.DueAt, &d.IsDeleted); err != nil {
			return model.Reservation{}, fmt.Errorf("can't scan reservation detail: %w", err)
		}

		r.Details = append(r.Details, d)
	}

	if err := rows.Err(); err != nil {
		return model.Reservation{}, fmt.Errorf("error iterating over reservation details: %w", err)
	}

	return r, nil
}

func (ReservationDatabase) Delete(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `update reservations set is_deleted = true where id = $1 and not is_deleted`, id)
	if err != nil {
		return fmt.Errorf("can't delete reservation: %w", err)
	}

	if err := expectAffected(res, 1); err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `update reservation_details set is_deleted = true where reservation_id = $1`, id)
	if err != nil {
		return fmt.Errorf("can't delete reservation details: %w", err)
	}

	return nil
}
