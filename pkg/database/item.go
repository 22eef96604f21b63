package database

import (
	"context"
	"fmt"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type ItemRepository interface {
	Get(ctx context.Context, q Querier, id int64) (model.Item, error)
	// PickupPlaces returns the places currently offered for the item.
	PickupPlaces(ctx context.Context, q Querier, itemID int64) ([]model.PickupPlace, error)
	SetStatus(ctx context.Context, q Querier, itemID int64, status model.ItemStatus) error
	SetCategory(ctx context.Context, q Querier, itemID, categoryID int64) error
}

type ItemDatabase struct{}

func (ItemDatabase) Get(ctx context.Context, q Querier, id int64) (model.Item, error) {
	query := `
		select id, name, status, owner_id, category_id, out_duration
		from items
		where id = $1
	`

	var (
		item model.Item
		days int
	)
	err := q.QueryRowContext(ctx, query, id).
		Scan(&item.ID, &item.Name, &item.Status, &item.OwnerID, &item.CategoryID, &days)
	if err != nil {
		return model.Item{}, fmt.Errorf("can't get item %d: %w", id, mapError(err))
	}

	item.OutDuration = time.Duration(days) * 24 * time.Hour
	return item, nil
}

func (ItemDatabase) PickupPlaces(ctx context.Context, q Querier, itemID int64) ([]model.PickupPlace, error) {
	query := `
		select p.id, p.name
		from item_pickup_places ipp
		join pickup_places p on p.id = ipp.pickup_place_id
		where ipp.item_id = $1
		  and not ipp.is_deleted
		  and not p.is_deleted
		order by p.id
	`

	rows, err := q.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("can't query pickup places: %w", err)
	}
	defer rows.Close()

	places := make([]model.PickupPlace, 0)
	for rows.Next() {
		var p model.PickupPlace
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("can't scan pickup place: %w", err)
		}

		places = append(places, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over pickup places: %w", err)
	}

	return places, nil
}

func (ItemDatabase) SetStatus(ctx context.Context, q Querier, itemID int64, status model.ItemStatus) error {
	res, err := q.ExecContext(ctx, `update items set status = $1 where id = $2`, status, itemID)
	if err != nil {
		return fmt.Errorf("can't update item's status: %w", err)
	}

	return expectAffected(res, 1)
}

func (ItemDatabase) SetCategory(ctx context.Context, q Querier, itemID, categoryID int64) error {
	res, err := q.ExecContext(ctx, `update items set category_id = $1 where id = $2`, categoryID, itemID)
	if err != nil {
		return fmt.Errorf("can't update item's category: %w", err)
	}

	return expectAffected(res, 1)
}
