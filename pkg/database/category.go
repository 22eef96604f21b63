package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type CategoryRepository interface {
	Get(ctx context.Context, q Querier, id int64) (model.Category, error)
	// Children returns ids of the direct children of any of parentIDs.
	Children(ctx context.Context, q Querier, parentIDs []int64) ([]int64, error)
}

type CategoryDatabase struct{}

func (CategoryDatabase) Get(ctx context.Context, q Querier, id int64) (model.Category, error) {
	query := `
		select id, name, parent_id
		from categories
		where id = $1
	`

	var (
		c      model.Category
		parent sql.NullInt64
	)
	if err := q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &parent); err != nil {
		return model.Category{}, fmt.Errorf("can't get category %d: %w", id, mapError(err))
	}

	if parent.Valid {
		c.ParentID = &parent.Int64
	}

	return c, nil
}

func (CategoryDatabase) Children(ctx context.Context, q Querier, parentIDs []int64) ([]int64, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	query := `
		select id
		from categories
		where parent_id = any($1)
		order by id
	`

	rows, err := q.QueryContext(ctx, query, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("can't query child categories: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("can't scan id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over ids: %w", err)
	}

	return ids, nil
}
