package database

import (
	"context"
	"fmt"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type ContributionRepository interface {
	// ForMember returns the member's contributions whose items belong to one of categoryIDs,
	// ordered by item id.
	ForMember(ctx context.Context, q Querier, memberID int64, categoryIDs []int64) ([]model.Contribution, error)
	Get(ctx context.Context, q Querier, memberID, itemID int64) (model.Contribution, error)
	SetActive(ctx context.Context, q Querier, memberID, itemID int64, active bool) error
}

type ContributionDatabase struct{}

func (ContributionDatabase) ForMember(ctx context.Context, q Querier, memberID int64, categoryIDs []int64) ([]model.Contribution, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	query := `
		select c.member_id, c.item_id, c.is_active, i.status, i.category_id
		from contributions c
		join items i on i.id = c.item_id
		where c.member_id = $1
		  and i.category_id = any($2)
		order by c.item_id
	`

	rows, err := q.QueryContext(ctx, query, memberID, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("can't query contributions: %w", err)
	}
	defer rows.Close()

	var cs []model.Contribution
	for rows.Next() {
		var c model.Contribution
		if err := rows.Scan(&c.MemberID, &c.ItemID, &c.IsActive, &c.ItemStatus, &c.ItemCategoryID); err != nil {
			return nil, fmt.Errorf("can't scan contribution: %w", err)
		}

		cs = append(cs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over contributions: %w", err)
	}

	return cs, nil
}

func (ContributionDatabase) Get(ctx context.Context, q Querier, memberID, itemID int64) (model.Contribution, error) {
	query := `
		select c.member_id, c.item_id, c.is_active, i.status, i.category_id
		from contributions c
		join items i on i.id = c.item_id
		where c.member_id = $1 and c.item_id = $2
	`

	var c model.Contribution
	err := q.QueryRowContext(ctx, query, memberID, itemID).
		Scan(&c.MemberID, &c.ItemID, &c.IsActive, &c.ItemStatus, &c.ItemCategoryID)
	if err != nil {
		return model.Contribution{}, fmt.Errorf("can't get contribution: %w", mapError(err))
	}

	return c, nil
}

func (ContributionDatabase) SetActive(ctx context.Context, q Querier, memberID, itemID int64, active bool) error {
	query := `
		update contributions
		set is_active = $1
		where member_id = $2 and item_id = $3
	`

	res, err := q.ExecContext(ctx, query, active, memberID, itemID)
	if err != nil {
		return fmt.Errorf("can't update contribution: %w", err)
	}

	return expectAffected(res, 1)
}
