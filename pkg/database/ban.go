package database

import (
	"context"
	"fmt"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type BanRepository interface {
	// Active returns non-deleted bans of the member on any of categoryIDs.
	Active(ctx context.Context, q Querier, memberID int64, categoryIDs []int64) ([]model.CategoryBan, error)
}

type BanDatabase struct{}

func (BanDatabase) Active(ctx context.Context, q Querier, memberID int64, categoryIDs []int64) ([]model.CategoryBan, error) {
	query := `
		select b.member_id, b.category_id, c.name
		from category_bans b
		join categories c on c.id = b.category_id
		where b.member_id = $1
		  and b.category_id = any($2)
		  and not b.is_deleted
	`

	rows, err := q.QueryContext(ctx, query, memberID, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("can't query bans: %w", err)
	}
	defer rows.Close()

	var bans []model.CategoryBan
	for rows.Next() {
		var b model.CategoryBan
		if err := rows.Scan(&b.MemberID, &b.CategoryID, &b.CategoryName); err != nil {
			return nil, fmt.Errorf("can't scan ban: %w", err)
		}

		bans = append(bans, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over bans: %w", err)
	}

	return bans, nil
}
