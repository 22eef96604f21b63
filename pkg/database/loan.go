package database

import (
	"context"
	"fmt"
	"time"
)

type LoanRepository interface {
	// CreateForUpcoming creates a loan for every live reservation detail starting
	// no later than until which has none yet. It returns the number of loans created.
	CreateForUpcoming(ctx context.Context, q Querier, until time.Time) (int, error)
}

type LoanDatabase struct{}

func (LoanDatabase) CreateForUpcoming(ctx context.Context, q Querier, until time.Time) (int, error) {
	query := `
		insert into loans (reservation_detail_id)
		select rd.id
		from reservation_details rd
		join reservations r on r.id = rd.reservation_id
		left join loans l on l.reservation_detail_id = rd.id
		where not r.is_deleted
		  and not rd.is_deleted
		  and l.id is null
		  and rd.est_start_at <= $1
	`

	res, err := q.ExecContext(ctx, query, until)
	if err != nil {
		return 0, fmt.Errorf("can't create loans: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("can't get affected rows: %w", err)
	}

	return int(affected), nil
}
