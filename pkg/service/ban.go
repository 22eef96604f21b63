package service

import (
	"context"
	"fmt"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
)

type BanValidator struct {
	Tree *CategoryTree
	Bans database.BanRepository
}

// IsBanned checks bans on the category itself and on its root.
// When both exist, the root ban name is reported.
func (v *BanValidator) IsBanned(ctx context.Context, q database.Querier, memberID, categoryID int64) (bool, string, error) {
	root, err := v.Tree.RootOf(ctx, q, categoryID)
	if err != nil {
		return false, "", fmt.Errorf("can't resolve root of category %d: %w", categoryID, err)
	}

	ids := []int64{categoryID}
	if root.ID != categoryID {
		ids = append(ids, root.ID)
	}

	bans, err := v.Bans.Active(ctx, q, memberID, ids)
	if err != nil {
		return false, "", err
	}

	if len(bans) == 0 {
		return false, "", nil
	}

	name := bans[0].CategoryName
	for _, b := range bans {
		if b.CategoryID == root.ID {
			name = b.CategoryName
			break
		}
	}

	return true, name, nil
}
