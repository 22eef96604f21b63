package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

var ErrCategoryCycle = errors.New("category tree contains a cycle")

// CategoryTree resolves roots and families over the parent-pointer category forest.
type CategoryTree struct {
	Categories database.CategoryRepository
}

// RootOf walks parent pointers up from categoryID and returns the root category.
// A category without a parent is its own root.
func (t *CategoryTree) RootOf(ctx context.Context, q database.Querier, categoryID int64) (model.Category, error) {
	seen := make(map[int64]struct{})

	id := categoryID
	for {
		c, err := t.Categories.Get(ctx, q, id)
		if err != nil {
			return model.Category{}, err
		}

		if c.IsRoot() {
			return c, nil
		}

		seen[c.ID] = struct{}{}
		if _, ok := seen[*c.ParentID]; ok {
			return model.Category{}, fmt.Errorf("%w: reached %d twice from %d", ErrCategoryCycle, *c.ParentID, categoryID)
		}

		id = *c.ParentID
	}
}

// DescendantsOf returns rootID and every category below it, level by level.
func (t *CategoryTree) DescendantsOf(ctx context.Context, q database.Querier, rootID int64) ([]int64, error) {
	seen := map[int64]struct{}{rootID: {}}
	family := []int64{rootID}

	for level := []int64{rootID}; len(level) > 0; {
		children, err := t.Categories.Children(ctx, q, level)
		if err != nil {
			return nil, err
		}

		level = level[:0:0]
		for _, id := range children {
			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
			family = append(family, id)
			level = append(level, id)
		}
	}

	return family, nil
}

// FamilyOf returns the root of categoryID together with all categories of that root's tree.
func (t *CategoryTree) FamilyOf(ctx context.Context, q database.Querier, categoryID int64) (model.Category, []int64, error) {
	root, err := t.RootOf(ctx, q, categoryID)
	if err != nil {
		return model.Category{}, nil, fmt.Errorf("can't resolve root of category %d: %w", categoryID, err)
	}

	family, err := t.DescendantsOf(ctx, q, root.ID)
	if err != nil {
		return model.Category{}, nil, fmt.Errorf("can't resolve descendants of category %d: %w", root.ID, err)
	}

	return root, family, nil
}
