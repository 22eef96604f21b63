package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

// ContributionAllocator keeps at most one active contribution per member per category tree.
// It is the only writer of contribution activation.
type ContributionAllocator struct {
	Tree          *CategoryTree
	Contributions database.ContributionRepository
}

// EnsureActiveOnReserve returns the item id of member's active contribution in the tree of categoryID.
// Inactive contributions are never activated here.
func (a *ContributionAllocator) EnsureActiveOnReserve(ctx context.Context, q database.Querier, memberID, categoryID int64) (int64, error) {
	root, family, err := a.Tree.FamilyOf(ctx, q, categoryID)
	if err != nil {
		return 0, err
	}

	cs, err := a.Contributions.ForMember(ctx, q, memberID, family)
	if err != nil {
		return 0, err
	}

	for _, c := range cs {
		if !c.IsActive {
			continue
		}

		if err := a.Contributions.SetActive(ctx, q, memberID, c.ItemID, true); err != nil {
			return 0, err
		}

		return c.ItemID, nil
	}

	return 0, model.QuotaNotActive(root.Name)
}

// ReleaseOnCancelOrDeactivate activates the verified inactive contribution with the lowest item id
// when the member has no active one left in the tree of categoryID.
// It returns the reactivated item id, or zero if nothing changed.
func (a *ContributionAllocator) ReleaseOnCancelOrDeactivate(ctx context.Context, q database.Querier, memberID, categoryID int64) (int64, error) {
	_, family, err := a.Tree.FamilyOf(ctx, q, categoryID)
	if err != nil {
		return 0, err
	}

	cs, err := a.Contributions.ForMember(ctx, q, memberID, family)
	if err != nil {
		return 0, err
	}

	if activeIn(cs, 0) {
		return 0, nil
	}

	next, ok := successor(cs, 0)
	if !ok {
		return 0, nil
	}

	if err := a.Contributions.SetActive(ctx, q, memberID, next, true); err != nil {
		return 0, err
	}

	return next, nil
}

// ActivateOnVerify makes the contribution of a freshly verified item the active one in its tree.
func (a *ContributionAllocator) ActivateOnVerify(ctx context.Context, q database.Querier, memberID, itemID int64) error {
	c, err := a.Contributions.Get(ctx, q, memberID, itemID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err
	}

	_, family, err := a.Tree.FamilyOf(ctx, q, c.ItemCategoryID)
	if err != nil {
		return err
	}

	cs, err := a.Contributions.ForMember(ctx, q, memberID, family)
	if err != nil {
		return err
	}

	for _, other := range cs {
		if other.IsActive && other.ItemID != itemID {
			if err := a.Contributions.SetActive(ctx, q, memberID, other.ItemID, false); err != nil {
				return err
			}
		}
	}

	return a.Contributions.SetActive(ctx, q, memberID, itemID, true)
}

// Withdraw deactivates the item's contribution and hands activation over
// to another verified contribution in the same tree, if any.
// The item must already be out of circulation.
func (a *ContributionAllocator) Withdraw(ctx context.Context, q database.Querier, memberID, itemID int64) error {
	c, err := a.Contributions.Get(ctx, q, memberID, itemID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err
	}

	if !c.IsActive {
		return nil
	}

	if err := a.Contributions.SetActive(ctx, q, memberID, itemID, false); err != nil {
		return err
	}

	_, err = a.ReleaseOnCancelOrDeactivate(ctx, q, memberID, c.ItemCategoryID)
	return err
}

// MoveCategory re-allocates activation before the item moves to newCategoryID.
// An active contribution leaving its tree must be replaced there by another verified one,
// otherwise the move is rejected. In the new tree the item becomes active only if no other
// contribution is.
func (a *ContributionAllocator) MoveCategory(ctx context.Context, q database.Querier, memberID, itemID, newCategoryID int64) error {
	c, err := a.Contributions.Get(ctx, q, memberID, itemID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err
	}

	oldRoot, oldFamily, err := a.Tree.FamilyOf(ctx, q, c.ItemCategoryID)
	if err != nil {
		return err
	}

	newRoot, newFamily, err := a.Tree.FamilyOf(ctx, q, newCategoryID)
	if err != nil {
		return err
	}

	if oldRoot.ID == newRoot.ID {
		return nil
	}

	if c.IsActive {
		cs, err := a.Contributions.ForMember(ctx, q, memberID, oldFamily)
		if err != nil {
			return err
		}

		next, ok := successor(cs, itemID)
		if !ok {
			return model.QuotaNotActive(oldRoot.Name)
		}

		if err := a.Contributions.SetActive(ctx, q, memberID, itemID, false); err != nil {
			return err
		}

		if err := a.Contributions.SetActive(ctx, q, memberID, next, true); err != nil {
			return err
		}
	}

	if !c.ItemStatus.Verified() {
		return nil
	}

	cs, err := a.Contributions.ForMember(ctx, q, memberID, newFamily)
	if err != nil {
		return err
	}

	if activeIn(cs, itemID) {
		return nil
	}

	if err := a.Contributions.SetActive(ctx, q, memberID, itemID, true); err != nil {
		return fmt.Errorf("can't activate moved contribution: %w", err)
	}

	return nil
}

// activeIn reports whether any contribution except the one of skipItemID is active.
func activeIn(cs []model.Contribution, skipItemID int64) bool {
	for _, c := range cs {
		if c.IsActive && c.ItemID != skipItemID {
			return true
		}
	}
	return false
}

// successor picks the verified inactive contribution with the lowest item id.
func successor(cs []model.Contribution, skipItemID int64) (int64, bool) {
	var (
		next  int64
		found bool
	)

	for _, c := range cs {
		if c.IsActive || c.ItemID == skipItemID || !c.ItemStatus.Verified() {
			continue
		}

		if !found || c.ItemID < next {
			next, found = c.ItemID, true
		}
	}

	return next, found
}
