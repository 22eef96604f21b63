package service

import (
	"context"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

// Item holds the item workflows that change contribution activation.
type Item interface {
	ChangeCategory(ctx context.Context, memberID, itemID, categoryID int64) error
	Delist(ctx context.Context, memberID, itemID int64) error
	Verify(ctx context.Context, itemID int64) error
}

type ItemGeneric struct {
	Coordinator   TxRunner
	Items         database.ItemRepository
	Contributions *ContributionAllocator
}

func (ig *ItemGeneric) ChangeCategory(ctx context.Context, memberID, itemID, categoryID int64) error {
	return ig.Coordinator.Run(ctx, "item.change_category", func(q database.Querier) error {
		item, err := ig.ownedItem(ctx, q, memberID, itemID)
		if err != nil {
			return err
		}

		if item.CategoryID == categoryID {
			return nil
		}

		if err := ig.Contributions.MoveCategory(ctx, q, memberID, itemID, categoryID); err != nil {
			return err
		}

		return ig.Items.SetCategory(ctx, q, itemID, categoryID)
	})
}

func (ig *ItemGeneric) Delist(ctx context.Context, memberID, itemID int64) error {
	return ig.Coordinator.Run(ctx, "item.delist", func(q database.Querier) error {
		item, err := ig.ownedItem(ctx, q, memberID, itemID)
		if err != nil {
			return err
		}

		switch item.Status {
		case model.ItemNotReservable:
			return nil
		case model.ItemNotVerified:
			return model.Validation("item %d is waiting for verification", itemID)
		}

		if err := ig.Items.SetStatus(ctx, q, itemID, model.ItemNotReservable); err != nil {
			return err
		}

		return ig.Contributions.Withdraw(ctx, q, memberID, itemID)
	})
}

// Verify is the moderation event which makes the item reservable
// and its contribution the active one in its tree.
func (ig *ItemGeneric) Verify(ctx context.Context, itemID int64) error {
	return ig.Coordinator.Run(ctx, "item.verify", func(q database.Querier) error {
		item, err := ig.Items.Get(ctx, q, itemID)
		if err != nil {
			return err
		}

		if item.Status == model.ItemBorrowed {
			return model.Unavailable(itemID)
		}

		if item.Status != model.ItemReservable {
			if err := ig.Items.SetStatus(ctx, q, itemID, model.ItemReservable); err != nil {
				return err
			}
		}

		return ig.Contributions.ActivateOnVerify(ctx, q, item.OwnerID, itemID)
	})
}

// ownedItem loads the item for its owner. Borrowed items can't be changed.
func (ig *ItemGeneric) ownedItem(ctx context.Context, q database.Querier, memberID, itemID int64) (model.Item, error) {
	item, err := ig.Items.Get(ctx, q, itemID)
	if err != nil {
		return model.Item{}, err
	}

	if item.OwnerID != memberID {
		return model.Item{}, model.ErrForbidden
	}

	if item.Status == model.ItemBorrowed {
		return model.Item{}, model.Unavailable(itemID)
	}

	return item, nil
}
