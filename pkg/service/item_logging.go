package service

import (
	"context"
	"log/slog"
	"time"
)

type ItemLogging struct {
	Item
}

func (il *ItemLogging) ChangeCategory(ctx context.Context, memberID, itemID, categoryID int64) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int64("member_id", memberID),
			slog.Int64("item_id", itemID),
			slog.Int64("category_id", categoryID),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to change item's category", slog.Any("error", err))
		} else {
			log.Debug("item's category changed")
		}
	}(time.Now())

	return il.Item.ChangeCategory(ctx, memberID, itemID, categoryID)
}

func (il *ItemLogging) Delist(ctx context.Context, memberID, itemID int64) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int64("member_id", memberID),
			slog.Int64("item_id", itemID),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to delist item", slog.Any("error", err))
		} else {
			log.Debug("item delisted")
		}
	}(time.Now())

	return il.Item.Delist(ctx, memberID, itemID)
}

func (il *ItemLogging) Verify(ctx context.Context, itemID int64) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int64("item_id", itemID),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to verify item", slog.Any("error", err))
		} else {
			log.Info("item verified")
		}
	}(time.Now())

	return il.Item.Verify(ctx, itemID)
}
