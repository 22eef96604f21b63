package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yhk1105/114-1-DBFinal/pkg/cache"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

const pickupPlacesKeyPrefix = "pickup_places:"

// PickupCaching caches AvailablePickupPlaces results in redis.
// Redis errors are logged and the call falls through to the wrapped service.
type PickupCaching struct {
	Reservation

	Redis redis.Cmdable
	TTL   time.Duration
}

func (pc *PickupCaching) AvailablePickupPlaces(ctx context.Context, itemID int64) ([]model.PickupPlace, error) {
	key := pickupPlacesCacheKey(itemID)

	places, ok, err := cache.GetJSON[[]model.PickupPlace](ctx, pc.Redis, key)
	switch {
	case err != nil:
		slog.Error("can't get pickup places from redis", slog.Any("error", err))
	case ok:
		return places, nil
	}

	places, err = pc.Reservation.AvailablePickupPlaces(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, pc.Redis, key, places, pc.TTL); err != nil {
		slog.Error("can't set pickup places in redis", slog.Any("error", err))
	}

	return places, nil
}

func pickupPlacesCacheKey(itemID int64) string {
	return pickupPlacesKeyPrefix + strconv.FormatInt(itemID, 10)
}
