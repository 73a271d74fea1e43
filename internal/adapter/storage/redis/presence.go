package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineDriversKey = "drivers:online"

// PresenceStore keeps the set of connected drivers in redis, scored by
// last-seen, so dispatch candidacy survives across API instances.
type PresenceStore struct {
	client *redis.Client
}

func NewPresenceStore(client *redis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

func (r *PresenceStore) Track(ctx context.Context, driverID string, at time.Time) error {
	return r.client.ZAdd(ctx, onlineDriversKey, redis.Z{
		Score:  float64(at.Unix()),
		Member: driverID,
	}).Err()
}

func (r *PresenceStore) Remove(ctx context.Context, driverID string) error {
	return r.client.ZRem(ctx, onlineDriversKey, driverID).Err()
}

func (r *PresenceStore) IsOnline(ctx context.Context, driverID string) (bool, error) {
	_, err := r.client.ZScore(ctx, onlineDriversKey, driverID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
