// README: Dispatch bookkeeping in Redis: per-order notified-provider sets and
// the offer-closed flag.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"homecall/internal/types"
)

const (
	notifiedKeyPrefix = "dispatch:order:%s:notified"
	closedKeyPrefix   = "dispatch:order:%s:closed"
	// TTL for dispatch keys (orders resolve well within 7 days).
	keyTTL = 7 * 24 * time.Hour
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// RecordDispatch remembers which providers were offered the order. The set
// drives the "order taken" fan-out and the stale-accept rejection.
func (s *Store) RecordDispatch(ctx context.Context, orderID types.ID, providerIDs []types.ID) error {
	if len(providerIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(providerIDs))
	for i, p := range providerIDs {
		members[i] = string(p)
	}
	pipe := s.redis.Pipeline()
	key := notifiedKey(orderID)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, keyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) NotifiedProviders(ctx context.Context, orderID types.ID) ([]types.ID, error) {
	members, err := s.redis.SMembers(ctx, notifiedKey(orderID)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(members))
	for i, m := range members {
		ids[i] = types.ID(m)
	}
	return ids, nil
}

// Close marks the order's offer window shut; later accepts are rejected.
func (s *Store) Close(ctx context.Context, orderID types.ID) error {
	return s.redis.Set(ctx, closedKey(orderID), "1", keyTTL).Err()
}

func (s *Store) IsClosed(ctx context.Context, orderID types.ID) (bool, error) {
	val, err := s.redis.Get(ctx, closedKey(orderID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "1", nil
}

func notifiedKey(orderID types.ID) string {
	return fmt.Sprintf(notifiedKeyPrefix, string(orderID))
}

func closedKey(orderID types.ID) string {
	return fmt.Sprintf(closedKeyPrefix, string(orderID))
}
