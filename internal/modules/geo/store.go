// README: Provider location index backed by Redis GEO.
package geo

import (
	"context"

	"github.com/redis/go-redis/v9"

	"homecall/internal/types"
)

const providerGeoKey = "dispatch:providers"

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// Upsert replaces any previously reported position for the provider.
// Last write wins; no history is retained.
func (s *Store) Upsert(ctx context.Context, providerID types.ID, p types.Point) error {
	return s.redis.GeoAdd(ctx, providerGeoKey, &redis.GeoLocation{
		Name:      string(providerID),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}

func (s *Store) Remove(ctx context.Context, providerID types.ID) error {
	return s.redis.ZRem(ctx, providerGeoKey, string(providerID)).Err()
}

// Nearby returns providers within radiusMeters of the origin, closest first.
func (s *Store) Nearby(ctx context.Context, p types.Point, radiusMeters float64) ([]Candidate, error) {
	results, err := s.redis.GeoSearchLocation(ctx, providerGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusMeters,
			RadiusUnit: "m",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, len(results))
	for i, r := range results {
		out[i] = Candidate{ProviderID: types.ID(r.Name), DistanceMeters: r.Dist}
	}
	return out, nil
}
