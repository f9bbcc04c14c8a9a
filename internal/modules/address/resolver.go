// README: Address-to-point resolution, with Google Maps geocoding as fallback.
package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"homecall/internal/types"
)

// Geocoder turns a free-text address into a coordinate pair.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (types.Point, error)
}

// MapsGeocoder is the production Geocoder backed by the Google Maps
// Geocoding API.
type MapsGeocoder struct {
	client *maps.Client
}

func NewMapsGeocoder(apiKey string) (*MapsGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}
	return &MapsGeocoder{client: client}, nil
}

func (g *MapsGeocoder) Geocode(ctx context.Context, query string) (types.Point, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return types.Point{}, fmt.Errorf("geocoding %q: %w", query, err)
	}
	if len(results) == 0 {
		return types.Point{}, errors.New("no geocoding results")
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Resolver looks up a stored address and yields its coordinate point. Most
// addresses carry device-captured coordinates; the geocoder only runs for the
// rest, and may be nil, in which case such addresses are unresolvable.
type Resolver struct {
	store    *Store
	geocoder Geocoder
}

func NewResolver(store *Store, geocoder Geocoder) *Resolver {
	return &Resolver{store: store, geocoder: geocoder}
}

func (r *Resolver) Resolve(ctx context.Context, addressID types.ID) (types.Point, error) {
	a, err := r.store.Get(ctx, addressID)
	if err != nil {
		return types.Point{}, err
	}
	if a.Lat != nil && a.Lng != nil {
		return types.Point{Lat: *a.Lat, Lng: *a.Lng}, nil
	}
	if r.geocoder == nil {
		return types.Point{}, fmt.Errorf("address %s has no coordinates and no geocoder is configured", a.ID)
	}
	query := strings.Join([]string{a.Line1, a.Landmark, a.City, a.State, a.Pincode}, ", ")
	return r.geocoder.Geocode(ctx, query)
}
