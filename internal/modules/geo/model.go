// README: Geo index result types.
package geo

import "homecall/internal/types"

// Candidate is a provider returned by a radius query, with its spherical
// distance from the queried origin.
type Candidate struct {
	ProviderID     types.ID
	DistanceMeters float64
}
