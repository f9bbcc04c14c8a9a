// README: Common identifier and geographic value types shared across modules.
package types

// ID is an opaque entity identifier. Users, providers, orders and history
// rows are all addressed by IDs minted at creation time.
type ID string

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}
