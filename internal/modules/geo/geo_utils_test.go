package geo

import (
	"math"
	"testing"

	"homecall/internal/types"
)

func TestDistanceMeters_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      types.Point
		wantM     float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         types.Point{Lat: 12.9716, Lng: 77.5946},
			b:         types.Point{Lat: 12.9716, Lng: 77.5946},
			wantM:     0,
			tolerance: 1,
		},
		{
			name:      "Bangalore MG Road to Koramangala (~5km)",
			a:         types.Point{Lat: 12.9758, Lng: 77.6045},
			b:         types.Point{Lat: 12.9352, Lng: 77.6245},
			wantM:     5000,
			tolerance: 800,
		},
		{
			name:      "Delhi to Mumbai (~1150km)",
			a:         types.Point{Lat: 28.6139, Lng: 77.2090},
			b:         types.Point{Lat: 19.0760, Lng: 72.8777},
			wantM:     1150000,
			tolerance: 20000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.a, tt.b)
			if math.Abs(got-tt.wantM) > tt.tolerance {
				t.Errorf("DistanceMeters() = %f, want %f (±%f)", got, tt.wantM, tt.tolerance)
			}
		})
	}
}

func TestDistanceMeters_Symmetry(t *testing.T) {
	a := types.Point{Lat: 12.0, Lng: 77.0}
	b := types.Point{Lat: 13.0, Lng: 78.0}
	d1 := DistanceMeters(a, b)
	d2 := DistanceMeters(b, a)
	if math.Abs(d1-d2) > 0.001 {
		t.Errorf("distance is not symmetric: %f vs %f", d1, d2)
	}
}
