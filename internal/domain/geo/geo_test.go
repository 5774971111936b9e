package geo

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Kyiv (Maidan) to Lviv (Rynok Square), ~469 km.
	d := Haversine(50.4501, 30.5234, 49.8419, 24.0316)
	if d < 460 || d > 480 {
		t.Errorf("Kyiv-Lviv distance = %f, want ~469", d)
	}
}

func TestHaversine_ZeroDistance(t *testing.T) {
	if d := Haversine(50.45, 30.52, 50.45, 30.52); d != 0 {
		t.Errorf("same point distance = %f, want 0", d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(50.45, 30.52, 49.84, 24.03)
	b := Haversine(49.84, 24.03, 50.45, 30.52)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestBearing_Cardinal(t *testing.T) {
	tests := []struct {
		name           string
		lat2, lon2     float64
		want, tolerance float64
	}{
		{"north", 51.0, 30.0, 0, 0.1},
		{"east", 50.0, 31.0, 90, 1},
		{"south", 49.0, 30.0, 180, 0.1},
		{"west", 50.0, 29.0, 270, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(50.0, 30.0, tt.lat2, tt.lon2)
			diff := math.Abs(got - tt.want)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > tt.tolerance {
				t.Errorf("Bearing = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	lat, lon, r := 50.4501, 30.5234, 10.0
	minLat, maxLat, minLon, maxLon := BoundingBox(lat, lon, r)

	// Points exactly radius away in each cardinal direction must fall inside.
	for _, p := range []struct{ plat, plon float64 }{
		{lat + r/EarthRadiusKM*180/math.Pi, lon},
		{lat - r/EarthRadiusKM*180/math.Pi, lon},
	} {
		if p.plat < minLat || p.plat > maxLat || p.plon < minLon || p.plon > maxLon {
			t.Errorf("point (%f,%f) outside box [%f..%f, %f..%f]",
				p.plat, p.plon, minLat, maxLat, minLon, maxLon)
		}
	}
}

func TestBoundingBox_PolarClamp(t *testing.T) {
	minLat, maxLat, minLon, maxLon := BoundingBox(89.9, 0, 100)
	if maxLat != 90 {
		t.Errorf("maxLat = %f, want clamped to 90", maxLat)
	}
	if minLon != -180 || maxLon != 180 {
		t.Errorf("longitude not widened at pole: [%f, %f]", minLon, maxLon)
	}
	_ = minLat
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{50.45, 30.52, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{0, 181, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		if got := ValidateCoordinates(tt.lat, tt.lon); got != tt.want {
			t.Errorf("ValidateCoordinates(%f, %f) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}
