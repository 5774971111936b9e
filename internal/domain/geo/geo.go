// Package geo provides pure distance and bearing math over WGS84 coordinates.
package geo

import "math"

// EarthRadiusKM is the mean radius of Earth used for Haversine distance.
const EarthRadiusKM = 6371.0

// Haversine returns the great-circle distance in kilometers between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// Bearing returns the initial bearing in degrees [0, 360) from the first point
// to the second.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2r)
	x := math.Cos(lat1r)*math.Sin(lat2r) -
		math.Sin(lat1r)*math.Cos(lat2r)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// BoundingBox returns the min/max latitude and longitude enclosing a circle of
// radiusKM around the center. Longitude bounds are clamped to the full range
// near the poles where the circle wraps.
func BoundingBox(lat, lon, radiusKM float64) (minLat, maxLat, minLon, maxLon float64) {
	dLat := radiusKM / EarthRadiusKM * 180 / math.Pi

	minLat = lat - dLat
	maxLat = lat + dLat

	if minLat <= -90 || maxLat >= 90 {
		minLat = math.Max(minLat, -90)
		maxLat = math.Min(maxLat, 90)
		return minLat, maxLat, -180, 180
	}

	dLon := dLat / math.Cos(lat*math.Pi/180)
	minLon = lon - dLon
	maxLon = lon + dLon
	return minLat, maxLat, minLon, maxLon
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 &&
		!math.IsNaN(lat) && !math.IsNaN(lon)
}
