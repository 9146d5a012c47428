package utils

import "math"

// EarthRadiusMeters is the mean Earth radius used for geofence distances.
const EarthRadiusMeters = 6371000

// CalculateHaversineDistance returns the great-circle distance in meters between two WGS84 points.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// WithinRadius reports whether distance falls inside a geofence of radius meters. The boundary counts as inside.
func WithinRadius(distance float64, radius int) bool {
	return distance <= float64(radius)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
