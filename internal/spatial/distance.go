package spatial

import "github.com/golang/geo/s2"

// EarthRadiusMeters is the mean Earth radius used for distance conversion.
const EarthRadiusMeters = 6371000.0

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// EstimatedTravelMinutes converts a road distance into an ambulance travel
// estimate assuming a 50 km/h average urban speed.
func EstimatedTravelMinutes(distanceMeters float64) int {
	const avgSpeedKmh = 50.0
	minutes := distanceMeters / 1000.0 / avgSpeedKmh * 60.0
	if minutes < 1 {
		return 1
	}
	return int(minutes + 0.5)
}
