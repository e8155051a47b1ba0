package trip

import "github.com/golang/geo/s2"

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two coordinates
// in metres.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PathDistanceMeters sums the great-circle distance over consecutive points
// of a recorded path.
func PathDistanceMeters(path []PathPoint) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += DistanceMeters(
			path[i-1].Latitude, path[i-1].Longitude,
			path[i].Latitude, path[i].Longitude,
		)
	}
	return total
}
