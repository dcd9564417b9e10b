package geo

import (
	"math"

	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance between two points using the
// Haversine formula.
func DistanceKm(a, b types.Location) float64 {
	lat1 := degToRad(a.Latitude)
	lat2 := degToRad(b.Latitude)
	deltaLat := degToRad(b.Latitude - a.Latitude)
	deltaLon := degToRad(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
