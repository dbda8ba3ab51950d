package domain

import "math"

// Proximity limits for nearby queries.
const (
	NearbyMaxDistanceMeters = 10000
	NearbyLimit             = 10
)

// ValidateCoordinates rejects non-finite or out-of-range longitude/latitude pairs.
func ValidateCoordinates(lng, lat float64) error {
	if math.IsNaN(lng) || math.IsInf(lng, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return NewInvalidCoordinatesError("coordinates must be finite numbers")
	}
	if lng < -180 || lng > 180 {
		return NewInvalidCoordinatesError("longitude must be between -180 and 180")
	}
	if lat < -90 || lat > 90 {
		return NewInvalidCoordinatesError("latitude must be between -90 and 90")
	}
	return nil
}
