package menu

import "math"

const (
	earthRadiusMeters   = 6371000.0
	DefaultNearbyRadius = 5000.0
	metersPerDegreeLat  = 111320.0
)

// DistanceMeters is the great-circle distance between two lng/lat points.
func DistanceMeters(lng1, lat1, lng2, lat2 float64) float64 {
	rLat1, rLat2 := radians(lat1), radians(lat2)
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// latitudeWindow is a cheap pre-filter: no point outside it can be within
// radius meters of lat.
func latitudeWindow(lat, radius float64) (float64, float64) {
	delta := radius / metersPerDegreeLat
	return math.Max(-90, lat-delta), math.Min(90, lat+delta)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
