package facility

import "math"

const earthRadiusMiles = 3959

// DistanceMiles returns the Haversine distance between two points,
// rounded to two decimals.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusMiles*c*100) / 100
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
