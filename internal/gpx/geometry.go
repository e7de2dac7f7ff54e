package gpx

import "math"

const (
	// earthRadiusMiles is the mean Earth radius used by the Haversine formula.
	earthRadiusMiles = 3959.0

	// DefaultSpeedMph is the assumed average speed for off-road travel time
	// estimates. It is deliberately lower than highway figures; callers
	// estimating on-road travel must pass their own speed.
	DefaultSpeedMph = 15.0
)

// RouteDistance returns the total great-circle distance in miles along the
// waypoint sequence, summing consecutive pairs with the Haversine formula.
// Fewer than two waypoints yields 0. Non-finite coordinates propagate as
// NaN/Inf rather than erroring; waypoint validation happens at ingestion.
func RouteDistance(waypoints []Waypoint) float64 {
	if len(waypoints) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(waypoints); i++ {
		total += haversineMiles(
			waypoints[i-1].Lat, waypoints[i-1].Lng,
			waypoints[i].Lat, waypoints[i].Lng,
		)
	}
	return total
}

// ElevationGain returns the sum of positive elevation deltas between
// consecutive waypoints. Descents contribute nothing, as do pairs where
// either waypoint lacks elevation data. The result is in whatever unit the
// input elevations use.
func ElevationGain(waypoints []Waypoint) float64 {
	var gain float64
	for i := 1; i < len(waypoints); i++ {
		prev, cur := waypoints[i-1].Elevation, waypoints[i].Elevation
		if prev == nil || cur == nil {
			continue
		}
		if delta := *cur - *prev; delta > 0 {
			gain += delta
		}
	}
	return gain
}

// EstimateTravelTime returns the estimated travel time in minutes for the
// given distance at the given average speed. A non-positive speed selects
// DefaultSpeedMph.
func EstimateTravelTime(distanceMiles, avgSpeedMph float64) int {
	if avgSpeedMph <= 0 {
		avgSpeedMph = DefaultSpeedMph
	}
	return int(math.Round(distanceMiles / avgSpeedMph * 60))
}

// haversineMiles calculates the great-circle distance between two
// coordinates in miles.
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
