package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm returns the haversine distance between p and q in kilometres.
func DistanceKm(p, q Point) float64 {
	dLat := toRad(q.Lat - p.Lat)
	dLng := toRad(q.Lng - p.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(p.Lat))*math.Cos(toRad(q.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	// clamp against rounding pushing a past 1
	a = math.Min(1, math.Max(0, a))
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Valid reports whether p is a usable coordinate. Zero coordinates are treated as missing.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	if p.Lat == 0 && p.Lng == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// SortByDistance orders items ascending by dist, keeping the input order for ties.
func SortByDistance[T any](items []T, dist func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return dist(items[i]) < dist(items[j])
	})
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
