package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	seoulCityHall = Point{Lat: 37.5665, Lng: 126.9780}
	gangnamStn    = Point{Lat: 37.4979, Lng: 127.0276}
	busanStn      = Point{Lat: 35.1151, Lng: 129.0422}
)

func TestDistanceIsSymmetric(t *testing.T) {
	pairs := [][2]Point{
		{seoulCityHall, gangnamStn},
		{seoulCityHall, busanStn},
		{{Lat: -33.86, Lng: 151.21}, {Lat: 51.5, Lng: -0.12}},
	}
	for _, p := range pairs {
		assert.Equal(t, DistanceKm(p[0], p[1]), DistanceKm(p[1], p[0]))
	}
}

func TestDistanceToSelfIsZero(t *testing.T) {
	for _, p := range []Point{seoulCityHall, busanStn, {Lat: 89.9, Lng: -179.9}} {
		assert.Equal(t, 0.0, DistanceKm(p, p))
	}
}

func TestDistanceKnownValue(t *testing.T) {
	d := DistanceKm(seoulCityHall, busanStn)
	assert.InDelta(t, 329, d, 2)

	d = DistanceKm(seoulCityHall, gangnamStn)
	assert.InDelta(t, 8.8, d, 0.5)
}

func TestPointValid(t *testing.T) {
	assert.True(t, seoulCityHall.Valid())
	assert.False(t, Point{}.Valid())
	assert.False(t, Point{Lat: math.NaN(), Lng: 1}.Valid())
	assert.False(t, Point{Lat: 91, Lng: 1}.Valid())
}

func TestSortByDistance(t *testing.T) {
	points := []Point{busanStn, gangnamStn, seoulCityHall}
	SortByDistance(points, func(p Point) float64 { return DistanceKm(seoulCityHall, p) })
	assert.Equal(t, []Point{seoulCityHall, gangnamStn, busanStn}, points)
}
