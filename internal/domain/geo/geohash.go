// Package geo provides geohash encoding and distance helpers for shelter coordinates.
package geo

import (
	"refugis/internal/domain/entity"

	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// DefaultPrecision groups shelters in cells of roughly 5 km.
const DefaultPrecision = 5

// Encode returns the base-32 geohash of coord with the given number of characters.
// Longitude takes the even bits and latitude the odd bits.
func Encode(coord entity.Coordinate, precision int) string {
	if precision <= 0 {
		precision = DefaultPrecision
	}

	return geohash.EncodeWithPrecision(coord.Lat, coord.Long, uint(precision))
}

// Neighbors returns the eight cells surrounding hash.
func Neighbors(hash string) []string {
	return geohash.Neighbors(hash)
}

// IsSameOrAdjacent reports whether two hashes of equal length name the same or touching cells.
func IsSameOrAdjacent(a, b string) bool {
	if a == b {
		return true
	}
	for _, n := range Neighbors(a) {
		if n == b {
			return true
		}
	}

	return false
}

// Point converts a coordinate to an orb point (x = longitude, y = latitude).
func Point(coord entity.Coordinate) orb.Point {
	return orb.Point{coord.Long, coord.Lat}
}

// DistanceMeters is the haversine distance between two coordinates.
func DistanceMeters(a, b entity.Coordinate) float64 {
	return orbgeo.DistanceHaversine(Point(a), Point(b))
}
