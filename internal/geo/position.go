// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package geo holds the coordinate math shared by the live map: position
// validation, great-circle distance, forward projection along a course, and
// a spatial hash grid for radius queries.
package geo

import "math"

const (
	earthRadiusMeters = 6371000.0
	metersPerDegree   = 111320.0
)

// Point is a WGS84 position in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether p is finite and in range.
func (p Point) Valid() bool {
	return ValidCoordinate(p.Lat, p.Lon)
}

// ValidCoordinate reports whether lat/lon are finite and within
// [-90, 90] and [-180, 180].
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidPosition is ValidCoordinate for optional inputs; both must be present.
func ValidPosition(lat, lon *float64) (Point, bool) {
	if lat == nil || lon == nil {
		return Point{}, false
	}
	if !ValidCoordinate(*lat, *lon) {
		return Point{}, false
	}
	return Point{Lat: *lat, Lon: *lon}, true
}

// HaversineMeters returns the great-circle distance between a and b.
func HaversineMeters(a, b Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Project returns the point reached from p after travelling distance meters
// on the initial bearing courseDeg (clockwise from true north).
func Project(p Point, courseDeg, meters float64) Point {
	if meters == 0 {
		return p
	}
	delta := meters / earthRadiusMeters
	theta := toRad(courseDeg)
	lat1 := toRad(p.Lat)
	lon1 := toRad(p.Lon)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))

	return Point{Lat: toDeg(lat2), Lon: normalizeLon(toDeg(lon2))}
}

// KnotsToMetersPerSecond converts a speed over ground.
func KnotsToMetersPerSecond(knots float64) float64 {
	return knots * 1852.0 / 3600.0
}

func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }
