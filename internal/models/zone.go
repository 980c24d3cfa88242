// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package models

import "strings"

// ZoneKind enumerates hazard causes.
type ZoneKind string

const (
	ZoneWeather    ZoneKind = "WEATHER"
	ZonePiracy     ZoneKind = "PIRACY"
	ZoneCongestion ZoneKind = "CONGESTION"
	ZoneOther      ZoneKind = "OTHER"
)

// ParseZoneKind maps upstream risk_type strings; unrecognized values are OTHER.
func ParseZoneKind(s string) ZoneKind {
	switch ZoneKind(strings.ToUpper(strings.TrimSpace(s))) {
	case ZoneWeather:
		return ZoneWeather
	case ZonePiracy:
		return ZonePiracy
	case ZoneCongestion:
		return ZoneCongestion
	default:
		return ZoneOther
	}
}

// RiskZone is a circular hazard region as returned by GET /risks/.
type RiskZone struct {
	ID          FlexString    `json:"id"`
	RiskType    string        `json:"risk_type"`
	Lat         OptionalFloat `json:"latitude"`
	Lon         OptionalFloat `json:"longitude"`
	RadiusKM    OptionalFloat `json:"radius_km"`
	Description string        `json:"description"`
}

// Kind returns the enumerated zone kind.
func (z *RiskZone) Kind() ZoneKind {
	return ParseZoneKind(z.RiskType)
}

// Radius returns the radius in kilometers, clamped at zero.
func (z *RiskZone) Radius() float64 {
	if !z.RadiusKM.Valid || z.RadiusKM.Value < 0 {
		return 0
	}
	return z.RadiusKM.Value
}

// RiskZoneList is the wrapped form of the risks payload.
type RiskZoneList struct {
	Risks []RiskZone `json:"risks"`
}
