// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package models

import (
	"math"
	"strings"
)

// Vessel is one moving entity as returned by GET /vessels/.
type Vessel struct {
	DBID        FlexString    `json:"id"`
	MMSI        FlexString    `json:"mmsi"`
	IMO         FlexString    `json:"imo"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Flag        string        `json:"flag"`
	Lat         OptionalFloat `json:"last_position_lat"`
	Lon         OptionalFloat `json:"last_position_lon"`
	Speed       OptionalFloat `json:"speed"`
	Course      OptionalFloat `json:"course"`
	ETA         string        `json:"eta"`
	Destination string        `json:"destination"`
}

// StableID prefers maritime identifiers over the database surrogate.
func (v *Vessel) StableID() string {
	for _, id := range []FlexString{v.MMSI, v.IMO, v.DBID} {
		if s := strings.TrimSpace(string(id)); s != "" {
			return s
		}
	}
	return ""
}

// DisplayName falls back to the stable id when the name is blank.
func (v *Vessel) DisplayName() string {
	if n := strings.TrimSpace(v.Name); n != "" {
		return n
	}
	return v.StableID()
}

// SpeedKnots returns the reported speed, or absent for negative readings.
func (v *Vessel) SpeedKnots() OptionalFloat {
	if !v.Speed.Valid || v.Speed.Value < 0 {
		return OptionalFloat{}
	}
	return v.Speed
}

// CourseDegrees returns the course normalized to [0, 360).
func (v *Vessel) CourseDegrees() OptionalFloat {
	if !v.Course.Valid {
		return OptionalFloat{}
	}
	c := math.Mod(v.Course.Value, 360)
	if c < 0 {
		c += 360
	}
	return Float(c)
}

// VesselList is the wrapped form of the vessels payload.
type VesselList struct {
	Vessels []Vessel `json:"vessels"`
}
