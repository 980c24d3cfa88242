// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package livesync

import (
	"sort"
	"time"

	"github.com/tomtom215/seawatch/internal/categorize"
	"github.com/tomtom215/seawatch/internal/geo"
	"github.com/tomtom215/seawatch/internal/models"
)

// RenderedVessel is a vessel eligible for the map.
type RenderedVessel struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Type        string               `json:"type"`
	Flag        string               `json:"flag,omitempty"`
	Style       categorize.Style     `json:"style"`
	Position    geo.Point            `json:"position"`
	Speed       models.OptionalFloat `json:"speed"`
	Course      models.OptionalFloat `json:"course"`
	Destination string               `json:"destination,omitempty"`
	ETA         string               `json:"eta,omitempty"`
}

// RenderedZone is a hazard zone eligible for the map.
type RenderedZone struct {
	ID          string          `json:"id"`
	Kind        models.ZoneKind `json:"kind"`
	Center      geo.Point       `json:"center"`
	RadiusKM    float64         `json:"radius_km"`
	Description string          `json:"description,omitempty"`
}

// RenderState is an immutable snapshot of the live map. It is passed by
// value; the slices and map inside are never mutated after publication.
type RenderState struct {
	// Revision increases with every publication. Subscribers may see
	// publications out of order and should ignore lower revisions.
	Revision   uint64           `json:"revision"`
	Generation uint64           `json:"generation"`
	Vessels    []RenderedVessel `json:"vessels"`
	Zones      []RenderedZone   `json:"zones"`

	// VesselsGeneration is the generation of the vessel fetch behind
	// Vessels. It only moves when a vessel fetch is applied, so a
	// publication caused by the zones feed alone carries the previous value.
	VesselsGeneration uint64 `json:"vessels_generation"`

	// Excluded counts vessels dropped for a missing or invalid position or id.
	Excluded      int `json:"excluded"`
	ExcludedZones int `json:"excluded_zones"`

	// ZoneShortfall is how many zones are missing below ZoneFloor. Missing
	// zones are reported, never fabricated.
	ZoneFloor     int `json:"zone_floor"`
	ZoneShortfall int `json:"zone_shortfall"`

	// Exposure maps zone id to the ids of vessels inside it.
	Exposure map[string][]string `json:"exposure"`

	UpdatedAt    time.Time `json:"updated_at"`
	VesselsError string    `json:"vessels_error,omitempty"`
	ZonesError   string    `json:"zones_error,omitempty"`
}

// Vessel returns the rendered vessel with id.
func (s RenderState) Vessel(id string) (RenderedVessel, bool) {
	for i := range s.Vessels {
		if s.Vessels[i].ID == id {
			return s.Vessels[i], true
		}
	}
	return RenderedVessel{}, false
}

// renderVessels keeps vessels with a valid position and a stable id. The
// first record wins when an id repeats.
func renderVessels(in []models.Vessel) (out []RenderedVessel, excluded int) {
	out = make([]RenderedVessel, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for i := range in {
		v := &in[i]
		id := v.StableID()
		pos, ok := geo.ValidPosition(v.Lat.Ptr(), v.Lon.Ptr())
		if !ok || id == "" {
			excluded++
			continue
		}
		if _, dup := seen[id]; dup {
			excluded++
			continue
		}
		seen[id] = struct{}{}

		out = append(out, RenderedVessel{
			ID:          id,
			Name:        v.DisplayName(),
			Type:        v.Type,
			Flag:        categorize.FlagState(v.Flag),
			Style:       categorize.Resolve(v.Type),
			Position:    pos,
			Speed:       v.SpeedKnots(),
			Course:      v.CourseDegrees(),
			Destination: v.Destination,
			ETA:         v.ETA,
		})
	}
	return out, excluded
}

func renderZones(in []models.RiskZone) (out []RenderedZone, excluded int) {
	out = make([]RenderedZone, 0, len(in))
	for i := range in {
		z := &in[i]
		center, ok := geo.ValidPosition(z.Lat.Ptr(), z.Lon.Ptr())
		if !ok {
			excluded++
			continue
		}
		out = append(out, RenderedZone{
			ID:          z.ID.String(),
			Kind:        z.Kind(),
			Center:      center,
			RadiusKM:    z.Radius(),
			Description: z.Description,
		})
	}
	return out, excluded
}

// exposure queries each zone radius against the vessel grid.
func exposure(grid *geo.Grid, zones []RenderedZone) map[string][]string {
	result := make(map[string][]string)
	for i := range zones {
		ids := grid.Within(zones[i].Center, zones[i].RadiusKM*1000)
		if len(ids) == 0 {
			continue
		}
		sort.Strings(ids)
		result[zones[i].ID] = ids
	}
	return result
}
