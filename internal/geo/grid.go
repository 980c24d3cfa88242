// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geo

import (
	"math"
	"sync"
)

// Grid divides the globe into square cells (in degrees) for radius queries.
// Inserting n points and answering a radius query touches only the cells that
// overlap the query's bounding box instead of all n points.
type Grid struct {
	mu       sync.RWMutex
	cellSize float64
	cells    map[cellKey][]*gridEntry
	entries  map[string]*gridEntry
}

type cellKey struct {
	x, y int
}

type gridEntry struct {
	id   string
	p    Point
	cell cellKey
}

// NewGrid creates a grid with roughly cellSizeKm wide cells. Values <= 0 use 100 km.
func NewGrid(cellSizeKm float64) *Grid {
	if cellSizeKm <= 0 {
		cellSizeKm = 100
	}
	return &Grid{
		cellSize: cellSizeKm * 1000 / metersPerDegree,
		cells:    make(map[cellKey][]*gridEntry),
		entries:  make(map[string]*gridEntry),
	}
}

func (g *Grid) key(p Point) cellKey {
	return cellKey{
		x: int(math.Floor((normalizeLon(p.Lon) + 180) / g.cellSize)),
		y: int(math.Floor(p.Lat / g.cellSize)),
	}
}

// Insert adds or moves id to p. Invalid points are ignored.
func (g *Grid) Insert(id string, p Point) {
	if !p.Valid() {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.entries[id]; ok {
		g.removeUnlocked(existing)
	}
	e := &gridEntry{id: id, p: p, cell: g.key(p)}
	g.cells[e.cell] = append(g.cells[e.cell], e)
	g.entries[id] = e
}

// Remove deletes id. It reports whether id was present.
func (g *Grid) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[id]
	if !ok {
		return false
	}
	g.removeUnlocked(e)
	return true
}

func (g *Grid) removeUnlocked(e *gridEntry) {
	cell := g.cells[e.cell]
	for i, c := range cell {
		if c.id == e.id {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(g.cells, e.cell)
	} else {
		g.cells[e.cell] = cell
	}
	delete(g.entries, e.id)
}

// Within returns the ids of all points within radiusMeters of center.
func (g *Grid) Within(center Point, radiusMeters float64) []string {
	if !center.Valid() || radiusMeters < 0 {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	radiusDeg := radiusMeters / metersPerDegree
	spanY := int(math.Ceil(radiusDeg/g.cellSize)) + 1
	// Longitude degrees shrink towards the poles; widen the x span to match.
	cosLat := math.Cos(toRad(center.Lat))
	spanX := spanY
	if cosLat > 0.01 {
		spanX = int(math.Ceil(radiusDeg/cosLat/g.cellSize)) + 1
	} else {
		spanX = int(math.Ceil(360 / g.cellSize))
	}

	maxX := int(math.Ceil(360 / g.cellSize))
	if spanX > maxX {
		spanX = maxX
	}

	c := g.key(center)
	seen := make(map[string]struct{})
	var out []string
	for dx := -spanX; dx <= spanX; dx++ {
		for dy := -spanY; dy <= spanY; dy++ {
			for _, e := range g.cells[g.wrap(cellKey{x: c.x + dx, y: c.y + dy})] {
				if _, dup := seen[e.id]; dup {
					continue
				}
				if HaversineMeters(center, e.p) <= radiusMeters {
					seen[e.id] = struct{}{}
					out = append(out, e.id)
				}
			}
		}
	}
	return out
}

// wrap maps an x index across the antimeridian.
func (g *Grid) wrap(k cellKey) cellKey {
	n := int(math.Ceil(360 / g.cellSize))
	k.x = ((k.x % n) + n) % n
	return k
}

// Len returns the number of points in the grid.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}
