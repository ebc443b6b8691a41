// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package cache

import (
	"math"
	"sync"
)

const (
	defaultCellSizeKm = 50.0
	kmPerDegree       = 111.0

	// Ring expansion in Nearest gives up after this many rings and
	// falls back to a linear scan. Beyond it the perimeter scans cost
	// more than walking the whole entry set.
	linearFallbackRings = 16
)

// SpatialHashGrid divides geographic space into cells for fast
// proximity queries. Instead of comparing a coordinate against every
// indexed point, lookups only touch the cells around the query point.
//
// The geocoder builds one over the gazetteer so reverse geocoding is a
// near-constant cell probe rather than a full scan per request.
//
// Time complexity:
//   - Insert: O(1)
//   - QueryNearby: O(k) where k = entries in the covered cells
//   - Nearest: O(k) over expanding rings
//   - Remove: O(1)
type SpatialHashGrid struct {
	mu       sync.RWMutex
	cells    map[CellKey]*gridCell
	cellSize float64 // degrees
	entries  map[string]*SpatialEntry
}

// CellKey identifies one grid cell.
type CellKey struct {
	X, Y int
}

// gridCell holds the entries inside one cell.
type gridCell struct {
	entries []*SpatialEntry
}

// SpatialEntry is one indexed coordinate.
type SpatialEntry struct {
	ID   string
	Lat  float64
	Lon  float64
	Data any

	cellKey CellKey
}

// NewSpatialHashGrid creates a grid with cells of approximately
// cellSizeKm per side. Smaller cells are more precise but spread sparse
// data over more probes. Non-positive sizes fall back to 50km, which
// suits a city and POI gazetteer.
func NewSpatialHashGrid(cellSizeKm float64) *SpatialHashGrid {
	if cellSizeKm <= 0 {
		cellSizeKm = defaultCellSizeKm
	}

	return &SpatialHashGrid{
		cells:    make(map[CellKey]*gridCell),
		cellSize: cellSizeKm / kmPerDegree,
		entries:  make(map[string]*SpatialEntry),
	}
}

// getCellKey returns the cell containing a coordinate.
func (g *SpatialHashGrid) getCellKey(lat, lon float64) CellKey {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}

	return CellKey{
		X: int(math.Floor(lon / g.cellSize)),
		Y: int(math.Floor(lat / g.cellSize)),
	}
}

// Insert adds an entry to the grid, replacing any entry with the same
// ID.
func (g *SpatialHashGrid) Insert(id string, lat, lon float64, data any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.entries[id]; ok {
		g.removeFromCellLocked(existing)
	}

	cellKey := g.getCellKey(lat, lon)

	entry := &SpatialEntry{
		ID:      id,
		Lat:     lat,
		Lon:     lon,
		Data:    data,
		cellKey: cellKey,
	}

	cell, exists := g.cells[cellKey]
	if !exists {
		cell = &gridCell{entries: make([]*SpatialEntry, 0, 4)}
		g.cells[cellKey] = cell
	}
	cell.entries = append(cell.entries, entry)
	g.entries[id] = entry
}

// Remove removes an entry by ID. Returns false when the ID is unknown.
func (g *SpatialHashGrid) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, exists := g.entries[id]
	if !exists {
		return false
	}

	g.removeFromCellLocked(entry)
	delete(g.entries, id)
	return true
}

// removeFromCellLocked unlinks an entry from its cell. Caller must hold
// the lock.
func (g *SpatialHashGrid) removeFromCellLocked(entry *SpatialEntry) {
	cell, exists := g.cells[entry.cellKey]
	if !exists {
		return
	}

	for i, e := range cell.entries {
		if e.ID == entry.ID {
			cell.entries[i] = cell.entries[len(cell.entries)-1]
			cell.entries = cell.entries[:len(cell.entries)-1]
			break
		}
	}

	if len(cell.entries) == 0 {
		delete(g.cells, entry.cellKey)
	}
}

// Get returns a copy of an entry by ID.
func (g *SpatialHashGrid) Get(id string) (*SpatialEntry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	entry, exists := g.entries[id]
	if !exists {
		return nil, false
	}

	entryCopy := *entry
	return &entryCopy, true
}

// QueryNearby returns copies of all entries within radiusKm of the
// given point.
func (g *SpatialHashGrid) QueryNearby(lat, lon, radiusKm float64) []*SpatialEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cellsToCheck := int(math.Ceil(radiusKm/kmPerDegree/g.cellSize)) + 1
	centerCell := g.getCellKey(lat, lon)

	var results []*SpatialEntry

	for dx := -cellsToCheck; dx <= cellsToCheck; dx++ {
		for dy := -cellsToCheck; dy <= cellsToCheck; dy++ {
			cell, exists := g.cells[CellKey{X: centerCell.X + dx, Y: centerCell.Y + dy}]
			if !exists {
				continue
			}

			for _, entry := range cell.entries {
				if haversineKm(lat, lon, entry.Lat, entry.Lon) <= radiusKm {
					entryCopy := *entry
					results = append(results, &entryCopy)
				}
			}
		}
	}

	return results
}

// Nearest returns a copy of the entry closest to the given point and
// its distance in kilometers. ok is false when the grid is empty.
//
// Cells are scanned in expanding rings around the query point. Once a
// candidate is found, scanning continues until a ring's minimum
// possible distance exceeds the best match, so a closer entry in a
// diagonal-adjacent cell is never missed.
func (g *SpatialHashGrid) Nearest(lat, lon float64) (*SpatialEntry, float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.entries) == 0 {
		return nil, 0, false
	}

	center := g.getCellKey(lat, lon)

	// East-west cell width shrinks toward the poles; using it for the
	// ring lower bound keeps the cutoff conservative.
	kmPerCell := g.cellSize * kmPerDegree * math.Max(math.Cos(lat*math.Pi/180), 0.2)

	var best *SpatialEntry
	bestDist := math.MaxFloat64

	scan := func(key CellKey) {
		cell, exists := g.cells[key]
		if !exists {
			return
		}
		for _, entry := range cell.entries {
			if d := haversineKm(lat, lon, entry.Lat, entry.Lon); d < bestDist {
				best = entry
				bestDist = d
			}
		}
	}

	for ring := 0; ; ring++ {
		if best != nil && float64(ring-1)*kmPerCell > bestDist {
			break
		}
		if ring > linearFallbackRings && best == nil {
			return g.nearestLinearLocked(lat, lon)
		}

		forEachRingCell(center, ring, scan)
	}

	bestCopy := *best
	return &bestCopy, bestDist, true
}

// nearestLinearLocked scans every entry. Caller must hold at least a
// read lock and have checked the grid is non-empty.
func (g *SpatialHashGrid) nearestLinearLocked(lat, lon float64) (*SpatialEntry, float64, bool) {
	var best *SpatialEntry
	bestDist := math.MaxFloat64

	for _, entry := range g.entries {
		if d := haversineKm(lat, lon, entry.Lat, entry.Lon); d < bestDist {
			best = entry
			bestDist = d
		}
	}

	bestCopy := *best
	return &bestCopy, bestDist, true
}

// forEachRingCell visits the cells on the square ring at Chebyshev
// distance ring from center. Ring 0 is the center cell itself.
func forEachRingCell(center CellKey, ring int, fn func(CellKey)) {
	if ring == 0 {
		fn(center)
		return
	}

	for dx := -ring; dx <= ring; dx++ {
		fn(CellKey{X: center.X + dx, Y: center.Y - ring})
		fn(CellKey{X: center.X + dx, Y: center.Y + ring})
	}
	for dy := -ring + 1; dy <= ring-1; dy++ {
		fn(CellKey{X: center.X - ring, Y: center.Y + dy})
		fn(CellKey{X: center.X + ring, Y: center.Y + dy})
	}
}

// Size returns the total number of entries.
func (g *SpatialHashGrid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// NumCells returns the number of non-empty cells.
func (g *SpatialHashGrid) NumCells() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// Clear removes all entries.
func (g *SpatialHashGrid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cells = make(map[CellKey]*gridCell)
	g.entries = make(map[string]*SpatialEntry)
}

// haversineKm returns the spherical distance between two coordinates in
// kilometers. The grid keeps its own copy so the package stays free of
// a geo dependency; geo imports this package for the grid.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
