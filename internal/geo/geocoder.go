// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package geo

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	_ "embed"

	"github.com/localis-app/localis/internal/cache"
	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/metrics"
	"github.com/localis-app/localis/internal/models"
)

//go:embed gazetteer.csv
var embeddedGazetteer []byte

// Result limits for forward geocoding.
const (
	defaultGeocodeLimit = 10
	maxGeocodeLimit     = 50
)

// Cell size for the reverse-geocode grid. City-scale cells keep the
// nearest-neighbor probe to a handful of cells for populated areas.
const gridCellSizeKm = 50.0

// Match scores for successively weaker name matches. Population adds a
// log-scaled bonus below 1.0, so it breaks ties between namesakes without
// ever outranking a better match tier.
const (
	scoreExact       = 10.0
	scoreAltExact    = 8.0
	scorePrefix      = 6.0
	scoreAltPrefix   = 5.0
	scoreContains    = 3.0
	scoreAltContains = 2.0
)

// Geocoder resolves place names to coordinates and coordinates to the
// nearest known place using an in-memory gazetteer. Lookups are read-only
// after construction, so a single instance is safe for concurrent use.
type Geocoder struct {
	entries []gazetteerRow

	// grid indexes entry positions for reverse geocoding. Entries are
	// stored under their slice index. Nil for a zero-value Geocoder,
	// which falls back to a full scan.
	grid *cache.SpatialHashGrid
}

// gazetteerRow pairs an entry with its precomputed normalized names.
type gazetteerRow struct {
	entry      models.GazetteerEntry
	normalized string
	altNorm    []string
}

// NewGeocoder loads the embedded gazetteer and, when configured, appends
// custom entries from the supplemental CSV file.
func NewGeocoder(cfg *config.GeoConfig) (*Geocoder, error) {
	g := &Geocoder{}

	if err := g.loadCSV(bytes.NewReader(embeddedGazetteer)); err != nil {
		return nil, fmt.Errorf("failed to load embedded gazetteer: %w", err)
	}
	embedded := len(g.entries)

	if cfg != nil && cfg.GazetteerPath != "" {
		f, err := os.Open(cfg.GazetteerPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open gazetteer %s: %w", cfg.GazetteerPath, err)
		}
		defer func() { _ = f.Close() }()

		if err := g.loadCSV(f); err != nil {
			return nil, fmt.Errorf("failed to parse gazetteer %s: %w", cfg.GazetteerPath, err)
		}
	}

	sort.SliceStable(g.entries, func(i, j int) bool {
		return g.entries[i].normalized < g.entries[j].normalized
	})

	// Index positions after sorting so grid payloads match final
	// slice indices.
	g.grid = cache.NewSpatialHashGrid(gridCellSizeKm)
	for i := range g.entries {
		entry := &g.entries[i].entry
		g.grid.Insert(strconv.Itoa(i), entry.Latitude, entry.Longitude, i)
	}

	logging.Info().
		Int("embedded", embedded).
		Int("total", len(g.entries)).
		Msg("Gazetteer loaded")

	return g, nil
}

// loadCSV appends rows from a gazetteer CSV stream. Each record is
// name,alternates,country,latitude,longitude,population with alternates
// separated by semicolons. Lines starting with # are ignored.
func (g *Geocoder) loadCSV(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 6
	reader.TrimLeadingSpace = true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		row, err := parseGazetteerRecord(record)
		if err != nil {
			return err
		}
		g.entries = append(g.entries, row)
	}

	return nil
}

// parseGazetteerRecord validates one CSV record and precomputes its
// normalized names.
func parseGazetteerRecord(record []string) (gazetteerRow, error) {
	name := strings.TrimSpace(record[0])
	if name == "" {
		return gazetteerRow{}, errors.New("gazetteer record has an empty name")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return gazetteerRow{}, fmt.Errorf("gazetteer record %q has invalid latitude: %w", name, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	if err != nil {
		return gazetteerRow{}, fmt.Errorf("gazetteer record %q has invalid longitude: %w", name, err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return gazetteerRow{}, fmt.Errorf("gazetteer record %q has out-of-range coordinates (%v, %v)", name, lat, lon)
	}

	var population int64
	if popStr := strings.TrimSpace(record[5]); popStr != "" {
		population, err = strconv.ParseInt(popStr, 10, 64)
		if err != nil {
			return gazetteerRow{}, fmt.Errorf("gazetteer record %q has invalid population: %w", name, err)
		}
	}

	var alternates []string
	for _, alt := range strings.Split(record[1], ";") {
		if alt = strings.TrimSpace(alt); alt != "" {
			alternates = append(alternates, alt)
		}
	}

	row := gazetteerRow{
		entry: models.GazetteerEntry{
			Name:           name,
			AlternateNames: alternates,
			Latitude:       lat,
			Longitude:      lon,
			Country:        strings.ToUpper(strings.TrimSpace(record[2])),
			Population:     population,
		},
		normalized: normalizeName(name),
	}
	for _, alt := range alternates {
		row.altNorm = append(row.altNorm, normalizeName(alt))
	}

	return row, nil
}

// normalizeName lower-cases a name and collapses runs of whitespace.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Len returns the number of gazetteer entries.
func (g *Geocoder) Len() int {
	return len(g.entries)
}

// Geocode resolves a free-text query to ranked coordinate candidates.
// Results are ordered by match quality, then population.
func (g *Geocoder) Geocode(query string, limit int) []models.GeocodeResult {
	q := normalizeName(query)
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = defaultGeocodeLimit
	}
	if limit > maxGeocodeLimit {
		limit = maxGeocodeLimit
	}

	metrics.RecordGeocodeRequest("forward")

	type scoredRow struct {
		row   *gazetteerRow
		score float64
	}

	var matches []scoredRow
	for i := range g.entries {
		row := &g.entries[i]
		base := matchScore(row, q)
		if base == 0 {
			continue
		}
		matches = append(matches, scoredRow{
			row:   row,
			score: base + populationBonus(row.entry.Population),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].row.entry.Population > matches[j].row.entry.Population
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]models.GeocodeResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, models.GeocodeResult{
			Name:       m.row.entry.Name,
			Latitude:   m.row.entry.Latitude,
			Longitude:  m.row.entry.Longitude,
			Country:    m.row.entry.Country,
			Population: m.row.entry.Population,
			Score:      m.score,
		})
	}
	return results
}

// ReverseGeocode returns the gazetteer entry nearest to the coordinate and
// its distance in kilometers. ok is false when the gazetteer is empty.
func (g *Geocoder) ReverseGeocode(lat, lon float64) (*models.GeocodeResult, float64, bool) {
	var (
		best     *gazetteerRow
		bestDist float64
	)

	if g.grid != nil {
		hit, dist, ok := g.grid.Nearest(lat, lon)
		if !ok {
			return nil, 0, false
		}
		idx, valid := hit.Data.(int)
		if valid && idx >= 0 && idx < len(g.entries) {
			best = &g.entries[idx]
			bestDist = dist
		}
	}

	if best == nil {
		// Zero-value Geocoder without a grid; scan everything.
		for i := range g.entries {
			row := &g.entries[i]
			d := Distance(lat, lon, row.entry.Latitude, row.entry.Longitude)
			if best == nil || d < bestDist {
				best = row
				bestDist = d
			}
		}
	}
	if best == nil {
		return nil, 0, false
	}

	metrics.RecordGeocodeRequest("reverse")

	return &models.GeocodeResult{
		Name:       best.entry.Name,
		Latitude:   best.entry.Latitude,
		Longitude:  best.entry.Longitude,
		Country:    best.entry.Country,
		Population: best.entry.Population,
	}, bestDist, true
}

// matchScore returns the base score for a query against one row, or 0 for
// no match. Primary-name matches outrank alternate-name matches within the
// same tier.
func matchScore(row *gazetteerRow, q string) float64 {
	if row.normalized == q {
		return scoreExact
	}
	for _, alt := range row.altNorm {
		if alt == q {
			return scoreAltExact
		}
	}
	if strings.HasPrefix(row.normalized, q) {
		return scorePrefix
	}
	for _, alt := range row.altNorm {
		if strings.HasPrefix(alt, q) {
			return scoreAltPrefix
		}
	}
	if strings.Contains(row.normalized, q) {
		return scoreContains
	}
	for _, alt := range row.altNorm {
		if strings.Contains(alt, q) {
			return scoreAltContains
		}
	}
	return 0
}

// populationBonus maps population to a 0..0.9 ranking bonus.
func populationBonus(pop int64) float64 {
	if pop <= 0 {
		return 0
	}
	bonus := math.Log10(float64(pop)) / 10.0
	if bonus > 0.9 {
		bonus = 0.9
	}
	return bonus
}
