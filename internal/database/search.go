// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
search.go - Place Search and Normalization

This file provides ranked free-text search over places, name autocomplete,
and category aggregation.

Normalization:
All matching is done over precomputed normalized columns. normalizeText
lowercases, trims, collapses whitespace, and folds accented characters
through a rune table, so "Café du Marché" matches "cafe du marche". The same
function normalizes both the stored columns (at write time, see places.go)
and incoming queries, which keeps matching symmetric without any database
extension.

Ranking:
Matches are ranked name-prefix > name-substring > tag hit > description hit,
with rating and review count as tiebreakers. LIKE patterns are escaped so
user input cannot inject wildcards.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/localis-app/localis/internal/metrics"
	"github.com/localis-app/localis/internal/models"
)

// accentFold maps accented runes onto their ASCII base form.
var accentFold = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a",
	'ç': "c",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ñ': "n",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o", 'ø': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u",
	'ý': "y", 'ÿ': "y",
	'œ': "oe", 'æ': "ae", 'ß': "ss",
}

// normalizeText lowercases, folds accents, and collapses whitespace.
// Applied identically to stored search columns and incoming queries.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true // leading whitespace is dropped
	for _, r := range strings.ToLower(s) {
		if folded, ok := accentFold[r]; ok {
			b.WriteString(folded)
			lastSpace = false
			continue
		}
		switch r {
		case ' ', '\t', '\n', '\r':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// normalizeTags joins normalized tags into a space-wrapped token string
// (" coffee wifi ") so a tag hit can be matched as '% tag %'.
func normalizeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		if n := normalizeText(tag); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return ""
	}
	return " " + strings.Join(normalized, " ") + " "
}

// buildSearchText concatenates the normalized name, description, and tags
// into the free-text match column.
func buildSearchText(name, description string, tags []string) string {
	parts := []string{normalizeText(name)}
	if d := normalizeText(description); d != "" {
		parts = append(parts, d)
	}
	for _, tag := range tags {
		if n := normalizeText(tag); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, " ")
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// SearchPlaces performs ranked free-text search over places.
// Matches are ranked name-prefix > name-substring > tag hit > anywhere,
// then by rating and review count.
func (db *DB) SearchPlaces(ctx context.Context, query, category string, limit int) ([]models.Place, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := escapeLike(normalizeText(query))
	if q == "" {
		return []models.Place{}, nil
	}

	sqlQuery := `
		SELECT ` + placeColumns + `,
			CASE
				WHEN name_normalized LIKE ? ESCAPE '\' THEN 4
				WHEN name_normalized LIKE ? ESCAPE '\' THEN 3
				WHEN tags_normalized LIKE ? ESCAPE '\' THEN 2
				ELSE 1
			END AS match_rank
		FROM places
		WHERE search_text LIKE ? ESCAPE '\'
	`
	args := []interface{}{
		q + "%",
		"%" + q + "%",
		"% " + q + " %",
		"%" + q + "%",
	}

	if category != "" {
		sqlQuery += ` AND category = ?`
		args = append(args, category)
	}

	sqlQuery += `
		ORDER BY match_rank DESC, avg_rating DESC, review_count DESC, name
		LIMIT ?`
	args = append(args, limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	metrics.RecordDBQuery("search", "places", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		var data placeScanData
		var rank int
		if err := rows.Scan(data.dests(&rank)...); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		place, err := data.toPlace()
		if err != nil {
			return nil, err
		}
		places = append(places, *place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return places, nil
}

// Autocomplete returns place name suggestions for a prefix, most reviewed
// first.
func (db *DB) Autocomplete(ctx context.Context, prefix string, limit int) ([]models.Suggestion, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 || limit > 25 {
		limit = 10
	}

	p := escapeLike(normalizeText(prefix))
	if p == "" {
		return []models.Suggestion{}, nil
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, category
		FROM places
		WHERE name_normalized LIKE ? ESCAPE '\'
		ORDER BY review_count DESC, name
		LIMIT ?`,
		p+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query autocomplete: %w", err)
	}
	defer rows.Close()

	suggestions := []models.Suggestion{}
	for rows.Next() {
		var s models.Suggestion
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestions: %w", err)
	}

	return suggestions, nil
}

// GetCategoryCounts returns the distinct place categories with their counts,
// largest first.
func (db *DB) GetCategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT category, COUNT(*) AS count
		FROM places
		GROUP BY category
		ORDER BY count DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	counts := []models.CategoryCount{}
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}

	return counts, nil
}
