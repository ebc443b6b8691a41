// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/localis-app/localis/internal/database"
	"github.com/localis-app/localis/internal/models"
	"github.com/localis-app/localis/internal/validation"
)

// sanitizeLogValue strips control characters from user-supplied strings
// before they reach a log line, preventing log injection via headers or
// query parameters.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			b.WriteString(fmt.Sprintf(`\x%02x`, r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// decodeJSON decodes a request body into dst. Returns a client-suitable
// error message on malformed input.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// validateRequest runs struct validation and converts any failure into the
// envelope error shape. Returns nil when the value passes.
func validateRequest(v interface{}) *validation.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}

// parsePagination extracts page and page_size query parameters, clamped to
// the configured bounds. Page numbering is 1-based.
func (h *Handler) parsePagination(r *http.Request) (page, pageSize int) {
	page = getIntParam(r, "page", 1)
	if page < 1 {
		page = 1
	}

	defaultSize, maxSize := 20, 100
	if h.cfg != nil {
		if h.cfg.API.DefaultPageSize > 0 {
			defaultSize = h.cfg.API.DefaultPageSize
		}
		if h.cfg.API.MaxPageSize > 0 {
			maxSize = h.cfg.API.MaxPageSize
		}
	}

	pageSize = getIntParam(r, "page_size", defaultSize)
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}

// getIntParam returns a query parameter as int, or the default when absent
// or malformed.
func getIntParam(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// getFloatParam returns a query parameter as float64. The bool reports
// presence; a present but malformed value yields an error.
func getFloatParam(r *http.Request, key string) (float64, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, fmt.Errorf("parameter %q must be a number", key)
	}
	return f, true, nil
}

// uuidParam parses a chi URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: must be a UUID", name)
	}
	return id, nil
}

// int64Param parses a chi URL parameter as a positive integer id.
func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return id, nil
}

// parseBBox parses a "minLon,minLat,maxLon,maxLat" bounding box string.
// The lon-first order follows the GeoJSON bbox convention.
func parseBBox(raw string) (models.BoundingBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return models.BoundingBox{}, errors.New("bbox must be minLon,minLat,maxLon,maxLat")
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("bbox component %d is not a number", i+1)
		}
		vals[i] = f
	}
	box := models.BoundingBox{
		MinLon: vals[0],
		MinLat: vals[1],
		MaxLon: vals[2],
		MaxLat: vals[3],
	}
	if box.MinLat > box.MaxLat || box.MinLon > box.MaxLon {
		return models.BoundingBox{}, errors.New("bbox min corner must be south-west of max corner")
	}
	if box.MinLat < -90 || box.MaxLat > 90 || box.MinLon < -180 || box.MaxLon > 180 {
		return models.BoundingBox{}, errors.New("bbox exceeds valid coordinate range")
	}
	return box, nil
}

// writeDBError maps the storage sentinel errors onto HTTP statuses. The
// noun names the entity for the 404/409 message ("place", "review", ...).
func writeDBError(rw *ResponseWriter, err error, noun string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		rw.NotFound(noun + " not found")
	case errors.Is(err, database.ErrDuplicate):
		rw.Conflict(noun + " already exists")
	case errors.Is(err, database.ErrProtectedUser):
		rw.BadRequest("the bootstrap admin cannot be deleted")
	default:
		rw.DatabaseError(err, "operation failed")
	}
}
