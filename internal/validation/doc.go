// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps the validator library in a thread-safe singleton and
// translates field errors into the human-readable messages the API error
// envelope carries. Request DTOs in internal/models and internal/api
// declare their rules with `validate:` tags; handlers call ValidateStruct
// once after decoding.
//
// # Quick Start
//
//	type CreatePlaceRequest struct {
//	    Name      string  `validate:"required,min=1,max=200"`
//	    Category  string  `validate:"required,oneof=food culture nature shopping nightlife services other"`
//	    Latitude  float64 `validate:"latitude"`
//	    Longitude float64 `validate:"longitude"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// # Tags In Use
//
// The built-in validators cover everything the API needs:
//
//   - required, min, max for names, review text and pagination bounds
//   - latitude, longitude for coordinates (range checked by the library)
//   - oneof for categories, roles, travel modes and token scopes
//   - dive for per-element rules on tags and waypoints
//   - omitempty for the pointer fields of partial updates
//
// # Error Shape
//
// A single failed field produces
//
//	{"code": "VALIDATION_ERROR", "message": "Name is required",
//	 "details": {"field": "Name", "tag": "required", "value": ""}}
//
// and multiple failures aggregate into a joined message plus a "fields"
// list in details. The code is always VALIDATION_ERROR; handlers map it
// to HTTP 400.
//
// # Thread Safety
//
// The singleton is initialized once and caches struct reflection data,
// so repeated validations of the same DTO type are cheap and safe from
// any goroutine.
package validation
