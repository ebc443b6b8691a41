// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
	"github.com/localis-app/localis/internal/validation"
)

// Error codes returned in the error envelope. The values match the codes
// emitted by the auth and authz middlewares so clients see one vocabulary.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeExternalService    = "EXTERNAL_SERVICE_ERROR"
)

// ResponseWriter writes enveloped JSON responses for a single request.
// It captures the start time at construction so DurationMS reflects the
// whole handler, not just serialization.
type ResponseWriter struct {
	w     http.ResponseWriter
	r     *http.Request
	start time.Time
}

// NewResponseWriter creates a ResponseWriter for the request.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, start: time.Now()}
}

// Success writes a 200 response with the given payload.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeSuccess(http.StatusOK, data, nil)
}

// SuccessWithPagination writes a 200 response with pagination metadata.
func (rw *ResponseWriter) SuccessWithPagination(data interface{}, pagination *models.PaginationInfo) {
	rw.writeSuccess(http.StatusOK, data, pagination)
}

// Created writes a 201 response with the given payload.
func (rw *ResponseWriter) Created(data interface{}) {
	rw.writeSuccess(http.StatusCreated, data, nil)
}

// NoContent writes a 204 response with no body.
func (rw *ResponseWriter) NoContent() {
	rw.w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status and code.
func (rw *ResponseWriter) Error(status int, code, message string) {
	rw.ErrorWithDetails(status, code, message, nil)
}

// ErrorWithDetails writes an error response with additional context in the
// details map.
func (rw *ResponseWriter) ErrorWithDetails(status int, code, message string, details map[string]interface{}) {
	resp := &models.APIResponse{
		Success: false,
		Error: &models.APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(rw.r.Context()),
		},
		Meta: rw.meta(nil),
	}
	rw.writeJSON(status, resp)
}

// BadRequest writes a 400 response.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized writes a 401 response.
func (rw *ResponseWriter) Unauthorized(message string) {
	rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden writes a 403 response.
func (rw *ResponseWriter) Forbidden(message string) {
	rw.Error(http.StatusForbidden, ErrCodeForbidden, message)
}

// NotFound writes a 404 response.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict writes a 409 response.
func (rw *ResponseWriter) Conflict(message string) {
	rw.Error(http.StatusConflict, ErrCodeConflict, message)
}

// InternalError writes a 500 response.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable writes a 503 response.
func (rw *ResponseWriter) ServiceUnavailable(message string) {
	rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// ExternalServiceError writes a 502 response for upstream service failures.
func (rw *ResponseWriter) ExternalServiceError(message string) {
	rw.Error(http.StatusBadGateway, ErrCodeExternalService, message)
}

// ValidationError writes a 400 response from a validation failure,
// preserving the per-field details assembled by the validation package.
func (rw *ResponseWriter) ValidationError(verr *validation.APIError) {
	rw.ErrorWithDetails(http.StatusBadRequest, verr.Code, verr.Message, verr.Details)
}

// DatabaseError logs the underlying error and writes a 500 response with a
// generic message. The raw error never reaches the client.
func (rw *ResponseWriter) DatabaseError(err error, message string) {
	logging.Error().
		Err(err).
		Str("path", rw.r.URL.Path).
		Str("method", rw.r.Method).
		Str("request_id", logging.RequestIDFromContext(rw.r.Context())).
		Msg("Database operation failed")
	rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, message)
}

func (rw *ResponseWriter) writeSuccess(status int, data interface{}, pagination *models.PaginationInfo) {
	resp := &models.APIResponse{
		Success: true,
		Data:    data,
		Meta:    rw.meta(pagination),
	}
	rw.writeJSON(status, resp)
}

func (rw *ResponseWriter) meta(pagination *models.PaginationInfo) *models.Meta {
	return &models.Meta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		Timestamp:  time.Now().UTC(),
		DurationMS: time.Since(rw.start).Milliseconds(),
		Pagination: pagination,
	}
}

func (rw *ResponseWriter) writeJSON(status int, resp *models.APIResponse) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if err := json.NewEncoder(rw.w).Encode(resp); err != nil {
		// Headers are already gone; all we can do is log.
		logging.Error().
			Err(err).
			Str("path", rw.r.URL.Path).
			Msg("Failed to encode response")
	}
}
