// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package models

import (
	"time"
)

// APIResponse is the standardized wrapper used by all HTTP endpoints. It
// provides one structure for both successful and error responses, with
// metadata for observability and pagination.
//
// Fields:
//   - Success: true when the request completed, false on error
//   - Data: Response payload (any JSON-serializable type)
//   - Error: Error details (populated only when Success is false)
//   - Meta: Request metadata (request id, timing, pagination)
//
// Example successful response:
//
//	{
//	  "success": true,
//	  "data": [{"id": "...", "name": "Cafe Lumen", ...}],
//	  "meta": {
//	    "request_id": "1a2b3c4d",
//	    "timestamp": "2026-08-23T12:00:00Z",
//	    "duration_ms": 12,
//	    "pagination": {"page": 1, "page_size": 20, "total_count": 134, "total_pages": 7, "has_more": true}
//	  }
//	}
//
// Example error response:
//
//	{
//	  "success": false,
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "rating must be between 1 and 5",
//	    "details": {"field": "rating"},
//	    "request_id": "1a2b3c4d"
//	  },
//	  "meta": {"request_id": "1a2b3c4d", "timestamp": "2026-08-23T12:00:00Z"}
//	}
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError carries structured error details.
//
// Fields:
//   - Code: Machine-readable error code (e.g. "VALIDATION_ERROR", "NOT_FOUND")
//   - Message: Human-readable error message
//   - Details: Additional context (field names, constraints)
//   - RequestID: Correlates the error with server logs
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// Meta contains response metadata for observability and paging.
//
// Fields:
//   - RequestID: Per-request correlation id (also in the X-Request-ID header)
//   - Timestamp: Server time when the response was generated
//   - DurationMS: Handler execution time in milliseconds
//   - Pagination: Present on paginated list responses
type Meta struct {
	RequestID  string          `json:"request_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	DurationMS int64           `json:"duration_ms,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// PaginationInfo describes the position of a page-based list response.
type PaginationInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// NewPaginationInfo computes the derived pagination fields from the request
// page, the page size, and the total row count.
func NewPaginationInfo(page, pageSize int, totalCount int64) *PaginationInfo {
	if pageSize <= 0 {
		pageSize = 1
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	return &PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}
