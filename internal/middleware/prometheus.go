// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/localis-app/localis/internal/metrics"
)

// PrometheusMetrics instruments a handler with the api_request series:
// the in-flight gauge for the duration of the call, then a counter
// increment and a latency observation labeled with method, path and the
// status the handler wrote.
func PrometheusMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		metrics.RecordAPIRequest(r.Method, r.URL.Path, strconv.Itoa(sw.status), time.Since(start))
	}
}

// statusWriter remembers the status code a handler wrote so middleware
// can label metrics after the handler returns. Handlers that never call
// WriteHeader are reported as 200, matching net/http's implicit default.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
