// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/models"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimit_EnforcesBudget(t *testing.T) {
	mw := NewChiMiddleware(&config.SecurityConfig{
		CORSOrigins: []string{"*"},
	})
	limited := mw.RateLimit(RateLimitConfig{Requests: 2, Window: time.Minute})(http.HandlerFunc(okHandler))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("request 3: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode 429 body: %v", err)
	}
	if resp.Success {
		t.Error("Success = true on a rejected request")
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeRateLimited {
		t.Errorf("Error = %+v, want code %s", resp.Error, ErrCodeRateLimited)
	}
}

func TestRateLimit_KeyedByClientIP(t *testing.T) {
	mw := NewChiMiddleware(&config.SecurityConfig{CORSOrigins: []string{"*"}})
	limited := mw.RateLimit(RateLimitConfig{Requests: 1, Window: time.Minute})(http.HandlerFunc(okHandler))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.1.1.1:40000"); code != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", code, http.StatusOK)
	}
	if code := send("10.1.1.1:40001"); code != http.StatusTooManyRequests {
		t.Errorf("same IP again: status = %d, want %d", code, http.StatusTooManyRequests)
	}
	if code := send("10.2.2.2:40000"); code != http.StatusOK {
		t.Errorf("different IP: status = %d, want %d", code, http.StatusOK)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	mw := NewChiMiddleware(&config.SecurityConfig{
		CORSOrigins:       []string{"*"},
		RateLimitDisabled: true,
	})
	limited := mw.RateLimit(RateLimitConfig{Requests: 1, Window: time.Minute})(http.HandlerFunc(okHandler))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d with limiting disabled", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestSecurityHeaders_PlainHTTP(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://api.local/x", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set on a plain HTTP request")
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(okHandler))

	// Direct TLS.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "https://api.local/x", nil))
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing on a TLS request")
	}

	// TLS terminated at a proxy.
	req := httptest.NewRequest(http.MethodGet, "http://api.local/x", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing behind a TLS-terminating proxy")
	}
}

func TestCORS_ActualRequest(t *testing.T) {
	mw := NewChiMiddleware(&config.SecurityConfig{CORSOrigins: []string{"*"}})
	h := mw.CORS()(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Origin", "https://app.localis.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	mw := NewChiMiddleware(&config.SecurityConfig{
		CORSOrigins: []string{"https://app.localis.example"},
	})
	h := mw.CORS()(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// The request itself still runs; the browser enforces the missing
	// allow header.
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q for a disallowed origin, want empty", got)
	}
}
