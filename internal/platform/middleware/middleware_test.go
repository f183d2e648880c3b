// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookshelfie/shelfie/internal/platform/middleware"
)

// stubAppConfig drives the CORS middleware without a full config load.
type stubAppConfig struct {
	development  bool
	extraOrigins []string
}

func (s *stubAppConfig) IsDevelopment() bool           { return s.development }
func (s *stubAppConfig) AllowedExtraOrigins() []string { return s.extraOrigins }

// corsHeadersFor runs one request with the given Origin through the CORS
// middleware and returns the Access-Control-Allow-Origin header.
func corsHeadersFor(cfg middleware.AppConfig, origin string) string {
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", origin)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder.Header().Get("Access-Control-Allow-Origin")
}

/*
TestCORS_AllowList verifies the production allow-list: bookshelfie.app
origins by suffix, configured extra origins exactly, everything else denied.
*/
func TestCORS_AllowList(t *testing.T) {
	cfg := &stubAppConfig{extraOrigins: []string{"https://preview.shelfie.dev"}}

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"app_origin", "https://bookshelfie.app", true},
		{"app_subdomain", "https://www.bookshelfie.app", true},
		{"extra_origin", "https://preview.shelfie.dev", true},
		{"extra_origin_suffix_no_match", "https://evil-preview.shelfie.dev.attacker.io", false},
		{"unknown_origin", "https://attacker.io", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := corsHeadersFor(cfg, tt.origin)
			if tt.allowed {
				assert.Equal(t, tt.origin, header)
			} else {
				assert.Empty(t, header)
			}
		})
	}
}

/*
TestCORS_Development verifies development mode reflects any origin.
*/
func TestCORS_Development(t *testing.T) {
	cfg := &stubAppConfig{development: true}

	assert.Equal(t, "http://localhost:5173", corsHeadersFor(cfg, "http://localhost:5173"))
}
