// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/ctxutil"
	"github.com/taibuivan/comicvault/internal/platform/middleware"
	"github.com/taibuivan/comicvault/internal/platform/sec"
)

var ok = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func serve(handler http.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestRequestID reuses the caller's ID or generates one.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "abc-123")
	recorder := serve(handler, request)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", recorder.Header().Get(constants.HeaderXRequestID))

	recorder = serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))
}

/*
TestRateLimit rejects a client once its burst is spent.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 0.001, 2)(ok)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(handler, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get(constants.HeaderRetryAfter))

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set(constants.HeaderXRealIP, "10.0.0.9")
	assert.Equal(t, http.StatusOK, serve(handler, other).Code)
}

/*
TestPanicRecovery turns a panic into a 500 envelope.
*/
func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

type corsPolicy struct {
	dev     bool
	origins []string
}

func (p corsPolicy) IsDevelopment() bool      { return p.dev }
func (p corsPolicy) AllowedOrigins() []string { return p.origins }

/*
TestCORS echoes only allowed origins outside development.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(corsPolicy{origins: []string{"https://reader.example"}})(ok)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderOrigin, "https://reader.example")
	assert.Equal(t, "https://reader.example", serve(handler, request).Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderOrigin, "https://evil.example")
	assert.Empty(t, serve(handler, request).Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/", nil)
	preflight.Header.Set(constants.HeaderOrigin, "https://any.example")
	recorder := serve(middleware.CORS(corsPolicy{dev: true})(ok), preflight)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://any.example", recorder.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestAuthenticate_RequireRole guards admin routes with a signed token.
*/
func TestAuthenticate_RequireRole(t *testing.T) {
	tokens, err := sec.NewTokenService("test-secret", constants.AuthIssuer)
	require.NoError(t, err)

	admin, err := tokens.GenerateToken("ops", sec.RoleAdmin, time.Minute)
	require.NoError(t, err)
	viewer, err := tokens.GenerateToken("guest", sec.RoleViewer, time.Minute)
	require.NoError(t, err)

	handler := middleware.Authenticate(tokens)(middleware.RequireRole(sec.RoleAdmin)(ok))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"admin", "Bearer " + admin, http.StatusOK},
		{"viewer", "Bearer " + viewer, http.StatusForbidden},
		{"anonymous", "", http.StatusUnauthorized},
		{"bad_scheme", "Basic " + admin, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/admin/imports", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			assert.Equal(t, tt.want, serve(handler, request).Code)
		})
	}
}
