// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/api"
	"github.com/taibuivan/comicvault/internal/core/comic"
	"github.com/taibuivan/comicvault/internal/core/reading"
	"github.com/taibuivan/comicvault/internal/ingest"
	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/database/dbtest"
	"github.com/taibuivan/comicvault/internal/platform/sec"
)

const testSecret = "test-secret-with-enough-entropy"

func newServer(t *testing.T, withAdmin bool, deps api.HealthDependencies) *api.Server {
	t.Helper()

	handle := dbtest.Open(t)
	logger := dbtest.Logger()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	liveness, readiness := api.NewHealthHandlers(deps, logger)
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Comic:     comic.NewHandler(comic.NewService(comic.NewStore(handle), nil, logger)),
		Reading:   reading.NewHandler(reading.NewService(reading.NewStore(handle), nil, nil, logger)),
	}

	cfg := &config.Config{ServerPort: "0", Environment: "test"}
	if withAdmin {
		verifier, err := sec.NewTokenService(testSecret, constants.AuthIssuer)
		require.NoError(t, err)
		handlers.Import = ingest.NewHandler(ingest.NewDefaultImporter(handle, nil, nil, logger))
		return api.NewServer(ctx, cfg, logger, verifier, handlers)
	}

	return api.NewServer(ctx, cfg, logger, nil, handlers)
}

func serve(server *api.Server, method, path, body, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request)
	return recorder
}

/*
TestServer_Routes reaches every catalogue route under both prefixes.
*/
func TestServer_Routes(t *testing.T) {
	server := newServer(t, false, api.HealthDependencies{})

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"ready", http.MethodGet, "/ready", http.StatusOK},
		{"list_v1", http.MethodGet, "/api/v1/comics", http.StatusOK},
		{"list_legacy", http.MethodGet, "/api/comics", http.StatusOK},
		{"get_missing", http.MethodGet, "/api/v1/comics/99", http.StatusNotFound},
		{"status_unknown_comic", http.MethodPost, "/api/comics/99/status", http.StatusNotFound},
		{"admin_disabled", http.MethodPost, "/api/v1/admin/imports?genre=action", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := ""
			if tt.method == http.MethodPost {
				body = `{"status":"ongoing"}`
			}
			recorder := serve(server, tt.method, tt.path, body, "")
			assert.Equal(t, tt.wantCode, recorder.Code, recorder.Body.String())
			assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))
		})
	}
}

/*
TestServer_AdminImport requires an admin token for imports.
*/
func TestServer_AdminImport(t *testing.T) {
	server := newServer(t, true, api.HealthDependencies{})

	tokens, err := sec.NewTokenService(testSecret, constants.AuthIssuer)
	require.NoError(t, err)
	adminToken, err := tokens.GenerateToken("ops", sec.RoleAdmin, constants.DefaultAdminTokenTTL)
	require.NoError(t, err)
	viewerToken, err := tokens.GenerateToken("dash", sec.RoleViewer, constants.DefaultAdminTokenTTL)
	require.NoError(t, err)

	batch := `[{"name":"Solo Leveling","link":"https://example.com/solo","chapters":200}]`

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"viewer", viewerToken, http.StatusForbidden},
		{"admin", adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(server, http.MethodPost, "/api/v1/admin/imports?genre=action", batch, tt.token)
			assert.Equal(t, tt.wantCode, recorder.Code, recorder.Body.String())
		})
	}

	recorder := serve(server, http.MethodGet, "/api/v1/comics?genre=action", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var page struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
}

/*
TestServer_ReadinessDegraded reports a failing dependency with 503.
*/
func TestServer_ReadinessDegraded(t *testing.T) {
	server := newServer(t, false, api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return errors.New("connection refused") },
	})

	recorder := serve(server, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	var body struct {
		Data struct {
			Status string `json:"status"`
			Checks []struct {
				Name  string `json:"name"`
				IsOK  bool   `json:"ok"`
				Error string `json:"error"`
			} `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Data.Status)
	require.Len(t, body.Data.Checks, 2)
	assert.True(t, body.Data.Checks[0].IsOK)
	assert.Equal(t, "redis", body.Data.Checks[1].Name)
	assert.Equal(t, "connection refused", body.Data.Checks[1].Error)
}
