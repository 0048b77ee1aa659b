package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbme/platform-assistant/chat"
	"github.com/gbme/platform-assistant/config"
	"github.com/gbme/platform-assistant/handlers"
	"github.com/gbme/platform-assistant/logger"
	"github.com/gbme/platform-assistant/rancher"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger.ConfigureTestLogging(t)
	cfg := &config.Config{Source: config.SourceMock, ChatRateLimit: 100, StatsInterval: time.Minute}
	api := handlers.NewAPI(chat.New(rancher.NewMock(), nil))
	return newRouter(cfg, api, handlers.NewStatsHub(api, cfg.StatsInterval, nil))
}

func TestRouter(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		method string
		path   string
		body   string
		code   int
		want   string
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK, "ok"},
		{http.MethodGet, "/", "", http.StatusOK, "ChatWidget"},
		{http.MethodGet, "/static/chat.js", "", http.StatusOK, "class ChatWidget"},
		{http.MethodGet, "/api/stats", "", http.StatusOK, `"total_clusters":4`},
		{http.MethodPost, "/api/chat", `{"message":"show all clusters"}`, http.StatusOK, `"count":4`},
		{http.MethodPost, "/api/utilization", `{"kind":"cpu","requested":"1","capacity":"4"}`, http.StatusOK, `"percent":25`},
		{http.MethodGet, "/api/chat", "", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/ws/stats", "", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestRouter_CORS(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginChecker(t *testing.T) {
	assert.Nil(t, originChecker(&config.Config{}))

	check := originChecker(&config.Config{AllowedOrigins: []string{"https://portal.example.com"}})
	require.NotNil(t, check)

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://portal.example.com", true},
		{"http://example.com", true}, // same host as the request
		{"https://evil.example.net", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws/stats", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, check(req))
		})
	}
}

func TestBuildSources(t *testing.T) {
	logger.ConfigureTestLogging(t)

	clusters, records, err := buildSources(&config.Config{Source: config.SourceMock})
	require.NoError(t, err)
	assert.IsType(t, &rancher.Mock{}, clusters)
	assert.Nil(t, records)

	clusters, _, err = buildSources(&config.Config{Source: config.SourceRancher, RancherURL: "https://rancher.example.com", RancherToken: rancher.MockToken})
	require.NoError(t, err)
	assert.IsType(t, &rancher.Mock{}, clusters)

	clusters, _, err = buildSources(&config.Config{Source: config.SourceRancher, RancherURL: "https://rancher.example.com", RancherToken: "token-x", RancherTimeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &rancher.Client{}, clusters)

	_, _, err = buildSources(&config.Config{Source: config.SourceInventory, InventoryPath: filepath.Join(t.TempDir(), "missing.xlsx"), InventorySheet: "Servers"})
	assert.Error(t, err)
}
