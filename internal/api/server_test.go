package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/costshare/internal/api"
	"github.com/eshaffer321/costshare/internal/api/dto"
	"github.com/eshaffer321/costshare/internal/application/billing"
	"github.com/eshaffer321/costshare/internal/infrastructure/config"
	"github.com/eshaffer321/costshare/internal/infrastructure/metrics"
	"github.com/eshaffer321/costshare/internal/infrastructure/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Projects: []config.ProjectConfig{
			{ID: "A", Name: "Project A", Client: "Acme", Billable: true},
			{ID: "B", Name: "Project B", Client: "Globex", Billable: true},
		},
		Services: []config.ServiceConfig{
			{ID: "S1", Name: "Shared API", Category: "ai", CostEstimate: "$100", Projects: []string{"A", "B"}},
		},
	}
}

func newTestServer(t *testing.T) (*api.Server, *storage.MockRepository) {
	t.Helper()
	repo := storage.NewMockRepository()
	repo.Version = 2
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	reg := prometheus.NewRegistry()
	svc := billing.NewService(testConfig(), repo, metrics.NewRecorder(reg), logger)

	server := api.NewServer(api.DefaultConfig(), svc, reg, logger)
	return server, repo
}

func serve(server *api.Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := serve(server, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, int64(2), response.SchemaVersion)
}

func TestServer_OverrideFlow(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("even split before override", func(t *testing.T) {
		rec := serve(server, http.MethodGet, "/api/billing", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.BillingResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response.Projects, 2)
		assert.Equal(t, 50.0, response.Projects[0].Total)
		assert.Equal(t, "even_split", string(response.Projects[0].Services[0].Source))
	})

	t.Run("PUT weights applies on next compute", func(t *testing.T) {
		rec := serve(server, http.MethodPut, "/api/services/S1/weights", `{"weights":{"A":25,"B":75}}`)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = serve(server, http.MethodGet, "/api/billing", "")
		var response dto.BillingResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.Equal(t, "B", response.Projects[0].ID)
		assert.Equal(t, 75.0, response.Projects[0].Total)
		assert.Equal(t, 75, response.Projects[0].Services[0].Percent)
		assert.Equal(t, 25.0, response.Projects[1].Total)
		assert.Equal(t, 100.0, response.Summary.Total)
	})

	t.Run("malformed override leaves state untouched", func(t *testing.T) {
		rec := serve(server, http.MethodPut, "/api/services/S1/weights", `{"weights":{"A":100}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = serve(server, http.MethodGet, "/api/billing", "")
		var response dto.BillingResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 75.0, response.Projects[0].Total)
	})

	t.Run("DELETE weights restores even split", func(t *testing.T) {
		rec := serve(server, http.MethodDelete, "/api/services/S1/weights", "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = serve(server, http.MethodGet, "/api/billing", "")
		var response dto.BillingResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 50.0, response.Projects[0].Total)
	})
}

func TestServer_UnknownServiceReturns404(t *testing.T) {
	server, _ := newTestServer(t)

	rec := serve(server, http.MethodDelete, "/api/services/missing/weights", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SnapshotEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	rec := serve(server, http.MethodPost, "/api/snapshot", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(server, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var response dto.HistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, 100.0, response.Snapshots[0].Total)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	serve(server, http.MethodGet, "/api/billing", "")
	rec := serve(server, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "costshare_allocation_runs_total 1")
	assert.Contains(t, rec.Body.String(), `costshare_project_allocated_dollars{project="A"} 50`)
}

func TestServer_CORS(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("sets CORS headers for allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:4200")
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:4200", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("handles OPTIONS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/billing", nil)
		req.Header.Set("Origin", "http://localhost:4200")
		req.Header.Set("Access-Control-Request-Method", "GET")
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	})
}
