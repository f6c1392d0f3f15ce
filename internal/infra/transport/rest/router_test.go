package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowradar/flowradar/internal/app"
	"github.com/flowradar/flowradar/internal/domain/entity"
	"github.com/flowradar/flowradar/internal/infra/metrics"
	"github.com/flowradar/flowradar/internal/infra/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	svc := app.NewService(memory.NewHistoryStore(100, 50), m, slog.Default())
	srv := httptest.NewServer(NewRouter(svc, m, registry, slog.Default()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func slowPR(id string, reviewMinutes float64) map[string]any {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	firstReview := created.Add(time.Duration(reviewMinutes * float64(time.Minute)))
	approved := firstReview.Add(30 * time.Minute)
	merged := approved.Add(15 * time.Minute)
	return map[string]any{
		"id":              id,
		"author":          "alice",
		"status":          "merged",
		"created_at":      created,
		"first_review_at": firstReview,
		"approved_at":     approved,
		"merged_at":       merged,
		"files_changed":   10,
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalysisRun(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/analysis/run", map[string]any{
		"org":  "acme",
		"team": "payments",
		"repo": "billing",
		"pull_requests": []any{
			slowPR("pr-1", 700),
			slowPR("pr-2", 800),
			slowPR("pr-3", 900),
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result entity.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotNil(t, result.Constraints.PrimaryConstraint)
	assert.Equal(t, entity.StageFirstReview, result.Constraints.PrimaryConstraint.Stage)
	assert.NotNil(t, result.RootCause)
	assert.NotEmpty(t, result.Forecast.Forecasts)
}

func TestAnalysisFlow_InvalidBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/analysis/flow", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalysisFlow_MissingCreatedAt(t *testing.T) {
	srv := newTestServer(t)

	pr := slowPR("pr-1", 100)
	delete(pr, "created_at")
	resp := postJSON(t, srv.URL+"/analysis/flow", map[string]any{
		"org":           "acme",
		"repo":          "billing",
		"pull_requests": []any{pr},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConstraintHistoryRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/analysis/run", map[string]any{
		"org":  "acme",
		"repo": "billing",
		"pull_requests": []any{
			slowPR("pr-1", 700),
			slowPR("pr-2", 800),
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	histResp, err := http.Get(srv.URL + "/constraints/history?org=acme&repo=billing")
	require.NoError(t, err)
	defer histResp.Body.Close()
	require.Equal(t, http.StatusOK, histResp.StatusCode)

	var payload struct {
		Constraints []entity.Constraint `json:"constraints"`
	}
	require.NoError(t, json.NewDecoder(histResp.Body).Decode(&payload))
	assert.NotEmpty(t, payload.Constraints)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/constraints/history?org=acme&repo=billing", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
}

func TestConstraintHistory_RequiresKey(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/constraints/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAcknowledgeConstraint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/analysis/run", map[string]any{
		"org":  "acme",
		"repo": "billing",
		"pull_requests": []any{
			slowPR("pr-1", 700),
			slowPR("pr-2", 800),
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result entity.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotNil(t, result.Constraints.PrimaryConstraint)
	id := result.Constraints.PrimaryConstraint.ID

	ackURL := fmt.Sprintf("%s/constraints/%s/acknowledge?org=acme&repo=billing", srv.URL, id)
	ackResp := postJSON(t, ackURL, nil)
	require.Equal(t, http.StatusOK, ackResp.StatusCode)

	var acked entity.Constraint
	require.NoError(t, json.NewDecoder(ackResp.Body).Decode(&acked))
	assert.NotNil(t, acked.AcknowledgedAt)
}

func TestAcknowledgeConstraint_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/constraints/no-such-id/acknowledge?org=acme&repo=billing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalysisOwnership(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/analysis/ownership", map[string]any{
		"contributors": []any{
			map[string]any{"author": "alice", "commits": 90},
			map[string]any{"author": "bob", "commits": 10},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report entity.OwnershipReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 1, report.BusFactor)
	assert.Equal(t, entity.SeverityCritical, report.Risk)
}

func TestAnalysisOwnership_EmptyContributors(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/analysis/ownership", map[string]any{"contributors": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
