package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-cli/internal/config"
	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/pipeline"
	"github.com/sells-group/contact-cli/internal/store"
	"github.com/sells-group/contact-cli/pkg/apollo/mocks"
)

func newTestEnv(t *testing.T) *pipelineEnv {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	testCfg := &config.Config{
		Pipeline: config.PipelineConfig{
			MatchAcceptThreshold:  3,
			SearchPerPage:         5,
			ConfidenceHighFound:   6,
			ConfidenceHighMissing: 2,
			ConfidenceMediumFound: 3,
			QualityCompleteFields: 5,
			QualityPartialFields:  2,
			StepTimeoutSecs:       5,
			ProfileCacheTTLHours:  24,
		},
		Retry:   config.RetryConfig{MaxAttempts: 1, InitialBackoffMs: 1, MaxBackoffMs: 1, Multiplier: 1, JitterFraction: 0},
		Circuit: config.CircuitConfig{FailureThreshold: 5, ResetTimeoutSecs: 30},
	}

	// No search or places clients; those steps report as not configured.
	p := pipeline.New(testCfg, mocks.NewMockClient(t), nil, nil, pipeline.DefaultRefData()).WithCache(st)

	return &pipelineEnv{Store: st, Pipeline: p}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRouter_Health(t *testing.T) {
	srv := httptest.NewServer(newRouter(context.Background(), newTestEnv(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestRouter_Enrich_MissingUserHeader(t *testing.T) {
	srv := httptest.NewServer(newRouter(context.Background(), newTestEnv(t)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/enrich", "application/json", strings.NewReader(`{"first_name": "Jane"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing X-User-ID header", decodeBody(t, resp)["error"])
}

func TestRouter_Enrich_BadBody(t *testing.T) {
	srv := httptest.NewServer(newRouter(context.Background(), newTestEnv(t)))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/enrich", strings.NewReader(`not json`))
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "user-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_Enrich_EmptyContact(t *testing.T) {
	srv := httptest.NewServer(newRouter(context.Background(), newTestEnv(t)))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/enrich", strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "user-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "empty contact", decodeBody(t, resp)["error"])
}

func TestRouter_Enrich_AcceptedAndCompletes(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(newRouter(context.Background(), env))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/enrich", strings.NewReader(`{"first_name": "Jane", "last_name": "Smith"}`))
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "user-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	body := decodeBody(t, resp)
	runID, _ := body["run_id"].(string)
	require.NotEmpty(t, runID)
	assert.Equal(t, "queued", body["status"])

	// The contact has no identifiers and no company, so the run completes
	// without any provider calls; wait for the async worker to finish.
	require.Eventually(t, func() bool {
		run, err := env.Store.GetRun(context.Background(), runID)
		return err == nil && run.Status == model.RunStatusComplete
	}, 5*time.Second, 20*time.Millisecond)

	run, err := env.Store.GetRun(context.Background(), runID)
	require.NoError(t, err)
	require.NotNil(t, run.Report)
	assert.Equal(t, "user-1", run.UserID)
	assert.Equal(t, model.ConfidenceLow, run.Report.Summary.Confidence)
}

func TestRouter_GetRun_NotFound(t *testing.T) {
	srv := httptest.NewServer(newRouter(context.Background(), newTestEnv(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs/no-such-run")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ListRuns(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(newRouter(context.Background(), env))
	defer srv.Close()

	_, err := env.Store.CreateRun(context.Background(), "user-1", model.Contact{"first_name": "Jane"})
	require.NoError(t, err)
	_, err = env.Store.CreateRun(context.Background(), "user-2", model.Contact{"first_name": "Bob"})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/runs?user_id=user-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	runs, ok := body["runs"].([]any)
	require.True(t, ok)
	assert.Len(t, runs, 1)
}
