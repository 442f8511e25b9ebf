// routes_test.go - Tests fuer Router und Run-Handler
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovdet/ovdet/api"
	"github.com/ovdet/ovdet/store"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := &Server{st: st}
	return s, s.GenerateRoutes()
}

func TestHeadRoot(t *testing.T) {
	_, h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVersion(t *testing.T) {
	_, h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.VersionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Version)
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListAndShowRuns(t *testing.T) {
	s, h := newTestServer(t)

	run, err := s.st.CreateRun("finetune", "detector.gguf", "data.yaml")
	require.NoError(t, err)
	require.NoError(t, s.st.AppendMetric(run.ID, api.RunMetric{Epoch: 1, MAP50: 0.4}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list api.ListRunsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, run.ID, list.Runs[0].ID)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var show api.ShowRunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &show))
	assert.Equal(t, "finetune", show.Run.Mode)
	require.Len(t, show.Metrics, 1)
	assert.Equal(t, 0.4, show.Metrics[0].MAP50)
}

func TestShowRunNotFound(t *testing.T) {
	_, h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRun(t *testing.T) {
	s, h := newTestServer(t)

	run, err := s.st.CreateRun("scratch", "detector.gguf", "data.yaml")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/runs/"+run.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/runs/"+run.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
