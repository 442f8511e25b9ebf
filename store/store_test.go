// store_test.go - Tests für den Run-Store
package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovdet/ovdet/api"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := newTestStore(t)

	run, err := s.CreateRun("finetune", "detector.gguf", "data.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, StatusPending, run.Status)

	got, metrics, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "finetune", got.Mode)
	assert.Empty(t, metrics)
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.GetRun("nope")
	assert.ErrorContains(t, err, "not found")
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)

	run, err := s.CreateRun("scratch", "detector.gguf", "data.yaml")
	require.NoError(t, err)

	require.NoError(t, s.SetStatus(run.ID, StatusRunning))
	for epoch := 1; epoch <= 3; epoch++ {
		require.NoError(t, s.AppendMetric(run.ID, api.RunMetric{
			Epoch:   epoch,
			BoxLoss: 1 / float64(epoch),
			MAP50:   0.1 * float64(epoch),
		}))
	}
	require.NoError(t, s.SetFinal(run.ID, 0.42, 0.31))
	require.NoError(t, s.SetStatus(run.ID, StatusCompleted))

	got, metrics, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 0.42, got.FinalMAP50)
	require.Len(t, metrics, 3)
	assert.Equal(t, 1, metrics[0].Epoch)
	assert.Equal(t, 3, metrics[2].Epoch)
}

func TestSetStatusUnknownRun(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorContains(t, s.SetStatus("nope", StatusRunning), "not found")
}

func TestListRuns(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRun("finetune", "a.gguf", "a.yaml")
	require.NoError(t, err)
	_, err = s.CreateRun("prompt-free", "b.gguf", "b.yaml")
	require.NoError(t, err)

	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestDeleteRunCascades(t *testing.T) {
	s := newTestStore(t)

	run, err := s.CreateRun("finetune", "a.gguf", "a.yaml")
	require.NoError(t, err)
	require.NoError(t, s.AppendMetric(run.ID, api.RunMetric{Epoch: 1}))

	require.NoError(t, s.DeleteRun(run.ID))

	_, _, err = s.GetRun(run.ID)
	assert.ErrorContains(t, err, "not found")

	// Kennzahlen hängen per ON DELETE CASCADE am Run
	var n int
	require.NoError(t, s.db.conn.QueryRow("SELECT COUNT(*) FROM metrics").Scan(&n))
	assert.Zero(t, n)
}

func TestSchemaReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	require.NoError(t, err)
	run, err := s.CreateRun("finetune", "a.gguf", "a.yaml")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Wiedereröffnen migriert nicht erneut und behält die Daten
	s2, err := New(dir)
	require.NoError(t, err)
	defer s2.Close()

	got, _, err := s2.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}
