// store.go - Persistenz für Trainings-Runs und ihre Kennzahlen
// Enthält: Store, New, CreateRun, SetStatus, SetFinal, AppendMetric,
// GetRun, ListRuns, DeleteRun

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ovdet/ovdet/api"
)

// Run-Status-Werte
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Store persistiert Trainings-Runs in einer SQLite-Datenbank
type Store struct {
	db *database
}

// New öffnet den Store unter dir (wird bei Bedarf angelegt)
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	db, err := newDatabase(filepath.Join(dir, "runs.db"))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close schließt den Store
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun legt einen neuen Run an und gibt ihn zurück
func (s *Store) CreateRun(mode, model, data string) (*api.Run, error) {
	now := time.Now().UTC()
	run := api.Run{
		ID:        uuid.NewString(),
		Mode:      mode,
		Model:     model,
		Data:      data,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.conn.Exec(`
		INSERT INTO runs (id, mode, model, data, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Mode, run.Model, run.Data, run.Status, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	return &run, nil
}

// SetStatus aktualisiert den Status eines Runs
func (s *Store) SetStatus(id, status string) error {
	res, err := s.db.conn.Exec(`
		UPDATE runs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, id)
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// SetFinal schreibt die finalen Validierungs-Kennzahlen eines Runs
func (s *Store) SetFinal(id string, map50, map5095 float64) error {
	res, err := s.db.conn.Exec(`
		UPDATE runs SET final_map50 = ?, final_map50_95 = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, map50, map5095, id)
	if err != nil {
		return fmt.Errorf("update run final metrics: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// AppendMetric hängt die Kennzahlen einer Epoche an einen Run an
func (s *Store) AppendMetric(id string, m api.RunMetric) error {
	_, err := s.db.conn.Exec(`
		INSERT INTO metrics (run_id, epoch, box_loss, cls_loss, dfl_loss, map50, map50_95)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, m.Epoch, m.BoxLoss, m.ClsLoss, m.DFLLoss, m.MAP50, m.MAP5095)
	if err != nil {
		return fmt.Errorf("append metric: %w", err)
	}
	return nil
}

// GetRun gibt einen Run mit allen Epochen-Kennzahlen zurück
func (s *Store) GetRun(id string) (*api.Run, []api.RunMetric, error) {
	var run api.Run
	err := s.db.conn.QueryRow(`
		SELECT id, mode, model, data, status, created_at, updated_at, final_map50, final_map50_95
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Mode, &run.Model, &run.Data, &run.Status,
		&run.CreatedAt, &run.UpdatedAt, &run.FinalMAP50, &run.FinalMAP5095)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("run %s not found", id)
		}
		return nil, nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := s.db.conn.Query(`
		SELECT epoch, box_loss, cls_loss, dfl_loss, map50, map50_95
		FROM metrics WHERE run_id = ? ORDER BY epoch
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var metrics []api.RunMetric
	for rows.Next() {
		var m api.RunMetric
		if err := rows.Scan(&m.Epoch, &m.BoxLoss, &m.ClsLoss, &m.DFLLoss, &m.MAP50, &m.MAP5095); err != nil {
			return nil, nil, fmt.Errorf("scan metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate metrics: %w", err)
	}

	return &run, metrics, nil
}

// ListRuns gibt alle Runs zurück, neueste zuerst
func (s *Store) ListRuns() ([]api.Run, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, mode, model, data, status, created_at, updated_at, final_map50, final_map50_95
		FROM runs ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []api.Run
	for rows.Next() {
		var run api.Run
		if err := rows.Scan(&run.ID, &run.Mode, &run.Model, &run.Data, &run.Status,
			&run.CreatedAt, &run.UpdatedAt, &run.FinalMAP50, &run.FinalMAP5095); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// DeleteRun löscht einen Run und alle zugehörigen Kennzahlen
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.conn.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", id)
	}

	_, _ = s.db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return nil
}
