// database.go - Kern-Datenbank-Funktionen für den Run-Store
// Enthält: database struct, newDatabase, Close, init, migrate

package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite-Treiber registrieren
)

// currentSchemaVersion definiert die aktuelle Datenbank-Schema-Version.
// Wird bei Schema-Änderungen erhöht, die Migrationen erfordern.
const currentSchemaVersion = 2

// database umhüllt die SQLite-Verbindung.
// SQLite verwaltet sein eigenes Locking für konkurrierende Zugriffe:
// - Mehrere Leser können gleichzeitig auf die Datenbank zugreifen
// - Schreiber werden serialisiert (nur ein Schreiber gleichzeitig)
// - WAL-Modus erlaubt Lesern, Schreiber nicht zu blockieren
// Daher benötigen wir keine Application-Level-Locks für Datenbankoperationen.
type database struct {
	conn *sql.DB
}

// newDatabase erstellt eine neue Datenbankverbindung
func newDatabase(dbPath string) (*database, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &database{conn: conn}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return db, nil
}

// Close schließt die Datenbankverbindung
func (db *database) Close() error {
	_, _ = db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return db.conn.Close()
}

// init initialisiert das Datenbankschema
func (db *database) init() error {
	if _, err := db.conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL DEFAULT %d
	);

	INSERT OR IGNORE INTO meta (id) VALUES (1);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		epoch INTEGER NOT NULL,
		box_loss REAL NOT NULL DEFAULT 0,
		cls_loss REAL NOT NULL DEFAULT 0,
		dfl_loss REAL NOT NULL DEFAULT 0,
		map50 REAL NOT NULL DEFAULT 0,
		map50_95 REAL NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_metrics_run_id ON metrics(run_id);
	`, currentSchemaVersion)

	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	if err := db.migrate(); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return nil
}

// migrate bringt ältere Schemata auf die aktuelle Version
func (db *database) migrate() error {
	var version int
	if err := db.conn.QueryRow("SELECT schema_version FROM meta WHERE id = 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 2 {
		// v2: finale Validierungs-Kennzahlen am Run
		_, err := db.conn.Exec("ALTER TABLE runs ADD COLUMN final_map50 REAL NOT NULL DEFAULT 0")
		if err != nil && !duplicateColumnError(err) {
			return fmt.Errorf("add final_map50: %w", err)
		}
		_, err = db.conn.Exec("ALTER TABLE runs ADD COLUMN final_map50_95 REAL NOT NULL DEFAULT 0")
		if err != nil && !duplicateColumnError(err) {
			return fmt.Errorf("add final_map50_95: %w", err)
		}
	}

	if version != currentSchemaVersion {
		if _, err := db.conn.Exec("UPDATE meta SET schema_version = ? WHERE id = 1", currentSchemaVersion); err != nil {
			return fmt.Errorf("update schema version: %w", err)
		}
	}

	return nil
}

// duplicateColumnError prüft ob ein SQLite-Fehler eine doppelte Spalte meldet
func duplicateColumnError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}
