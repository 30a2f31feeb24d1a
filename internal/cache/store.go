package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/kozaktomas/burst-composer/internal/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS cluster_analyses (
	cluster_id  TEXT PRIMARY KEY,
	photo_count INTEGER NOT NULL,
	analyzed_at TEXT NOT NULL,
	payload     TEXT NOT NULL
);
`

// Store persists cluster analyses in a local sqlite database so results
// survive restarts. Payloads are stored as JSON documents.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the sqlite database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save upserts one cluster analysis.
func (s *Store) Save(a *analysis.ClusterFaceAnalysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO cluster_analyses (cluster_id, photo_count, analyzed_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cluster_id) DO UPDATE SET
			photo_count = excluded.photo_count,
			analyzed_at = excluded.analyzed_at,
			payload     = excluded.payload`,
		a.ClusterID, a.PhotoCount, a.AnalyzedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"), string(payload),
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// Load reads one cluster analysis; the bool reports existence.
func (s *Store) Load(clusterID string) (*analysis.ClusterFaceAnalysis, bool, error) {
	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM cluster_analyses WHERE cluster_id = ?", clusterID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load analysis: %w", err)
	}

	var a analysis.ClusterFaceAnalysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, false, fmt.Errorf("decode analysis: %w", err)
	}
	return &a, true, nil
}

// LoadAll reads every persisted analysis.
func (s *Store) LoadAll() ([]*analysis.ClusterFaceAnalysis, error) {
	rows, err := s.db.Query("SELECT payload FROM cluster_analyses")
	if err != nil {
		return nil, fmt.Errorf("load analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*analysis.ClusterFaceAnalysis
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}

		var a analysis.ClusterFaceAnalysis
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
		analyses = append(analyses, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return analyses, nil
}

// Delete removes one persisted analysis.
func (s *Store) Delete(clusterID string) error {
	if _, err := s.db.Exec("DELETE FROM cluster_analyses WHERE cluster_id = ?", clusterID); err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	return nil
}

// DeleteAll removes every persisted analysis.
func (s *Store) DeleteAll() error {
	if _, err := s.db.Exec("DELETE FROM cluster_analyses"); err != nil {
		return fmt.Errorf("delete analyses: %w", err)
	}
	return nil
}

// Count returns the number of persisted analyses.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM cluster_analyses").Scan(&count); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
