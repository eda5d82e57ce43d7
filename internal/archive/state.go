package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB is the local existence-check cache: which archive buckets have
// been verified to exist and which exports have already been uploaded.
// It is advisory only — losing it costs re-verification, never data.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS verified_buckets (
	bucket      TEXT PRIMARY KEY,
	verified_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS uploaded_exports (
	export_id   TEXT PRIMARY KEY,
	uri         TEXT NOT NULL,
	digest      TEXT NOT NULL,
	uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state tables: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsBucketVerified checks whether a bucket's existence was already confirmed.
func (s *StateDB) IsBucketVerified(bucket string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM verified_buckets WHERE bucket = ?`, bucket,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkBucketVerified records a confirmed bucket.
func (s *StateDB) MarkBucketVerified(bucket string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO verified_buckets (bucket) VALUES (?)`, bucket)
	return err
}

// IsUploaded checks whether an export with this identity and digest was
// already archived, so unchanged rebuilds skip the upload.
func (s *StateDB) IsUploaded(exportID, digest string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM uploaded_exports WHERE export_id = ? AND digest = ?`,
		exportID, digest,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkUploaded records a successful export upload.
func (s *StateDB) MarkUploaded(exportID, uri, digest string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO uploaded_exports (export_id, uri, digest) VALUES (?, ?, ?)`,
		exportID, uri, digest)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
