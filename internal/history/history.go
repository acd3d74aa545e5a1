// Package history persists local front-end state: search history, recently
// opened documents, and small UI state bits. Everything about documents
// themselves lives in the external tool; this store only remembers what the
// user did.
package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite history database. A nil *Store is a valid no-op
// store, used when history is disabled in the config.
type Store struct {
	db *sql.DB
}

// SearchEntry is one remembered search.
type SearchEntry struct {
	ID          string
	Query       string
	Mode        string
	Collection  string
	ResultCount int
	CreatedAt   time.Time
}

// RecentDocument is one remembered document open.
type RecentDocument struct {
	DocID      string
	Collection string
	Path       string
	Title      string
	OpenedAt   time.Time
}

// Open opens (or creates) the history database at path and runs
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS search_history (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			mode TEXT NOT NULL,
			collection TEXT NOT NULL DEFAULT '',
			result_count INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_history_created ON search_history(created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS recent_documents (
			doc_id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			path TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			opened_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recent_documents_opened ON recent_documents(opened_at DESC)`,

		`CREATE TABLE IF NOT EXISTS ui_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// AddSearch records a search. Duplicate consecutive queries are still
// recorded; pruning keeps the table bounded.
func (s *Store) AddSearch(query, mode, collection string, resultCount int) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO search_history (id, query, mode, collection, result_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), query, mode, collection, resultCount, time.Now().Unix())
	return err
}

// RecentSearches returns the newest entries, most recent first.
func (s *Store) RecentSearches(limit int) ([]SearchEntry, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT id, query, mode, collection, result_count, created_at
		FROM search_history ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []SearchEntry
	for rows.Next() {
		var e SearchEntry
		var created int64
		if err := rows.Scan(&e.ID, &e.Query, &e.Mode, &e.Collection, &e.ResultCount, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TouchDocument upserts a recently opened document.
func (s *Store) TouchDocument(docID, collection, path, title string) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO recent_documents (doc_id, collection, path, title, opened_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			collection = excluded.collection,
			path = excluded.path,
			title = excluded.title,
			opened_at = excluded.opened_at
	`, docID, collection, path, title, time.Now().Unix())
	return err
}

// RecentDocuments returns recently opened documents, most recent first.
func (s *Store) RecentDocuments(limit int) ([]RecentDocument, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT doc_id, collection, path, title, opened_at
		FROM recent_documents ORDER BY opened_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []RecentDocument
	for rows.Next() {
		var d RecentDocument
		var opened int64
		if err := rows.Scan(&d.DocID, &d.Collection, &d.Path, &d.Title, &opened); err != nil {
			return nil, err
		}
		d.OpenedAt = time.Unix(opened, 0)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SetState stores a UI state value under key.
func (s *Store) SetState(key, value string) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO ui_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetState returns the stored value for key, or "" when unset.
func (s *Store) GetState(key string) (string, error) {
	if s == nil {
		return "", nil
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM ui_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Prune drops all but the newest max entries from search_history and
// recent_documents.
func (s *Store) Prune(max int) error {
	if s == nil {
		return nil
	}
	if _, err := s.db.Exec(`
		DELETE FROM search_history WHERE id NOT IN (
			SELECT id FROM search_history ORDER BY created_at DESC, rowid DESC LIMIT ?
		)
	`, max); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		DELETE FROM recent_documents WHERE doc_id NOT IN (
			SELECT doc_id FROM recent_documents ORDER BY opened_at DESC LIMIT ?
		)
	`, max)
	return err
}
