// Package client is the device-side half of the application: local key/value
// persistence, a REST client for the server, and a sync manager that applies
// mutations optimistically and mirrors them best-effort.
package client

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Storage keys, one per persisted domain. Each is written back after every
// mutation of its domain.
const (
	KeyTasks     = "tasks"
	KeyUser      = "user"
	KeyAnalytics = "analytics"
	KeyLanguage  = "language"
)

// Storage is a JSON key/value store backed by a local sqlite file.
type Storage struct {
	db *sqlx.DB
}

func OpenStorage(path string) (*Storage, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    )`); err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Get unmarshals the value stored under key into v. The boolean reports
// whether the key was present.
func (s *Storage) Get(key string, v any) (bool, error) {
	var raw string
	err := s.db.Get(&raw, "SELECT value FROM kv WHERE key = ?", key)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(raw), v)
}

func (s *Storage) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, string(raw))
	return err
}

func (s *Storage) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}

func (s *Storage) Close() error {
	return s.db.Close()
}
