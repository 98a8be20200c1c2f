// Package export persists scored runs to a SQLite database so results can
// be queried and compared across runs after the pipeline has finished.
package export

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - initial schema (runs, district_scores, district_days, alerts)
const currentSchemaVersion = 1

// Store error codes.
const (
	ErrCodeOpen   = "E401"
	ErrCodeSchema = "E402"
	ErrCodeWrite  = "E403"
	ErrCodeRead   = "E404"
)

// StoreError wraps a results-database failure with a stable code.
type StoreError struct {
	Code string
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(code, op string, err error) error {
	return &StoreError{Code: code, Op: op, Err: err}
}

// Store is a results database handle.
//
// SQLite only supports one writer at a time, so the connection pool is
// capped at a single connection; WAL mode keeps concurrent readers working
// while an export is in flight.
type Store struct {
	db *sql.DB
}

// Open creates or opens the results database at path, applying pragmas and
// the schema. Opening the same path twice is safe; opening a database
// written by a newer schema version fails rather than guessing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, storeErr(ErrCodeOpen, "open results db", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storeErr(ErrCodeOpen, "connect to results db", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying handle for direct queries. Prefer the Store
// methods where one exists.
func (s *Store) DB() *sql.DB {
	return s.db
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return storeErr(ErrCodeOpen, fmt.Sprintf("execute %q", pragma), err)
		}
	}
	return nil
}

// applySchema creates the tables and gates on the schema version stored in
// user_version. The schema itself is idempotent.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return storeErr(ErrCodeSchema, "get user_version", err)
	}
	if version > currentSchemaVersion {
		return storeErr(ErrCodeSchema, "check schema version",
			fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion))
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return storeErr(ErrCodeSchema, "execute schema", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return storeErr(ErrCodeSchema, "set user_version", err)
		}
	}
	return nil
}

// ErrRunNotFound reports a run token absent from the runs table.
var ErrRunNotFound = errors.New("run not found")

func readErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrRunNotFound
	}
	return storeErr(ErrCodeRead, op, err)
}
