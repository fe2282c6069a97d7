// Package sqlite opens a SQLite-backed storage.Storage.
//
// SQLite stores everything in a single file on disk: no network, no
// separate server process, nothing to install beyond the driver.
//
// The blank import below registers the "sqlite3" driver with database/sql.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/aanand-mishra/courses-api/internal/storage/sqlstore"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"
)

// Schema creates the tables if they do not exist yet. course_students is
// the explicit join table between courses and students; the UNIQUE pair
// keeps a student from being enrolled twice and the cascades remove only
// enrollment rows.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL,
		birth_date DATE    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS course_students (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id  INTEGER NOT NULL REFERENCES courses(id)  ON DELETE CASCADE,
		student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		UNIQUE (course_id, student_id)
	)`,
	`CREATE INDEX IF NOT EXISTS course_students_student_id ON course_students (student_id)`,
}

// New opens the SQLite database at path, creates the tables and returns a
// ready-to-use store.
func New(ctx context.Context, path string) (*sqlstore.Store, error) {
	db, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows one writer at a time. A single connection serialises
	// transactions instead of failing them with "database is locked".
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	store, err := sqlstore.New(ctx, db, Schema)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}
	return store, nil
}

// dsn turns foreign key enforcement on for every connection. Without it
// SQLite ignores REFERENCES and ON DELETE CASCADE.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}
