// Package postgres opens a PostgreSQL-backed storage.Storage using lib/pq.
package postgres

import (
	"context"
	"fmt"

	"github.com/aanand-mishra/courses-api/internal/storage/sqlstore"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
)

// Schema mirrors the SQLite schema with PostgreSQL types.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id         BIGSERIAL    PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		birth_date DATE         NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id   BIGSERIAL    PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS course_students (
		id         BIGSERIAL PRIMARY KEY,
		course_id  BIGINT    NOT NULL REFERENCES courses(id)  ON DELETE CASCADE,
		student_id BIGINT    NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		UNIQUE (course_id, student_id)
	)`,
	`CREATE INDEX IF NOT EXISTS course_students_student_id ON course_students (student_id)`,
}

// New connects to PostgreSQL with the given connection string, creates the
// tables and returns a ready-to-use store.
func New(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: database connection failed: %w", err)
	}

	store, err := sqlstore.New(ctx, db, Schema)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}
	return store, nil
}
