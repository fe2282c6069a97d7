// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
//
// Struct tags serve two purposes here:
//
//  1. json:"..." controls how the field appears in API responses.
//  2. db:"..."   maps the field to a column for sqlx scanning.
package types

// Student represents a student record. Students exist on their own and
// are only referenced by courses.
type Student struct {
	ID        int64  `json:"id"         db:"id"`
	Name      string `json:"name"       db:"name"`
	BirthDate Date   `json:"birth_date" db:"birth_date"`
}

// Course represents a course and the ids of the students enrolled in it.
//
// Students is never nil once loaded from storage so that it encodes as []
// rather than null. The order is the order students were attached in.
type Course struct {
	ID       int64   `json:"id"       db:"id"`
	Name     string  `json:"name"     db:"name"`
	Students []int64 `json:"students" db:"-"`
}
