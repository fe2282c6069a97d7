// Package storage defines the Storage interface, the contract that any
// database backend must satisfy to work with this application.
//
// Handlers depend only on these interfaces, never on a concrete database.
// The storage handle is created once in main and passed explicitly to
// every handler factory; there is no package-level database state.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/courses-api/internal/types"
)

// Sentinel errors. Backends wrap them with %w so callers can classify a
// failure with errors.Is.
var (
	// ErrNotFound means the requested id does not resolve to a record.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidReference means a course refers to a student id that does
	// not exist.
	ErrInvalidReference = errors.New("invalid related record")
)

// CourseFilter restricts GetCourses. Nil fields do not filter; set fields
// are exact matches combined with AND.
type CourseFilter struct {
	ID   *int64
	Name *string
}

// CourseUpdate carries a partial course update. Nil fields are left
// untouched. A non-nil Students replaces the whole enrollment set.
type CourseUpdate struct {
	Name     *string
	Students *[]int64
}

// StudentUpdate carries a partial student update.
type StudentUpdate struct {
	Name      *string
	BirthDate *types.Date
}

// StudentStorage is the persistence contract for students.
type StudentStorage interface {
	// CreateStudent inserts a new student and returns the stored record.
	CreateStudent(ctx context.Context, name string, birthDate types.Date) (types.Student, error)

	// GetStudentByID returns ErrNotFound if no student has this id.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudents returns every student ordered by id. Never nil.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID applies the non-nil fields of upd.
	UpdateStudentByID(ctx context.Context, id int64, upd StudentUpdate) (types.Student, error)

	// DeleteStudentByID removes the student and detaches it from every course.
	DeleteStudentByID(ctx context.Context, id int64) error
}

// CourseStorage is the persistence contract for courses and their
// enrollments.
type CourseStorage interface {
	// CreateCourse inserts a course enrolling studentIDs, in order, with
	// duplicates dropped. Returns ErrInvalidReference if any id is unknown.
	CreateCourse(ctx context.Context, name string, studentIDs []int64) (types.Course, error)

	// GetCourseByID returns ErrNotFound if no course has this id.
	GetCourseByID(ctx context.Context, id int64) (types.Course, error)

	// GetCourses returns the courses matching filter ordered by id. Never nil.
	GetCourses(ctx context.Context, filter CourseFilter) ([]types.Course, error)

	// UpdateCourseByID applies the non-nil fields of upd.
	UpdateCourseByID(ctx context.Context, id int64, upd CourseUpdate) (types.Course, error)

	// DeleteCourseByID removes the course and its enrollments. Students are kept.
	DeleteCourseByID(ctx context.Context, id int64) error
}

// Storage is the full database contract.
type Storage interface {
	StudentStorage
	CourseStorage

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}
