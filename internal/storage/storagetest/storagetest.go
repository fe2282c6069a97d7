// Package storagetest provides throwaway stores and record factories for
// tests. Records get randomized names and birth dates, so tests should
// compare against what the factory returned rather than fixed values.
package storagetest

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/aanand-mishra/courses-api/internal/storage/sqlite"
	"github.com/aanand-mishra/courses-api/internal/storage/sqlstore"
	"github.com/aanand-mishra/courses-api/internal/types"
	"github.com/google/uuid"
)

// NewSQLite opens a fresh SQLite store in a temp dir. It is closed when
// the test ends.
func NewSQLite(t testing.TB) *sqlstore.Store {
	t.Helper()

	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// RandomName returns a unique name with the given prefix.
func RandomName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// RandomDate returns a birth date between 1990 and 2009.
func RandomDate() types.Date {
	return types.NewDate(1990+rand.IntN(20), time.Month(1+rand.IntN(12)), 1+rand.IntN(28))
}

// MakeStudents creates n students.
func MakeStudents(t testing.TB, store *sqlstore.Store, n int) []types.Student {
	t.Helper()

	students := make([]types.Student, 0, n)
	for range n {
		s, err := store.CreateStudent(context.Background(), RandomName("student"), RandomDate())
		if err != nil {
			t.Fatalf("create student: %v", err)
		}
		students = append(students, s)
	}
	return students
}

// MakeCourses creates n courses with no students.
func MakeCourses(t testing.TB, store *sqlstore.Store, n int) []types.Course {
	t.Helper()

	courses := make([]types.Course, 0, n)
	for range n {
		c, err := store.CreateCourse(context.Background(), RandomName("course"), nil)
		if err != nil {
			t.Fatalf("create course: %v", err)
		}
		courses = append(courses, c)
	}
	return courses
}
