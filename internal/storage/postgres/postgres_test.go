package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/aanand-mishra/courses-api/internal/storage/postgres"
	"github.com/aanand-mishra/courses-api/internal/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Runs only against a real server, e.g.
// POSTGRES_TEST_DSN="host=localhost user=courses password=courses dbname=courses_test sslmode=disable"
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	Convey("Given a PostgreSQL store", t, func() {
		ctx := context.Background()
		store, err := postgres.New(ctx, dsn)
		So(err, ShouldBeNil)
		defer store.Close()

		_, err = store.DB().ExecContext(ctx, "TRUNCATE course_students, courses, students RESTART IDENTITY CASCADE")
		So(err, ShouldBeNil)

		Convey("When a course is created and patched", func() {
			s1, err := store.CreateStudent(ctx, "s1", types.NewDate(2001, time.February, 5))
			So(err, ShouldBeNil)
			s2, err := store.CreateStudent(ctx, "s2", types.NewDate(2002, time.February, 5))
			So(err, ShouldBeNil)

			c, err := store.CreateCourse(ctx, "course_1", []int64{s1.ID, s2.ID})
			So(err, ShouldBeNil)

			got, err := store.UpdateCourseByID(ctx, c.ID, storage.CourseUpdate{Students: &[]int64{s2.ID}})

			Convey("Then placeholders are rebound and the join table is replaced", func() {
				So(err, ShouldBeNil)
				So(got.Students, ShouldResemble, []int64{s2.ID})

				student, err := store.GetStudentByID(ctx, s1.ID)
				So(err, ShouldBeNil)
				So(student.BirthDate.String(), ShouldEqual, "2001-02-05")

				list, err := store.GetCourses(ctx, storage.CourseFilter{Name: &c.Name})
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
			})

			Convey("Then unknown students are rejected", func() {
				_, err := store.CreateCourse(ctx, "bad", []int64{12345})
				So(errors.Is(err, storage.ErrInvalidReference), ShouldBeTrue)
			})
		})
	})
}
