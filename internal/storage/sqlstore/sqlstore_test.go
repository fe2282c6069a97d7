package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/aanand-mishra/courses-api/internal/storage/storagetest"
	"github.com/aanand-mishra/courses-api/internal/types"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr[T any](v T) *T { return &v }

func TestStudents(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := storagetest.NewSQLite(t)

		Convey("When a student is created", func() {
			born := types.NewDate(2001, time.February, 5)
			s, err := store.CreateStudent(ctx, "s1", born)
			So(err, ShouldBeNil)
			So(s.ID, ShouldBeGreaterThan, 0)

			Convey("Then it can be read back", func() {
				got, err := store.GetStudentByID(ctx, s.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "s1")
				So(got.BirthDate.String(), ShouldEqual, "2001-02-05")
			})

			Convey("Then a partial update keeps untouched fields", func() {
				got, err := store.UpdateStudentByID(ctx, s.ID, storage.StudentUpdate{Name: ptr("renamed")})
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "renamed")
				So(got.BirthDate.String(), ShouldEqual, "2001-02-05")
			})

			Convey("Then deleting it makes it unreadable", func() {
				So(store.DeleteStudentByID(ctx, s.ID), ShouldBeNil)
				_, err := store.GetStudentByID(ctx, s.ID)
				So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When students are listed", func() {
			made := storagetest.MakeStudents(t, store, 3)
			got, err := store.GetStudents(ctx)

			Convey("Then they come back in insertion order", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 3)
				for i := range made {
					So(got[i].ID, ShouldEqual, made[i].ID)
					So(got[i].Name, ShouldEqual, made[i].Name)
				}
			})
		})

		Convey("When an unknown student is touched", func() {
			_, getErr := store.GetStudentByID(ctx, 42)
			_, updErr := store.UpdateStudentByID(ctx, 42, storage.StudentUpdate{Name: ptr("x")})
			delErr := store.DeleteStudentByID(ctx, 42)

			Convey("Then every call reports ErrNotFound", func() {
				So(errors.Is(getErr, storage.ErrNotFound), ShouldBeTrue)
				So(errors.Is(updErr, storage.ErrNotFound), ShouldBeTrue)
				So(errors.Is(delErr, storage.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestCourses(t *testing.T) {
	Convey("Given a store with students", t, func() {
		ctx := context.Background()
		store := storagetest.NewSQLite(t)
		students := storagetest.MakeStudents(t, store, 3)
		s1, s2, s3 := students[0].ID, students[1].ID, students[2].ID

		Convey("When a course is created with students", func() {
			c, err := store.CreateCourse(ctx, "course_1", []int64{s2, s1, s2})
			So(err, ShouldBeNil)

			Convey("Then enrollment order is kept and duplicates dropped", func() {
				So(c.Students, ShouldResemble, []int64{s2, s1})

				got, err := store.GetCourseByID(ctx, c.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "course_1")
				So(got.Students, ShouldResemble, []int64{s2, s1})
			})

			Convey("Then replacing the students drops the old ones", func() {
				got, err := store.UpdateCourseByID(ctx, c.ID, storage.CourseUpdate{Students: &[]int64{s3}})
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "course_1")
				So(got.Students, ShouldResemble, []int64{s3})
			})

			Convey("Then renaming keeps the students", func() {
				got, err := store.UpdateCourseByID(ctx, c.ID, storage.CourseUpdate{Name: ptr("course_2")})
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "course_2")
				So(got.Students, ShouldResemble, []int64{s2, s1})
			})

			Convey("Then deleting the course keeps its students", func() {
				So(store.DeleteCourseByID(ctx, c.ID), ShouldBeNil)

				_, err := store.GetCourseByID(ctx, c.ID)
				So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)

				all, err := store.GetStudents(ctx)
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 3)
			})

			Convey("Then deleting a student detaches it", func() {
				So(store.DeleteStudentByID(ctx, s1), ShouldBeNil)

				got, err := store.GetCourseByID(ctx, c.ID)
				So(err, ShouldBeNil)
				So(got.Students, ShouldResemble, []int64{s2})
			})
		})

		Convey("When a course references an unknown student", func() {
			_, err := store.CreateCourse(ctx, "bad", []int64{s1, 999})

			Convey("Then creation fails and nothing is stored", func() {
				So(errors.Is(err, storage.ErrInvalidReference), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "999")

				all, err := store.GetCourses(ctx, storage.CourseFilter{})
				So(err, ShouldBeNil)
				So(all, ShouldBeEmpty)
			})
		})

		Convey("When an update references an unknown student", func() {
			c, err := store.CreateCourse(ctx, "c", []int64{s1})
			So(err, ShouldBeNil)
			_, err = store.UpdateCourseByID(ctx, c.ID, storage.CourseUpdate{Name: ptr("x"), Students: &[]int64{999}})

			Convey("Then the whole update is rolled back", func() {
				So(errors.Is(err, storage.ErrInvalidReference), ShouldBeTrue)

				got, err := store.GetCourseByID(ctx, c.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "c")
				So(got.Students, ShouldResemble, []int64{s1})
			})
		})

		Convey("When an unknown course is touched", func() {
			_, updErr := store.UpdateCourseByID(ctx, 42, storage.CourseUpdate{Name: ptr("x")})
			delErr := store.DeleteCourseByID(ctx, 42)

			So(errors.Is(updErr, storage.ErrNotFound), ShouldBeTrue)
			So(errors.Is(delErr, storage.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestGetCourses(t *testing.T) {
	Convey("Given ten courses", t, func() {
		ctx := context.Background()
		store := storagetest.NewSQLite(t)
		courses := storagetest.MakeCourses(t, store, 10)

		Convey("When listing without a filter", func() {
			got, err := store.GetCourses(ctx, storage.CourseFilter{})

			Convey("Then all come back in insertion order with empty student lists", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 10)
				for i := range courses {
					So(got[i].Name, ShouldEqual, courses[i].Name)
					So(got[i].Students, ShouldNotBeNil)
					So(got[i].Students, ShouldBeEmpty)
				}
			})
		})

		Convey("When filtering by id", func() {
			got, err := store.GetCourses(ctx, storage.CourseFilter{ID: &courses[3].ID})

			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].ID, ShouldEqual, courses[3].ID)
		})

		Convey("When filtering by name", func() {
			got, err := store.GetCourses(ctx, storage.CourseFilter{Name: &courses[5].Name})

			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].Name, ShouldEqual, courses[5].Name)
		})

		Convey("When the name is only a prefix", func() {
			got, err := store.GetCourses(ctx, storage.CourseFilter{Name: ptr("course")})

			Convey("Then nothing matches", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When id and name disagree", func() {
			got, err := store.GetCourses(ctx, storage.CourseFilter{ID: &courses[0].ID, Name: &courses[1].Name})

			Convey("Then the filters are ANDed", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeEmpty)
			})
		})
	})
}

func TestLongIDLists(t *testing.T) {
	Convey("Given a store with a few students", t, func() {
		ctx := context.Background()
		store := storagetest.NewSQLite(t)
		students := storagetest.MakeStudents(t, store, 3)

		Convey("When a course references more ids than one statement can bind", func() {
			ids := []int64{students[0].ID, students[1].ID, students[2].ID}
			for id := int64(1000); len(ids) < 40000; id++ {
				ids = append(ids, id)
			}
			_, err := store.CreateCourse(ctx, "huge", ids)

			Convey("Then the unknown ids are reported, not a driver error", func() {
				So(errors.Is(err, storage.ErrInvalidReference), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "1000")
			})
		})
	})

	Convey("Given more courses than one statement can bind", t, func() {
		ctx := context.Background()
		store := storagetest.NewSQLite(t)
		student := storagetest.MakeStudents(t, store, 1)[0]
		courses := storagetest.MakeCourses(t, store, 520)

		last := courses[len(courses)-1]
		_, err := store.UpdateCourseByID(ctx, last.ID, storage.CourseUpdate{Students: &[]int64{student.ID}})
		So(err, ShouldBeNil)

		Convey("When all of them are listed", func() {
			got, err := store.GetCourses(ctx, storage.CourseFilter{})

			Convey("Then students are loaded across every chunk", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 520)
				So(got[0].Students, ShouldBeEmpty)
				So(got[519].Students, ShouldResemble, []int64{student.ID})
			})
		})
	})
}
