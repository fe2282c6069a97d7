package sqlstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/aanand-mishra/courses-api/internal/types"
	"github.com/jmoiron/sqlx"
)

// inChunk bounds the number of ids bound into one IN (...) list. SQLite
// rejects statements with too many variables.
const inChunk = 500

// enrollment is one row of the course_students join table.
type enrollment struct {
	CourseID  int64 `db:"course_id"`
	StudentID int64 `db:"student_id"`
}

// CreateCourse inserts the course and its enrollments in one transaction.
func (s *Store) CreateCourse(ctx context.Context, name string, studentIDs []int64) (types.Course, error) {
	var created types.Course
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		if err := tx.QueryRowxContext(ctx,
			tx.Rebind("INSERT INTO courses (name) VALUES (?) RETURNING id"),
			name,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert: %w", err)
		}

		enrolled, err := setEnrollments(ctx, tx, id, studentIDs)
		if err != nil {
			return err
		}
		created = types.Course{ID: id, Name: name, Students: enrolled}
		return nil
	})
	if err != nil {
		return types.Course{}, fmt.Errorf("CreateCourse: %w", err)
	}
	return created, nil
}

// GetCourseByID fetches one course with its enrolled student ids.
func (s *Store) GetCourseByID(ctx context.Context, id int64) (types.Course, error) {
	course, err := getCourse(ctx, s.db, id)
	if err != nil {
		return types.Course{}, fmt.Errorf("GetCourseByID: %w", err)
	}
	return course, nil
}

func getCourse(ctx context.Context, q sqlx.ExtContext, id int64) (types.Course, error) {
	var course types.Course
	if err := sqlx.GetContext(ctx, q, &course,
		q.Rebind("SELECT id, name FROM courses WHERE id = ?"), id,
	); err != nil {
		return types.Course{}, notFound(err, "course", id)
	}

	courses := []types.Course{course}
	if err := loadStudents(ctx, q, courses); err != nil {
		return types.Course{}, err
	}
	return courses[0], nil
}

// GetCourses returns the courses matching filter ordered by id.
func (s *Store) GetCourses(ctx context.Context, filter storage.CourseFilter) ([]types.Course, error) {
	query, args := coursesQuery(filter)

	courses := make([]types.Course, 0)
	if err := s.db.SelectContext(ctx, &courses, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("GetCourses: select: %w", err)
	}
	if err := loadStudents(ctx, s.db, courses); err != nil {
		return nil, fmt.Errorf("GetCourses: %w", err)
	}
	return courses, nil
}

// coursesQuery builds the SELECT for filter. Every set field adds an
// exact-match predicate; predicates are joined with AND.
func coursesQuery(filter storage.CourseFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.ID != nil {
		where = append(where, "id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		where = append(where, "name = ?")
		args = append(args, *filter.Name)
	}

	query := "SELECT id, name FROM courses"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY id", args
}

// loadStudents fills Students on every course with a single query over the
// join table.
func loadStudents(ctx context.Context, q sqlx.ExtContext, courses []types.Course) error {
	if len(courses) == 0 {
		return nil
	}

	ids := make([]int64, len(courses))
	index := make(map[int64]int, len(courses))
	for i := range courses {
		ids[i] = courses[i].ID
		index[courses[i].ID] = i
		courses[i].Students = make([]int64, 0)
	}

	// Each course falls in exactly one chunk, so per-course order by join
	// row id holds across chunks.
	for chunk := range slices.Chunk(ids, inChunk) {
		query, args, err := sqlx.In(
			"SELECT course_id, student_id FROM course_students WHERE course_id IN (?) ORDER BY id", chunk)
		if err != nil {
			return fmt.Errorf("load students: build query: %w", err)
		}

		var rows []enrollment
		if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
			return fmt.Errorf("load students: select: %w", err)
		}
		for _, row := range rows {
			i := index[row.CourseID]
			courses[i].Students = append(courses[i].Students, row.StudentID)
		}
	}
	return nil
}

// UpdateCourseByID applies the set fields of upd in one transaction.
func (s *Store) UpdateCourseByID(ctx context.Context, id int64, upd storage.CourseUpdate) (types.Course, error) {
	var updated types.Course
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getCourse(ctx, tx, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			if _, err := tx.ExecContext(ctx,
				tx.Rebind("UPDATE courses SET name = ? WHERE id = ?"), *upd.Name, id,
			); err != nil {
				return fmt.Errorf("update name: %w", err)
			}
			current.Name = *upd.Name
		}

		if upd.Students != nil {
			if _, err := tx.ExecContext(ctx,
				tx.Rebind("DELETE FROM course_students WHERE course_id = ?"), id,
			); err != nil {
				return fmt.Errorf("clear enrollments: %w", err)
			}
			enrolled, err := setEnrollments(ctx, tx, id, *upd.Students)
			if err != nil {
				return err
			}
			current.Students = enrolled
		}

		updated = current
		return nil
	})
	if err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourseByID: %w", err)
	}
	return updated, nil
}

// DeleteCourseByID removes a course. Its join rows cascade; students stay.
func (s *Store) DeleteCourseByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM courses WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("DeleteCourseByID: exec: %w", err)
	}
	if err := checkAffected(res, "course", id); err != nil {
		return fmt.Errorf("DeleteCourseByID: %w", err)
	}
	return nil
}

// setEnrollments attaches studentIDs to an empty course, in order and with
// duplicates dropped, after checking every id exists. It returns the ids
// actually attached.
func setEnrollments(ctx context.Context, tx *sqlx.Tx, courseID int64, studentIDs []int64) ([]int64, error) {
	ids := dedupe(studentIDs)
	if len(ids) == 0 {
		return ids, nil
	}

	if err := checkStudentsExist(ctx, tx, ids); err != nil {
		return nil, err
	}

	insert := tx.Rebind("INSERT INTO course_students (course_id, student_id) VALUES (?, ?)")
	for _, sid := range ids {
		if _, err := tx.ExecContext(ctx, insert, courseID, sid); err != nil {
			return nil, fmt.Errorf("enroll student %d: %w", sid, err)
		}
	}
	return ids, nil
}

// checkStudentsExist expects ids without duplicates.
func checkStudentsExist(ctx context.Context, tx *sqlx.Tx, ids []int64) error {
	var found []int64
	for chunk := range slices.Chunk(ids, inChunk) {
		query, args, err := sqlx.In("SELECT id FROM students WHERE id IN (?)", chunk)
		if err != nil {
			return fmt.Errorf("check students: build query: %w", err)
		}

		var part []int64
		if err := tx.SelectContext(ctx, &part, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("check students: select: %w", err)
		}
		found = append(found, part...)
	}
	if len(found) == len(ids) {
		return nil
	}

	known := make(map[int64]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	return fmt.Errorf("%w: unknown student id(s) %s", storage.ErrInvalidReference, strings.Join(missing, ", "))
}

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
