package sqlstore

import (
	"context"
	"fmt"

	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/aanand-mishra/courses-api/internal/types"
	"github.com/jmoiron/sqlx"
)

const studentColumns = "id, name, birth_date"

// CreateStudent inserts a new row into the students table.
func (s *Store) CreateStudent(ctx context.Context, name string, birthDate types.Date) (types.Student, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx,
		s.db.Rebind("INSERT INTO students (name, birth_date) VALUES (?, ?) RETURNING id"),
		name, birthDate,
	).Scan(&id)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: insert: %w", err)
	}

	return types.Student{ID: id, Name: name, BirthDate: birthDate}, nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	student, err := getStudent(ctx, s.db, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}
	return student, nil
}

func getStudent(ctx context.Context, q sqlx.ExtContext, id int64) (types.Student, error) {
	var student types.Student
	err := sqlx.GetContext(ctx, q, &student,
		q.Rebind("SELECT "+studentColumns+" FROM students WHERE id = ?"),
		id,
	)
	if err != nil {
		return types.Student{}, notFound(err, "student", id)
	}
	return student, nil
}

// GetStudents returns all student rows ordered by id.
func (s *Store) GetStudents(ctx context.Context) ([]types.Student, error) {
	students := make([]types.Student, 0)
	if err := s.db.SelectContext(ctx, &students,
		"SELECT "+studentColumns+" FROM students ORDER BY id",
	); err != nil {
		return nil, fmt.Errorf("GetStudents: select: %w", err)
	}
	return students, nil
}

// UpdateStudentByID applies the set fields of upd and returns the stored row.
func (s *Store) UpdateStudentByID(ctx context.Context, id int64, upd storage.StudentUpdate) (types.Student, error) {
	var updated types.Student
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getStudent(ctx, tx, id)
		if err != nil {
			return err
		}
		if upd.Name != nil {
			current.Name = *upd.Name
		}
		if upd.BirthDate != nil {
			current.BirthDate = *upd.BirthDate
		}

		if _, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE students SET name = ?, birth_date = ? WHERE id = ?"),
			current.Name, current.BirthDate, id,
		); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}
	return updated, nil
}

// DeleteStudentByID removes a student row. Enrollment rows go with it via
// ON DELETE CASCADE.
func (s *Store) DeleteStudentByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM students WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}
	if err := checkAffected(res, "student", id); err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}
	return nil
}
