// Package student contains all HTTP handlers related to the Student resource,
// mounted under /api/v1/students/.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// The router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// To inject dependencies we use a factory function that:
//  1. Accepts dependencies (storage)
//  2. Returns a function with the exact signature the router needs
//
// Because the inner function "closes over" the outer parameters, it can
// access `storage` even after the factory call has returned.
package student

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/aanand-mishra/courses-api/internal/types"
	"github.com/aanand-mishra/courses-api/internal/utils/request"
	"github.com/aanand-mishra/courses-api/internal/utils/response"
)

// studentRequest is the body of POST and PUT.
type studentRequest struct {
	Name      string      `json:"name"       validate:"required,max=255"`
	BirthDate *types.Date `json:"birth_date" validate:"required"`
}

func (req *studentRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
}

// studentPatch is the body of PATCH. Neither member may be null.
type studentPatch struct {
	Name      request.Field[string]     `json:"name"`
	BirthDate request.Field[types.Date] `json:"birth_date"`
}

func (p *studentPatch) normalize() error {
	if err := p.Name.NotNull("name"); err != nil {
		return err
	}
	if err := p.BirthDate.NotNull("birth_date"); err != nil {
		return err
	}
	p.Name.Value = strings.TrimSpace(p.Name.Value)
	return nil
}

func (p studentPatch) update() storage.StudentUpdate {
	return storage.StudentUpdate{Name: p.Name.Ptr(), BirthDate: p.BirthDate.Ptr()}
}

func replaceAll(req studentRequest) storage.StudentUpdate {
	return storage.StudentUpdate{Name: &req.Name, BirthDate: req.BirthDate}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/v1/students/
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "s1", "birth_date": "2001-02-05" }
//
// Success response (201 Created):
//
//	{ "id": 1, "name": "s1", "birth_date": "2001-02-05" }
//
// Error responses:
//
//	400 Bad Request  - empty body, malformed JSON, or failed validation
//	500 Internal     - database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var req studentRequest
		if err := request.DecodeJSON(r, &req); err != nil {
			response.BadRequest(w, err)
			return
		}
		req.normalize()
		if err := request.Validate(req); err != nil {
			response.BadRequest(w, err)
			return
		}

		student, err := storage.CreateStudent(r.Context(), req.Name, *req.BirthDate)
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.StorageError(w, err)
			return
		}

		slog.Info("student created", slog.Int64("id", student.ID))
		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/v1/students/{id}/
//
// Error responses:
//
//	404 Not Found    - no student with this id or an id out of range
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.StorageError(w, err)
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			response.StorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/v1/students/
// Returns a JSON array of all students ordered by id, [] when there are none.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.StorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/v1/students/{id}/
// Replaces ALL fields of an existing student; both fields are required.
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.StorageError(w, err)
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		var req studentRequest
		if err := request.DecodeJSON(r, &req); err != nil {
			response.BadRequest(w, err)
			return
		}
		req.normalize()
		if err := request.Validate(req); err != nil {
			response.BadRequest(w, err)
			return
		}

		updated, err := storage.UpdateStudentByID(r.Context(), id, replaceAll(req))
		if err != nil {
			slog.Error("error updating student", slog.Int64("id", id), slog.String("error", err.Error()))
			response.StorageError(w, err)
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Patch handles PATCH /api/v1/students/{id}/
// Changes only the fields present in the body.
// ─────────────────────────────────────────────────────────────────────────────
func Patch(storage storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.StorageError(w, err)
			return
		}
		slog.Info("patching a student", slog.Int64("id", id))

		current, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			response.StorageError(w, err)
			return
		}

		var patch studentPatch
		if err := request.DecodeJSON(r, &patch); err != nil && !errors.Is(err, request.ErrEmptyBody) {
			response.BadRequest(w, err)
			return
		}
		if err := patch.normalize(); err != nil {
			response.BadRequest(w, err)
			return
		}

		merged := studentRequest{Name: current.Name, BirthDate: &current.BirthDate}
		if name := patch.Name.Ptr(); name != nil {
			merged.Name = *name
		}
		if birthDate := patch.BirthDate.Ptr(); birthDate != nil {
			merged.BirthDate = birthDate
		}
		if err := request.Validate(merged); err != nil {
			response.BadRequest(w, err)
			return
		}

		updated, err := storage.UpdateStudentByID(r.Context(), id, patch.update())
		if err != nil {
			slog.Error("error patching student", slog.Int64("id", id), slog.String("error", err.Error()))
			response.StorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/v1/students/{id}/
// Permanently removes a student and detaches it from every course.
//
// Success response: 204 No Content.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.StorageError(w, err)
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := storage.DeleteStudentByID(r.Context(), id); err != nil {
			response.StorageError(w, err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.NoContent(w)
	}
}
