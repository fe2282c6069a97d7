// Package course contains the HTTP handlers for the Course resource,
// mounted under /api/v1/courses/.
//
// Handlers are built by factory functions that receive the storage handle
// and return an http.HandlerFunc closing over it:
//
//	router.HandleFunc("/courses/", course.New(storage)).Methods(http.MethodPost)
//
// New(storage) runs once at startup; the returned func runs per request.
package course

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/aanand-mishra/courses-api/internal/utils/request"
	"github.com/aanand-mishra/courses-api/internal/utils/response"
)

// courseRequest is the body of POST and PUT. Name is trimmed before
// validation, so a blank name fails "required". Students is capped at
// 1000 ids per request.
type courseRequest struct {
	Name     string  `json:"name"     validate:"required,max=255"`
	Students []int64 `json:"students" validate:"max=1000,dive,gt=0"`
}

func (req *courseRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
}

// coursePatch is the body of PATCH. Absent members are left untouched;
// null is rejected for both.
type coursePatch struct {
	Name     request.Field[string]  `json:"name"`
	Students request.Field[[]int64] `json:"students"`
}

func (p *coursePatch) normalize() error {
	if err := p.Name.NotNull("name"); err != nil {
		return err
	}
	if err := p.Students.NotNull("students"); err != nil {
		return err
	}
	p.Name.Value = strings.TrimSpace(p.Name.Value)
	return nil
}

// update turns the patch into a storage update. Only fields present in the
// body are set.
func (p coursePatch) update() storage.CourseUpdate {
	return storage.CourseUpdate{Name: p.Name.Ptr(), Students: p.Students.Ptr()}
}

// courseUpdate builds an update that replaces every field.
func courseUpdate(name string, students []int64) storage.CourseUpdate {
	return storage.CourseUpdate{Name: &name, Students: &students}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/v1/courses/
//
// Request body:
//
//	{ "name": "course_1", "students": [1, 2] }
//
// Success response (201 Created): the stored course.
//
//	{ "id": 1, "name": "course_1", "students": [1, 2] }
//
// Error responses:
//
//	400 Bad Request  - empty body, malformed JSON, failed validation or an
//	                   unknown student id
//	500 Internal     - database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a course")

		var req courseRequest
		if err := request.DecodeJSON(r, &req); err != nil {
			response.BadRequest(w, err)
			return
		}
		req.normalize()
		if err := request.Validate(req); err != nil {
			response.BadRequest(w, err)
			return
		}

		course, err := storage.CreateCourse(r.Context(), req.Name, req.Students)
		if err != nil {
			slog.Error("error creating course", slog.String("error", err.Error()))
			response.StorageError(w, err)
			return
		}

		slog.Info("course created", slog.Int64("id", course.ID))
		response.WriteJSON(w, http.StatusCreated, course)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/v1/courses/{id}/
//
// Success response (200 OK):
//
//	{ "id": 1, "name": "course_1", "students": [1, 2] }
//
// Error responses:
//
//	404 Not Found    - no course with this id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.StorageError(w, err)
			return
		}
		slog.Info("getting a course", slog.Int64("id", id))

		course, err := storage.GetCourseByID(r.Context(), id)
		if err != nil {
			if !isNotFound(err) {
				slog.Error("error getting course", slog.Int64("id", id), slog.String("error", err.Error()))
			}
			response.StorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, course)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/v1/courses/
//
// Optional exact-match query filters, combined with AND:
//
//	?id=3
//	?name=course_1
//
// Success response (200 OK): a JSON array ordered by id. An empty result
// is [] rather than null.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r.URL.Query())
		if err != nil {
			response.BadRequest(w, err)
			return
		}
		slog.Info("getting courses", slog.String("query", r.URL.RawQuery))

		courses, err := storage.GetCourses(r.Context(), filter)
		if err != nil {
			slog.Error("error getting courses", slog.String("error", err.Error()))
			response.StorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, courses)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/v1/courses/{id}/
// Replaces every field. Omitting "students" clears the enrollment.
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.StorageError(w, err)
			return
		}
		slog.Info("updating a course", slog.Int64("id", id))

		var req courseRequest
		if err := request.DecodeJSON(r, &req); err != nil {
			response.BadRequest(w, err)
			return
		}
		req.normalize()
		if err := request.Validate(req); err != nil {
			response.BadRequest(w, err)
			return
		}
		if req.Students == nil {
			req.Students = []int64{}
		}

		updated, err := storage.UpdateCourseByID(r.Context(), id, courseUpdate(req.Name, req.Students))
		if err != nil {
			slog.Error("error updating course", slog.Int64("id", id), slog.String("error", err.Error()))
			response.StorageError(w, err)
			return
		}

		slog.Info("course updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Patch handles PATCH /api/v1/courses/{id}/
// Changes only the fields present in the body. A "students" list replaces
// the current one, it is not merged:
//
//	{ "students": [3] }   →   { "id": 1, "name": "course_1", "students": [3] }
//
// Error responses:
//
//	400 Bad Request  - malformed body, null or invalid value, unknown student id
//	404 Not Found    - no course with this id
//
// ─────────────────────────────────────────────────────────────────────────────
func Patch(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.StorageError(w, err)
			return
		}
		slog.Info("patching a course", slog.Int64("id", id))

		current, err := storage.GetCourseByID(r.Context(), id)
		if err != nil {
			response.StorageError(w, err)
			return
		}

		// An empty body is a no-op patch.
		var patch coursePatch
		if err := request.DecodeJSON(r, &patch); err != nil && !errors.Is(err, request.ErrEmptyBody) {
			response.BadRequest(w, err)
			return
		}
		if err := patch.normalize(); err != nil {
			response.BadRequest(w, err)
			return
		}

		// Validate the course as it would look after the patch, so the
		// same rules as creation apply to every field that changes.
		merged := courseRequest{Name: current.Name, Students: current.Students}
		if name := patch.Name.Ptr(); name != nil {
			merged.Name = *name
		}
		if students := patch.Students.Ptr(); students != nil {
			merged.Students = *students
		}
		if err := request.Validate(merged); err != nil {
			response.BadRequest(w, err)
			return
		}

		updated, err := storage.UpdateCourseByID(r.Context(), id, patch.update())
		if err != nil {
			slog.Error("error patching course", slog.Int64("id", id), slog.String("error", err.Error()))
			response.StorageError(w, err)
			return
		}

		slog.Info("course patched", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/v1/courses/{id}/
// Removes the course and its enrollments; the students themselves stay.
//
// Success response: 204 No Content, empty body.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.StorageError(w, err)
			return
		}
		slog.Info("deleting a course", slog.Int64("id", id))

		if err := storage.DeleteCourseByID(r.Context(), id); err != nil {
			response.StorageError(w, err)
			return
		}

		slog.Info("course deleted", slog.Int64("id", id))
		response.NoContent(w)
	}
}
