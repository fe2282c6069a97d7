// Package router registers every HTTP route of the service.
//
// Route table (trailing slash is canonical):
//
//	GET    /api/v1/courses/         → list courses (?id=, ?name= filters)
//	POST   /api/v1/courses/         → create a course
//	GET    /api/v1/courses/{id}/    → get one course
//	PUT    /api/v1/courses/{id}/    → replace a course
//	PATCH  /api/v1/courses/{id}/    → partially update a course
//	DELETE /api/v1/courses/{id}/    → delete a course
//
// The same six routes exist under /api/v1/students/, plus
//
//	GET    /healthz                 → storage ping
//	GET    /metrics                 → Prometheus metrics
//
// A bare path (no trailing slash) answers GET with a 301 to the canonical
// one. POST, PUT, PATCH and DELETE are served on the bare path directly,
// since clients commonly replay a redirected write as a bodiless GET.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/aanand-mishra/courses-api/internal/http/handlers/course"
	"github.com/aanand-mishra/courses-api/internal/http/handlers/student"
	"github.com/aanand-mishra/courses-api/internal/http/middleware"
	"github.com/aanand-mishra/courses-api/internal/metrics"
	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/aanand-mishra/courses-api/internal/utils/response"
	"github.com/gorilla/mux"
)

const healthTimeout = 2 * time.Second

// New builds the full handler chain around a gorilla/mux router.
//
// RequestID, Logging and CORS wrap the router itself so they also see
// 404/405 responses and preflight requests that match no route. Metrics is
// installed as mux middleware because it needs the matched route template.
func New(store storage.Storage, m *metrics.Metrics) http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	r.Use(middleware.Metrics(m))

	api := r.PathPrefix("/api/v1").Subrouter()

	// Exact bare-path writes. Registered first and without StrictSlash so
	// they win over the redirecting canonical routes below.
	api.StrictSlash(false)
	api.HandleFunc("/courses", course.New(store)).Methods(http.MethodPost)
	api.HandleFunc("/courses/{id:[0-9]+}", course.Update(store)).Methods(http.MethodPut)
	api.HandleFunc("/courses/{id:[0-9]+}", course.Patch(store)).Methods(http.MethodPatch)
	api.HandleFunc("/courses/{id:[0-9]+}", course.Delete(store)).Methods(http.MethodDelete)
	api.HandleFunc("/students", student.New(store)).Methods(http.MethodPost)
	api.HandleFunc("/students/{id:[0-9]+}", student.Update(store)).Methods(http.MethodPut)
	api.HandleFunc("/students/{id:[0-9]+}", student.Patch(store)).Methods(http.MethodPatch)
	api.HandleFunc("/students/{id:[0-9]+}", student.Delete(store)).Methods(http.MethodDelete)
	api.StrictSlash(true)

	api.HandleFunc("/courses/", course.GetList(store)).Methods(http.MethodGet)
	api.HandleFunc("/courses/", course.New(store)).Methods(http.MethodPost)
	api.HandleFunc("/courses/{id:[0-9]+}/", course.GetByID(store)).Methods(http.MethodGet)
	api.HandleFunc("/courses/{id:[0-9]+}/", course.Update(store)).Methods(http.MethodPut)
	api.HandleFunc("/courses/{id:[0-9]+}/", course.Patch(store)).Methods(http.MethodPatch)
	api.HandleFunc("/courses/{id:[0-9]+}/", course.Delete(store)).Methods(http.MethodDelete)

	api.HandleFunc("/students/", student.GetList(store)).Methods(http.MethodGet)
	api.HandleFunc("/students/", student.New(store)).Methods(http.MethodPost)
	api.HandleFunc("/students/{id:[0-9]+}/", student.GetByID(store)).Methods(http.MethodGet)
	api.HandleFunc("/students/{id:[0-9]+}/", student.Update(store)).Methods(http.MethodPut)
	api.HandleFunc("/students/{id:[0-9]+}/", student.Patch(store)).Methods(http.MethodPatch)
	api.HandleFunc("/students/{id:[0-9]+}/", student.Delete(store)).Methods(http.MethodDelete)

	r.HandleFunc("/healthz", health(store)).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return middleware.RequestID(middleware.Logging(middleware.CORS(r)))
}

type pinger interface {
	Ping(ctx context.Context) error
}

func health(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
	}
}
