package router_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/courses-api/internal/http/middleware"
	"github.com/aanand-mishra/courses-api/internal/http/router"
	"github.com/aanand-mishra/courses-api/internal/metrics"
	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/aanand-mishra/courses-api/internal/storage/storagetest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

// downStore fails every ping.
type downStore struct {
	storage.Storage
}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRouter(t *testing.T) {
	Convey("Given the full handler chain", t, func() {
		store := storagetest.NewSQLite(t)
		m := metrics.New()
		h := router.New(store, m)

		Convey("The bare collection path redirects to the canonical one", func() {
			w := serve(h, http.MethodGet, "/api/v1/courses")
			So(w.Code, ShouldEqual, http.StatusMovedPermanently)
			So(w.Header().Get("Location"), ShouldEqual, "/api/v1/courses/")
		})

		Convey("Writes on the bare path are served without a redirect", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/students", strings.NewReader(`{"name":"s1","birth_date":"2001-02-05"}`))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusCreated)

			So(serve(h, http.MethodDelete, "/api/v1/courses/42").Code, ShouldEqual, http.StatusNotFound)
			So(serve(h, http.MethodGet, "/api/v1/courses/42").Code, ShouldEqual, http.StatusMovedPermanently)
		})

		Convey("An unsupported method is a 405", func() {
			So(serve(h, http.MethodDelete, "/api/v1/courses/").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Every response carries a request id", func() {
			w := serve(h, http.MethodGet, "/api/v1/courses/")
			So(w.Header().Get(middleware.RequestIDHeader), ShouldNotBeEmpty)
		})

		Convey("Preflight requests are answered by CORS", func() {
			w := serve(h, http.MethodOptions, "/api/v1/courses/")
			So(w.Code, ShouldEqual, http.StatusNoContent)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})

		Convey("Health reports a reachable store", func() {
			So(serve(h, http.MethodGet, "/healthz").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Requests are counted per route template", func() {
			serve(h, http.MethodGet, "/api/v1/courses/1/")
			serve(h, http.MethodGet, "/api/v1/courses/2/")

			c := m.Requests("/api/v1/courses/{id:[0-9]+}/", http.MethodGet, http.StatusNotFound)
			So(testutil.ToFloat64(c), ShouldEqual, 2.0)

			w := serve(h, http.MethodGet, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "courses_api_http_requests_total")
		})
	})

	Convey("Given a store that cannot be reached", t, func() {
		h := router.New(downStore{}, metrics.New())

		So(serve(h, http.MethodGet, "/healthz").Code, ShouldEqual, http.StatusServiceUnavailable)
	})
}
