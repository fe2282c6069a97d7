// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client, so the
// header/status/encode sequence lives here, and so does the error envelope:
//
//	{ "status": "error", "error": "field Name is required" }
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given HTTP status code.
//
// Order matters: Header() -> WriteHeader() -> body. Once WriteHeader is
// called, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// NoContent writes a bodiless 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// GeneralError wraps any Go error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts validator.ValidationErrors into a single
// human-readable Response, one sentence per failing field:
//
//	{ "status": "error", "error": "field name is required, field students is invalid" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "max":
			unit := "characters"
			if e.Kind() == reflect.Slice {
				unit = "items"
			}
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at most %s %s", e.Field(), e.Param(), unit))
		case "gt":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be greater than %s", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}

// BadRequest writes a 400. Validator failures get the per-field message,
// anything else its own text.
func BadRequest(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		WriteJSON(w, http.StatusBadRequest, ValidationError(verrs))
		return
	}
	WriteJSON(w, http.StatusBadRequest, GeneralError(err))
}

// StorageError maps a storage failure onto a status code: ErrNotFound is a
// 404, ErrInvalidReference a 400, anything else a 500.
func StorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, GeneralError(err))
	case errors.Is(err, storage.ErrInvalidReference):
		WriteJSON(w, http.StatusBadRequest, GeneralError(err))
	default:
		WriteJSON(w, http.StatusInternalServerError, GeneralError(err))
	}
}
