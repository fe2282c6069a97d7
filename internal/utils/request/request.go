// Package request holds the inbound half of the handler helpers: JSON body
// decoding, path id parsing and struct validation.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// Errors returned to clients as 400s, except ErrInvalidID: an id that
// cannot name a record is reported like any other missing record.
var (
	ErrEmptyBody = errors.New("request body is empty")
	ErrNullField = errors.New("may not be null")
	ErrInvalidID = fmt.Errorf("%w: invalid id", storage.ErrNotFound)
)

// Field is a PATCH body member. It records whether the member was sent at
// all and whether it was sent as null, which a plain pointer cannot tell
// apart.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// UnmarshalJSON is only called for members present in the object.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// Ptr returns the sent value, or nil when the member was absent.
func (f Field[T]) Ptr() *T {
	if !f.Set || f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// NotNull fails with ErrNullField when the member was sent as null.
func (f Field[T]) NotNull(name string) error {
	if f.Null {
		return fmt.Errorf("field %s %w", name, ErrNullField)
	}
	return nil
}

// validate is shared because validator caches struct metadata per instance.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name ("birth_date"), the name clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into v. An empty body is
// ErrEmptyBody; malformed JSON or a wrong type is reported with the
// decoder's message.
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// Validate checks the validate:"..." tags on v. Failures are
// validator.ValidationErrors.
func Validate(v any) error {
	return validate.Struct(v)
}

// PathID parses the {id} route variable. Zero, negative and out of range
// ids match no record and fail with ErrInvalidID.
func PathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
