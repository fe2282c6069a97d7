package course

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/aanand-mishra/courses-api/internal/storage"
)

// comparison is the kind of predicate a query parameter turns into.
type comparison int

const (
	exact comparison = iota
)

// filterFields enumerates the query parameters GET /api/v1/courses/ accepts.
// Anything not listed here is ignored.
var filterFields = map[string]comparison{
	"id":   exact,
	"name": exact,
}

// ErrInvalidFilter is returned for a filter value of the wrong type.
var ErrInvalidFilter = errors.New("invalid filter")

// parseFilter builds a storage.CourseFilter from the query string. Empty
// values do not filter. When a key repeats, the first value wins.
func parseFilter(q url.Values) (storage.CourseFilter, error) {
	var filter storage.CourseFilter

	for key := range q {
		if _, ok := filterFields[key]; !ok {
			slog.Debug("ignoring unknown course filter", slog.String("key", key))
		}
	}

	if v := q.Get("id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return storage.CourseFilter{}, fmt.Errorf("%w: id must be an integer", ErrInvalidFilter)
		}
		filter.ID = &id
	}

	if v := q.Get("name"); v != "" {
		filter.Name = &v
	}

	return filter, nil
}
