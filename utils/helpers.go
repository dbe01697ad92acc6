package utils

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andrewpaige1/brickstat-api/apierr"
)

// PathInt parses the named path wildcard as an integer.
func PathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(r.PathValue(name)))
	if err != nil {
		return 0, apierr.Invalid(name, "must be an integer")
	}
	return n, nil
}

// QueryInt parses a required integer query parameter.
func QueryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, apierr.Invalid(name, "is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Invalid(name, "must be an integer")
	}
	return n, nil
}

// QueryString returns the trimmed query parameter, or nil when it is absent
// or empty.
func QueryString(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}
