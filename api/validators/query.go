package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
)

// ParseQueryID reads an optional positive int64 query parameter. A missing
// value returns nil.
func ParseQueryID(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, key)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseQueryBool reads an optional boolean query parameter.
func ParseQueryBool(r *http.Request, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(key)))
	return err == nil && value
}

// ParseIDParam reads a positive int64 chi path parameter.
func ParseIDParam(r *http.Request, key string) (int64, error) {
	return parseID(strings.TrimSpace(chi.URLParam(r, key)), key)
}

func parseID(raw, key string) (int64, error) {
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" is required").WithDetails(map[string]any{"field": key})
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a positive integer").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
