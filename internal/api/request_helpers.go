package api

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/query"
)

// filterFunc turns one query-string value into a predicate.
type filterFunc func(value string) (query.Predicate, error)

// getPathID extracts a positive integer key from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", nil)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", nil)
	}
	return id, nil
}

// parsePageRequest reads pageNumber and pageSize. Missing values take the
// defaults; out-of-range values are clamped downstream.
func parsePageRequest(values url.Values) (domain.PageRequest, error) {
	page := domain.PageRequest{PageNumber: 1, PageSize: domain.DefaultPageSize}

	var err error
	if page.PageNumber, err = intParam(values, "pageNumber", page.PageNumber); err != nil {
		return page, err
	}
	if page.PageSize, err = intParam(values, "pageSize", page.PageSize); err != nil {
		return page, err
	}
	return page, nil
}

func intParam(values url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", nil)
	}
	return n, nil
}

// parseQueryOptions reads orderBy, direction, include and the supported
// filters. Field and relation names are checked later against the schema.
func parseQueryOptions(values url.Values, filters map[string]filterFunc) (query.Options, error) {
	var opts query.Options

	if field := strings.TrimSpace(values.Get("orderBy")); field != "" {
		dir, err := query.ParseDirection(values.Get("direction"))
		if err != nil {
			return opts, err
		}
		opts.OrderBy = &query.Order{Field: field, Direction: dir}
	}

	opts.Includes = splitList(values["include"])

	var preds []query.Predicate
	for _, name := range slices.Sorted(maps.Keys(filters)) {
		build := filters[name]
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			continue
		}
		pred, err := build(raw)
		if err != nil {
			return opts, err
		}
		preds = append(preds, pred)
	}
	switch len(preds) {
	case 0:
	case 1:
		opts.Where = preds[0]
	default:
		opts.Where = query.And(preds...)
	}

	return opts, nil
}

// parseIncludes reads only the include parameter.
func parseIncludes(values url.Values) []string {
	return splitList(values["include"])
}

// mergeIncludes appends requested to defaults, dropping repeats.
func mergeIncludes(defaults, requested []string) []string {
	out := make([]string, 0, len(defaults)+len(requested))
	seen := make(map[string]bool, cap(out))
	for _, name := range append(append([]string{}, defaults...), requested...) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func eqIntFilter(field string) filterFunc {
	return func(value string) (query.Predicate, error) {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, domain.NewValidationError(field, "must be an integer", nil)
		}
		return query.Eq(field, n), nil
	}
}

func minFloatFilter(field, param string) filterFunc {
	return func(value string) (query.Predicate, error) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, domain.NewValidationError(param, "must be a number", nil)
		}
		return query.Ge(field, f), nil
	}
}

func containsFilter(field string) filterFunc {
	return func(value string) (query.Predicate, error) {
		literal := strings.NewReplacer(`%`, "", `_`, "").Replace(value)
		return query.Like(field, "%"+literal+"%"), nil
	}
}
