package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithID(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/hotels/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathID(t *testing.T) {
	id, err := getPathID(requestWithID("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		_, err := getPathID(requestWithID(bad), "id")
		assert.ErrorIs(t, err, domain.ErrValidation, "id %q", bad)
	}
}

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    domain.PageRequest
		wantErr bool
	}{
		{name: "defaults", raw: "", want: domain.PageRequest{PageNumber: 1, PageSize: domain.DefaultPageSize}},
		{name: "explicit", raw: "pageNumber=3&pageSize=25", want: domain.PageRequest{PageNumber: 3, PageSize: 25}},
		{name: "out of range passes through for clamping", raw: "pageNumber=-1&pageSize=500", want: domain.PageRequest{PageNumber: -1, PageSize: 500}},
		{name: "not a number", raw: "pageSize=ten", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.raw)
			require.NoError(t, err)

			got, err := parsePageRequest(values)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseQueryOptions(t *testing.T) {
	filters := map[string]filterFunc{
		"countryId": eqIntFilter("countryId"),
		"minRating": minFloatFilter("rating", "minRating"),
		"name":      containsFilter("name"),
	}

	t.Run("empty", func(t *testing.T) {
		opts, err := parseQueryOptions(url.Values{}, filters)
		require.NoError(t, err)
		assert.Nil(t, opts.Where)
		assert.Nil(t, opts.OrderBy)
		assert.Empty(t, opts.Includes)
	})

	t.Run("ordering and includes", func(t *testing.T) {
		values, _ := url.ParseQuery("orderBy=rating&direction=DESC&include=Country,%20Extra&include=More")
		opts, err := parseQueryOptions(values, filters)
		require.NoError(t, err)
		assert.Equal(t, &query.Order{Field: "rating", Direction: query.Descending}, opts.OrderBy)
		assert.Equal(t, []string{"Country", "Extra", "More"}, opts.Includes)
	})

	t.Run("single filter", func(t *testing.T) {
		values, _ := url.ParseQuery("countryId=7")
		opts, err := parseQueryOptions(values, filters)
		require.NoError(t, err)
		assert.Equal(t, query.Eq("countryId", int64(7)), opts.Where)
	})

	t.Run("filters combine in name order", func(t *testing.T) {
		values, _ := url.ParseQuery("name=50%25_off&countryId=7&minRating=4.5")
		opts, err := parseQueryOptions(values, filters)
		require.NoError(t, err)
		assert.Equal(t, query.And(
			query.Eq("countryId", int64(7)),
			query.Ge("rating", 4.5),
			query.Like("name", "%50off%"),
		), opts.Where)
	})

	t.Run("bad values", func(t *testing.T) {
		for _, raw := range []string{"countryId=x", "minRating=high", "orderBy=name&direction=sideways"} {
			values, _ := url.ParseQuery(raw)
			_, err := parseQueryOptions(values, filters)
			assert.ErrorIs(t, err, domain.ErrValidation, raw)
		}
	})
}
