package repository

import (
	"context"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/phrazzld/hotel-listing-api/internal/query"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

// Relation names accepted in query.Options.Includes.
const (
	RelationHotels  = "Hotels"
	RelationCountry = "Country"
)

// CountryMapping maps domain.Country onto the countries table.
var CountryMapping = &Mapping[domain.Country]{
	Entity: "country",
	Schema: query.NewSchema("countries", "id", []query.Field{
		{Name: "name", Column: "name"},
		{Name: "shortName", Column: "short_name"},
	}, RelationHotels),
	Key:    func(c *domain.Country) int64 { return c.ID },
	SetKey: func(c *domain.Country, id int64) { c.ID = id },
	Values: func(c *domain.Country) []any {
		return []any{c.Name, c.ShortName}
	},
	Targets: func(c *domain.Country) []any {
		return []any{&c.ID, &c.Name, &c.ShortName}
	},
	Validate: (*domain.Country).Validate,
}

// HotelMapping maps domain.Hotel onto the hotels table.
var HotelMapping = &Mapping[domain.Hotel]{
	Entity: "hotel",
	Schema: query.NewSchema("hotels", "id", []query.Field{
		{Name: "name", Column: "name"},
		{Name: "address", Column: "address"},
		{Name: "rating", Column: "rating"},
		{Name: "countryId", Column: "country_id"},
	}, RelationCountry),
	Key:    func(h *domain.Hotel) int64 { return h.ID },
	SetKey: func(h *domain.Hotel, id int64) { h.ID = id },
	Values: func(h *domain.Hotel) []any {
		return []any{h.Name, h.Address, h.Rating, h.CountryID}
	},
	Targets: func(h *domain.Hotel) []any {
		return []any{&h.ID, &h.Name, &h.Address, &h.Rating, &h.CountryID}
	},
	Validate: (*domain.Hotel).Validate,
}

// The loaders reference both mappings, so they are attached after
// package variable initialization.
func init() {
	CountryMapping.Loaders = map[string]RelationLoader[domain.Country]{
		RelationHotels: loadCountryHotels,
	}
	HotelMapping.Loaders = map[string]RelationLoader[domain.Hotel]{
		RelationCountry: loadHotelCountry,
	}
}

func loadCountryHotels(ctx context.Context, db store.DBTX, dialect sqldb.Dialect, countries []domain.Country) error {
	ids := make([]any, 0, len(countries))
	for _, c := range countries {
		ids = append(ids, c.ID)
	}

	plan, err := query.Build(HotelMapping.Schema, query.Options{Where: query.In("countryId", ids...)}, dialect)
	if err != nil {
		return err
	}
	sqlText, args := plan.SelectSQL(0, 0)
	hotels, err := selectRows(ctx, db, HotelMapping, sqlText, args)
	if err != nil {
		return err
	}

	byCountry := make(map[int64][]domain.Hotel, len(countries))
	for _, h := range hotels {
		byCountry[h.CountryID] = append(byCountry[h.CountryID], h)
	}
	for i := range countries {
		if hs, ok := byCountry[countries[i].ID]; ok {
			countries[i].Hotels = hs
		} else {
			countries[i].Hotels = []domain.Hotel{}
		}
	}
	return nil
}

func loadHotelCountry(ctx context.Context, db store.DBTX, dialect sqldb.Dialect, hotels []domain.Hotel) error {
	seen := make(map[int64]bool, len(hotels))
	ids := make([]any, 0, len(hotels))
	for _, h := range hotels {
		if !seen[h.CountryID] {
			seen[h.CountryID] = true
			ids = append(ids, h.CountryID)
		}
	}

	plan, err := query.Build(CountryMapping.Schema, query.Options{Where: query.In("id", ids...)}, dialect)
	if err != nil {
		return err
	}
	sqlText, args := plan.SelectSQL(0, 0)
	countries, err := selectRows(ctx, db, CountryMapping, sqlText, args)
	if err != nil {
		return err
	}

	byID := make(map[int64]domain.Country, len(countries))
	for _, c := range countries {
		byID[c.ID] = c
	}
	for i := range hotels {
		if c, ok := byID[hotels[i].CountryID]; ok {
			country := c
			hotels[i].Country = &country
		}
	}
	return nil
}
