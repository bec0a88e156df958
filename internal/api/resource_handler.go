package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/hotel-listing-api/internal/api/shared"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/repository"
	"github.com/phrazzld/hotel-listing-api/internal/service"
)

// EntityRequest is a create/replace payload for entity type E.
type EntityRequest[E any] interface {
	ToDomain() *E
}

// ResourceHandler serves the CRUD and listing endpoints of one catalog
// collection.
type ResourceHandler[E any, Req EntityRequest[E], Resp any] struct {
	basePath   string
	service    service.ResourceService[E]
	toResponse func(*E) Resp
	key        func(*E) int64
	filters    map[string]filterFunc
	logger     *slog.Logger

	// detailIncludes are always loaded by Get, in addition to ?include=.
	detailIncludes []string
}

// CountryHandler serves /countries.
type CountryHandler = ResourceHandler[domain.Country, CountryRequest, CountryResponse]

// HotelHandler serves /hotels.
type HotelHandler = ResourceHandler[domain.Hotel, HotelRequest, HotelResponse]

// NewCountryHandler creates the handler for countries. Supported filter: name.
// A single country is returned with its hotels.
func NewCountryHandler(svc service.ResourceService[domain.Country], logger *slog.Logger) *CountryHandler {
	return newResourceHandler[domain.Country, CountryRequest](
		"/api/countries", svc, countryToResponse, repository.CountryMapping.Key,
		map[string]filterFunc{
			"name": containsFilter("name"),
		}, []string{repository.RelationHotels}, logger)
}

// NewHotelHandler creates the handler for hotels. Supported filters:
// countryId, minRating and name. A single hotel is returned with its country.
func NewHotelHandler(svc service.ResourceService[domain.Hotel], logger *slog.Logger) *HotelHandler {
	return newResourceHandler[domain.Hotel, HotelRequest](
		"/api/hotels", svc, hotelToResponse, repository.HotelMapping.Key,
		map[string]filterFunc{
			"countryId": eqIntFilter("countryId"),
			"minRating": minFloatFilter("rating", "minRating"),
			"name":      containsFilter("name"),
		}, []string{repository.RelationCountry}, logger)
}

func newResourceHandler[E any, Req EntityRequest[E], Resp any](
	basePath string,
	svc service.ResourceService[E],
	toResponse func(*E) Resp,
	key func(*E) int64,
	filters map[string]filterFunc,
	detailIncludes []string,
	logger *slog.Logger,
) *ResourceHandler[E, Req, Resp] {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ResourceHandler")
	}
	return &ResourceHandler[E, Req, Resp]{
		basePath:       basePath,
		service:        svc,
		toResponse:     toResponse,
		key:            key,
		filters:        filters,
		detailIncludes: detailIncludes,
		logger:         logger.With(slog.String("component", "resource_handler"), slog.String("path", basePath)),
	}
}

// List handles GET {base}. It returns every matching record, unpaged.
func (h *ResourceHandler[E, Req, Resp]) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parseQueryOptions(r.URL.Query(), h.filters)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.service.GetAll(r.Context(), opts)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	out := make([]Resp, 0, len(items))
	for i := range items {
		out = append(out, h.toResponse(&items[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Paged handles GET {base}/paged?pageNumber=&pageSize=.
func (h *ResourceHandler[E, Req, Resp]) Paged(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	page, err := parsePageRequest(values)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	opts, err := parseQueryOptions(values, h.filters)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.service.GetPagedList(r.Context(), page, opts)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toPagedResponse(result, h.toResponse))
}

// Get handles GET {base}/{id}.
func (h *ResourceHandler[E, Req, Resp]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	includes := mergeIncludes(h.detailIncludes, parseIncludes(r.URL.Query()))
	entity, err := h.service.GetByID(r.Context(), id, includes...)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, h.toResponse(entity))
}

// Create handles POST {base}.
func (h *ResourceHandler[E, Req, Resp]) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	entity, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.service.Create(r.Context(), entity); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	id := h.key(entity)
	log.Debug("resource created", slog.Int64("id", id))
	w.Header().Set("Location", fmt.Sprintf("%s/%d", h.basePath, id))
	shared.RespondWithJSON(w, r, http.StatusCreated, h.toResponse(entity))
}

// Update handles PUT {base}/{id}. The body fully replaces the record.
func (h *ResourceHandler[E, Req, Resp]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entity, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), id, entity); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE {base}/{id}.
func (h *ResourceHandler[E, Req, Resp]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResourceHandler[E, Req, Resp]) decode(w http.ResponseWriter, r *http.Request) (*E, bool) {
	var req Req
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return nil, false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return nil, false
	}
	return req.ToDomain(), true
}
