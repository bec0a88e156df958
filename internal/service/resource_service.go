package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/query"
	"github.com/phrazzld/hotel-listing-api/internal/repository"
)

// UnitOfWorkFactory returns a fresh unit of work. Services open one per call.
type UnitOfWorkFactory func() *repository.UnitOfWork

// ResourceService is the read/write boundary for one catalog entity type.
type ResourceService[T any] interface {
	// GetAll returns every record matching opts.
	GetAll(ctx context.Context, opts query.Options) ([]T, error)

	// GetPagedList returns one clamped page of the records matching opts.
	GetPagedList(ctx context.Context, page domain.PageRequest, opts query.Options) (*domain.PagedResult[T], error)

	// GetByID returns the record with id and the requested relations.
	GetByID(ctx context.Context, id int64, includes ...string) (*T, error)

	// Create stores entity and sets its generated key.
	Create(ctx context.Context, entity *T) error

	// Update replaces the record with id. A key already set on entity must match id.
	Update(ctx context.Context, id int64, entity *T) error

	// Delete removes the record with id.
	Delete(ctx context.Context, id int64) error
}

type resourceService[T any] struct {
	newUnit UnitOfWorkFactory
	repo    func(*repository.UnitOfWork) *repository.Repository[T]
	mapping *repository.Mapping[T]
	logger  *slog.Logger
}

// NewCountryService creates the ResourceService for countries.
func NewCountryService(newUnit UnitOfWorkFactory, log *slog.Logger) ResourceService[domain.Country] {
	return newResourceService(newUnit, repository.CountryMapping,
		func(u *repository.UnitOfWork) *repository.Repository[domain.Country] { return u.Countries }, log)
}

// NewHotelService creates the ResourceService for hotels.
func NewHotelService(newUnit UnitOfWorkFactory, log *slog.Logger) ResourceService[domain.Hotel] {
	return newResourceService(newUnit, repository.HotelMapping,
		func(u *repository.UnitOfWork) *repository.Repository[domain.Hotel] { return u.Hotels }, log)
}

func newResourceService[T any](
	newUnit UnitOfWorkFactory,
	mapping *repository.Mapping[T],
	repo func(*repository.UnitOfWork) *repository.Repository[T],
	log *slog.Logger,
) *resourceService[T] {
	if log == nil {
		log = slog.Default()
	}
	return &resourceService[T]{
		newUnit: newUnit,
		repo:    repo,
		mapping: mapping,
		logger:  log.With(slog.String("component", mapping.Entity+"_service")),
	}
}

func (s *resourceService[T]) GetAll(ctx context.Context, opts query.Options) ([]T, error) {
	return s.repo(s.newUnit()).List(ctx, opts)
}

func (s *resourceService[T]) GetPagedList(ctx context.Context, page domain.PageRequest, opts query.Options) (*domain.PagedResult[T], error) {
	return s.repo(s.newUnit()).PagedList(ctx, page, opts)
}

func (s *resourceService[T]) GetByID(ctx context.Context, id int64, includes ...string) (*T, error) {
	return s.repo(s.newUnit()).GetByID(ctx, id, includes...)
}

func (s *resourceService[T]) Create(ctx context.Context, entity *T) error {
	uow := s.newUnit()
	if err := s.repo(uow).Insert(entity); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		s.logFailure(ctx, "create", err)
		return fmt.Errorf("failed to create %s: %w", s.mapping.Entity, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info(s.mapping.Entity+" created",
		slog.Int64("id", s.mapping.Key(entity)))
	return nil
}

func (s *resourceService[T]) Update(ctx context.Context, id int64, entity *T) error {
	if entity == nil {
		return domain.NewValidationError("", "entity is required", nil)
	}
	if key := s.mapping.Key(entity); key != 0 && key != id {
		return domain.NewValidationError("id", "does not match the addressed record", nil)
	}
	s.mapping.SetKey(entity, id)

	uow := s.newUnit()
	if err := s.repo(uow).Update(entity); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		s.logFailure(ctx, "update", err)
		return fmt.Errorf("failed to update %s %d: %w", s.mapping.Entity, id, err)
	}
	return nil
}

func (s *resourceService[T]) Delete(ctx context.Context, id int64) error {
	uow := s.newUnit()
	if err := s.repo(uow).Delete(id); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		s.logFailure(ctx, "delete", err)
		return fmt.Errorf("failed to delete %s %d: %w", s.mapping.Entity, id, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info(s.mapping.Entity+" deleted", slog.Int64("id", id))
	return nil
}

func (s *resourceService[T]) logFailure(ctx context.Context, op string, err error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		log.Debug(op+" rejected", slog.String("error", err.Error()))
		return
	}
	log.Error(op+" failed", slog.String("error", err.Error()))
}
