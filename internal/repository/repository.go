package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/phrazzld/hotel-listing-api/internal/query"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

var errNilEntity = domain.NewValidationError("", "entity is required", nil)

// Repository is the data access facade for one entity type. Reads go straight
// to the store; writes are staged in the owning UnitOfWork and applied by
// its Commit.
type Repository[T any] struct {
	db      *sql.DB
	dialect sqldb.Dialect
	mapping *Mapping[T]
	changes *changeSet
	logger  *slog.Logger
}

func newRepository[T any](db *sql.DB, dialect sqldb.Dialect, m *Mapping[T], changes *changeSet, log *slog.Logger) *Repository[T] {
	return &Repository[T]{
		db:      db,
		dialect: dialect,
		mapping: m,
		changes: changes,
		logger:  log.With(slog.String("entity", m.Entity)),
	}
}

// List returns every record matching opts, unpaged.
func (r *Repository[T]) List(ctx context.Context, opts query.Options) ([]T, error) {
	plan, err := query.Build(r.mapping.Schema, opts, r.dialect)
	if err != nil {
		return nil, err
	}

	sqlText, args := plan.SelectSQL(0, 0)
	items, err := selectRows(ctx, r.db, r.mapping, sqlText, args)
	if err != nil {
		return nil, r.fail(ctx, "list", err)
	}
	if err := r.mapping.loadIncludes(ctx, r.db, r.dialect, items, plan.Includes()); err != nil {
		return nil, r.fail(ctx, "list", err)
	}
	return items, nil
}

// PagedList returns one page of the records matching opts. page is clamped
// into range first. TotalCount always reflects the unpaged predicate; a page
// past the end has no items but is not an error.
func (r *Repository[T]) PagedList(ctx context.Context, page domain.PageRequest, opts query.Options) (*domain.PagedResult[T], error) {
	page = page.Normalize()

	plan, err := query.Build(r.mapping.Schema, opts, r.dialect)
	if err != nil {
		return nil, err
	}

	countSQL, countArgs := plan.CountSQL()
	total, err := countRows(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, r.fail(ctx, "count", err)
	}

	items := []T{}
	if offset, ok := page.Offset(total); ok {
		sqlText, args := plan.SelectSQL(page.PageSize, int(offset))
		items, err = selectRows(ctx, r.db, r.mapping, sqlText, args)
		if err != nil {
			return nil, r.fail(ctx, "paged list", err)
		}
		if err := r.mapping.loadIncludes(ctx, r.db, r.dialect, items, plan.Includes()); err != nil {
			return nil, r.fail(ctx, "paged list", err)
		}
	}

	return domain.NewPagedResult(items, total, page), nil
}

// Get returns the first record matching where, by key ascending. It fails
// with domain.ErrNotFound when nothing matches.
func (r *Repository[T]) Get(ctx context.Context, where query.Predicate, includes ...string) (*T, error) {
	plan, err := query.Build(r.mapping.Schema, query.Options{Where: where, Includes: includes}, r.dialect)
	if err != nil {
		return nil, err
	}

	sqlText, args := plan.SelectSQL(1, 0)
	items, err := selectRows(ctx, r.db, r.mapping, sqlText, args)
	if err != nil {
		return nil, r.fail(ctx, "get", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, r.mapping.Entity)
	}
	if err := r.mapping.loadIncludes(ctx, r.db, r.dialect, items, plan.Includes()); err != nil {
		return nil, r.fail(ctx, "get", err)
	}
	return &items[0], nil
}

// GetByID is Get on the key column.
func (r *Repository[T]) GetByID(ctx context.Context, id int64, includes ...string) (*T, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be positive", nil)
	}
	return r.Get(ctx, query.Eq(r.mapping.Schema.Key, id), includes...)
}

// Insert stages a new record. Its key is set only after a successful commit.
func (r *Repository[T]) Insert(entity *T) error {
	return r.InsertRange([]*T{entity})
}

// InsertRange stages new records. Nothing is staged if any record is invalid.
func (r *Repository[T]) InsertRange(entities []*T) error {
	ops := make([]operation, 0, len(entities))
	for _, e := range entities {
		if err := r.mapping.validate(e); err != nil {
			return err
		}
		ops = append(ops, &insertOp[T]{m: r.mapping, entity: e, values: r.mapping.Values(e)})
	}
	r.changes.add(ops...)
	return nil
}

// Update stages a full replacement of the record with entity's key.
func (r *Repository[T]) Update(entity *T) error {
	return r.UpdateRange([]*T{entity})
}

// UpdateRange stages full replacements. Nothing is staged if any record is invalid.
func (r *Repository[T]) UpdateRange(entities []*T) error {
	ops := make([]operation, 0, len(entities))
	for _, e := range entities {
		if err := r.mapping.validate(e); err != nil {
			return err
		}
		key := r.mapping.Key(e)
		if key <= 0 {
			return domain.NewValidationError("id", "must be positive", nil)
		}
		ops = append(ops, &updateOp[T]{m: r.mapping, key: key, values: r.mapping.Values(e)})
	}
	r.changes.add(ops...)
	return nil
}

// Delete stages removal by key. A key that no longer exists fails the
// commit with domain.ErrNotFound.
func (r *Repository[T]) Delete(id int64) error {
	return r.DeleteRange([]int64{id})
}

// DeleteRange stages removal of every key.
func (r *Repository[T]) DeleteRange(ids []int64) error {
	ops := make([]operation, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return domain.NewValidationError("id", "must be positive", nil)
		}
		ops = append(ops, &deleteOp[T]{m: r.mapping, key: id})
	}
	r.changes.add(ops...)
	return nil
}

func (r *Repository[T]) fail(ctx context.Context, op string, err error) error {
	if !errors.Is(err, context.Canceled) {
		logger.FromContextOrDefault(ctx, r.logger).Error("repository read failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
	return store.NewStoreError(r.mapping.Entity, op, "read failed", err)
}
