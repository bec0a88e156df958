package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

// UnitOfWork groups one repository per entity type over a shared change set.
// Commit applies every staged change in staging order inside one
// transaction. A UnitOfWork belongs to a single request and is not safe for
// concurrent use.
type UnitOfWork struct {
	db      *sql.DB
	dialect sqldb.Dialect
	changes *changeSet
	logger  *slog.Logger

	Countries *Repository[domain.Country]
	Hotels    *Repository[domain.Hotel]
}

// NewUnitOfWork creates an empty unit of work. A nil logger uses slog.Default().
func NewUnitOfWork(db *sql.DB, dialect sqldb.Dialect, log *slog.Logger) *UnitOfWork {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "unit_of_work"))
	changes := &changeSet{}

	return &UnitOfWork{
		db:        db,
		dialect:   dialect,
		changes:   changes,
		logger:    log,
		Countries: newRepository(db, dialect, CountryMapping, changes, log),
		Hotels:    newRepository(db, dialect, HotelMapping, changes, log),
	}
}

// Pending returns the number of staged changes.
func (u *UnitOfWork) Pending() int {
	return u.changes.len()
}

// Discard drops every staged change.
func (u *UnitOfWork) Discard() {
	u.changes.take()
}

// Commit applies the staged changes atomically. Constraint violations
// surface as domain.ErrConflict, a missing key on update or delete as
// domain.ErrNotFound and transport failures as domain.ErrStoreUnavailable.
// The change set is empty afterwards whether or not the commit succeeded.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, u.logger)

	ops := u.changes.take()
	if len(ops) == 0 {
		return nil
	}

	err := store.RunInTransaction(ctx, u.db, func(ctx context.Context, tx *sql.Tx) error {
		for i, op := range ops {
			if err := op.apply(ctx, tx, u.dialect); err != nil {
				return fmt.Errorf("staged change %d (%s): %w", i+1, op.describe(), err)
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("unit of work rolled back",
			slog.Int("operations", len(ops)),
			slog.String("error", err.Error()))
		return sqldb.MapError(err)
	}

	for _, op := range ops {
		op.settle()
	}
	log.Debug("unit of work committed", slog.Int("operations", len(ops)))
	return nil
}
