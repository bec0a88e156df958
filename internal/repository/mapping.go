package repository

import (
	"context"
	"fmt"

	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/phrazzld/hotel-listing-api/internal/query"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

// RelationLoader attaches one named relation to a batch of already loaded
// records, normally with a single IN query.
type RelationLoader[T any] func(ctx context.Context, db store.DBTX, dialect sqldb.Dialect, items []T) error

// Mapping binds an entity type to its table. Values and Targets must follow
// the column order of Schema: Targets covers every column (key first),
// Values covers the data columns only.
type Mapping[T any] struct {
	Entity string
	Schema *query.Schema

	Key     func(*T) int64
	SetKey  func(*T, int64)
	Values  func(*T) []any
	Targets func(*T) []any

	// Validate, when set, runs before a record is staged.
	Validate func(*T) error

	Loaders map[string]RelationLoader[T]
}

func (m *Mapping[T]) validate(entity *T) error {
	if entity == nil {
		return fmt.Errorf("%s: %w", m.Entity, errNilEntity)
	}
	if m.Validate != nil {
		return m.Validate(entity)
	}
	return nil
}

func (m *Mapping[T]) loadIncludes(ctx context.Context, db store.DBTX, dialect sqldb.Dialect, items []T, includes []string) error {
	if len(items) == 0 {
		return nil
	}
	for _, name := range includes {
		load, ok := m.Loaders[name]
		if !ok {
			return fmt.Errorf("%s: no loader for relation %q", m.Entity, name)
		}
		if err := load(ctx, db, dialect, items); err != nil {
			return fmt.Errorf("load %s.%s: %w", m.Entity, name, err)
		}
	}
	return nil
}

// selectRows runs a select rendered from m.Schema and scans every row. The
// result set is closed before returning so relation queries can reuse the
// connection.
func selectRows[T any](ctx context.Context, db store.DBTX, m *Mapping[T], sqlText string, args []any) ([]T, error) {
	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, sqldb.MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []T{}
	for rows.Next() {
		var item T
		if err := rows.Scan(m.Targets(&item)...); err != nil {
			return nil, sqldb.MapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, sqldb.MapError(err)
	}
	return items, nil
}

func countRows(ctx context.Context, db store.DBTX, sqlText string, args []any) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, sqlText, args...).Scan(&n); err != nil {
		return 0, sqldb.MapError(err)
	}
	return n, nil
}
