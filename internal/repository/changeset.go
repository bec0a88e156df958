package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
)

// operation is one staged row-level change.
type operation interface {
	apply(ctx context.Context, tx *sql.Tx, dialect sqldb.Dialect) error
	// settle runs only after the owning transaction committed.
	settle()
	describe() string
}

// changeSet is the staging area shared by every repository of one unit of work.
type changeSet struct {
	ops []operation
}

func (c *changeSet) add(ops ...operation) {
	c.ops = append(c.ops, ops...)
}

// take returns the staged operations and leaves the set empty.
func (c *changeSet) take() []operation {
	ops := c.ops
	c.ops = nil
	return ops
}

func (c *changeSet) len() int {
	return len(c.ops)
}

type insertOp[T any] struct {
	m      *Mapping[T]
	entity *T
	values []any
	id     int64
}

func (o *insertOp[T]) apply(ctx context.Context, tx *sql.Tx, dialect sqldb.Dialect) error {
	cols := o.m.Schema.DataColumns()
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = dialect.Placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		o.m.Schema.Table, strings.Join(cols, ", "), strings.Join(marks, ", "))

	if dialect.Returning {
		err := tx.QueryRowContext(ctx, stmt+" RETURNING "+o.m.Schema.Key, o.values...).Scan(&o.id)
		return sqldb.MapError(err)
	}

	res, err := tx.ExecContext(ctx, stmt, o.values...)
	if err != nil {
		return sqldb.MapError(err)
	}
	o.id, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read generated %s key: %w", o.m.Entity, err)
	}
	return nil
}

func (o *insertOp[T]) settle() {
	o.m.SetKey(o.entity, o.id)
}

func (o *insertOp[T]) describe() string {
	return "insert " + o.m.Entity
}

type updateOp[T any] struct {
	m      *Mapping[T]
	key    int64
	values []any
}

func (o *updateOp[T]) apply(ctx context.Context, tx *sql.Tx, dialect sqldb.Dialect) error {
	cols := o.m.Schema.DataColumns()
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = col + " = " + dialect.Placeholder(i+1)
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		o.m.Schema.Table, strings.Join(sets, ", "), o.m.Schema.Key, dialect.Placeholder(len(cols)+1))

	args := append(append(make([]any, 0, len(o.values)+1), o.values...), o.key)
	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return sqldb.MapError(err)
	}
	return sqldb.CheckRowsAffected(res, fmt.Sprintf("%s %d", o.m.Entity, o.key))
}

func (o *updateOp[T]) settle() {}

func (o *updateOp[T]) describe() string {
	return fmt.Sprintf("update %s %d", o.m.Entity, o.key)
}

type deleteOp[T any] struct {
	m   *Mapping[T]
	key int64
}

func (o *deleteOp[T]) apply(ctx context.Context, tx *sql.Tx, dialect sqldb.Dialect) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", o.m.Schema.Table, o.m.Schema.Key, dialect.Placeholder(1))
	res, err := tx.ExecContext(ctx, stmt, o.key)
	if err != nil {
		return sqldb.MapError(err)
	}
	return sqldb.CheckRowsAffected(res, fmt.Sprintf("%s %d", o.m.Entity, o.key))
}

func (o *deleteOp[T]) settle() {}

func (o *deleteOp[T]) describe() string {
	return fmt.Sprintf("delete %s %d", o.m.Entity, o.key)
}
