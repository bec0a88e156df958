package repository

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/phrazzld/hotel-listing-api/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockUnitOfWork(t *testing.T, dialect sqldb.Dialect) (*UnitOfWork, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUnitOfWork(db, dialect, nil), mock
}

func TestCommit_PostgresUsesReturning(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, sqldb.Postgres)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO countries (name, short_name) VALUES ($1, $2) RETURNING id`).
		WithArgs("Jamaica", "JM").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`UPDATE hotels SET name = $1, address = $2, rating = $3, country_id = $4 WHERE id = $5`).
		WithArgs("Sandals", "Negril", 4.5, int64(7), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM hotels WHERE id = $1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c := &domain.Country{Name: "Jamaica", ShortName: "JM"}
	require.NoError(t, uow.Countries.Insert(c))
	require.NoError(t, uow.Hotels.Update(&domain.Hotel{ID: 3, Name: "Sandals", Address: "Negril", Rating: 4.5, CountryID: 7}))
	require.NoError(t, uow.Hotels.Delete(9))

	require.NoError(t, uow.Commit(context.Background()))
	assert.Equal(t, int64(7), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit_MySQLUsesLastInsertID(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, sqldb.MySQL)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO countries (name, short_name) VALUES (?, ?)`).
		WithArgs("Bahamas", "BS").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	c := &domain.Country{Name: "Bahamas", ShortName: "BS"}
	require.NoError(t, uow.Countries.Insert(c))
	require.NoError(t, uow.Commit(context.Background()))
	assert.Equal(t, int64(42), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		dialect sqldb.Dialect
		err     error
		want    error
	}{
		{
			name:    "postgres foreign key",
			dialect: sqldb.Postgres,
			err:     &pgconn.PgError{Code: "23503", ConstraintName: "fk_hotels_country"},
			want:    domain.ErrConflict,
		},
		{
			name:    "postgres lost connection",
			dialect: sqldb.Postgres,
			err:     &pgconn.PgError{Code: "08006"},
			want:    domain.ErrStoreUnavailable,
		},
		{
			name:    "mysql missing parent",
			dialect: sqldb.MySQL,
			err:     &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"},
			want:    domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow, mock := newMockUnitOfWork(t, tt.dialect)

			mock.ExpectBegin()
			if tt.dialect.Returning {
				mock.ExpectQuery(`INSERT INTO hotels (name, address, rating, country_id) VALUES ($1, $2, $3, $4) RETURNING id`).
					WillReturnError(tt.err)
			} else {
				mock.ExpectExec(`INSERT INTO hotels (name, address, rating, country_id) VALUES (?, ?, ?, ?)`).
					WillReturnError(tt.err)
			}
			mock.ExpectRollback()

			h := &domain.Hotel{Name: "Orphan", Rating: 3, CountryID: 99}
			require.NoError(t, uow.Hotels.Insert(h))

			err := uow.Commit(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, h.ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommit_StopsAtFirstFailure(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, sqldb.Postgres)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM countries WHERE id = $1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.NoError(t, uow.Countries.DeleteRange([]int64{1, 2}))
	err := uow.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit_EmptyChangeSetDoesNotTouchStore(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, sqldb.Postgres)

	require.NoError(t, uow.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPagedList_SkipsSelectPastTheEnd(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, sqldb.Postgres)

	mock.ExpectQuery(`SELECT COUNT(*) FROM hotels WHERE country_id = $1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	res, err := uow.Hotels.PagedList(context.Background(),
		domain.PageRequest{PageNumber: 4, PageSize: 1},
		query.Options{Where: query.Eq("countryId", int64(5))})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalCount)
	assert.Empty(t, res.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_StoreUnavailable(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, sqldb.Postgres)

	mock.ExpectQuery(`SELECT id, name, short_name FROM countries ORDER BY id ASC`).
		WillReturnError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})

	_, err := uow.Countries.List(context.Background(), query.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
