package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertCredential = "INSERT INTO credentials (user_name) VALUES (?)"
	insertRole       = "INSERT INTO credential_roles (role) VALUES (?)"
)

// writeCredential is the two-statement shape the credential store commits.
func writeCredential(role string) TxFn {
	return func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertCredential, "ada@example.com"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertRole, role); err != nil {
			return ErrConstraint
		}
		return nil
	}
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRunInTransaction(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		wantErr error
		errText string
	}{
		{
			name: "both writes commit",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(insertCredential).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(insertRole).WithArgs("User").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "second write fails and the first is rolled back",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(insertCredential).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(insertRole).WithArgs("User").WillReturnError(boom)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "begin fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(boom)
			},
			wantErr: boom,
			errText: "begin transaction",
		},
		{
			name: "commit fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(insertCredential).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(insertRole).WithArgs("User").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(boom)
			},
			wantErr: boom,
			errText: "commit transaction",
		},
		{
			name: "rollback failure keeps the original cause",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(insertCredential).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(insertRole).WithArgs("User").WillReturnError(boom)
				mock.ExpectRollback().WillReturnError(errors.New("connection lost"))
			},
			wantErr: ErrConstraint,
			errText: "connection lost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			tt.expect(mock)

			err := RunInTransaction(context.Background(), db, writeCredential("User"))
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.errText != "" {
					assert.Contains(t, err.Error(), tt.errText)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransactionRollsBackOnPanic(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertCredential).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "role table missing", func() {
		_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, insertCredential, "ada@example.com")
			panic("role table missing")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransactionCancelledContext(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, cancel := context.WithCancel(context.Background())
	err := RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		cancel()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}
