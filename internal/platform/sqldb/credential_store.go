package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

// CredentialStore implements store.CredentialStore over the users, roles and
// user_roles tables.
type CredentialStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

var _ store.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore creates a CredentialStore. A nil logger uses slog.Default().
func NewCredentialStore(db *sql.DB, dialect Dialect, log *slog.Logger) *CredentialStore {
	if log == nil {
		log = slog.Default()
	}
	return &CredentialStore{
		db:      db,
		dialect: dialect,
		logger:  log.With(slog.String("component", "credential_store")),
	}
}

const selectUserColumns = `SELECT id, user_name, normalized_user_name, email, first_name, last_name, password_hash, created_at FROM users`

// FindByNormalizedUserName implements store.CredentialStore.
func (s *CredentialStore) FindByNormalizedUserName(ctx context.Context, normalized string) (*domain.Credential, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(selectUserColumns+` WHERE normalized_user_name = ?`), normalized)
	return s.load(ctx, row)
}

// FindByID implements store.CredentialStore.
func (s *CredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(selectUserColumns+` WHERE id = ?`), id.String())
	return s.load(ctx, row)
}

func (s *CredentialStore) load(ctx context.Context, row *sql.Row) (*domain.Credential, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var cred domain.Credential
	err := row.Scan(
		&cred.PrincipalID,
		&cred.UserName,
		&cred.NormalizedUserName,
		&cred.Email,
		&cred.FirstName,
		&cred.LastName,
		&cred.PasswordHash,
		&cred.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		log.Error("failed to load user", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	roles, err := s.roles(ctx, cred.PrincipalID)
	if err != nil {
		return nil, err
	}
	cred.Roles = roles
	cred.CreatedAt = cred.CreatedAt.UTC()
	return &cred, nil
}

func (s *CredentialStore) roles(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.Rebind(`SELECT role_name FROM user_roles WHERE user_id = ? ORDER BY role_name`), id.String())
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	roles := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, MapError(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return roles, nil
}

// Create implements store.CredentialStore. The account row and its roles are
// written in one transaction.
func (s *CredentialStore) Create(ctx context.Context, cred *domain.Credential) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if cred.PrincipalID == uuid.Nil {
		cred.PrincipalID = uuid.New()
	}
	if cred.NormalizedUserName == "" {
		cred.NormalizedUserName = domain.NormalizeUserName(cred.UserName)
	}
	slices.Sort(cred.Roles)
	cred.Roles = slices.Compact(cred.Roles)
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.dialect.Rebind(`INSERT INTO users
			(id, user_name, normalized_user_name, email, first_name, last_name, password_hash, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			cred.PrincipalID.String(),
			cred.UserName,
			cred.NormalizedUserName,
			cred.Email,
			cred.FirstName,
			cred.LastName,
			cred.PasswordHash,
			cred.CreatedAt,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return fmt.Errorf("%w: %v", store.ErrUserNameExists, err)
			}
			return MapError(err)
		}

		for _, role := range cred.Roles {
			_, err := tx.ExecContext(ctx,
				s.dialect.Rebind(`INSERT INTO user_roles (user_id, role_name) VALUES (?, ?)`),
				cred.PrincipalID.String(), role)
			if err != nil {
				return fmt.Errorf("role %q: %w", role, MapError(err))
			}
		}
		return nil
	})
	if err != nil {
		log.Debug("failed to create user",
			slog.String("user_name", cred.UserName),
			slog.String("error", err.Error()))
		return err
	}

	log.Info("user created",
		slog.String("user_id", cred.PrincipalID.String()),
		slog.Any("roles", cred.Roles))
	return nil
}
