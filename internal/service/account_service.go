package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/service/auth"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

// RegisterRequest is a new account. The email doubles as the user name.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

// AccountService manages user accounts.
type AccountService interface {
	// Register creates an account holding roles, or the User role when none
	// are given.
	Register(ctx context.Context, req RegisterRequest, roles ...string) (*domain.Principal, error)
}

// AccountServiceImpl implements AccountService
type AccountServiceImpl struct {
	credentials store.CredentialStore
	hasher      auth.PasswordHasher
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(credentials store.CredentialStore, hasher auth.PasswordHasher, log *slog.Logger) *AccountServiceImpl {
	if log == nil {
		log = slog.Default()
	}
	return &AccountServiceImpl{
		credentials: credentials,
		hasher:      hasher,
		validate:    validator.New(),
		logger:      log.With(slog.String("component", "account_service")),
	}
}

// Register implements AccountService.
func (s *AccountServiceImpl) Register(ctx context.Context, req RegisterRequest, roles ...string) (*domain.Principal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return nil, domain.NewValidationError(lowerFirst(fe.Field()), "failed the "+fe.Tag()+" rule", nil)
		}
		return nil, domain.NewValidationError("", err.Error(), nil)
	}
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &domain.Credential{
		UserName:     req.Email,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		if errors.Is(err, store.ErrUserNameExists) {
			log.Debug("attempted to register existing user name")
		} else {
			log.Error("failed to create account", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	log.Info("account registered",
		slog.String("user_id", cred.PrincipalID.String()),
		slog.Any("roles", cred.Roles))
	return cred.Principal(), nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
