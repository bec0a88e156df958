package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/api/shared"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/service"
	"github.com/phrazzld/hotel-listing-api/internal/service/auth"
)

// Authenticator is the token side of the account endpoints.
type Authenticator interface {
	Login(ctx context.Context, req auth.LoginRequest) (*domain.TokenPair, error)
	VerifyRefreshToken(ctx context.Context, req auth.TokenRequest) (*domain.TokenPair, error)
	Logout(ctx context.Context, principalID uuid.UUID) error
}

// AccountHandler handles registration and token endpoints.
type AccountHandler struct {
	accounts service.AccountService
	auth     Authenticator
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler with the given dependencies.
func NewAccountHandler(accounts service.AccountService, authenticator Authenticator, logger *slog.Logger) *AccountHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AccountHandler")
	}
	return &AccountHandler{
		accounts: accounts,
		auth:     authenticator,
		logger:   logger.With(slog.String("component", "account_handler")),
	}
}

// Register handles POST /account/register. New accounts always get the
// User role; administrators are created from the command line.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	principal, err := h.accounts.Register(r.Context(), service.RegisterRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AccountResponse{
		UserID:   principal.ID,
		UserName: principal.UserName,
		Roles:    principal.Roles,
	})
}

// Login handles POST /account/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	pair, err := h.auth.Login(r.Context(), auth.LoginRequest{UserName: req.Email, Password: req.Password})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, authResponse(pair))
}

// Refresh handles POST /account/refresh. The refresh token is consumed
// and a new pair is returned.
func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	pair, err := h.auth.VerifyRefreshToken(r.Context(), auth.TokenRequest{
		AccessToken:  req.Token,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, authResponse(pair))
}

// Logout handles POST /account/logout. It revokes the caller's refresh
// tokens; access tokens stay valid until they expire.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := shared.PrincipalFrom(r.Context())
	if !ok {
		log.Warn("principal not found in request context")
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return
	}

	if err := h.auth.Logout(r.Context(), principal.ID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
