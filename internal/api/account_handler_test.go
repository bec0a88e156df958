package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/hotel-listing-api/internal/api/middleware"
	"github.com/phrazzld/hotel-listing-api/internal/config"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/phrazzld/hotel-listing-api/internal/service"
	"github.com/phrazzld/hotel-listing-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-that-is-32-chars-long",
		Issuer:                      "hotel-listing-api",
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60,
		ClockSkewSeconds:            30,
		PasswordHasher:              "bcrypt",
		BCryptCost:                  4,
		RefreshStore:                "sql",
	}
}

func newAccountRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := testAuthConfig()
	db := sqldb.OpenTestSQLite(t)
	quiet := slog.New(slog.DiscardHandler)

	creds := sqldb.NewCredentialStore(db, sqldb.SQLite, quiet)
	refresh := sqldb.NewRefreshTokenStore(db, sqldb.SQLite, quiet)
	hasher, err := auth.NewPasswordHasher(cfg)
	require.NoError(t, err)
	jwtService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	manager := auth.NewAuthManager(
		auth.NewCredentialValidator(creds, hasher),
		auth.NewTokenIssuer(jwtService, refresh, cfg),
		creds, refresh, quiet)
	handler := NewAccountHandler(service.NewAccountService(creds, hasher, quiet), manager, quiet)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Route("/api/account", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh", handler.Refresh)
		r.With(authMiddleware.Authenticate).Post("/logout", handler.Logout)
	})
	return r
}

func registerAndLogin(t *testing.T, h http.Handler, email, password string) AuthResponse {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/account/register",
		fmt.Sprintf(`{"firstName":"Ada","lastName":"Lovelace","email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/api/account/login", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decodeBody[AuthResponse](t, rr)
}

func refreshBody(resp AuthResponse) string {
	return fmt.Sprintf(`{"token":%q,"refreshToken":%q}`, resp.Token, resp.RefreshToken)
}

func TestAccountRegister(t *testing.T) {
	h := newAccountRouter(t)

	rr := do(t, h, http.MethodPost, "/api/account/register", `{"email":"ada@example.com","password":"P@ssword1"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	account := decodeBody[AccountResponse](t, rr)
	assert.Equal(t, "ada@example.com", account.UserName)
	assert.Equal(t, []string{domain.RoleUser}, account.Roles)
	assert.NotContains(t, rr.Body.String(), "P@ssword1")

	rr = do(t, h, http.MethodPost, "/api/account/register", `{"email":"ADA@example.com","password":"P@ssword1"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/account/register", `{"email":"bob@example.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid password: too short")
}

func TestAccountLogin(t *testing.T) {
	h := newAccountRouter(t)
	resp := registerAndLogin(t, h, "ada@example.com", "P@ssword1")

	assert.NotEmpty(t, resp.Token)
	assert.Len(t, resp.RefreshToken, 43)
	assert.NotEmpty(t, resp.ExpiresAt)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", resp.UserID.String())

	wrongPassword := do(t, h, http.MethodPost, "/api/account/login", `{"email":"ada@example.com","password":"nope"}`)
	unknownUser := do(t, h, http.MethodPost, "/api/account/login", `{"email":"ghost@example.com","password":"nope"}`)

	for _, rr := range []*httptest.ResponseRecorder{wrongPassword, unknownUser} {
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		body := decodeBody[map[string]string](t, rr)
		assert.Equal(t, "Invalid credentials", body["error"])
	}
}

func TestAccountRefreshRotation(t *testing.T) {
	h := newAccountRouter(t)
	first := registerAndLogin(t, h, "ada@example.com", "P@ssword1")

	rr := do(t, h, http.MethodPost, "/api/account/refresh", refreshBody(first))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	second := decodeBody[AuthResponse](t, rr)
	assert.Equal(t, first.UserID, second.UserID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	rr = do(t, h, http.MethodPost, "/api/account/refresh", refreshBody(first))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "a refresh token is single use")

	rr = do(t, h, http.MethodPost, "/api/account/refresh", `{"token":"garbage","refreshToken":"garbage"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/account/refresh", `{"token":"","refreshToken":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAccountRefreshOwnerMismatch(t *testing.T) {
	h := newAccountRouter(t)
	ada := registerAndLogin(t, h, "ada@example.com", "P@ssword1")
	bob := registerAndLogin(t, h, "bob@example.com", "P@ssword2")

	mixed := AuthResponse{Token: ada.Token, RefreshToken: bob.RefreshToken}
	rr := do(t, h, http.MethodPost, "/api/account/refresh", refreshBody(mixed))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/account/refresh", refreshBody(bob))
	assert.Equal(t, http.StatusOK, rr.Code, "a mismatched attempt does not consume the token")
}

func TestAccountLogout(t *testing.T) {
	h := newAccountRouter(t)
	resp := registerAndLogin(t, h, "ada@example.com", "P@ssword1")

	rr := do(t, h, http.MethodPost, "/api/account/logout", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/account/logout", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/account/refresh", refreshBody(resp))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "logout revokes outstanding refresh tokens")
}

func TestAccountLogoutWithoutPrincipal(t *testing.T) {
	handler := NewAccountHandler(nil, nil, slog.New(slog.DiscardHandler))
	req := httptest.NewRequest(http.MethodPost, "/api/account/logout", nil).WithContext(context.Background())
	rr := httptest.NewRecorder()

	handler.Logout(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
