package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/hotel-listing-api/internal/api"
	apiMiddleware "github.com/phrazzld/hotel-listing-api/internal/api/middleware"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.allowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if app.config.Server.RateLimitRPS > 0 {
		limiter := apiMiddleware.NewRateLimiter(apiMiddleware.RateLimitConfig{
			RequestsPerSecond: app.config.Server.RateLimitRPS,
			Burst:             app.config.Server.RateLimitBurst,
		})
		r.Use(limiter.Handler)
	}

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	requireAdmin := authMiddleware.RequireRole(domain.RoleAdministrator)

	countryHandler := api.NewCountryHandler(app.countryService, app.logger)
	hotelHandler := api.NewHotelHandler(app.hotelService, app.logger)
	accountHandler := api.NewAccountHandler(app.accountService, app.authManager, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/countries", func(r chi.Router) {
			r.Get("/", countryHandler.List)
			r.Get("/paged", countryHandler.Paged)
			r.Get("/{id}", countryHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Put("/{id}", countryHandler.Update)
				r.With(requireAdmin).Post("/", countryHandler.Create)
				r.With(requireAdmin).Delete("/{id}", countryHandler.Delete)
			})
		})

		r.Route("/hotels", func(r chi.Router) {
			r.Get("/", hotelHandler.List)
			r.Get("/paged", hotelHandler.Paged)
			r.Get("/{id}", hotelHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Put("/{id}", hotelHandler.Update)
				r.With(requireAdmin).Post("/", hotelHandler.Create)
				r.With(requireAdmin).Delete("/{id}", hotelHandler.Delete)
			})
		})

		r.Route("/account", func(r chi.Router) {
			r.Post("/register", accountHandler.Register)
			r.Post("/login", accountHandler.Login)
			r.Post("/refresh", accountHandler.Refresh)
			r.With(authMiddleware.Authenticate).Post("/logout", accountHandler.Logout)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := app.db.PingContext(r.Context()); err != nil {
			app.logger.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

func (app *application) allowedOrigins() []string {
	if len(app.config.Server.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return app.config.Server.CORSAllowedOrigins
}
