package main

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/config"
	"github.com/clinic/records/internal/domain/account"
	"github.com/clinic/records/internal/domain/identity"
	"github.com/clinic/records/internal/domain/mapping"
	"github.com/clinic/records/internal/domain/scheduling"
	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/internal/platform/db"
	"github.com/clinic/records/internal/platform/middleware"
)

// newServer builds the echo instance with the middleware chain and the full
// routing table.
func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, tokens *auth.TokenIssuer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	e.Pre(echomw.RemoveTrailingSlash())

	accounts := account.NewService(account.NewRepo(pool), tokens, logger)

	// Global middleware. Logger sits outside Recovery so panics are logged
	// with their final status.
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders(cfg.TLSEnabled))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(auth.JWTMiddleware(tokens, accounts, auth.AuthSkipper))

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool, func() *db.PoolStats { return db.GetPoolStats(pool) }))

	// Repositories
	patientRepo := identity.NewPatientRepo(pool)
	doctorRepo := identity.NewDoctorRepo(pool)
	apptRepo := scheduling.NewAppointmentRepo(pool)
	mappingRepo := mapping.NewRepo(pool)

	// Services and routes
	root := e.Group("")
	account.NewHandler(accounts).RegisterRoutes(root)
	identity.NewHandler(identity.NewService(patientRepo, doctorRepo)).RegisterRoutes(root)
	mapping.NewHandler(mapping.NewService(mappingRepo, patientRepo, doctorRepo, pool, logger)).RegisterRoutes(root)
	scheduling.NewHandler(scheduling.NewService(apptRepo, patientRepo, doctorRepo)).RegisterRoutes(root)

	return e
}
