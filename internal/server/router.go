// Package server assembles the HTTP surface and runs the HTTP server.
package server

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/config"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/logger"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/metrics"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/recordstore"
	"github.com/georgemunganga/storefront-api/internal/modules/requestlog"
	"github.com/georgemunganga/storefront-api/internal/modules/store"
	"github.com/georgemunganga/storefront-api/internal/modules/submission"
	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
	"github.com/georgemunganga/storefront-api/internal/shared/validation"
)

// Deps are the process-wide resources the router is built on.
type Deps struct {
	DB       *sql.DB
	Reserver requestlog.Reserver // nil disables in-flight reservations
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// NewRouter wires repositories, services and handlers and returns the root handler.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	db := recordstore.New(deps.DB, cfg.Database.QueryTimeout)
	respond := apperr.NewResponder(cfg.Idempotency.DuplicateStatus, deps.Logger)
	validate := validation.New()

	// ── Store catalog ───────────────────────────────────────
	storeService := store.NewService(
		store.NewStoreSQLRepository(db),
		store.NewItemSQLRepository(db),
		validate,
	)

	// ── Idempotent item submission ──────────────────────────
	requestLog := requestlog.NewService(requestlog.NewSQLRepository(db), deps.Reserver, deps.Logger)
	submissionService := submission.NewService(storeService, requestLog, db, validate, deps.Metrics, deps.Logger)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(logger.Middleware(deps.Logger))
	router.Use(Recoverer(respond))
	if deps.Metrics != nil {
		router.Use(Instrument(deps.Metrics))
	}
	if cfg.HTTP.RateLimitEnabled {
		router.Use(RateLimit(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, respond))
	}
	router.Use(BodyLimit(cfg.HTTP.MaxBodySize))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, "", apperr.NotFound("Route %s not found", r.URL.Path))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, "", apperr.MethodNotAllowed(r.Method))
	})

	router.Get("/healthz", health(db, respond))
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler())
	}

	router.Route("/"+cfg.App.APIVersion, func(r chi.Router) {
		store.NewHandler(storeService, respond).RegisterRoutes(r)
		submission.NewHandler(submissionService, respond).RegisterRoutes(r)
	})

	return router
}

func health(db *recordstore.DB, respond *apperr.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logger.FromContext(r.Context()).Error("health check failed", zap.Error(err))
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
