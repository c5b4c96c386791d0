package router

import (
	"encoding/json"
	"net/http"

	"github.com/atlas-procurement/request-api/internal/auth"
	"github.com/atlas-procurement/request-api/internal/config"
	"github.com/atlas-procurement/request-api/internal/database"
	"github.com/atlas-procurement/request-api/internal/http/handler"
	"github.com/atlas-procurement/request-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	requestHandler   *handler.RequestHandler
	requesterHandler *handler.RequesterHandler
	buyerHandler     *handler.BuyerHandler
	authHandler      *handler.AuthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	requestHandler *handler.RequestHandler,
	requesterHandler *handler.RequesterHandler,
	buyerHandler *handler.BuyerHandler,
	authHandler *handler.AuthHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		requestHandler:   requestHandler,
		requesterHandler: requesterHandler,
		buyerHandler:     buyerHandler,
		authHandler:      authHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with connection pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.Get("/users", rt.authHandler.ListUsers)

			// Requesters
			r.Route("/requesters", func(r chi.Router) {
				r.Get("/", rt.requesterHandler.List)
				r.Post("/", rt.requesterHandler.Create)
				r.Get("/{id}", rt.requesterHandler.GetByID)
				r.Put("/{id}", rt.requesterHandler.Update)
				r.Delete("/{id}", rt.requesterHandler.Delete)
			})

			// Buyers
			r.Route("/buyers", func(r chi.Router) {
				r.Get("/", rt.buyerHandler.List)
				r.Post("/", rt.buyerHandler.Create)
				r.Get("/{id}", rt.buyerHandler.GetByID)
				r.Put("/{id}", rt.buyerHandler.Update)
				r.Delete("/{id}", rt.buyerHandler.Delete)
			})

			// Requests
			r.Route("/requests", func(r chi.Router) {
				r.Get("/", rt.requestHandler.List)
				r.Post("/", rt.requestHandler.Create)
				r.Post("/export", rt.requestHandler.Export)
				r.Get("/{id}", rt.requestHandler.GetByID)
				r.Put("/{id}", rt.requestHandler.Update)
				r.Delete("/{id}", rt.requestHandler.Delete)
				r.Post("/{id}/comments", rt.requestHandler.AddComment)
				r.Post("/{id}/attachment", rt.requestHandler.UploadAttachment)
				r.Get("/{id}/attachment", rt.requestHandler.DownloadAttachment)
				r.Delete("/{id}/attachment", rt.requestHandler.DeleteAttachment)
			})
		})
	})

	return r
}
