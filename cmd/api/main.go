package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlas-procurement/request-api/internal/auth"
	"github.com/atlas-procurement/request-api/internal/config"
	"github.com/atlas-procurement/request-api/internal/database"
	"github.com/atlas-procurement/request-api/internal/http/handler"
	"github.com/atlas-procurement/request-api/internal/http/middleware"
	"github.com/atlas-procurement/request-api/internal/http/router"
	"github.com/atlas-procurement/request-api/internal/logger"
	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/atlas-procurement/request-api/internal/service"
	"github.com/atlas-procurement/request-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	attachmentStore, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Repositories
	requesterRepo := repository.NewRequesterRepository(db)
	buyerRepo := repository.NewBuyerRepository(db)
	userRepo := repository.NewUserRepository(db)
	sequenceRepo := repository.NewRequestSequenceRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	// Services
	requesterService := service.NewRequesterService(requesterRepo, log)
	buyerService := service.NewBuyerService(buyerRepo, log)
	userService := service.NewUserService(userRepo)
	requestService := service.NewRequestService(
		requestRepo,
		requesterRepo,
		buyerRepo,
		sequenceRepo,
		attachmentStore,
		cfg.Storage.MaxUploadSizeBytes(),
		log,
	)
	exportService := service.NewExportService(requestRepo, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	requestHandler := handler.NewRequestHandler(requestService, exportService, log)
	requesterHandler := handler.NewRequesterHandler(requesterService, log)
	buyerHandler := handler.NewBuyerHandler(buyerService, log)
	authHandler := handler.NewAuthHandler(userService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		requestHandler,
		requesterHandler,
		buyerHandler,
		authHandler,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("server stopped gracefully")
	}

	return nil
}
