package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"circuitweb/internal/caching"
	"circuitweb/internal/config"
	"circuitweb/internal/handlers"
	"circuitweb/internal/jobs/background"
	"circuitweb/internal/logging"
	"circuitweb/internal/metrics"
	"circuitweb/internal/middleware"
	"circuitweb/internal/repositories"
	"circuitweb/internal/services"
	"circuitweb/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Warn().Err(err).Msg("invalid log settings, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply database schema")
		}
		logger.Info().Msg("database schema ensured")
	}

	// Token cache
	var cacheSvc caching.CacheService
	if cfg.RedisAddr != "" {
		cacheSvc = caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	} else {
		logger.Info().Msg("REDIS_ADDR not set, token cache disabled")
		cacheSvc = caching.NewNoopCacheService()
	}

	// Identity provider
	var provider services.IdentityProvider
	switch cfg.IdentityProvider {
	case "jwks":
		jwksProvider, stopJWKS, err := services.LoadJWKSIdentityProvider(cfg.FirebaseProjectID, cfg.JWKSURL, cfg.JWKSRefreshInterval, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("jwks_url", cfg.JWKSURL).Msg("failed to load signing keys")
		}
		defer stopJWKS()
		provider = jwksProvider
	default:
		provider, err = services.NewFirebaseIdentityProvider(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize firebase")
		}
	}
	logger.Info().Str("provider", cfg.IdentityProvider).Str("project_id", cfg.FirebaseProjectID).Msg("identity provider ready")

	// Object storage
	minioSvc, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize MinIO service")
	}
	if err := minioSvc.EnsureBucketExists(ctx, cfg.StorageBucket); err != nil {
		logger.Warn().Err(err).Str("bucket", cfg.StorageBucket).Msg("storage bucket unavailable")
	}

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	projectRepo := repositories.NewProjectRepository(pool)
	circuitRepo := repositories.NewCircuitRepository(pool)

	// Services
	authSvc := services.NewAuthService(provider, userRepo, cacheSvc, cfg.TokenCacheTTL, logger)
	projectSvc := services.NewProjectService(projectRepo, logger)
	circuitSvc := services.NewCircuitService(circuitRepo, projectRepo, logger)
	storageSvc := services.NewStorageService(minioSvc, services.StorageConfig{
		Bucket:         cfg.StorageBucket,
		PublicURL:      cfg.StoragePublicURL,
		URLExpiry:      cfg.StorageURLExpiry,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, logger)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, logger)
	userHandlers := handlers.NewUserHandlers(authSvc)
	projectHandlers := handlers.NewProjectHandlers(projectSvc, logger)
	circuitHandlers := handlers.NewCircuitHandlers(circuitSvc, projectSvc)
	storageHandlers := handlers.NewStorageHandlers(storageSvc, cfg.MaxUploadBytes)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storageSvc, logger)

	scheduler, err := background.NewJobScheduler(authSvc, cfg.UserSyncInterval, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create job scheduler")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)

	// Global middleware
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middleware.HeaderUserID,
		},
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics())

	handlers.RegisterRoutes(e, handlers.Routes{
		Auth:        authHandlers,
		Users:       userHandlers,
		Projects:    projectHandlers,
		Circuits:    circuitHandlers,
		Storage:     storageHandlers,
		Health:      healthHandlers,
		Metrics:     metrics.Handler(),
		Identity:    middleware.CallerIdentity(authSvc, cfg.AllowHeaderIdentity),
		UploadLimit: middleware.UploadLimit(cfg.MaxUploadBytes),
	})

	scheduler.Start()

	go func() {
		logger.Info().Str("version", version).Str("addr", cfg.Addr()).Str("env", cfg.AppEnv).Msg("circuitweb server starting")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
	if err := scheduler.Stop(); err != nil {
		logger.Error().Err(err).Msg("job scheduler shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
