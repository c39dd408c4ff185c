package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"catalog_service/config"
	"catalog_service/internal/delivery"
	grpcdelivery "catalog_service/internal/delivery/grpc"
	"catalog_service/internal/repository"
	"catalog_service/internal/usecase"
	"catalog_service/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	gin.SetMode(cfg.GinMode)
	logger.Info("Starting Catalog Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	database, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Fatalf("FATAL: Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connection established.")

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database, logger); err != nil {
			logger.Fatalf("FATAL: Failed to apply migrations: %v", err)
		}
		logger.Info("Database migrations applied.")
	}

	// --- Dependency Injection ---
	categoryRepo := repository.NewPostgresCategoryRepository(database, logger)
	categoryUseCase := usecase.NewCategoryUseCase(categoryRepo, logger)
	categoryHandler := delivery.NewCategoryHandler(categoryUseCase, logger)
	router := delivery.NewRouter(logger, database, categoryHandler)
	logger.Info("Handlers initialized.")

	// --- gRPC health ---
	grpcServer := grpc.NewServer()
	healthHandler := grpcdelivery.NewHealthHandler(database, cfg.HealthCheckInterval, logger)
	healthHandler.Register(grpcServer)
	go healthHandler.Run(ctx)

	grpcListener, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("FATAL: Failed to listen on gRPC port %s: %v", cfg.GrpcPort, err)
	}
	go func() {
		logger.Infof("gRPC health server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Errorf("gRPC server stopped: %v", err)
		}
	}()

	// --- Start Server ---
	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router,
	}
	go func() {
		logger.Infof("Starting server on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Failed to start server on port %s: %v", cfg.HTTPPort, err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, draining connections...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Catalog Service stopped.")
}
