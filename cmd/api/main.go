package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobseeker-backend/config"
	v1 "go-jobseeker-backend/internal/delivery/http/v1"
	"go-jobseeker-backend/internal/repository/postgres"
	"go-jobseeker-backend/internal/usecase"
	"go-jobseeker-backend/pkg/blobstore"
	"go-jobseeker-backend/pkg/database"
	"go-jobseeker-backend/pkg/logger"
	"go-jobseeker-backend/pkg/redis"

	"github.com/go-playground/validator/v10"
)

// @title           Job Seeker Profile API
// @version         1.0
// @description     Profile and asset management backend for job seekers.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting jobseeker backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional, rate limiting falls back to memory without it)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable", "error", err)
	}
	defer redis.Close()

	// 5. Setup Blob Store (creates the upload directory tree)
	blob, err := blobstore.New(cfg.UploadDir)
	if err != nil {
		logger.Log.Error("Failed to initialize blob store", "error", err)
		os.Exit(1)
	}

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool)
	skillRepo := postgres.NewSkillRepository(dbPool)

	// 7. Setup UseCases
	validate := validator.New()
	skillRegistry := usecase.NewSkillRegistry(skillRepo)
	profileUC := usecase.NewProfileUsecase(userRepo, profileRepo, skillRegistry, blob, validate)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ProfileUC: profileUC,
		BlobStore: blob,
		Config:    cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
