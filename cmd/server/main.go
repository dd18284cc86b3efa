package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"noticeboard/internal/config"
	"noticeboard/internal/db"
	"noticeboard/internal/jobs"
	"noticeboard/internal/metrics"
	"noticeboard/internal/repository"
	"noticeboard/internal/router"
	"noticeboard/internal/services"
	"noticeboard/internal/utils"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	// Initialize Database
	conn, err := db.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(conn); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	db.SeedCategories(conn, logger)

	repos := repository.New(conn)
	m := metrics.New(logger)

	cache, err := utils.NewCache(cfg.Cache.Size, cfg.Cache.TTL)
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	notifications := services.NewNotificationService(repos, logger)
	reports := services.NewReportService(repos, notifications, logger, m)
	deps := router.Dependencies{
		DB:             conn,
		Repos:          repos,
		Logger:         logger,
		Metrics:        m,
		MetricsHandler: router.DefaultMetricsHandler(),
		Auth:           services.NewAuthService(repos, logger),
		Announcements:  services.NewAnnouncementService(repos, cache, logger),
		Comments:       services.NewCommentService(repos, logger),
		Reactions:      services.NewReactionService(repos, logger, m),
		Reports:        reports,
		Notifications:  notifications,
		Moderation:     services.NewModerationService(repos, reports, notifications, logger, m),
	}
	r := router.New(cfg.Session, deps)

	// Background jobs
	scheduler, err := jobs.Schedule(cfg.Jobs.ReportSweepSchedule, jobs.NewReportSweep(repos.Reports, logger, m))
	if err != nil {
		logger.Fatal("Failed to schedule report sweep", zap.Error(err))
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Noticeboard server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	<-scheduler.Stop().Done()

	if err := db.Close(conn); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
	logger.Info("Server exited")
}

func initLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
