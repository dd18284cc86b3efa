package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"noticeboard/internal/config"
	"noticeboard/internal/models"
)

// Open connects to the configured database and verifies the connection.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Announcement{},
		&models.Comment{},
		&models.Reaction{},
		&models.Report{},
		&models.ModerationAction{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// SeedCategories inserts the initial categories on an empty database.
func SeedCategories(conn *gorm.DB, log *zap.Logger) {
	var count int64
	conn.Model(&models.Category{}).Count(&count)
	if count > 0 {
		log.Debug("Categories already seeded, skipping")
		return
	}

	categories := []models.Category{
		{Name: "General", Description: "Neighbourhood news and general notices"},
		{Name: "Events", Description: "Meetups, fairs and local happenings"},
		{Name: "For sale", Description: "Items for sale or giveaway"},
		{Name: "Lost & found", Description: "Lost pets, keys and belongings"},
		{Name: "Services", Description: "Local services offered or wanted"},
	}

	for _, category := range categories {
		if err := conn.Create(&category).Error; err != nil {
			log.Warn("Failed to create category", zap.String("name", category.Name), zap.Error(err))
		}
	}
	log.Info("Initial categories created", zap.Int("count", len(categories)))
}
