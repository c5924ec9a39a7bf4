package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"versehub/internal/config"
	"versehub/internal/reader/models"
)

// Connect opens the store and applies the schema. A postgres:// URL
// selects the postgres driver; anything else is treated as a SQLite
// file path, which is how local development and tests run.
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	dialector := dialectorFor(cfg.DatabaseURL)

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if cfg.IsDevelopment() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database_connected", "dialect", dialector.Name())
	return db, nil
}

func dialectorFor(url string) gorm.Dialector {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return postgres.Open(url)
	}
	return sqlite.Open(url)
}

// Migrate creates or updates the four engine record sets.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.VerseRecord{},
		&models.ReadingPosition{},
		&models.ReadEvent{},
		&models.DailyAssignment{},
	)
}
