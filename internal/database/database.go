// Package database connects to PostgreSQL and migrates the schema.
package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Conceptual-Machines/art2music-api/internal/logger"
	"github.com/Conceptual-Machines/art2music-api/internal/models"
)

const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// ErrNotConfigured is returned when no database URL is set.
var ErrNotConfigured = errors.New("database not configured")

// Connect opens a connection pool for url.
func Connect(url string) (*gorm.DB, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	logger.Info("Database connected", logger.Fields{"max_open_conns": maxOpenConns})
	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.CompositionRecord{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
