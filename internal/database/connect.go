// Package database opens the store's backing connection and keeps its
// schema current.
package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/olive-green/api-scheduler/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a gorm connection to whatever backend cfg.DatabaseURL names.
// Two schemes are supported: "sqlite+local://<path>" for a local file (or
// ":memory:" for an in-process database) and "postgres://..." /
// "postgresql://..." for Postgres. For sqlite, foreign key enforcement is
// switched on so that deletes cascade and dangling references are rejected,
// as they are on Postgres. TranslateError lets callers distinguish
// uniqueness/foreign-key violations with gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated regardless of which driver is in use.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "sqlite+local://"):
		path := strings.TrimPrefix(cfg.DatabaseURL, "sqlite+local://")
		path = strings.TrimPrefix(path, "//")
		if path == "" {
			path = ":memory:"
		}
		dialector = sqlite.Open(path + "?_foreign_keys=on")
	case strings.HasPrefix(cfg.DatabaseURL, "postgres://"), strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("database: unsupported DATABASE_URL scheme in %q", cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: pool handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxConnections)
	sqlDB.SetMaxIdleConns(cfg.DBIdleConnections)
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
