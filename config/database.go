package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/andrewpaige1/brickstat-api/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Connect opens the relational store. DSNs starting with "sqlite://" or
// "file:" use SQLite with foreign keys enforced; anything else is handed to
// the Postgres driver.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	gormLog := gormLogger.New(
		zap.NewStdLog(log.Named("gorm")),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the sets and reviews tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Set{}, &models.Review{}); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}

func dialector(dsn string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(withForeignKeys(strings.TrimPrefix(dsn, "sqlite://")))
	case strings.HasPrefix(dsn, "file:"):
		return sqlite.Open(withForeignKeys(dsn))
	default:
		return postgres.Open(dsn)
	}
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}
