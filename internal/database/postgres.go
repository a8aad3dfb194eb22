package database

import (
	"context"
	"strings"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/config"
	"github.com/hashebooks/hashebooks-backend/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres, or to SQLite when DATABASE_URL starts with
// "sqlite:" (local runs and tooling smoke tests).
func Open(cfg *config.Config) (*gorm.DB, error) {
	start := time.Now()
	dialector := dialectorFor(cfg.DatabaseURL)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	observability.RecordDatabaseStartupDuration(context.Background(), "open", time.Since(start))
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "open", "error")
		return nil, err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "open", "success")
	return db, nil
}

func dialectorFor(url string) gorm.Dialector {
	if dsn, ok := strings.CutPrefix(url, "sqlite:"); ok {
		return sqlite.Open(dsn)
	}
	return postgres.Open(url)
}
