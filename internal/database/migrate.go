package database

import (
	"context"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"

	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Profile{},
		&domain.UserRole{},
		&domain.LocalCredential{},
		&domain.Book{},
		&domain.ReadingProgress{},
	}
}

func Migrate(db *gorm.DB) error {
	start := time.Now()
	err := db.AutoMigrate(Models()...)
	observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "error")
		return err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "success")
	return nil
}

// MigrationStatus reports whether each model's table exists.
func MigrationStatus(db *gorm.DB) (map[string]bool, error) {
	out := make(map[string]bool, len(Models()))
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		out[stmt.Schema.Table] = db.Migrator().HasTable(m)
	}
	return out, nil
}
