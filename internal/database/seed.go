package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SeedReport struct {
	BootstrapEmail string `json:"bootstrap_email"`
	UserFound      bool   `json:"user_found"`
	GrantedRoles   int    `json:"granted_roles"`
	Noop           bool   `json:"noop"`
}

func Seed(db *gorm.DB, bootstrapAdminEmail string) error {
	_, err := SeedSync(db, bootstrapAdminEmail)
	return err
}

// SeedSync grants the user and admin roles to the bootstrap account, if it
// exists. Running it twice changes nothing.
func SeedSync(db *gorm.DB, bootstrapAdminEmail string) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "seed", time.Since(start))
	}()

	email := strings.TrimSpace(strings.ToLower(bootstrapAdminEmail))
	report := &SeedReport{BootstrapEmail: email}
	if email == "" {
		report.Noop = true
		observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
		return report, nil
	}

	var u domain.User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, err
		}
		report.Noop = true
		observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
		return report, nil
	}
	report.UserFound = true

	for _, role := range []domain.AppRole{domain.RoleUser, domain.RoleAdmin} {
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.UserRole{UserID: u.ID, Role: role})
		if res.Error != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, fmt.Errorf("grant %s to bootstrap admin: %w", role, res.Error)
		}
		report.GrantedRoles += int(res.RowsAffected)
	}

	report.Noop = report.GrantedRoles == 0
	observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
	return report, nil
}
