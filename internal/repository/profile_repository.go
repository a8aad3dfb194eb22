package repository

import (
	"context"
	"errors"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Upsert(ctx context.Context, profile *domain.Profile) error
}

type GormProfileRepository struct{ db *gorm.DB }

func NewProfileRepository(db *gorm.DB) ProfileRepository { return &GormProfileRepository{db: db} }

func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "profile", "find_by_user_id", "not_found")
			return nil, ErrProfileNotFound
		}
		observability.RecordRepositoryOperation(ctx, "profile", "find_by_user_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "profile", "find_by_user_id", "success")
	return &p, nil
}

func (r *GormProfileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "updated_at"}),
		}).
		Create(profile).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "profile", "upsert", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "profile", "upsert", "success")
	return nil
}
