package repository

import (
	"context"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	HasRole(ctx context.Context, userID string, role domain.AppRole) (bool, error)
	Grant(ctx context.Context, userID string, role domain.AppRole) error
	ListByUser(ctx context.Context, userID string) ([]domain.AppRole, error)
}

type GormRoleRepository struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) RoleRepository { return &GormRoleRepository{db: db} }

// HasRole is a point query on the (user, role) pair. A missing row is a
// definite "no", any error is reported to the caller untouched.
func (r *GormRoleRepository) HasRole(ctx context.Context, userID string, role domain.AppRole) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "role", "has_role", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "role", "has_role", "success")
	return count > 0, nil
}

func (r *GormRoleRepository) Grant(ctx context.Context, userID string, role domain.AppRole) error {
	grant := domain.UserRole{UserID: userID, Role: role}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "role", "grant", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "role", "grant", "success")
	return nil
}

func (r *GormRoleRepository) ListByUser(ctx context.Context, userID string) ([]domain.AppRole, error) {
	var roles []domain.AppRole
	err := r.db.WithContext(ctx).Model(&domain.UserRole{}).
		Where("user_id = ?", userID).
		Order("role asc").
		Pluck("role", &roles).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "role", "list_by_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "role", "list_by_user", "success")
	return roles, nil
}
