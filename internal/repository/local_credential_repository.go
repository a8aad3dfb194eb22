package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"

	"gorm.io/gorm"
)

var ErrCredentialNotFound = errors.New("local credential not found")

type LocalCredentialRepository interface {
	Create(ctx context.Context, credential *domain.LocalCredential) error
	FindByEmail(ctx context.Context, email string) (*domain.LocalCredential, error)
}

type GormLocalCredentialRepository struct {
	db *gorm.DB
}

func NewLocalCredentialRepository(db *gorm.DB) LocalCredentialRepository {
	return &GormLocalCredentialRepository{db: db}
}

func (r *GormLocalCredentialRepository) Create(ctx context.Context, credential *domain.LocalCredential) error {
	if err := r.db.WithContext(ctx).Create(credential).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "local_credential", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "local_credential", "create", "success")
	return nil
}

func (r *GormLocalCredentialRepository) FindByEmail(ctx context.Context, email string) (*domain.LocalCredential, error) {
	var c domain.LocalCredential
	normalized := strings.TrimSpace(strings.ToLower(email))
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = local_credentials.user_id").
		Where("users.email = ?", normalized).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "local_credential", "find_by_email", "not_found")
			return nil, ErrCredentialNotFound
		}
		observability.RecordRepositoryOperation(ctx, "local_credential", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "local_credential", "find_by_email", "success")
	return &c, nil
}
