package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"

	"gorm.io/gorm"
)

var ErrBookNotFound = errors.New("book not found")

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	ListByStatus(ctx context.Context, status domain.BookStatus, req PageRequest) (PageResult[domain.Book], error)
	UpdateStatus(ctx context.Context, id string, status domain.BookStatus) error
}

type GormBookRepository struct{ db *gorm.DB }

func NewBookRepository(db *gorm.DB) BookRepository { return &GormBookRepository{db: db} }

func (r *GormBookRepository) Create(ctx context.Context, book *domain.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "book", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "book", "create", "success")
	return nil
}

func (r *GormBookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	var book domain.Book
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "book", "find_by_id", "not_found")
			return nil, ErrBookNotFound
		}
		observability.RecordRepositoryOperation(ctx, "book", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "book", "find_by_id", "success")
	return &book, nil
}

// ListByStatus returns the review queue for one status, oldest first so
// submissions are reviewed in arrival order.
func (r *GormBookRepository) ListByStatus(ctx context.Context, status domain.BookStatus, req PageRequest) (PageResult[domain.Book], error) {
	page := req.Normalize()
	base := r.db.WithContext(ctx).Model(&domain.Book{}).Where("status = ?", status).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "book", "list_by_status", "error")
		return PageResult[domain.Book]{}, err
	}
	var items []domain.Book
	if err := base.Order("created_at asc, id asc").Offset(page.Offset()).Limit(page.PageSize).Find(&items).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "book", "list_by_status", "error")
		return PageResult[domain.Book]{}, err
	}
	observability.RecordRepositoryOperation(ctx, "book", "list_by_status", "success")
	return newPageResult(page, items, total), nil
}

func (r *GormBookRepository) UpdateStatus(ctx context.Context, id string, status domain.BookStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "book", "update_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "book", "update_status", "not_found")
		return ErrBookNotFound
	}
	observability.RecordRepositoryOperation(ctx, "book", "update_status", "success")
	return nil
}
