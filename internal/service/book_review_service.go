package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/repository"
	"golang.org/x/sync/singleflight"
)

type BookStatusNotifier interface {
	SendBookStatus(ctx context.Context, in BookStatusEmailInput) (*EmailReceipt, error)
}

type BookQueuePage = repository.PageResult[domain.Book]

type NotificationOutcome struct {
	Sent    bool   `json:"sent"`
	EmailID string `json:"email_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type StatusChangeResult struct {
	Book         *domain.Book         `json:"book"`
	Notification *NotificationOutcome `json:"notification,omitempty"`
}

// BookReviewService applies an admin review decision in two phases: the
// status update, then the owner notification. A notification failure is
// reported on the result and never undoes the update.
type BookReviewService struct {
	books    repository.BookRepository
	notifier BookStatusNotifier
	timeout  time.Duration
	cache    QueueCacheStore
	cacheTTL time.Duration
	sf       singleflight.Group
}

func NewBookReviewService(books repository.BookRepository, notifier BookStatusNotifier, timeout time.Duration) *BookReviewService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BookReviewService{books: books, notifier: notifier, timeout: timeout, cache: NewNoopQueueCacheStore()}
}

// WithQueueCache serves queue listings from store for up to ttl.
func (s *BookReviewService) WithQueueCache(store QueueCacheStore, ttl time.Duration) *BookReviewService {
	if store == nil || ttl <= 0 {
		return s
	}
	s.cache = store
	s.cacheTTL = ttl
	return s
}

func (s *BookReviewService) ListQueue(ctx context.Context, status domain.BookStatus, page, pageSize int) (*BookQueuePage, error) {
	if status == "" {
		status = domain.BookStatusPending
	}
	if !validBookStatus(status) {
		return nil, ErrInvalidBookStatus
	}
	req := repository.PageRequest{Page: page, PageSize: pageSize}.Normalize()
	key := fmt.Sprintf("%s:%d:%d", status, req.Page, req.PageSize)
	if cached, ok := s.cachedQueue(ctx, key); ok {
		observability.RecordReviewQueueCacheEvent(ctx, "hit")
		return cached, nil
	}
	observability.RecordReviewQueueCacheEvent(ctx, "miss")

	result, err, shared := s.sf.Do(key, func() (any, error) {
		if cached, ok := s.cachedQueue(ctx, key); ok {
			return cached, nil
		}
		qctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		res, err := s.books.ListByStatus(qctx, status, req)
		if err != nil {
			return nil, fmt.Errorf("%w: list books: %v", ErrUpstream, err)
		}
		if raw, err := json.Marshal(res); err == nil {
			if err := s.cache.Set(ctx, reviewQueueNamespace, key, raw, s.cacheTTL); err != nil {
				slog.WarnContext(ctx, "review queue cache write failed", "error", err.Error())
			}
		}
		return &res, nil
	})
	if shared {
		observability.RecordReviewQueueCacheEvent(ctx, "singleflight_shared")
	}
	if err != nil {
		return nil, err
	}
	queue, ok := result.(*BookQueuePage)
	if !ok {
		return nil, fmt.Errorf("invalid review queue result type")
	}
	return queue, nil
}

func (s *BookReviewService) cachedQueue(ctx context.Context, key string) (*BookQueuePage, bool) {
	raw, ok, err := s.cache.Get(ctx, reviewQueueNamespace, key)
	if err != nil {
		slog.WarnContext(ctx, "review queue cache read failed", "error", err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var cached BookQueuePage
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}

func (s *BookReviewService) ChangeStatus(ctx context.Context, actor Actor, bookID string, status domain.BookStatus) (*StatusChangeResult, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" || !validBookStatus(status) {
		observability.RecordBookStatusChange(ctx, string(status), "invalid")
		return nil, ErrInvalidBookStatus
	}

	book, err := s.updateStatus(ctx, bookID, status)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrNotFound) {
			outcome = "not_found"
		}
		observability.RecordBookStatusChange(ctx, string(status), outcome)
		return nil, err
	}
	observability.RecordBookStatusChange(ctx, string(status), "updated")
	if err := s.cache.InvalidateNamespace(ctx, reviewQueueNamespace); err != nil {
		slog.WarnContext(ctx, "review queue cache invalidation failed", "error", err.Error())
	}
	slog.InfoContext(ctx, "book status changed",
		"actor_id", actor.ID,
		"book_id", book.ID,
		"status", string(status),
	)

	result := &StatusChangeResult{Book: book}
	if !status.Reviewed() || s.notifier == nil {
		return result, nil
	}
	result.Notification = s.notifyOwner(ctx, book)
	return result, nil
}

func (s *BookReviewService) updateStatus(ctx context.Context, bookID string, status domain.BookStatus) (*domain.Book, error) {
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	book, err := s.books.FindByID(qctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%w: load book: %v", ErrUpstream, err)
	}
	if err := s.books.UpdateStatus(qctx, bookID, status); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%w: update book status: %v", ErrUpstream, err)
	}
	book.Status = status
	return book, nil
}

func (s *BookReviewService) notifyOwner(ctx context.Context, book *domain.Book) *NotificationOutcome {
	receipt, err := s.notifier.SendBookStatus(ctx, BookStatusEmailInput{
		BookID:    book.ID,
		BookTitle: book.Title,
		Status:    string(book.Status),
		UserID:    book.UserID,
	})
	if err != nil {
		slog.WarnContext(ctx, "book status notification failed",
			"book_id", book.ID,
			"error", err.Error(),
		)
		return &NotificationOutcome{Sent: false, Error: "Failed to send notification email"}
	}
	out := &NotificationOutcome{Sent: true}
	if receipt != nil {
		out.EmailID = receipt.ID
	}
	return out
}

func validBookStatus(s domain.BookStatus) bool {
	return s == domain.BookStatusPending || s.Reviewed()
}
