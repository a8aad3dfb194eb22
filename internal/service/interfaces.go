package service

import (
	"context"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/ratelimit"
	"github.com/hashebooks/hashebooks-backend/internal/security"
)

// Actor is the authenticated caller of a privileged operation.
type Actor struct {
	ID    string
	Email string
}

// IdentityProvider is the set of identity operations the handlers depend on.
type IdentityProvider interface {
	VerifyToken(ctx context.Context, token string) (*security.Claims, error)
	SignInWithPassword(ctx context.Context, email, password string) (string, error)
	DeleteUser(ctx context.Context, userID string) error
}

type RoleChecker interface {
	Check(ctx context.Context, userID string, role domain.AppRole) RoleDecision
}

// RateLimiter admits or rejects one call for actor under a fixed policy.
type RateLimiter interface {
	Allow(ctx context.Context, actor string) ratelimit.Decision
}

type AccountServiceInterface interface {
	DeleteUser(ctx context.Context, actor Actor, in DeleteUserInput) error
}

type NotificationServiceInterface interface {
	SendWelcome(ctx context.Context, actor Actor, in WelcomeEmailInput) (*EmailReceipt, error)
	SendBookStatus(ctx context.Context, in BookStatusEmailInput) (*EmailReceipt, error)
	SendAuthEmail(ctx context.Context, in AuthEmailInput) (*EmailReceipt, error)
}

type BookReviewServiceInterface interface {
	ListQueue(ctx context.Context, status domain.BookStatus, page, pageSize int) (*BookQueuePage, error)
	ChangeStatus(ctx context.Context, actor Actor, bookID string, status domain.BookStatus) (*StatusChangeResult, error)
}
