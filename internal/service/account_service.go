package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/ratelimit"
)

type DeleteUserInput struct {
	TargetID      string
	AdminPassword string
}

// AccountService runs the privileged deletion flow for a caller that has
// already been authenticated and confirmed as an administrator.
type AccountService struct {
	identity      IdentityProvider
	roles         RoleChecker
	limiter       RateLimiter
	protectAdmins bool
}

func NewAccountService(identity IdentityProvider, roles RoleChecker, limiter RateLimiter, protectAdmins bool) *AccountService {
	return &AccountService{
		identity:      identity,
		roles:         roles,
		limiter:       limiter,
		protectAdmins: protectAdmins,
	}
}

// DeleteUser checks, in order: rate limit, input, step-up password, self
// target, admin target. The first failure ends the flow. The deletion itself
// is attempted once and never retried.
func (s *AccountService) DeleteUser(ctx context.Context, actor Actor, in DeleteUserInput) error {
	err := s.deleteUser(ctx, actor, in)
	observability.RecordAccountDeletion(ctx, deletionOutcome(err))
	return err
}

func (s *AccountService) deleteUser(ctx context.Context, actor Actor, in DeleteUserInput) error {
	if d := s.limiter.Allow(ctx, actor.ID); !d.Allowed {
		slog.WarnContext(ctx, "account deletion rate limited", "actor_id", actor.ID)
		return &RateLimitedError{Operation: ratelimit.OperationDeleteUser, RetryAfter: d.RetryAfter}
	}

	target := strings.TrimSpace(in.TargetID)
	if target == "" || in.AdminPassword == "" {
		return ErrDeletionFieldsRequired
	}

	subject, err := s.identity.SignInWithPassword(ctx, actor.Email, in.AdminPassword)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			slog.WarnContext(ctx, "admin password verification failed", "actor_id", actor.ID)
			return ErrInvalidAdminPassword
		}
		return err
	}
	if subject != actor.ID {
		slog.WarnContext(ctx, "admin password belongs to a different subject", "actor_id", actor.ID)
		return ErrInvalidAdminPassword
	}

	if target == actor.ID {
		return ErrSelfDeletion
	}

	if s.protectAdmins {
		switch s.roles.Check(ctx, target, domain.RoleAdmin) {
		case RoleAllowed:
			slog.WarnContext(ctx, "refused deletion of administrator", "actor_id", actor.ID, "target_id", target)
			return ErrAdminTarget
		case RoleQueryError:
			return ErrRoleLookup
		}
	}

	if err := s.identity.DeleteUser(ctx, target); err != nil {
		slog.ErrorContext(ctx, "delete user failed",
			"actor_id", actor.ID,
			"target_id", target,
			"error", err.Error(),
		)
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	slog.InfoContext(ctx, "user deleted",
		"actor_id", actor.ID,
		"actor_email", actor.Email,
		"target_id", target,
	)
	return nil
}

func deletionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnauthenticated):
		return "step_up_failed"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
