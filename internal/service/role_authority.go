package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/repository"
)

// RoleDecision is the outcome of a role lookup. The zero value denies.
type RoleDecision int

const (
	RoleDenied RoleDecision = iota
	RoleAllowed
	RoleQueryError
)

func (d RoleDecision) String() string {
	switch d {
	case RoleAllowed:
		return "allowed"
	case RoleQueryError:
		return "query_error"
	default:
		return "denied"
	}
}

// Authorized is true only for RoleAllowed.
func (d RoleDecision) Authorized() bool { return d == RoleAllowed }

type RoleAuthority struct {
	roles   repository.RoleRepository
	timeout time.Duration
}

func NewRoleAuthority(roles repository.RoleRepository, timeout time.Duration) *RoleAuthority {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RoleAuthority{roles: roles, timeout: timeout}
}

func (a *RoleAuthority) Check(ctx context.Context, userID string, role domain.AppRole) RoleDecision {
	if userID == "" || !role.Valid() {
		observability.RecordRoleCheck(ctx, string(role), RoleDenied.String())
		return RoleDenied
	}
	qctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	ok, err := a.roles.HasRole(qctx, userID, role)
	decision := RoleDenied
	switch {
	case err != nil:
		slog.ErrorContext(ctx, "role check failed",
			"user_id", userID,
			"role", string(role),
			"error", err.Error(),
		)
		decision = RoleQueryError
	case ok:
		decision = RoleAllowed
	}
	observability.RecordRoleCheck(ctx, string(role), decision.String())
	return decision
}
