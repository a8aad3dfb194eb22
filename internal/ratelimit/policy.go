package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/observability"
)

type FailureMode string

const (
	FailOpen   FailureMode = "fail_open"
	FailClosed FailureMode = "fail_closed"
)

const (
	OperationDeleteUser   = "delete-user"
	OperationWelcomeEmail = "welcome-email"
)

type Policy struct {
	Operation string
	Limit     int
	Window    time.Duration
	Mode      FailureMode
}

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// PolicyLimiter applies one Policy to a backend, keying counters by
// "operation:actor".
type PolicyLimiter struct {
	backend     Limiter
	backendName string
	policy      Policy
}

func NewPolicyLimiter(backend Limiter, backendName string, policy Policy) *PolicyLimiter {
	if policy.Mode == "" {
		policy.Mode = FailClosed
	}
	if backendName == "" {
		backendName = "local"
	}
	return &PolicyLimiter{backend: backend, backendName: backendName, policy: policy}
}

func Key(operation, actor string) string {
	return operation + ":" + actor
}

func (p *PolicyLimiter) Allow(ctx context.Context, actor string) Decision {
	allowed, retryAfter, err := p.backend.Allow(ctx, Key(p.policy.Operation, actor), p.policy.Limit, p.policy.Window)
	if err != nil {
		if p.policy.Mode == FailOpen {
			slog.WarnContext(ctx, "rate limiter backend unavailable, allowing request",
				"operation", p.policy.Operation,
				"mode", string(p.policy.Mode),
				"error", err.Error(),
			)
			observability.RecordRateLimitDecision(ctx, p.policy.Operation, "allow_backend_error", p.backendName)
			return Decision{Allowed: true}
		}
		slog.WarnContext(ctx, "rate limiter backend unavailable, denying request",
			"operation", p.policy.Operation,
			"mode", string(p.policy.Mode),
			"error", err.Error(),
		)
		observability.RecordRateLimitDecision(ctx, p.policy.Operation, "deny_backend_error", p.backendName)
		return Decision{Allowed: false, RetryAfter: p.policy.Window}
	}
	if !allowed {
		observability.RecordRateLimitDecision(ctx, p.policy.Operation, "deny", p.backendName)
		return Decision{Allowed: false, RetryAfter: retryAfter}
	}
	observability.RecordRateLimitDecision(ctx, p.policy.Operation, "allow", p.backendName)
	return Decision{Allowed: true}
}
