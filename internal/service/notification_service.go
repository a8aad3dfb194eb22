package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/ratelimit"
	"github.com/hashebooks/hashebooks-backend/internal/repository"
)

type WelcomeEmailInput struct {
	Email       string
	DisplayName string
}

type BookStatusEmailInput struct {
	BookID    string
	BookTitle string
	Status    string
	UserID    string
}

// AuthEmailInput is the verified payload of an auth email hook.
type AuthEmailInput struct {
	Email       string
	DisplayName string
	Token       string
	ActionType  string
}

type EmailSenders struct {
	Welcome string
	Status  string
	Auth    string
}

type NotificationService struct {
	mailer   Mailer
	profiles repository.ProfileRepository
	limiter  RateLimiter
	from     EmailSenders
	timeout  time.Duration
}

func NewNotificationService(
	mailer Mailer,
	profiles repository.ProfileRepository,
	limiter RateLimiter,
	from EmailSenders,
	timeout time.Duration,
) *NotificationService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NotificationService{
		mailer:   mailer,
		profiles: profiles,
		limiter:  limiter,
		from:     from,
		timeout:  timeout,
	}
}

// SendWelcome only mails the caller's own address. The recipient check runs
// before the rate limiter so a rejected relay attempt does not consume quota.
func (s *NotificationService) SendWelcome(ctx context.Context, actor Actor, in WelcomeEmailInput) (*EmailReceipt, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || actor.Email == "" || !strings.EqualFold(email, actor.Email) {
		slog.WarnContext(ctx, "welcome email recipient mismatch", "actor_id", actor.ID)
		observability.RecordNotificationDispatch(ctx, "welcome", "mismatch", 0)
		return nil, ErrEmailMismatch
	}
	if d := s.limiter.Allow(ctx, actor.ID); !d.Allowed {
		slog.WarnContext(ctx, "welcome email rate limited", "actor_id", actor.ID)
		observability.RecordNotificationDispatch(ctx, "welcome", "rate_limited", 0)
		return nil, &RateLimitedError{Operation: ratelimit.OperationWelcomeEmail, RetryAfter: d.RetryAfter}
	}

	body, err := renderEmail("welcome", emailData{Name: strings.TrimSpace(in.DisplayName)})
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, "welcome", EmailMessage{
		From:    s.from.Welcome,
		To:      []string{email},
		Subject: "Welcome to HashEBooks!",
		HTML:    body,
	})
}

func (s *NotificationService) SendBookStatus(ctx context.Context, in BookStatusEmailInput) (*EmailReceipt, error) {
	if strings.TrimSpace(in.BookID) == "" || strings.TrimSpace(in.BookTitle) == "" ||
		strings.TrimSpace(in.Status) == "" || strings.TrimSpace(in.UserID) == "" {
		return nil, ErrStatusFieldsRequired
	}
	status := domain.BookStatus(in.Status)
	if !status.Reviewed() {
		return nil, ErrInvalidBookStatus
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	profile, err := s.profiles.FindByUserID(lookupCtx, in.UserID)
	cancel()
	if err != nil || strings.TrimSpace(profile.Email) == "" {
		if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
			slog.ErrorContext(ctx, "profile lookup failed", "user_id", in.UserID, "error", err.Error())
		} else {
			slog.ErrorContext(ctx, "profile has no contact email", "user_id", in.UserID)
		}
		observability.RecordNotificationDispatch(ctx, "book_status", "contact_not_found", 0)
		return nil, ErrContactNotFound
	}

	name := strings.TrimSpace(profile.DisplayName)
	if name == "" {
		name = "there"
	}
	title := plainText(in.BookTitle)

	tmpl := "book_rejected"
	subject := fmt.Sprintf("📚 Update on your book \"%s\"", title)
	if status == domain.BookStatusApproved {
		tmpl = "book_approved"
		subject = fmt.Sprintf("🎉 Your book \"%s\" has been approved!", title)
	}
	body, err := renderEmail(tmpl, emailData{Name: name, Title: in.BookTitle})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "sending book status email",
		"book_id", in.BookID,
		"status", string(status),
		"user_id", in.UserID,
	)
	return s.dispatch(ctx, "book_status", EmailMessage{
		From:    s.from.Status,
		To:      []string{profile.Email},
		Subject: subject,
		HTML:    body,
	})
}

func (s *NotificationService) SendAuthEmail(ctx context.Context, in AuthEmailInput) (*EmailReceipt, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, ErrUnsupportedEmailAddress
	}
	content := authEmailFor(in.ActionType)
	body, err := renderEmail("auth_code", emailData{
		Name:   strings.TrimSpace(in.DisplayName),
		Code:   in.Token,
		Intro:  content.intro,
		Notice: content.notice,
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "sending auth email", "action_type", in.ActionType)
	return s.dispatch(ctx, "auth_"+authActionLabel(in.ActionType), EmailMessage{
		From:    s.from.Auth,
		To:      []string{email},
		Subject: content.subject,
		HTML:    body,
	})
}

func (s *NotificationService) dispatch(ctx context.Context, kind string, msg EmailMessage) (*EmailReceipt, error) {
	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	receipt, err := s.mailer.Send(sendCtx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "email dispatch failed", "kind", kind, "error", err.Error())
		observability.RecordNotificationDispatch(ctx, kind, "error", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	observability.RecordNotificationDispatch(ctx, kind, "sent", time.Since(start))
	return receipt, nil
}

func authActionLabel(action string) string {
	switch action {
	case "signup", "recovery", "magiclink", "email_change":
		return action
	default:
		return "other"
	}
}
