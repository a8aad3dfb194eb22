package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/repository"
	"github.com/hashebooks/hashebooks-backend/internal/security"
)

// LocalIdentityProvider verifies tokens issued by JWTManager and checks
// passwords against argon2id credentials stored alongside the users table.
// Every store call is bounded by timeout.
type LocalIdentityProvider struct {
	jwt     *security.JWTManager
	users   repository.UserRepository
	creds   repository.LocalCredentialRepository
	timeout time.Duration
}

func NewLocalIdentityProvider(
	jwt *security.JWTManager,
	users repository.UserRepository,
	creds repository.LocalCredentialRepository,
	timeout time.Duration,
) *LocalIdentityProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LocalIdentityProvider{jwt: jwt, users: users, creds: creds, timeout: timeout}
}

// VerifyToken rejects tokens whose subject no longer exists, so a deleted
// account cannot keep acting on a still-unexpired token.
func (p *LocalIdentityProvider) VerifyToken(ctx context.Context, token string) (*security.Claims, error) {
	claims, err := p.jwt.ParseAccessToken(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	user, err := p.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: subject not found", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: load subject: %v", ErrUpstream, err)
	}
	if claims.Email == "" {
		claims.Email = user.Email
	}
	return claims, nil
}

// SignInWithPassword returns the subject id owning email when password
// matches. Unknown email and wrong password are indistinguishable.
func (p *LocalIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	cred, err := p.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: load credential: %v", ErrUpstream, err)
	}
	ok, err := security.VerifyPassword(cred.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("%w: verify password: %v", ErrUpstream, err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}
	return cred.UserID, nil
}

// DeleteUser removes the user row; profile, roles, credential, books and
// reading progress go with it through ON DELETE CASCADE.
func (p *LocalIdentityProvider) DeleteUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return fmt.Errorf("%w: delete user: %v", ErrUpstream, err)
	}
	return nil
}
