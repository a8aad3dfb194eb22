package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/repository"
	"github.com/hashebooks/hashebooks-backend/internal/security"
)

var (
	ErrUserExists   = fmt.Errorf("%w: email already registered", ErrInvalidInput)
	ErrWeakPassword = fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
)

const minPasswordLength = 8

type ProvisionUserInput struct {
	Email       string
	Password    string
	DisplayName string
	Admin       bool
}

// UserProvisioningService creates identities with a local credential and
// grants roles. Used by operator tooling.
type UserProvisioningService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	roles    repository.RoleRepository
	creds    repository.LocalCredentialRepository
}

func NewUserProvisioningService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	roles repository.RoleRepository,
	creds repository.LocalCredentialRepository,
) *UserProvisioningService {
	return &UserProvisioningService{users: users, profiles: profiles, roles: roles, creds: creds}
}

func (s *UserProvisioningService) CreateUser(ctx context.Context, in ProvisionUserInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{ID: uuid.NewString(), Email: email}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.creds.Create(ctx, &domain.LocalCredential{UserID: user.ID, PasswordHash: hash}); err != nil {
		return nil, err
	}
	if err := s.profiles.Upsert(ctx, &domain.Profile{
		UserID:      user.ID,
		Email:       email,
		DisplayName: strings.TrimSpace(in.DisplayName),
	}); err != nil {
		return nil, err
	}
	if err := s.roles.Grant(ctx, user.ID, domain.RoleUser); err != nil {
		return nil, err
	}
	if in.Admin {
		if err := s.roles.Grant(ctx, user.ID, domain.RoleAdmin); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// GrantRole is idempotent.
func (s *UserProvisioningService) GrantRole(ctx context.Context, email string, role domain.AppRole) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, strings.TrimSpace(strings.ToLower(email)))
		}
		return nil, err
	}
	if err := s.roles.Grant(ctx, user.ID, role); err != nil {
		return nil, err
	}
	return user, nil
}
