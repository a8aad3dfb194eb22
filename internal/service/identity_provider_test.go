package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/repository"
	repogomock "github.com/hashebooks/hashebooks-backend/internal/repository/gomock"
	"github.com/hashebooks/hashebooks-backend/internal/security"
	"go.uber.org/mock/gomock"
)

const testJWTSecret = "abcdefghijklmnopqrstuvwxyz123456"

func newIdentityForTest(t *testing.T) (*LocalIdentityProvider, *repogomock.MockUserRepository, *repogomock.MockLocalCredentialRepository, *security.JWTManager) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := repogomock.NewMockUserRepository(ctrl)
	creds := repogomock.NewMockLocalCredentialRepository(ctrl)
	jwtMgr := security.NewJWTManager("hashebooks-auth", "authenticated", testJWTSecret, time.Hour)
	return NewLocalIdentityProvider(jwtMgr, users, creds, time.Second), users, creds, jwtMgr
}

func TestLocalIdentityProviderVerifyToken(t *testing.T) {
	provider, users, _, jwtMgr := newIdentityForTest(t)
	token, err := jwtMgr.SignAccessToken("user-1", "Reader@Example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	users.EXPECT().FindByID(gomock.Any(), "user-1").Return(&domain.User{ID: "user-1", Email: "reader@example.com"}, nil)

	claims, err := provider.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "reader@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLocalIdentityProviderVerifyTokenFailures(t *testing.T) {
	provider, users, _, jwtMgr := newIdentityForTest(t)
	ctx := context.Background()

	if _, err := provider.VerifyToken(ctx, "not-a-jwt"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for garbage token, got %v", err)
	}

	token, _ := jwtMgr.SignAccessToken("gone", "gone@example.com")
	users.EXPECT().FindByID(gomock.Any(), "gone").Return(nil, repository.ErrUserNotFound)
	if _, err := provider.VerifyToken(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for deleted subject, got %v", err)
	}

	token, _ = jwtMgr.SignAccessToken("user-1", "u@example.com")
	users.EXPECT().FindByID(gomock.Any(), "user-1").Return(nil, errors.New("db down"))
	if _, err := provider.VerifyToken(ctx, token); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream for store failure, got %v", err)
	}
}

func TestLocalIdentityProviderSignInWithPassword(t *testing.T) {
	provider, _, creds, _ := newIdentityForTest(t)
	hash, err := security.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	creds.EXPECT().FindByEmail(gomock.Any(), "admin@example.com").Return(&domain.LocalCredential{UserID: "admin-1", PasswordHash: hash}, nil).Times(2)
	creds.EXPECT().FindByEmail(gomock.Any(), "nobody@example.com").Return(nil, repository.ErrCredentialNotFound)
	creds.EXPECT().FindByEmail(gomock.Any(), "flaky@example.com").Return(nil, errors.New("timeout"))
	ctx := context.Background()

	subject, err := provider.SignInWithPassword(ctx, "admin@example.com", "correct-horse")
	if err != nil || subject != "admin-1" {
		t.Fatalf("expected admin-1, got %q err=%v", subject, err)
	}
	if _, err := provider.SignInWithPassword(ctx, "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got %v", err)
	}
	if _, err := provider.SignInWithPassword(ctx, "nobody@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
	if _, err := provider.SignInWithPassword(ctx, "flaky@example.com", "x"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestLocalIdentityProviderDeleteUser(t *testing.T) {
	provider, users, _, _ := newIdentityForTest(t)
	users.EXPECT().Delete(gomock.Any(), "user-2").Return(nil)
	users.EXPECT().Delete(gomock.Any(), "missing").Return(repository.ErrUserNotFound)
	users.EXPECT().Delete(gomock.Any(), "broken").Return(errors.New("fk violation"))
	ctx := context.Background()

	if err := provider.DeleteUser(ctx, "user-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := provider.DeleteUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := provider.DeleteUser(ctx, "broken"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream, got %v", err)
	}
}
