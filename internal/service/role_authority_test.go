package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	repogomock "github.com/hashebooks/hashebooks-backend/internal/repository/gomock"
	"go.uber.org/mock/gomock"
)

func TestRoleAuthorityTriState(t *testing.T) {
	ctrl := gomock.NewController(t)
	roles := repogomock.NewMockRoleRepository(ctrl)
	roles.EXPECT().HasRole(gomock.Any(), "admin-1", domain.RoleAdmin).Return(true, nil)
	roles.EXPECT().HasRole(gomock.Any(), "user-1", domain.RoleAdmin).Return(false, nil)
	roles.EXPECT().HasRole(gomock.Any(), "broken", domain.RoleAdmin).Return(true, errors.New("relation does not exist"))

	authority := NewRoleAuthority(roles, time.Second)
	ctx := context.Background()

	if d := authority.Check(ctx, "admin-1", domain.RoleAdmin); d != RoleAllowed || !d.Authorized() {
		t.Fatalf("expected allowed, got %s", d)
	}
	if d := authority.Check(ctx, "user-1", domain.RoleAdmin); d != RoleDenied || d.Authorized() {
		t.Fatalf("expected denied, got %s", d)
	}
	d := authority.Check(ctx, "broken", domain.RoleAdmin)
	if d != RoleQueryError {
		t.Fatalf("expected query error even when the store also answered true, got %s", d)
	}
	if d.Authorized() {
		t.Fatal("query error must not authorize")
	}
}

func TestRoleAuthorityShortCircuitsInvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	roles := repogomock.NewMockRoleRepository(ctrl)
	authority := NewRoleAuthority(roles, time.Second)

	if d := authority.Check(context.Background(), "", domain.RoleAdmin); d != RoleDenied {
		t.Fatalf("expected denied for empty subject, got %s", d)
	}
	if d := authority.Check(context.Background(), "user-1", domain.AppRole("owner")); d != RoleDenied {
		t.Fatalf("expected denied for unknown role, got %s", d)
	}
}

func TestRoleAuthorityBoundsQueryWithTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	roles := repogomock.NewMockRoleRepository(ctrl)
	roles.EXPECT().HasRole(gomock.Any(), "slow", domain.RoleAdmin).DoAndReturn(
		func(ctx context.Context, _ string, _ domain.AppRole) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		})

	authority := NewRoleAuthority(roles, 20*time.Millisecond)
	if d := authority.Check(context.Background(), "slow", domain.RoleAdmin); d != RoleQueryError {
		t.Fatalf("expected timeout to surface as query error, got %s", d)
	}
}

func TestRoleDecisionZeroValueDenies(t *testing.T) {
	var d RoleDecision
	if d.Authorized() || d.String() != "denied" {
		t.Fatalf("zero value must deny, got %s", d)
	}
}
