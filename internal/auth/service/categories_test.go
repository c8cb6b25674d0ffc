package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	f := newFixture(t, Policy{}, nil)
	ctx := context.Background()

	admin := seedUser(t, f.store.Store, "admin", "password123", domain.RoleAdmin)
	user := seedUser(t, f.store.Store, "user", "password123", domain.RoleUser)
	adminSess := domain.NewSession(admin, testNow)
	userSess := domain.NewSession(user, testNow)

	t.Run("non-admin is refused before validation", func(t *testing.T) {
		_, err := f.svc.CreateCategory(ctx, userSess, "", "")
		require.ErrorIs(t, err, ErrRoleRequired)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.svc.CreateCategory(ctx, adminSess, "work", "  ")
		require.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("create and list", func(t *testing.T) {
		c, err := f.svc.CreateCategory(ctx, adminSess, "work", "Work")
		require.NoError(t, err)
		require.NotEmpty(t, c.ID)
		require.Equal(t, admin.ID, c.CreatedBy)

		list, err := f.svc.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "Work", list[0].Label)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := f.svc.CreateCategory(ctx, adminSess, "work", "Work again")
		require.ErrorIs(t, err, ErrCategoryExists)
	})
}

func TestRequireAdmin(t *testing.T) {
	require.NoError(t, RequireAdmin(domain.Session{Role: domain.RoleAdmin}))
	require.ErrorIs(t, RequireAdmin(domain.Session{Role: domain.RoleUser}), ErrRoleRequired)
	require.ErrorIs(t, RequireAdmin(domain.Session{}), ErrRoleRequired)
}
