package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

func TestUserAdminList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewUserService(db)
	seedUser(t, db, "Sara Ahmadi", "09120000000", models.RoleUser)
	seedUser(t, db, "Reza Karimi", "09121111111", models.RoleUser)
	seedUser(t, db, "Admin Person", "09122222222", models.RoleAdmin)

	list, err := svc.AdminList(ctx, "", utils.NewPagination("", "", false))
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalUsers)
	assert.Equal(t, int64(2), list.NumberOfUsers)
	assert.Equal(t, int64(1), list.NumberOfAdmins)
	assert.Len(t, list.Users, 3)

	list, err = svc.AdminList(ctx, "0912111", utils.NewPagination("", "", false))
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	assert.Equal(t, "Reza Karimi", list.Users[0].FullName)

	list, err = svc.AdminList(ctx, "ahmadi", utils.NewPagination("", "", false))
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
}

func TestUserEdit(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewUserService(db)
	sara := seedUser(t, db, "Sara Ahmadi", "09120000000", models.RoleUser)
	seedUser(t, db, "Reza Karimi", "09121111111", models.RoleUser)

	_, err := svc.Edit(ctx, uuid.New(), UserPatch{})
	requireKind(t, err, apperr.KindNotFound)

	taken := "09121111111"
	_, err = svc.Edit(ctx, sara.ID, UserPatch{PhoneNumber: &taken})
	requireKind(t, err, apperr.KindConflict)

	name := "Sara A."
	role := models.RoleAdmin
	same := "09120000000"
	edited, err := svc.Edit(ctx, sara.ID, UserPatch{FullName: &name, Role: &role, PhoneNumber: &same})
	require.NoError(t, err)
	assert.Equal(t, name, edited.FullName)
	assert.True(t, edited.IsAdmin())
}
