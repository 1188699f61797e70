package services

import (
	"testing"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func boolPtr(b bool) *bool { return &b }

func TestCreatePreRegistered(t *testing.T) {
	in := newTestInstance(t)

	u, err := in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "@Ana", Name: " Ana "})
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Handle)
	assert.Equal(t, "Ana", u.Name)
	assert.False(t, u.HasSetPassword)

	_, err = in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "ANA", Name: "Other"})
	assert.ErrorIs(t, err, ErrConflict)

	var verr *ValidationError
	_, err = in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "@", Name: "x"})
	assert.ErrorAs(t, err, &verr)
	_, err = in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "bia", Name: " "})
	assert.ErrorAs(t, err, &verr)
}

func TestUserListIsCachedAndInvalidated(t *testing.T) {
	in := newTestInstance(t)
	_, err := in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "bia", Name: "Bia"})
	require.NoError(t, err)

	public, err := in.userSvc.ListPublic(in.ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.PublicUser{{Handle: "bia"}}, public)

	_, err = in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "ana", Name: "Ana"})
	require.NoError(t, err)

	public, err = in.userSvc.ListPublic(in.ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.PublicUser{{Handle: "ana"}, {Handle: "bia"}}, public)
}

func TestUserUpdateAndReset(t *testing.T) {
	in := newTestInstance(t)
	u, err := in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "ana", Name: "Ana"})
	require.NoError(t, err)

	updated, err := in.userSvc.Update(in.ctx, u.ID, models.UpdateUserRequest{
		Name:     strPtr("Ana Souza"),
		Password: strPtr("secret1"),
		IsAdmin:  boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, updated.HasSetPassword)
	assert.True(t, updated.IsAdmin)
	assert.NotEmpty(t, updated.PasswordHash)

	var verr *ValidationError
	_, err = in.userSvc.Update(in.ctx, u.ID, models.UpdateUserRequest{Password: strPtr("123")})
	assert.ErrorAs(t, err, &verr)

	reset, err := in.userSvc.ResetPassword(in.ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, reset.HasSetPassword)
	assert.Empty(t, reset.PasswordHash)

	isAdmin, err := in.userSvc.IsAdmin(in.ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = in.userSvc.IsAdmin(in.ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestUserDelete(t *testing.T) {
	in := newTestInstance(t)
	admin, err := in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "admin", Name: "Admin", IsAdmin: true})
	require.NoError(t, err)
	u, err := in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "ana", Name: "Ana"})
	require.NoError(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, in.userSvc.Delete(in.ctx, admin.ID, admin.ID), &verr)

	require.NoError(t, in.userSvc.Delete(in.ctx, u.ID, admin.ID))
	_, err = in.userSvc.Get(in.ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, in.userSvc.Delete(in.ctx, u.ID, admin.ID), ErrNotFound)
}
