package services

import (
	"testing"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckUser(t *testing.T) {
	in := newTestInstance(t)
	_, err := in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "ana", Name: "Ana"})
	require.NoError(t, err)
	_, err = in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "boss", Name: "Boss", IsAdmin: true})
	require.NoError(t, err)

	_, err = in.auth.CheckUser(in.ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = in.auth.CheckUser(in.ctx, "@Ana")
	assert.ErrorIs(t, err, ErrPasswordCreationNotAvailable)

	res, err := in.auth.CheckUser(in.ctx, "boss")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin, "admins may set a password at any phase")

	in.mustPhase(t, models.PhasePreVoting)
	res, err = in.auth.CheckUser(in.ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", res.Handle)
}

func TestSignupAndLogin(t *testing.T) {
	in := newTestInstance(t)
	in.mustPhase(t, models.PhaseVoting)
	_, err := in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "ana", Name: "Ana"})
	require.NoError(t, err)

	var verr *ValidationError
	_, err = in.auth.Login(in.ctx, "ana", "whatever")
	assert.ErrorAs(t, err, &verr, "a user without password must sign up first")

	_, err = in.auth.Signup(in.ctx, "ana", "12345")
	assert.ErrorAs(t, err, &verr, "short passwords are rejected")

	signed, err := in.auth.Signup(in.ctx, "ana", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, signed.Token)

	principal, err := in.auth.Authenticate(signed.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana", principal.Handle)
	assert.Equal(t, signed.User.ID.Hex(), principal.ID)

	_, err = in.auth.Signup(in.ctx, "ana", "another1")
	assert.ErrorAs(t, err, &verr, "signup only works once")

	_, err = in.auth.CheckUser(in.ctx, "ana")
	assert.ErrorAs(t, err, &verr)

	_, err = in.auth.Login(in.ctx, "ana", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = in.auth.Login(in.ctx, "ghost", "secret1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	logged, err := in.auth.Login(in.ctx, "@ANA", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, logged.Token)
}

func TestSignupBlockedWhileChoosingCategories(t *testing.T) {
	in := newTestInstance(t)
	_, err := in.userSvc.CreatePreRegistered(in.ctx, models.CreateUserRequest{Handle: "ana", Name: "Ana"})
	require.NoError(t, err)

	_, err = in.auth.Signup(in.ctx, "ana", "secret1")
	assert.ErrorIs(t, err, ErrPasswordCreationNotAvailable)
}
