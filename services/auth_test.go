package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vampyr-backend/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	user, err := svc.Register(RegisterInput{
		Email:    "Fighter@Example.COM",
		Username: "fighter",
		Password: "secret123",
		FullName: "Kyo K.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "fighter@example.com", user.Email, "email is normalized")
	require.NotNil(t, user.Password)
	assert.NotEqual(t, "secret123", *user.Password, "password is hashed")

	logged, err := svc.Login("fighter@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = svc.Login("fighter@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, err := svc.Register(RegisterInput{Email: "a@b.com", Username: "alpha", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Email: "a@b.com", Username: "other", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailOrUsernameTaken)

	_, err = svc.Register(RegisterInput{Email: "c@d.com", Username: "alpha", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailOrUsernameTaken)
}

func TestLoginWithoutPasswordSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	// Accounts created through the link flow have no password.
	user := models.User{ID: "u1", Email: "linked@example.com", Username: "linked"}
	require.NoError(t, db.Create(&user).Error)

	_, err := svc.Login("linked@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterWithPlayer(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	player := models.Player{Nickname: "rex", Level: 1}
	require.NoError(t, db.Create(&player).Error)

	user, linked, err := svc.RegisterWithPlayer(RegisterInput{
		Email:    "rex@example.com",
		Username: "rexowner",
		Password: "secret123",
	}, "rex")
	require.NoError(t, err)
	require.NotNil(t, linked.UserID)
	assert.Equal(t, user.ID, *linked.UserID)
}

func TestRegisterWithPlayerConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, _, err := svc.RegisterWithPlayer(RegisterInput{
		Email: "x@y.com", Username: "xy", Password: "secret123",
	}, "ghost")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	owner := "someone"
	player := models.Player{Nickname: "rex", UserID: &owner}
	require.NoError(t, db.Create(&player).Error)

	_, _, err = svc.RegisterWithPlayer(RegisterInput{
		Email: "x@y.com", Username: "xy", Password: "secret123",
	}, "rex")
	assert.ErrorIs(t, err, ErrPlayerAlreadyLinked)

	// Failed attempts must not leave a half-created account behind.
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
