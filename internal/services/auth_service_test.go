package services

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamwall/scamwall-backend/internal/dto"
)

func TestRegisterAndLogin(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	resp, err := svc.Register(&dto.RegisterRequest{
		Email:    "analyst@example.com",
		Password: "correct horse",
		Name:     "Analyst",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "analyst@example.com", resp.User.Email)

	login, err := svc.Login(&dto.LoginRequest{
		Email:    "analyst@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register(&dto.RegisterRequest{Email: "dup@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(&dto.RegisterRequest{Email: "dup@example.com", Password: "password2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterDefaultsNameFromEmail(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	resp, err := svc.Register(&dto.RegisterRequest{Email: "nameless@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "nameless", resp.User.Name)
}

func TestLoginWrongPassword(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register(&dto.RegisterRequest{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{Email: "a@example.com", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	resp, err := svc.Register(&dto.RegisterRequest{Email: "r@example.com", Password: "password1"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// The consumed token must not be replayable.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	resp, err := svc.Register(&dto.RegisterRequest{Email: "l@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(&dto.LogoutRequest{RefreshToken: resp.RefreshToken}))

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenCarriesSubject(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg)

	resp, err := svc.Register(&dto.RegisterRequest{Email: "sub@example.com", Password: "password1"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
}

func TestMe(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	user := createUser(t, db)
	me, err := svc.Me(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, me.Email)
}
