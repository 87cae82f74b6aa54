package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/pkg/apperrors"
	"github.com/deniz/commverse/internal/pkg/auth"
)

func authServiceFixture(t *testing.T) (AuthService, *fakeProfileStore, *auth.JWTService) {
	t.Helper()
	profiles := newFakeProfileStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: 24 * time.Hour,
		TokenIssuer:    "test",
	})
	svc := NewAuthService(profiles, jwtService, zerolog.Nop())
	return svc, profiles, jwtService
}

func TestRegisterReturnsTokenWithExpiry(t *testing.T) {
	svc, _, jwtService := authServiceFixture(t)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "deniz",
		Email:    "deniz@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64((24 * time.Hour).Seconds()), resp.ExpiresIn)
	assert.Equal(t, "deniz", resp.User.Username)

	claims, err := jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "deniz", claims.Username)
}

func TestLoginVerifiesCredentials(t *testing.T) {
	svc, _, _ := authServiceFixture(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "deniz",
		Email:    "deniz@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "deniz@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Greater(t, resp.ExpiresIn, int64(0))

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "deniz@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
