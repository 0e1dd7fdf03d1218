package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/auth"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Minute, TokenIssuer: "test"})
	svc := NewAuthService(f.store, jwtService)

	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	user := &models.User{Email: "login@uni.edu", Password: hash, IsActive: true, Roles: []models.Role{models.RoleFacultyAdvisor}}
	_, err = f.store.CreateUser(f.ctx, user)
	require.NoError(t, err)

	token, err := svc.Login(f.ctx, &dto.LoginRequest{Email: " Login@uni.edu ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	claims, err := jwtService.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.Login(f.ctx, &dto.LoginRequest{Email: "login@uni.edu", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(f.ctx, &dto.LoginRequest{Email: "nobody@uni.edu", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(f.ctx, &dto.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	profile, err := svc.GetProfile(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"FACULTY_ADVISOR"}, profile.Roles)
}
