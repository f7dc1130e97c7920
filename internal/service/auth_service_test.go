package service

import (
	"context"
	"testing"

	"jewelshop/internal/config"
	"jewelshop/internal/dto"
	"jewelshop/internal/model"
	"jewelshop/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (AuthService, *config.Config) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewUserRepository(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &model.User{
		Username: "maria", PasswordHash: string(hash), Role: model.RoleUser, Active: true,
	}))
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8, JWTRefreshHours: 24}
	return NewAuthService(repo, cfg), cfg
}

func TestLogin(t *testing.T) {
	svc, cfg := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "maria", resp.User.Username)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.Equal(t, 8*3600, resp.ExpiresIn)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "access", claims["typ"])
	assert.Equal(t, resp.User.ID, claims["user_id"])
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "nope"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()
	login, err := svc.Login(ctx, dto.LoginRequest{Username: "maria", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "access tokens cannot refresh")

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}
