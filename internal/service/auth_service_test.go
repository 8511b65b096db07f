package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"parsegate/internal/config"
	"parsegate/internal/domain"
	"parsegate/internal/service"
	"parsegate/mocks"
)

func jwtCfg() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "parsegate-test",
	}
}

func activeReviewer(t *testing.T, password string) *domain.Reviewer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.Reviewer{
		ID:           uuid.New(),
		Email:        "reviewer@example.com",
		PasswordHash: string(hash),
		FullName:     "Test Reviewer",
		IsActive:     true,
	}
}

func TestLogin_Success(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	reviewer := activeReviewer(t, "correct-horse-battery")
	repo.On("GetByEmail", mock.Anything, reviewer.Email).Return(reviewer, nil)

	svc := service.NewAuthService(repo, jwtCfg())
	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    reviewer.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reviewer.ID, claims.ReviewerID)
	assert.Equal(t, reviewer.Email, claims.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	reviewer := activeReviewer(t, "correct-horse-battery")
	repo.On("GetByEmail", mock.Anything, reviewer.Email).Return(reviewer, nil)

	svc := service.NewAuthService(repo, jwtCfg())
	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    reviewer.Email,
		Password: "wrong-password-here",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	repo.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, domain.ErrInvalidCredentials)

	svc := service.NewAuthService(repo, jwtCfg())
	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_InactiveReviewer(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	reviewer := activeReviewer(t, "correct-horse-battery")
	reviewer.IsActive = false
	repo.On("GetByEmail", mock.Anything, reviewer.Email).Return(reviewer, nil)

	svc := service.NewAuthService(repo, jwtCfg())
	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    reviewer.Email,
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, domain.ErrReviewerInactive)
}

func TestValidateToken_RejectsRefreshToken(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	reviewer := activeReviewer(t, "correct-horse-battery")
	repo.On("GetByEmail", mock.Anything, reviewer.Email).Return(reviewer, nil)

	svc := service.NewAuthService(repo, jwtCfg())
	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    reviewer.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	// Refresh tokens carry the "refresh" audience and must not pass access
	// validation.
	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestRefreshToken_Success(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	reviewer := activeReviewer(t, "correct-horse-battery")
	repo.On("GetByEmail", mock.Anything, reviewer.Email).Return(reviewer, nil)
	repo.On("GetByID", mock.Anything, reviewer.ID).Return(reviewer, nil)

	svc := service.NewAuthService(repo, jwtCfg())
	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    reviewer.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshToken_AccessTokenRejected(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	reviewer := activeReviewer(t, "correct-horse-battery")
	repo.On("GetByEmail", mock.Anything, reviewer.Email).Return(reviewer, nil)

	svc := service.NewAuthService(repo, jwtCfg())
	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    reviewer.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
