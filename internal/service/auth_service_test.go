package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/pkg/config"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
)

type stubAuthUsers struct {
	findByID func(ctx context.Context, id string) (*models.User, error)
}

func (s *stubAuthUsers) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (s *stubAuthUsers) FindByNationalID(context.Context, string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (s *stubAuthUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findByID(ctx, id)
}

func (s *stubAuthUsers) Create(context.Context, *models.User) error { return nil }
func (s *stubAuthUsers) Update(context.Context, *models.User) error { return nil }

func (s *stubAuthUsers) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func (s *stubAuthUsers) UpdatePassword(context.Context, string, string, time.Time) error {
	return nil
}

func (s *stubAuthUsers) CreateRefreshToken(context.Context, *models.RefreshToken) error { return nil }

func (s *stubAuthUsers) FindRefreshToken(context.Context, string) (*models.RefreshToken, error) {
	return nil, sql.ErrNoRows
}

func (s *stubAuthUsers) RevokeRefreshToken(context.Context, string, time.Time) error { return nil }
func (s *stubAuthUsers) RevokeUserRefreshTokens(context.Context, string) error       { return nil }
func (s *stubAuthUsers) CreateAuditLog(context.Context, *models.AuditLog) error      { return nil }

func newAuthService(users *stubAuthUsers) *AuthService {
	cfg := config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
		Issuer:            "egov-portal",
	}
	return NewAuthService(users, cfg, zap.NewNop())
}

func activeCitizen() *models.User {
	return &models.User{
		ID:     "cit-1",
		Name:   "Jane Doe",
		Email:  "jane@example.com",
		Role:   models.RoleCitizen,
		Active: true,
	}
}

func TestAuthServiceValidateToken(t *testing.T) {
	user := activeCitizen()
	users := &stubAuthUsers{
		findByID: func(context.Context, string) (*models.User, error) { return user, nil },
	}
	svc := newAuthService(users)

	token, err := svc.generateAccessToken(user, time.Now().UTC())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "cit-1", claims.UserID)
	assert.Equal(t, models.RoleCitizen, claims.Role)
}

func TestAuthServiceValidateTokenRejectsDeactivatedUser(t *testing.T) {
	user := activeCitizen()
	users := &stubAuthUsers{
		findByID: func(context.Context, string) (*models.User, error) { return user, nil },
	}
	svc := newAuthService(users)

	token, err := svc.generateAccessToken(user, time.Now().UTC())
	require.NoError(t, err)

	// Deactivation takes effect immediately, not at token expiry.
	user.Active = false

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceValidateTokenRejectsDeletedUser(t *testing.T) {
	user := activeCitizen()
	users := &stubAuthUsers{
		findByID: func(context.Context, string) (*models.User, error) { return nil, sql.ErrNoRows },
	}
	svc := newAuthService(users)

	token, err := svc.generateAccessToken(user, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRefreshesRoleFromRow(t *testing.T) {
	user := activeCitizen()
	users := &stubAuthUsers{
		findByID: func(context.Context, string) (*models.User, error) { return user, nil },
	}
	svc := newAuthService(users)

	token, err := svc.generateAccessToken(user, time.Now().UTC())
	require.NoError(t, err)

	dep := "dep-1"
	user.Role = models.RoleOfficer
	user.DepartmentID = &dep

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOfficer, claims.Role)
	require.NotNil(t, claims.DepartmentID)
	assert.Equal(t, "dep-1", *claims.DepartmentID)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	users := &stubAuthUsers{
		findByID: func(context.Context, string) (*models.User, error) {
			t.Fatal("user lookup must not run for an unverifiable token")
			return nil, nil
		},
	}
	svc := newAuthService(users)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
