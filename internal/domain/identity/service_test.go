// internal/domain/identity/service_test.go
package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/distribution-backend/internal/config"
	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/auth"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
)

var testTime = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

const testPassword = "Str0ng!Pass"

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&ExecUser{}))

	cfg := &config.Config{
		App: config.AppConfig{Name: "test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
	return NewService(db, cfg, clock.Fixed{Time: testTime})
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(&RegisterRequest{
		Email:    "Exec@Example.com",
		Password: testPassword,
		Name:     "Test Exec",
	})
	require.NoError(t, err)

	// Default role, normalized email, tokens issued.
	assert.Equal(t, RoleExec, resp.User.Role)
	assert.Equal(t, "exec@example.com", resp.User.Email)
	assert.True(t, resp.User.IsActive)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// The stored password is hashed.
	assert.NotEqual(t, testPassword, resp.User.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	req := &RegisterRequest{Email: "exec@example.com", Password: testPassword, Name: "First"}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc := newTestService(t)

	for _, password := range []string{"short", "nouppercase1!", "NoSpecial123", "NOLOWER123!"} {
		_, err := svc.Register(&RegisterRequest{
			Email: "exec@example.com", Password: password, Name: "Test",
		})
		assert.Error(t, err, "password %q should be rejected", password)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{
		Email: "exec@example.com", Password: testPassword, Name: "Test", Role: "superuser",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{
		Email: "exec@example.com", Password: testPassword, Name: "Test", Role: RoleAdmin,
	})
	require.NoError(t, err)

	resp, err := svc.Login(&LoginRequest{Email: "exec@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, resp.User.Role)
	require.NotNil(t, resp.User.LastLoginAt)
	assert.True(t, resp.User.LastLoginAt.Equal(testTime))

	claims, err := auth.NewJWTManager(svc.config).ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{
		Email: "exec@example.com", Password: testPassword, Name: "Test",
	})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "exec@example.com", Password: "Wrong!Pass1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	// Unknown accounts produce the same message.
	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: testPassword})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(&RegisterRequest{
		Email: "exec@example.com", Password: testPassword, Name: "Test",
	})
	require.NoError(t, err)

	require.NoError(t, svc.db.Model(resp.User).Update("is_active", false).Error)

	_, err = svc.Login(&LoginRequest{Email: "exec@example.com", Password: testPassword})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")
}

func TestRefreshToken(t *testing.T) {
	svc := newTestService(t)

	registered, err := svc.Register(&RegisterRequest{
		Email: "exec@example.com", Password: testPassword, Name: "Test", Role: RoleAdmin,
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	// The role comes from the account, not the refresh token.
	claims, err := auth.NewJWTManager(svc.config).ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	// An access token is not accepted as a refresh token.
	_, err = svc.RefreshToken(registered.AccessToken)
	assert.Error(t, err)
}
