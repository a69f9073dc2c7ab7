// internal/domain/identity/service.go
package identity

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/config"
	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/auth"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
)

// Service handles exec account authentication
type Service struct {
	db        *gorm.DB
	config    *config.Config
	jwt       *auth.JWTManager
	passwords *auth.PasswordManager
	clock     clock.Clock
}

// NewService creates a new identity service
func NewService(db *gorm.DB, cfg *config.Config, clk clock.Clock) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		jwt:       auth.NewJWTManager(cfg),
		passwords: auth.NewPasswordManager(cfg),
		clock:     clk,
	}
}

// RegisterRequest represents account creation data
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     Role   `json:"role"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued tokens and account
type AuthResponse struct {
	User         *ExecUser `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// Register creates a new exec account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	var existing ExecUser
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: account with email '%s' already exists", apperrors.ErrValidation, req.Email)
	}

	hashed, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = RoleExec
	}
	if role != RoleAdmin && role != RoleExec {
		return nil, fmt.Errorf("%w: unknown role '%s'", apperrors.ErrValidation, role)
	}

	user := &ExecUser{
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
		Role:     role,
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.issueTokens(user)
}

// Login authenticates an account and issues tokens
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	user, err := s.GetByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	if err := s.passwords.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	now := s.clock.Now()
	if err := s.db.Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	return s.issueTokens(user)
}

// RefreshToken exchanges a refresh token for a new token pair
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	user, err := s.Get(claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	return s.issueTokens(user)
}

// Get retrieves an account by id
func (s *Service) Get(id uint) (*ExecUser, error) {
	var user ExecUser
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves an account by email
func (s *Service) GetByEmail(email string) (*ExecUser, error) {
	var user ExecUser
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account '%s': %w", email, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}
	return &user, nil
}

func (s *Service) issueTokens(user *ExecUser) (*AuthResponse, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
