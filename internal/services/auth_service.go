// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
	"github.com/shoploop/shoploop-backend/internal/config"
	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

type AuthService struct {
	db                  *gorm.DB
	cfg                 *config.Config
	notificationService *NotificationService
}

type RegisterRequest struct {
	Username    string                 `json:"username" validate:"required,min=3,max=50"`
	Email       string                 `json:"email" validate:"required,email"`
	Password    string                 `json:"password" validate:"required,strong_password"`
	Role        models.UserRole        `json:"role,omitempty"`
	ProfileData map[string]interface{} `json:"profile_data,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// ClientMeta carries request attributes persisted on the session row.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

func NewAuthService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService) *AuthService {
	return &AuthService{
		db:                  db,
		cfg:                 cfg,
		notificationService: notificationService,
	}
}

func (s *AuthService) Register(req *RegisterRequest, meta ClientMeta) (*AuthResponse, error) {
	// Check if user already exists
	var existingUser models.User
	if err := s.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existingUser).Error; err == nil {
		if existingUser.Email == req.Email {
			return nil, apperrors.NewConflictError("user with this email already exists")
		}
		return nil, apperrors.NewConflictError("username already taken")
	}

	// Only customer and seller accounts can self-register
	role := req.Role
	if role == "" {
		role = models.UserRoleCustomer
	}
	if role != models.UserRoleCustomer && role != models.UserRoleSeller {
		return nil, apperrors.NewValidationError("invalid role",
			apperrors.FieldError{Field: "role", Message: "must be CUSTOMER or SELLER"})
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Role:        role,
		Status:      models.UserStatusActive,
		ProfileData: models.JSONB(req.ProfileData),
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.notificationService != nil {
		go s.notificationService.SendWelcomeEmail(user)
	}

	return s.issueTokens(user, meta)
}

func (s *AuthService) Login(req *LoginRequest, meta ClientMeta) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.NewForbiddenError("account is suspended")
	}
	if user.Status == models.UserStatusBanned {
		return nil, apperrors.NewForbiddenError("account is banned")
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	// Update last login time
	now := time.Now()
	user.LastLoginAt = &now
	s.db.Save(&user)

	return s.issueTokens(&user, meta)
}

func (s *AuthService) RefreshToken(refreshToken string, meta ClientMeta) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid refresh token")
	}

	// The token must still map to a live session row
	var session models.Session
	if err := s.db.Where("token_hash = ?", utils.HashString(refreshToken)).First(&session).Error; err != nil {
		return nil, apperrors.NewUnauthorizedError("session not found")
	}
	if !session.Valid(time.Now()) {
		return nil, apperrors.NewUnauthorizedError("session expired or revoked")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid refresh token")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.NewForbiddenError("account is not active")
	}

	// Rotate: revoke the old session, issue a fresh pair
	now := time.Now()
	session.RevokedAt = &now
	s.db.Save(&session)

	return s.issueTokens(&user, meta)
}

func (s *AuthService) Logout(userID uuid.UUID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	now := time.Now()
	return s.db.Model(&models.Session{}).
		Where("user_id = ? AND token_hash = ? AND revoked_at IS NULL", userID, utils.HashString(refreshToken)).
		Update("revoked_at", now).Error
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User, meta ClientMeta) (*AuthResponse, error) {
	accessToken, err := utils.GenerateAccessToken(
		user.ID,
		user.Username,
		string(user.Role),
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &models.Session{
		UserID:    user.ID,
		TokenHash: utils.HashString(refreshToken),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.JWT.RefreshTokenTTL) * time.Hour),
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
