package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"OnDuty/internal/model"
	"OnDuty/internal/model/dto"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/token"
	"OnDuty/storage/database"
	"OnDuty/utils"
)

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{}
	})
	return authService
}

type AuthService struct{}

// Login 邮箱密码登录，签发 JWT 对
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	if !utils.ValidateEmail(email) {
		return nil, errors.InvalidCredentials
	}

	var user model.User
	err := database.DB().WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.InvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, errors.InvalidCredentials
	}

	if user.Status != model.UserStatusActive {
		return nil, errors.UserInactive
	}

	userIDStr := fmt.Sprintf("%d", user.PublicID)
	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Logger.Info("User logged in",
		zap.Int64("public_id", user.PublicID),
		zap.String("employee_id", user.EmployeeID),
	)

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User: dto.AuthUserSnapshot{
			ID:         userIDStr,
			EmployeeID: user.EmployeeID,
			Name:       user.Name,
			Email:      user.Email,
			Status:     string(user.Status),
			IsAdmin:    user.IsAdmin,
		},
	}, nil
}

// Refresh 用 refresh token 换新的令牌对
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	userID, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized
	}

	user, err := s.UserByPublicID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != model.UserStatusActive {
		return nil, errors.UserInactive
	}

	accessToken, newRefreshToken, expiresIn, err := token.GenerateTokenPair(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// UserByPublicID 按 JWT 中的 public_id 取用户
func (s *AuthService) UserByPublicID(ctx context.Context, publicID string) (*model.User, error) {
	id, err := strconv.ParseInt(publicID, 10, 64)
	if err != nil {
		return nil, errors.InvalidUserID
	}

	var user model.User
	err = database.DB().WithContext(ctx).
		Where("public_id = ?", id).
		First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.Unauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}
