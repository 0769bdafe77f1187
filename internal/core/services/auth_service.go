package services

import (
	"context"
	"fmt"
	"log/slog"

	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/dto"
	"github.com/splitstack/splitledger/internal/middleware"
	"github.com/splitstack/splitledger/internal/utils"
	"github.com/splitstack/splitledger/pkg/config"
)

// authService issues signed session tokens for verified credentials.
type authService struct {
	userSvc portssvc.UserAuthSvc
	cfg     *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(userSvc portssvc.UserAuthSvc, cfg *config.Config) portssvc.AuthSvcFacade {
	return &authService{
		userSvc: userSvc,
		cfg:     cfg,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies the credentials and returns a signed JWT plus the user's
// public profile.
func (s *authService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userSvc.AuthenticateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiry, s.cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	return &dto.LoginResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	}, nil
}
