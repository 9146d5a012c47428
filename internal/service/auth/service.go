package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teamzen/hris-backend-go/internal/domain/auth"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Credentials is the subset of the user store login reads.
type Credentials interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type AuthServiceImpl struct {
	users Credentials
	jwt   jwt.Service
}

var _ auth.AuthService = (*AuthServiceImpl)(nil)

func NewAuthService(users Credentials, jwtService jwt.Service) *AuthServiceImpl {
	return &AuthServiceImpl{
		users: users,
		jwt:   jwtService,
	}
}

// Login implements auth.AuthService. Unknown emails and wrong passwords fail the same way.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	userData, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == "" {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive {
		return auth.LoginResponse{}, auth.ErrAccountInactive
	}

	token, _, err := a.jwt.GenerateAccessToken(userData)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	slog.Info("User logged in", "user_id", userData.ID, "organization_id", userData.OrganizationID)

	return auth.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(a.jwt.AccessTTL().Seconds()),
		User:        user.NewUserResponse(userData),
	}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return auth.ErrInvalidTokenType
	}
	a.jwt.RevokeToken(tokenID)
	return nil
}
