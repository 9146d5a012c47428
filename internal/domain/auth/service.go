package auth

import "context"

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Logout(ctx context.Context, tokenID string) error
}
