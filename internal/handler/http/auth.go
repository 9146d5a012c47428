package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/teamzen/hris-backend-go/internal/domain/auth"
	"github.com/teamzen/hris-backend-go/internal/handler/http/response"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
	}
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// 2. Call service
	loginResp, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Warn("Login failed", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", loginResp)
}

// Logout implements AuthHandler. The access token's jti is revoked until it expires.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := a.authService.Logout(r.Context(), claims.TokenID); err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("User logged out", "user_id", claims.UserID)
	response.SuccessWithMessage(w, "Logout successful", nil)
}
