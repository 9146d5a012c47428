package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/handler/http/response"
)

type UserHandler interface {
	CreateUser(w http.ResponseWriter, r *http.Request)
	ListUsers(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	GetMe(w http.ResponseWriter, r *http.Request)
	UpdateMe(w http.ResponseWriter, r *http.Request)
	OffboardUser(w http.ResponseWriter, r *http.Request)
}

type UserHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &UserHandlerImpl{
		userService: userService,
	}
}

// CreateUser implements UserHandler.
func (u *UserHandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req user.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateUser decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID

	created, err := u.userService.CreateUser(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User created successfully", created)
}

// ListUsers implements UserHandler.
func (u *UserHandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	users, err := u.userService.ListUsers(r.Context(), claims.OrganizationID, queryBool(r, "include_inactive"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, users)
}

// GetUser implements UserHandler.
func (u *UserHandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	found, err := u.userService.GetUser(r.Context(), claims.OrganizationID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, found)
}

// GetMe implements UserHandler.
func (u *UserHandlerImpl) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	me, err := u.userService.GetUser(r.Context(), claims.OrganizationID, claims.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, me)
}

// UpdateMe implements UserHandler.
func (u *UserHandlerImpl) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateMe decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = claims.UserID

	updated, err := u.userService.UpdateProfile(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile updated successfully", updated)
}

// OffboardUser implements UserHandler.
func (u *UserHandlerImpl) OffboardUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req user.OffboardUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("OffboardUser decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = chi.URLParam(r, "id")
	req.ActorID = claims.UserID
	req.OrganizationID = claims.OrganizationID

	offboarded, err := u.userService.OffboardUser(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User offboarded successfully", offboarded)
}
