package user

import "context"

type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	GetUser(ctx context.Context, organizationID, id string) (UserResponse, error)
	ListUsers(ctx context.Context, organizationID string, includeInactive bool) ([]UserResponse, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (UserResponse, error)
	OffboardUser(ctx context.Context, req OffboardUserRequest) (UserResponse, error)
}
