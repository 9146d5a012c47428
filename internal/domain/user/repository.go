package user

import (
	"context"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// UpdateProfile persists the allow-listed profile fields of u.
	UpdateProfile(ctx context.Context, u User) error
	// Deactivate marks the user inactive and records the leaving date.
	Deactivate(ctx context.Context, id string, dateOfLeaving time.Time) error
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]User, error)
	ListActive(ctx context.Context) ([]User, error)
}
