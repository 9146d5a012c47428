package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
	"golang.org/x/crypto/bcrypt"
)

// LeaveOnboarding is the part of the leave service that follows a user's lifecycle.
type LeaveOnboarding interface {
	InitializeBalances(ctx context.Context, u user.User) (int, error)
	OffboardUser(ctx context.Context, userID, actorID string) error
}

// OfficeDirectory resolves the office a new user is assigned to.
type OfficeDirectory interface {
	GetByID(ctx context.Context, id string) (organization.OfficeLocation, error)
}

type UserServiceImpl struct {
	tx      database.Transactor
	users   user.UserRepository
	offices OfficeDirectory
	leave   LeaveOnboarding
	cost    int
}

var _ user.UserService = (*UserServiceImpl)(nil)

func NewUserService(tx database.Transactor, users user.UserRepository, offices OfficeDirectory, leave LeaveOnboarding) *UserServiceImpl {
	return &UserServiceImpl{
		tx:      tx,
		users:   users,
		offices: offices,
		leave:   leave,
		cost:    bcrypt.DefaultCost,
	}
}

func (s *UserServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CreateUser implements user.UserService. The new user gets current year balances for every
// active leave type in the same transaction.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return user.UserResponse{}, user.ErrUserEmailExists
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return user.UserResponse{}, fmt.Errorf("failed to check email: %w", err)
	}

	if req.OfficeID != nil {
		office, err := s.offices.GetByID(ctx, *req.OfficeID)
		if err != nil {
			return user.UserResponse{}, err
		}
		if office.OrganizationID != req.OrganizationID {
			return user.UserResponse{}, organization.ErrOfficeNotFound
		}
	}
	if req.ManagerID != nil {
		manager, err := s.users.GetByID(ctx, *req.ManagerID)
		if err != nil {
			return user.UserResponse{}, err
		}
		if manager.OrganizationID != req.OrganizationID {
			return user.UserResponse{}, user.ErrCrossOrganization
		}
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	joined, _ := time.Parse(time.DateOnly, req.DateOfJoining)

	var created user.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err = s.users.Create(ctx, user.User{
			OrganizationID: req.OrganizationID,
			Email:          req.Email,
			PasswordHash:   hash,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			PhoneNumber:    req.PhoneNumber,
			Role:           user.Role(req.Role),
			EmployeeCode:   req.EmployeeCode,
			DepartmentID:   req.DepartmentID,
			OfficeID:       req.OfficeID,
			ManagerID:      req.ManagerID,
			DateOfJoining:  joined,
			IsActive:       true,
		})
		if err != nil {
			return err
		}

		balances, err := s.leave.InitializeBalances(ctx, created)
		if err != nil {
			return fmt.Errorf("failed to initialize leave balances: %w", err)
		}
		slog.Info("Created user", "user_id", created.ID, "organization_id", created.OrganizationID, "balances", balances)
		return nil
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	return user.NewUserResponse(created), nil
}

// GetUser implements user.UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, organizationID, id string) (user.UserResponse, error) {
	u, err := s.member(ctx, organizationID, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(u), nil
}

// ListUsers implements user.UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context, organizationID string, includeInactive bool) ([]user.UserResponse, error) {
	users, err := s.users.ListByOrganization(ctx, organizationID, !includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.NewUserResponse(u))
	}
	return responses, nil
}

// UpdateProfile implements user.UserService.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}
	if !u.IsActive {
		return user.UserResponse{}, user.ErrUserInactive
	}

	if req.ApplyTo(&u) {
		if err := s.users.UpdateProfile(ctx, u); err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return user.NewUserResponse(u), nil
}

// OffboardUser implements user.UserService. Deactivation, request cancellation and balance
// locking commit together.
func (s *UserServiceImpl) OffboardUser(ctx context.Context, req user.OffboardUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.member(ctx, req.OrganizationID, req.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}
	if !u.IsActive {
		return user.UserResponse{}, user.ErrUserAlreadyOffboarded
	}
	leaving, _ := time.Parse(time.DateOnly, req.DateOfLeaving)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Deactivate(ctx, u.ID, leaving); err != nil {
			return fmt.Errorf("failed to deactivate user: %w", err)
		}
		if err := s.leave.OffboardUser(ctx, u.ID, req.ActorID); err != nil {
			return fmt.Errorf("failed to close leave balances: %w", err)
		}
		return nil
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("Offboarded user", "user_id", u.ID, "actor_id", req.ActorID, "date_of_leaving", req.DateOfLeaving)

	u.IsActive = false
	u.DateOfLeaving = &leaving
	return user.NewUserResponse(u), nil
}

func (s *UserServiceImpl) member(ctx context.Context, organizationID, id string) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if u.OrganizationID != organizationID {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}
