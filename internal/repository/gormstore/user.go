package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"gorm.io/gorm"
)

var _ user.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	model := userModel(newUser)
	if err := r.store.conn(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return model.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.take(r.store.conn(ctx).Where("id = ?", id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.take(r.store.conn(ctx).Where("email = ?", email))
}

func (r *UserRepository) take(query *gorm.DB) (user.User, error) {
	var model User
	if err := query.Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return model.toDomain(), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u user.User) error {
	result := r.store.conn(ctx).Model(&User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
		"phone_number": u.PhoneNumber,
		"updated_at":   time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("update user profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id string, dateOfLeaving time.Time) error {
	leaving := formatDate(dateOfLeaving)
	result := r.store.conn(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"is_active":       false,
		"date_of_leaving": leaving,
		"updated_at":      time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("deactivate user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]user.User, error) {
	query := r.store.conn(ctx).Where("organization_id = ?", organizationID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	return r.find(query.Order("first_name ASC").Order("last_name ASC"))
}

func (r *UserRepository) ListActive(ctx context.Context) ([]user.User, error) {
	return r.find(r.store.conn(ctx).Where("is_active = ?", true).Order("id ASC"))
}

func (r *UserRepository) find(query *gorm.DB) ([]user.User, error) {
	var models []User
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]user.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toDomain())
	}
	return users, nil
}

func userModel(u user.User) User {
	return User{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		PhoneNumber:    u.PhoneNumber,
		Role:           string(u.Role),
		EmployeeCode:   u.EmployeeCode,
		DepartmentID:   u.DepartmentID,
		OfficeID:       u.OfficeID,
		ManagerID:      u.ManagerID,
		DateOfJoining:  formatDate(u.DateOfJoining),
		DateOfLeaving:  formatDatePtr(u.DateOfLeaving),
		IsActive:       u.IsActive,
	}
}

func (m User) toDomain() user.User {
	return user.User{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		PhoneNumber:    m.PhoneNumber,
		Role:           user.Role(m.Role),
		EmployeeCode:   m.EmployeeCode,
		DepartmentID:   m.DepartmentID,
		OfficeID:       m.OfficeID,
		ManagerID:      m.ManagerID,
		DateOfJoining:  parseDate(m.DateOfJoining),
		DateOfLeaving:  parseDatePtr(m.DateOfLeaving),
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
