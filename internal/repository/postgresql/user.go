package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

const userColumns = `
	id, organization_id, email, password_hash, first_name, last_name, phone_number, role,
	employee_code, department_id, office_id, manager_id, date_of_joining, date_of_leaving,
	is_active, created_at, updated_at`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

// Create implements user.UserRepository.
func (u *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, u.db)
	query := `
		INSERT INTO users (
			id, organization_id, email, password_hash, first_name, last_name, phone_number, role,
			employee_code, department_id, office_id, manager_id, date_of_joining, date_of_leaving,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	newUser.ID = newID()
	err := q.QueryRow(ctx, query,
		newUser.ID, newUser.OrganizationID, newUser.Email, newUser.PasswordHash,
		newUser.FirstName, newUser.LastName, newUser.PhoneNumber, string(newUser.Role),
		newUser.EmployeeCode, newUser.DepartmentID, newUser.OfficeID, newUser.ManagerID,
		newUser.DateOfJoining, newUser.DateOfLeaving, newUser.IsActive,
	).Scan(&newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return newUser, nil
}

// GetByID implements user.UserRepository.
func (u *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, u.db)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail implements user.UserRepository.
func (u *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, u.db)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// UpdateProfile implements user.UserRepository.
func (u *userRepositoryImpl) UpdateProfile(ctx context.Context, profile user.User) error {
	q := GetQuerier(ctx, u.db)
	query := `
		UPDATE users SET first_name = $2, last_name = $3, phone_number = $4, updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query, profile.ID, profile.FirstName, profile.LastName, profile.PhoneNumber)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return user.ErrUserNotFound
	}
	return nil
}

// Deactivate implements user.UserRepository.
func (u *userRepositoryImpl) Deactivate(ctx context.Context, id string, dateOfLeaving time.Time) error {
	q := GetQuerier(ctx, u.db)
	query := `
		UPDATE users SET is_active = FALSE, date_of_leaving = $2, updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query, id, leave.DateOf(dateOfLeaving))
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return user.ErrUserNotFound
	}
	return nil
}

// ListByOrganization implements user.UserRepository.
func (u *userRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE organization_id = $1 AND ($2 = FALSE OR is_active)
		ORDER BY first_name, last_name, id
	`
	return u.list(ctx, query, organizationID, activeOnly)
}

// ListActive implements user.UserRepository.
func (u *userRepositoryImpl) ListActive(ctx context.Context) ([]user.User, error) {
	return u.list(ctx, `SELECT `+userColumns+` FROM users WHERE is_active ORDER BY organization_id, id`)
}

func (u *userRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]user.User, error) {
	q := GetQuerier(ctx, u.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		member, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, member)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u    user.User
		role string
	)
	err := row.Scan(
		&u.ID, &u.OrganizationID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.PhoneNumber, &role,
		&u.EmployeeCode, &u.DepartmentID, &u.OfficeID, &u.ManagerID, &u.DateOfJoining, &u.DateOfLeaving,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = user.Role(role)
	u.DateOfJoining = leave.DateOf(u.DateOfJoining)
	if u.DateOfLeaving != nil {
		d := leave.DateOf(*u.DateOfLeaving)
		u.DateOfLeaving = &d
	}
	return u, nil
}
