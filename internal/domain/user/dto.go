package user

import (
	"strings"
	"time"

	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

var validRoles = []string{string(RoleAdmin), string(RoleHR), string(RoleManager), string(RoleEmployee)}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	PhoneNumber    *string `json:"phone_number,omitempty"`
	Role           string  `json:"role"`
	EmployeeCode   *string `json:"employee_code,omitempty"`
	DepartmentID   *string `json:"department_id,omitempty"`
	OfficeID       *string `json:"office_id,omitempty"`
	ManagerID      *string `json:"manager_id,omitempty"`
	DateOfJoining  string  `json:"date_of_joining"`
	DateOfLeaving  *string `json:"date_of_leaving,omitempty"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
}

func NewUserResponse(u User) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		PhoneNumber:    u.PhoneNumber,
		Role:           string(u.Role),
		EmployeeCode:   u.EmployeeCode,
		DepartmentID:   u.DepartmentID,
		OfficeID:       u.OfficeID,
		ManagerID:      u.ManagerID,
		DateOfJoining:  u.DateOfJoining.Format(time.DateOnly),
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
	}
	if u.DateOfLeaving != nil {
		d := u.DateOfLeaving.Format(time.DateOnly)
		resp.DateOfLeaving = &d
	}
	return resp
}

// CreateUserRequest represents request to create a new user
type CreateUserRequest struct {
	OrganizationID string  `json:"-"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	PhoneNumber    *string `json:"phone_number,omitempty"`
	Role           string  `json:"role"`
	EmployeeCode   *string `json:"employee_code,omitempty"`
	DepartmentID   *string `json:"department_id,omitempty"`
	OfficeID       *string `json:"office_id,omitempty"`
	ManagerID      *string `json:"manager_id,omitempty"`
	DateOfJoining  string  `json:"date_of_joining"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "organization_id",
			Message: "organization_id is required",
		})
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if validator.IsEmpty(r.FirstName) {
		errs = append(errs, validator.ValidationError{
			Field:   "first_name",
			Message: "first_name is required",
		})
	}

	if r.Role == "" {
		r.Role = string(RoleEmployee)
	}
	if !validator.IsInSlice(r.Role, validRoles) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of admin, hr, manager, employee",
		})
	}

	if r.DateOfJoining == "" {
		r.DateOfJoining = time.Now().UTC().Format(time.DateOnly)
	}
	if _, ok := validator.IsValidDate(r.DateOfJoining); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date_of_joining",
			Message: "date_of_joining must be in YYYY-MM-DD format",
		})
	}

	for field, id := range map[string]*string{
		"department_id": r.DepartmentID,
		"office_id":     r.OfficeID,
		"manager_id":    r.ManagerID,
	} {
		if id != nil && !validator.IsValidUUID(*id) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be a valid UUID",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateProfileRequest is the self-service profile patch. Only the fields listed here can change.
type UpdateProfileRequest struct {
	UserID      string  `json:"-"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs = append(errs, validator.ValidationError{
			Field:   "first_name",
			Message: "first_name must not be empty",
		})
	}
	if r.PhoneNumber != nil && len(*r.PhoneNumber) > 20 {
		errs = append(errs, validator.ValidationError{
			Field:   "phone_number",
			Message: "phone_number must not exceed 20 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ApplyTo merges the set fields into u and reports whether anything changed.
func (r UpdateProfileRequest) ApplyTo(u *User) bool {
	changed := false
	if r.FirstName != nil && *r.FirstName != u.FirstName {
		u.FirstName = strings.TrimSpace(*r.FirstName)
		changed = true
	}
	if r.LastName != nil && *r.LastName != u.LastName {
		u.LastName = strings.TrimSpace(*r.LastName)
		changed = true
	}
	if r.PhoneNumber != nil && (u.PhoneNumber == nil || *u.PhoneNumber != *r.PhoneNumber) {
		phone := strings.TrimSpace(*r.PhoneNumber)
		u.PhoneNumber = &phone
		changed = true
	}
	return changed
}

type OffboardUserRequest struct {
	UserID         string `json:"-"`
	ActorID        string `json:"-"`
	OrganizationID string `json:"-"`
	DateOfLeaving  string `json:"date_of_leaving"`
}

func (r *OffboardUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if r.DateOfLeaving == "" {
		r.DateOfLeaving = time.Now().UTC().Format(time.DateOnly)
	}
	if _, ok := validator.IsValidDate(r.DateOfLeaving); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date_of_leaving",
			Message: "date_of_leaving must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
