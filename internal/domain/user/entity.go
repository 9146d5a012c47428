package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Organization administrator - full access
	RoleHR       Role = "hr"       // HR staff - manages people and leave policy
	RoleManager  Role = "manager"  // Can approve leave
	RoleEmployee Role = "employee" // Regular employee
)

func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}

type User struct {
	ID             string
	OrganizationID string
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	PhoneNumber    *string
	Role           Role

	EmployeeCode  *string
	DepartmentID  *string
	OfficeID      *string
	ManagerID     *string
	DateOfJoining time.Time
	DateOfLeaving *time.Time

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsPrivileged reports whether the user may see other users' records.
func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleHR || u.Role == RoleManager
}

// CanApprove checks if user can approve requests
func (u *User) CanApprove() bool {
	return HasPermission(u.Role, PermissionLeaveApprove)
}

// HasExited reports whether the user left the organization on or before day.
func (u *User) HasExited(day time.Time) bool {
	return u.DateOfLeaving != nil && !u.DateOfLeaving.After(day)
}
