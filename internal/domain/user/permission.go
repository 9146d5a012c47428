package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"
	PermissionEditOwnProfile Permission = "profile.edit_own"

	// Leave Management
	PermissionLeaveViewOwn     Permission = "leave.view_own"
	PermissionLeaveCreate      Permission = "leave.create"
	PermissionLeaveViewAll     Permission = "leave.view_all"
	PermissionLeaveApprove     Permission = "leave.approve"
	PermissionLeaveManageTypes Permission = "leave.manage_types"

	// Attendance Management
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceApprove Permission = "attendance.approve"

	// Organization Management
	PermissionOrgView   Permission = "org.view"
	PermissionOrgManage Permission = "org.manage"

	// User Management
	PermissionUserManage Permission = "user.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		// Admin has all permissions
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveManageTypes,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionAttendanceViewAll,
		PermissionAttendanceApprove,
		PermissionOrgView,
		PermissionOrgManage,
		PermissionUserManage,
	},
	RoleHR: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveManageTypes,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionAttendanceViewAll,
		PermissionAttendanceApprove,
		PermissionOrgView,
		PermissionUserManage,
	},
	RoleManager: {
		// Manager can approve and view team data
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionAttendanceViewAll,
		PermissionAttendanceApprove,
		PermissionOrgView,
	},
	RoleEmployee: {
		// Employee has basic access
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionOrgView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
