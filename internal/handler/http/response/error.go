package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/domain/auth"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/jwt"
	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, jwt.ErrInvalidClaims):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountInactive),
		errors.Is(err, user.ErrUserInactive),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, leave.ErrNotRequestOwner),
		errors.Is(err, attendance.ErrUnauthorized),
		errors.Is(err, attendance.ErrNotCorrectionOwner):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, leave.ErrLeaveTypeNotFound),
		errors.Is(err, leave.ErrBalanceNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, organization.ErrOrganizationNotFound),
		errors.Is(err, organization.ErrOfficeNotFound),
		errors.Is(err, organization.ErrDepartmentNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, attendance.ErrCorrectionNotFound):
		NotFound(w, err.Error())

	// Bad input that is not a field error
	case errors.Is(err, leave.ErrInvalidDateRange),
		errors.Is(err, leave.ErrInvalidDays),
		errors.Is(err, leave.ErrInvalidLeaveTypeRule),
		errors.Is(err, user.ErrCrossOrganization):
		BadRequest(w, err.Error(), nil)

	// State conflicts
	case errors.Is(err, leave.ErrInvalidTransition),
		errors.Is(err, leave.ErrBalanceLocked),
		errors.Is(err, leave.ErrLeaveTypeCodeExists),
		errors.Is(err, leave.ErrHolidayExists),
		errors.Is(err, user.ErrUserEmailExists),
		errors.Is(err, user.ErrUserAlreadyOffboarded),
		errors.Is(err, organization.ErrOrganizationNameExists),
		errors.Is(err, organization.ErrOfficeNameExists),
		errors.Is(err, organization.ErrDepartmentNameExists),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrCorrectionProcessed):
		Conflict(w, err.Error())

	// Business rule violations
	case errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrNegativeBalance),
		errors.Is(err, leave.ErrLeaveTypeInactive),
		errors.Is(err, organization.ErrOfficeInactive),
		errors.Is(err, attendance.ErrLogoutBeforeLogin),
		errors.Is(err, attendance.ErrNoOfficeForCheckOut):
		UnprocessableEntity(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
