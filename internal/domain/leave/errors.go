package leave

import "errors"

var (
	// Leave type
	ErrLeaveTypeNotFound    = errors.New("leave type not found")
	ErrLeaveTypeCodeExists  = errors.New("leave type code already exists in this organization")
	ErrLeaveTypeInactive    = errors.New("leave type is not active")
	ErrInvalidLeaveTypeRule = errors.New("invalid leave type configuration")

	// Balance
	ErrBalanceNotFound     = errors.New("leave balance not found")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrNegativeBalance     = errors.New("operation would make leave balance negative")
	ErrBalanceLocked       = errors.New("leave balance is locked")
	ErrInvalidDays         = errors.New("days must be a positive amount")

	// Request
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrInvalidDateRange     = errors.New("to_date must not be before from_date")
	ErrInvalidTransition    = errors.New("leave request status does not allow this transition")
	ErrNotRequestOwner      = errors.New("only the requester can cancel this leave request")

	// Holiday
	ErrHolidayExists = errors.New("a holiday already exists on this date")
)
