package leave

import (
	"context"
	"time"
)

type LeaveService interface {
	// Type
	CreateLeaveType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	UpdateLeaveType(ctx context.Context, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetLeaveType(ctx context.Context, organizationID, id string) (LeaveTypeResponse, error)
	ListLeaveTypes(ctx context.Context, organizationID string, includeInactive bool) ([]LeaveTypeResponse, error)
	// Balance
	GetBalances(ctx context.Context, organizationID, userID string, year int) ([]LeaveBalanceResponse, error)
	ListBalanceEvents(ctx context.Context, organizationID, balanceID string) ([]LedgerEventResponse, error)
	// Request
	CreateLeaveRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	ApproveLeaveRequest(ctx context.Context, req DecideLeaveRequestRequest) (LeaveRequestResponse, error)
	RejectLeaveRequest(ctx context.Context, req DecideLeaveRequestRequest) (LeaveRequestResponse, error)
	CancelLeaveRequest(ctx context.Context, req CancelLeaveRequestRequest) (LeaveRequestResponse, error)
	GetLeaveRequest(ctx context.Context, organizationID, requestID string) (LeaveRequestResponse, error)
	ListLeaveRequests(ctx context.Context, organizationID string, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	// Holiday
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	ListHolidays(ctx context.Context, organizationID string, year *int) ([]HolidayResponse, error)
}

// BatchService is the periodic side of the ledger, driven by the scheduler and ledgerctl.
type BatchService interface {
	RunAccrual(ctx context.Context, today time.Time) (AccrualReport, error)
	ApplyCarryForward(ctx context.Context, fromYear int) (CarryForwardReport, error)
	InitializeBalancesForYear(ctx context.Context, year int) (int, error)
}
