package leave

import "context"

type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	Update(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	GetByCode(ctx context.Context, organizationID, code string) (LeaveType, error)
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]LeaveType, error)
}

type LeaveBalanceRepository interface {
	// CreateIfMissing inserts balance unless its (user, leave type, year) key already exists.
	// It returns the stored row and whether this call inserted it.
	CreateIfMissing(ctx context.Context, balance LeaveBalance) (LeaveBalance, bool, error)
	GetByID(ctx context.Context, id string) (LeaveBalance, error)
	GetByKey(ctx context.Context, key BalanceKey) (LeaveBalance, error)
	// LockForUpdate reads the row under a write lock held until the enclosing transaction ends.
	LockForUpdate(ctx context.Context, id string) (LeaveBalance, error)
	// UpdateCounters persists counters, accrual and lock fields of balance.
	UpdateCounters(ctx context.Context, balance LeaveBalance) error
	// ListByUser returns the balances of userID for year, or for every year when year is 0.
	ListByUser(ctx context.Context, userID string, year int) ([]LeaveBalance, error)
	ListByYear(ctx context.Context, year int) ([]LeaveBalance, error)
}

type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	LockForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	// UpdateDecision persists status, approver, comments and approved_at.
	UpdateDecision(ctx context.Context, request LeaveRequest) error
	List(ctx context.Context, organizationID string, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	ListPendingByUser(ctx context.Context, userID string) ([]LeaveRequest, error)
}

type LedgerEventRepository interface {
	Append(ctx context.Context, event LedgerEvent) (LedgerEvent, error)
	// HasRequestEvent reports whether any event of the given types references requestID.
	HasRequestEvent(ctx context.Context, requestID string, types ...LedgerEventType) (bool, error)
	HasBalanceEvent(ctx context.Context, balanceID string, eventType LedgerEventType) (bool, error)
	ListByBalance(ctx context.Context, balanceID string) ([]LedgerEvent, error)
}

type HolidayRepository interface {
	Create(ctx context.Context, holiday CompanyHoliday) (CompanyHoliday, error)
	ListByOrganization(ctx context.Context, organizationID string, year *int) ([]CompanyHoliday, error)
}
