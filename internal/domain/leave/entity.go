package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccrualFrequency string

const (
	AccrualMonthly   AccrualFrequency = "monthly"
	AccrualQuarterly AccrualFrequency = "quarterly"
	AccrualYearly    AccrualFrequency = "yearly"
	AccrualOneTime   AccrualFrequency = "onetime"
)

// IsIncremental reports whether the frequency adds days on a schedule.
func (f AccrualFrequency) IsIncremental() bool {
	return f == AccrualMonthly || f == AccrualQuarterly || f == AccrualYearly
}

func (f AccrualFrequency) IsValid() bool {
	return f.IsIncremental() || f == AccrualOneTime
}

type ProrationBasis string

const (
	ProrationDaily     ProrationBasis = "daily"
	ProrationMonthly   ProrationBasis = "monthly"
	ProrationQuarterly ProrationBasis = "quarterly"
	ProrationAnnually  ProrationBasis = "annually"
)

func (b ProrationBasis) IsValid() bool {
	switch b {
	case ProrationDaily, ProrationMonthly, ProrationQuarterly, ProrationAnnually:
		return true
	}
	return false
}

type LeaveType struct {
	ID             string
	OrganizationID string
	Name           string
	Code           string
	Description    *string

	MaxDaysPerYear decimal.Decimal

	CarryForwardAllowed bool
	CarryForwardMaxDays decimal.Decimal

	AccrualFrequency AccrualFrequency
	AccrualDays      decimal.Decimal

	IsPaid           bool
	RequiresApproval bool
	IsActive         bool

	AllowEncashment bool
	EncashmentRate  decimal.Decimal

	ProrateOnJoin  bool
	ProrateOnExit  bool
	ProrationBasis ProrationBasis

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveBalance is the per (user, leave type, year) ledger row.
type LeaveBalance struct {
	ID          string
	UserID      string
	LeaveTypeID string
	Year        int

	TotalEntitled   decimal.Decimal
	Used            decimal.Decimal
	PendingApproval decimal.Decimal
	CarriedForward  decimal.Decimal
	Accrued         decimal.Decimal
	Expired         decimal.Decimal

	LastAccruedDate *time.Time
	IsLocked        bool
	LockedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Net is total_entitled + carried_forward - used - pending_approval. It must stay >= 0.
func (b LeaveBalance) Net() decimal.Decimal {
	return b.TotalEntitled.Add(b.CarriedForward).Sub(b.Used).Sub(b.PendingApproval)
}

// ExcessCarryForward is the part of carried_forward above the cap.
func (b LeaveBalance) ExcessCarryForward(carryForwardCap decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, b.CarriedForward.Sub(carryForwardCap))
}

// Available is the bookable amount: Net minus the excess carry forward, floored at zero.
func (b LeaveBalance) Available(carryForwardCap decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, b.Net().Sub(b.ExcessCarryForward(carryForwardCap)))
}

// Key identifies a balance row.
type BalanceKey struct {
	UserID      string
	LeaveTypeID string
	Year        int
}

func (b LeaveBalance) Key() BalanceKey {
	return BalanceKey{UserID: b.UserID, LeaveTypeID: b.LeaveTypeID, Year: b.Year}
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

var requestTransitions = map[LeaveRequestStatus][]LeaveRequestStatus{
	LeaveRequestStatusPending: {
		LeaveRequestStatusApproved,
		LeaveRequestStatusRejected,
		LeaveRequestStatusCancelled,
	},
}

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected, LeaveRequestStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal edge from s.
func (s LeaveRequestStatus) CanTransitionTo(next LeaveRequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s LeaveRequestStatus) IsTerminal() bool {
	return s.IsValid() && len(requestTransitions[s]) == 0
}

type LeaveRequest struct {
	ID          string
	UserID      string
	LeaveTypeID string
	BalanceID   string

	FromDate     time.Time
	ToDate       time.Time
	DurationDays int
	Reason       string

	Status           LeaveRequestStatus
	ApproverID       *string
	ApprovalComments *string
	ApprovedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	LeaveTypeName *string
	UserName      *string
}

// Days is the fixed duration as a ledger quantity.
func (r LeaveRequest) Days() decimal.Decimal {
	return decimal.NewFromInt(int64(r.DurationDays))
}

type LedgerEventType string

const (
	LedgerEventInitialize   LedgerEventType = "initialize"
	LedgerEventReserve      LedgerEventType = "reserve"
	LedgerEventConsume      LedgerEventType = "consume"
	LedgerEventRelease      LedgerEventType = "release"
	LedgerEventAccrue       LedgerEventType = "accrue"
	LedgerEventCarryForward LedgerEventType = "carry_forward"
	LedgerEventLock         LedgerEventType = "lock"
)

// LedgerEvent is an append-only record of one balance mutation.
type LedgerEvent struct {
	ID        string
	BalanceID string
	RequestID *string
	Type      LedgerEventType
	Days      decimal.Decimal
	ActorID   *string
	Metadata  map[string]any
	CreatedAt time.Time
}

type CompanyHoliday struct {
	ID             string
	OrganizationID string
	Name           string
	Date           time.Time
	IsOptional     bool
	CreatedAt      time.Time
}

// AccrualReport summarizes one accrual batch.
type AccrualReport struct {
	Date    time.Time
	Scanned int
	Accrued int
	Skipped int
	Locked  int
	Failed  int
}

// CarryForwardReport summarizes one year-boundary carry forward batch.
type CarryForwardReport struct {
	FromYear  int
	Scanned   int
	Applied   int
	Skipped   int
	Failed    int
	TotalDays decimal.Decimal
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InclusiveDays counts calendar days from from to to, both included.
func InclusiveDays(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours()/24) + 1
}
