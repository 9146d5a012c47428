package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
	"github.com/teamzen/hris-backend-go/internal/pkg/metrics"
)

const (
	OperationEnsure  = "ensure_balance"
	OperationReserve = "reserve"
	OperationConsume = "consume"
	OperationRelease = "release"
	OperationLock    = "lock"
	OperationAccrue  = "accrue"
	OperationCarry   = "carry_forward"
)

// Ledger owns every mutation of leave balances. Each operation runs in one transaction
// holding a row lock on the balance, and appends a ledger event in that same transaction.
type Ledger struct {
	tx         database.Transactor
	balances   leave.LeaveBalanceRepository
	leaveTypes leave.LeaveTypeRepository
	events     leave.LedgerEventRepository
	calculator *EntitlementCalculator
	logger     OperationLogger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) LedgerOption {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

func NewLedger(
	tx database.Transactor,
	balances leave.LeaveBalanceRepository,
	leaveTypes leave.LeaveTypeRepository,
	events leave.LedgerEventRepository,
	calculator *EntitlementCalculator,
	opts ...LedgerOption,
) *Ledger {
	l := &Ledger{
		tx:         tx,
		balances:   balances,
		leaveTypes: leaveTypes,
		events:     events,
		calculator: calculator,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Available is the bookable amount of balance under leaveType's carry forward cap.
func (l *Ledger) Available(balance leave.LeaveBalance, leaveType leave.LeaveType) decimal.Decimal {
	return balance.Available(leaveType.CarryForwardMaxDays)
}

// Validate fails with ErrInsufficientBalance when fewer than days are available.
func (l *Ledger) Validate(balance leave.LeaveBalance, leaveType leave.LeaveType, days decimal.Decimal) error {
	if !days.IsPositive() {
		return leave.ErrInvalidDays
	}
	available := l.Available(balance, leaveType)
	if available.LessThan(days) {
		return fmt.Errorf("%w: available %s, requested %s", leave.ErrInsufficientBalance, available.StringFixed(2), days.StringFixed(2))
	}
	return nil
}

// EnsureBalance returns the balance for (userID, leaveType, year), creating it when missing.
// A new balance is seeded with the entitlement for joinDate, or max_days_per_year when joinDate is nil.
func (l *Ledger) EnsureBalance(ctx context.Context, userID string, leaveType leave.LeaveType, year int, joinDate *time.Time) (leave.LeaveBalance, bool, error) {
	if existing, err := l.balances.GetByKey(ctx, leave.BalanceKey{UserID: userID, LeaveTypeID: leaveType.ID, Year: year}); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.LeaveBalance{}, false, fmt.Errorf("failed to get leave balance: %w", err)
	}

	entitlement := leaveType.MaxDaysPerYear
	if joinDate != nil {
		entitlement = l.calculator.ComputeInitialEntitlement(*joinDate, leaveType, year)
	}

	candidate := leave.LeaveBalance{
		UserID:          userID,
		LeaveTypeID:     leaveType.ID,
		Year:            year,
		TotalEntitled:   entitlement,
		Used:            decimal.Zero,
		PendingApproval: decimal.Zero,
		CarriedForward:  decimal.Zero,
		Accrued:         decimal.Zero,
		Expired:         decimal.Zero,
	}
	if leaveType.AccrualFrequency == leave.AccrualOneTime {
		candidate.Accrued = entitlement
	}

	var (
		balance leave.LeaveBalance
		created bool
	)
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, created, err = l.balances.CreateIfMissing(ctx, candidate)
		if err != nil {
			return fmt.Errorf("failed to create leave balance: %w", err)
		}
		if !created {
			return nil
		}
		_, err = l.events.Append(ctx, leave.LedgerEvent{
			BalanceID: balance.ID,
			Type:      leave.LedgerEventInitialize,
			Days:      entitlement,
			Metadata:  map[string]any{"year": year, "prorated": joinDate != nil && leaveType.ProrateOnJoin},
		})
		return err
	})
	if err != nil {
		l.record(ctx, OperationEnsure, OperationLog{UserID: userID, Days: entitlement}, err)
		return leave.LeaveBalance{}, false, err
	}
	if created {
		l.record(ctx, OperationEnsure, OperationLog{BalanceID: balance.ID, UserID: userID, Days: entitlement}, nil)
	}
	return balance, created, nil
}

// Reserve validates and places a pending hold of days for requestID, atomically.
func (l *Ledger) Reserve(ctx context.Context, balanceID, requestID string, days decimal.Decimal, actorID string) (leave.LeaveBalance, error) {
	var balance leave.LeaveBalance
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = l.balances.LockForUpdate(ctx, balanceID)
		if err != nil {
			return err
		}
		if balance.IsLocked {
			return leave.ErrBalanceLocked
		}

		seen, err := l.events.HasRequestEvent(ctx, requestID, leave.LedgerEventReserve)
		if err != nil {
			return fmt.Errorf("failed to read ledger events: %w", err)
		}
		if seen {
			return fmt.Errorf("%w: request %s already holds a reservation", leave.ErrInvalidTransition, requestID)
		}

		leaveType, err := l.leaveTypes.GetByID(ctx, balance.LeaveTypeID)
		if err != nil {
			return err
		}
		if err := l.Validate(balance, leaveType, days); err != nil {
			return err
		}
		availableBefore := l.Available(balance, leaveType)

		balance.PendingApproval = balance.PendingApproval.Add(days)
		return l.persist(ctx, balance, leave.LedgerEvent{
			BalanceID: balance.ID,
			RequestID: &requestID,
			Type:      leave.LedgerEventReserve,
			Days:      days,
			ActorID:   optional(actorID),
			Metadata:  map[string]any{"available_before": availableBefore.StringFixed(2)},
		})
	})

	l.record(ctx, OperationReserve, OperationLog{BalanceID: balanceID, RequestID: requestID, UserID: balance.UserID, Days: days}, err)
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	return balance, nil
}

// Consume turns the pending hold of requestID into used days.
func (l *Ledger) Consume(ctx context.Context, balanceID, requestID string, days decimal.Decimal, actorID string) (leave.LeaveBalance, error) {
	balance, err := l.settle(ctx, balanceID, requestID, days, actorID, leave.LedgerEventConsume)
	l.record(ctx, OperationConsume, OperationLog{BalanceID: balanceID, RequestID: requestID, UserID: balance.UserID, Days: days}, err)
	return balance, err
}

// Release drops the pending hold of requestID. It succeeds at most once per request.
func (l *Ledger) Release(ctx context.Context, balanceID, requestID string, days decimal.Decimal, actorID string) (leave.LeaveBalance, error) {
	balance, err := l.settle(ctx, balanceID, requestID, days, actorID, leave.LedgerEventRelease)
	l.record(ctx, OperationRelease, OperationLog{BalanceID: balanceID, RequestID: requestID, UserID: balance.UserID, Days: days}, err)
	return balance, err
}

// settle applies the single terminal event (consume or release) for a reservation.
func (l *Ledger) settle(ctx context.Context, balanceID, requestID string, days decimal.Decimal, actorID string, eventType leave.LedgerEventType) (leave.LeaveBalance, error) {
	if !days.IsPositive() {
		return leave.LeaveBalance{}, leave.ErrInvalidDays
	}

	var balance leave.LeaveBalance
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = l.balances.LockForUpdate(ctx, balanceID)
		if err != nil {
			return err
		}
		if balance.IsLocked {
			return leave.ErrBalanceLocked
		}

		reserved, err := l.events.HasRequestEvent(ctx, requestID, leave.LedgerEventReserve)
		if err != nil {
			return fmt.Errorf("failed to read ledger events: %w", err)
		}
		if !reserved {
			return fmt.Errorf("%w: request %s has no reservation", leave.ErrInvalidTransition, requestID)
		}
		settled, err := l.events.HasRequestEvent(ctx, requestID, leave.LedgerEventConsume, leave.LedgerEventRelease)
		if err != nil {
			return fmt.Errorf("failed to read ledger events: %w", err)
		}
		if settled {
			return fmt.Errorf("%w: reservation for request %s was already settled", leave.ErrInvalidTransition, requestID)
		}

		if balance.PendingApproval.LessThan(days) {
			return fmt.Errorf("%w: pending %s, settling %s", leave.ErrNegativeBalance, balance.PendingApproval.StringFixed(2), days.StringFixed(2))
		}

		balance.PendingApproval = balance.PendingApproval.Sub(days)
		if eventType == leave.LedgerEventConsume {
			balance.Used = balance.Used.Add(days)
		}
		return l.persist(ctx, balance, leave.LedgerEvent{
			BalanceID: balance.ID,
			RequestID: &requestID,
			Type:      eventType,
			Days:      days,
			ActorID:   optional(actorID),
		})
	})
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	return balance, nil
}

// Lock freezes a balance. Locking an already locked balance is a no-op.
func (l *Ledger) Lock(ctx context.Context, balanceID, actorID string) (leave.LeaveBalance, error) {
	var balance leave.LeaveBalance
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = l.balances.LockForUpdate(ctx, balanceID)
		if err != nil {
			return err
		}
		if balance.IsLocked {
			return nil
		}
		now := l.now().UTC()
		balance.IsLocked = true
		balance.LockedAt = &now
		return l.persist(ctx, balance, leave.LedgerEvent{
			BalanceID: balance.ID,
			Type:      leave.LedgerEventLock,
			Days:      decimal.Zero,
			ActorID:   optional(actorID),
			Metadata:  map[string]any{"available": balance.Net().StringFixed(2)},
		})
	})
	l.record(ctx, OperationLock, OperationLog{BalanceID: balanceID, UserID: balance.UserID}, err)
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	return balance, nil
}

// persist writes balance and event after checking the balance invariants.
func (l *Ledger) persist(ctx context.Context, balance leave.LeaveBalance, event leave.LedgerEvent) error {
	if balance.PendingApproval.IsNegative() || balance.Used.IsNegative() || balance.Net().IsNegative() {
		return fmt.Errorf("%w: balance %s", leave.ErrNegativeBalance, balance.ID)
	}
	if err := l.balances.UpdateCounters(ctx, balance); err != nil {
		return fmt.Errorf("failed to update leave balance: %w", err)
	}
	if _, err := l.events.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to append ledger event: %w", err)
	}
	return nil
}

func (l *Ledger) record(ctx context.Context, operation string, entry OperationLog, err error) {
	entry.Operation = operation
	if entry.Status == "" {
		entry.Status = operationStatusOK
	}
	outcome := metrics.OutcomeSuccess
	if entry.Status == operationStatusSkipped {
		outcome = metrics.OutcomeSkipped
	}
	if err != nil {
		entry.Status = operationStatusError
		entry.Error = err
		outcome = metrics.OutcomeFailure
	}
	l.metrics.ObserveLedger(operation, outcome)
	if l.logger != nil {
		l.logger.LogOperation(ctx, entry)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
