package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/pkg/metrics"
)

// Accrue credits accrual_days to the balance once per accrual period.
// It returns false when the leave type does not accrue or the period was already credited.
func (l *Ledger) Accrue(ctx context.Context, balanceID string, today time.Time) (bool, error) {
	today = leave.DateOf(today)

	var (
		balance leave.LeaveBalance
		days    decimal.Decimal
		applied bool
	)
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = l.balances.LockForUpdate(ctx, balanceID)
		if err != nil {
			return err
		}
		if balance.IsLocked {
			return leave.ErrBalanceLocked
		}

		leaveType, err := l.leaveTypes.GetByID(ctx, balance.LeaveTypeID)
		if err != nil {
			return err
		}
		if !leaveType.IsActive || !leaveType.AccrualFrequency.IsIncremental() {
			return nil
		}
		if balance.LastAccruedDate != nil && samePeriod(*balance.LastAccruedDate, today, leaveType.AccrualFrequency) {
			return nil
		}

		days = leaveType.AccrualDays
		balance.TotalEntitled = balance.TotalEntitled.Add(days)
		balance.Accrued = balance.Accrued.Add(days)
		balance.LastAccruedDate = &today
		applied = true

		return l.persist(ctx, balance, leave.LedgerEvent{
			BalanceID: balance.ID,
			Type:      leave.LedgerEventAccrue,
			Days:      days,
			Metadata: map[string]any{
				"period":    periodLabel(today, leaveType.AccrualFrequency),
				"frequency": string(leaveType.AccrualFrequency),
			},
		})
	})

	entry := OperationLog{Operation: OperationAccrue, BalanceID: balanceID, UserID: balance.UserID, Days: days, Status: operationStatusOK}
	switch {
	case errors.Is(err, leave.ErrBalanceLocked):
		entry.Status = operationStatusSkipped
		entry.Error = err
		l.metrics.ObserveAccrual(metrics.OutcomeLocked)
	case err != nil:
		entry.Status = operationStatusError
		entry.Error = err
		l.metrics.ObserveAccrual(metrics.OutcomeFailure)
	case !applied:
		entry.Status = operationStatusSkipped
		l.metrics.ObserveAccrual(metrics.OutcomeSkipped)
	default:
		l.metrics.ObserveAccrual(metrics.OutcomeSuccess)
	}
	if l.logger != nil {
		l.logger.LogOperation(ctx, entry)
	}

	if err != nil {
		return false, err
	}
	return applied, nil
}

// CarryForwardAmount is what balance can move into the next year: min(available, cap) when allowed.
func CarryForwardAmount(balance leave.LeaveBalance, leaveType leave.LeaveType) decimal.Decimal {
	if !leaveType.CarryForwardAllowed {
		return decimal.Zero
	}
	return decimal.Min(balance.Available(leaveType.CarryForwardMaxDays), leaveType.CarryForwardMaxDays)
}

// CarryForward moves the carry forward amount of balance into the following year's balance,
// creating it when missing. A destination that already received a carry forward is left alone.
func (l *Ledger) CarryForward(ctx context.Context, balance leave.LeaveBalance, leaveType leave.LeaveType) (decimal.Decimal, bool, error) {
	amount := CarryForwardAmount(balance, leaveType)
	if !amount.IsPositive() || balance.IsLocked {
		return decimal.Zero, false, nil
	}

	var applied bool
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		next, _, err := l.EnsureBalance(ctx, balance.UserID, leaveType, balance.Year+1, nil)
		if err != nil {
			return err
		}
		next, err = l.balances.LockForUpdate(ctx, next.ID)
		if err != nil {
			return err
		}
		if next.IsLocked {
			return leave.ErrBalanceLocked
		}

		done, err := l.events.HasBalanceEvent(ctx, next.ID, leave.LedgerEventCarryForward)
		if err != nil {
			return fmt.Errorf("failed to read ledger events: %w", err)
		}
		if done {
			return nil
		}

		next.CarriedForward = amount
		applied = true
		return l.persist(ctx, next, leave.LedgerEvent{
			BalanceID: next.ID,
			Type:      leave.LedgerEventCarryForward,
			Days:      amount,
			Metadata:  map[string]any{"source_balance_id": balance.ID, "from_year": balance.Year},
		})
	})

	status := operationStatusOK
	if err == nil && !applied {
		status = operationStatusSkipped
	}
	l.record(ctx, OperationCarry, OperationLog{BalanceID: balance.ID, UserID: balance.UserID, Days: amount, Status: status}, err)
	if err != nil {
		return decimal.Zero, false, err
	}
	return amount, applied, nil
}

func samePeriod(last, today time.Time, frequency leave.AccrualFrequency) bool {
	if last.Year() != today.Year() {
		return false
	}
	switch frequency {
	case leave.AccrualMonthly:
		return last.Month() == today.Month()
	case leave.AccrualQuarterly:
		return quarterOf(last) == quarterOf(today)
	default:
		return true
	}
}

func periodLabel(today time.Time, frequency leave.AccrualFrequency) string {
	switch frequency {
	case leave.AccrualMonthly:
		return today.Format("2006-01")
	case leave.AccrualQuarterly:
		return fmt.Sprintf("%d-Q%d", today.Year(), quarterOf(today))
	default:
		return fmt.Sprintf("%d", today.Year())
	}
}
