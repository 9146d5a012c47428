package leave

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/pkg/metrics"
	fixtures "github.com/teamzen/hris-backend-go/internal/pkg/testutil"
)

func TestLedger_Accrue_Monthly(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "0", fixtures.WithAccrual(leave.AccrualMonthly, "1.25"))
	b := f.balance(t)

	// Act
	applied, err := f.ledger.Accrue(ctx, b.ID, fixtures.Date(2025, time.March, 1))

	// Assert
	require.NoError(t, err)
	assert.True(t, applied)
	stored := f.reload(t, b.ID)
	requireDays(t, "1.25", stored.TotalEntitled)
	requireDays(t, "1.25", stored.Accrued)
	require.NotNil(t, stored.LastAccruedDate)
	assert.Equal(t, "2025-03-01", stored.LastAccruedDate.Format(time.DateOnly))
}

func TestLedger_Accrue_SamePeriodIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "0", fixtures.WithAccrual(leave.AccrualMonthly, "1"))
	b := f.balance(t)

	applied, err := f.ledger.Accrue(ctx, b.ID, fixtures.Date(2025, time.March, 1))
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = f.ledger.Accrue(ctx, b.ID, fixtures.Date(2025, time.March, 28))
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = f.ledger.Accrue(ctx, b.ID, fixtures.Date(2025, time.April, 1))
	require.NoError(t, err)
	assert.True(t, applied)

	requireDays(t, "2", f.reload(t, b.ID).TotalEntitled)
}

func TestLedger_Accrue_QuarterlyPeriods(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "0", fixtures.WithAccrual(leave.AccrualQuarterly, "3"))
	b := f.balance(t)

	for _, day := range []time.Time{
		fixtures.Date(2025, time.January, 5),
		fixtures.Date(2025, time.March, 31),
		fixtures.Date(2025, time.April, 1),
	} {
		_, err := f.ledger.Accrue(ctx, b.ID, day)
		require.NoError(t, err)
	}

	requireDays(t, "6", f.reload(t, b.ID).Accrued)
}

func TestLedger_Accrue_OneTimeIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12")
	b := f.balance(t)

	applied, err := f.ledger.Accrue(ctx, b.ID, fixtures.Date(2025, time.March, 1))
	require.NoError(t, err)
	assert.False(t, applied)
	requireDays(t, "12", f.reload(t, b.ID).TotalEntitled)
}

func TestLedger_Accrue_LockedBalance(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "0", fixtures.WithAccrual(leave.AccrualMonthly, "1"))
	b := f.balance(t)
	_, err := f.ledger.Lock(ctx, b.ID, f.approver.ID)
	require.NoError(t, err)

	applied, err := f.ledger.Accrue(ctx, b.ID, fixtures.Date(2025, time.March, 1))
	assert.ErrorIs(t, err, leave.ErrBalanceLocked)
	assert.False(t, applied)
	requireDays(t, "0", f.reload(t, b.ID).TotalEntitled)
}

func TestLeaveService_RunAccrual_Report(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "0", fixtures.WithAccrual(leave.AccrualMonthly, "1"))
	open := f.balance(t)
	lockedBalance, _, err := f.ledger.EnsureBalance(ctx, f.approver.ID, f.leaveType, 2025, nil)
	require.NoError(t, err)
	_, err = f.ledger.Lock(ctx, lockedBalance.ID, f.approver.ID)
	require.NoError(t, err)

	// Act
	today := fixtures.Date(2025, time.May, 1)
	report, err := f.service.RunAccrual(ctx, today)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Accrued)
	assert.Equal(t, 1, report.Locked)
	assert.Equal(t, 0, report.Failed)
	requireDays(t, "1", f.reload(t, open.ID).TotalEntitled)

	rerun, err := f.service.RunAccrual(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 0, rerun.Accrued)
	assert.Equal(t, 1, rerun.Skipped)
	requireDays(t, "1", f.reload(t, open.ID).TotalEntitled)

	assert.Equal(t, float64(1), accrualCount(t, f.metrics, metrics.OutcomeSuccess))
	assert.Equal(t, float64(2), accrualCount(t, f.metrics, metrics.OutcomeLocked))
}

func accrualCount(t *testing.T, m *metrics.Metrics, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "hris_leave_accruals_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestCarryForwardAmount(t *testing.T) {
	lt := leave.LeaveType{CarryForwardAllowed: true, CarryForwardMaxDays: fixtures.Days("5")}

	tests := []struct {
		name    string
		balance leave.LeaveBalance
		want    string
	}{
		{"capped", leave.LeaveBalance{TotalEntitled: fixtures.Days("12"), Used: fixtures.Days("2")}, "5"},
		{"below cap", leave.LeaveBalance{TotalEntitled: fixtures.Days("12"), Used: fixtures.Days("9")}, "3"},
		{"nothing left", leave.LeaveBalance{TotalEntitled: fixtures.Days("12"), Used: fixtures.Days("12")}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireDays(t, tt.want, CarryForwardAmount(tt.balance, lt))
		})
	}

	requireDays(t, "0", CarryForwardAmount(leave.LeaveBalance{TotalEntitled: fixtures.Days("12")}, leave.LeaveType{}))
}

func TestLeaveService_ApplyCarryForward_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12", fixtures.WithCarryForward("5"))
	b := f.balance(t)

	requestID := "0198a1f0-0000-7000-8000-000000000021"
	_, err := f.ledger.Reserve(ctx, b.ID, requestID, fixtures.Days("4"), f.employee.ID)
	require.NoError(t, err)
	_, err = f.ledger.Consume(ctx, b.ID, requestID, fixtures.Days("4"), f.approver.ID)
	require.NoError(t, err)

	// Act
	report, err := f.service.ApplyCarryForward(ctx, 2025)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, report.Applied)
	requireDays(t, "5", report.TotalDays)

	next, err := f.store.LeaveBalances().GetByKey(ctx, leave.BalanceKey{UserID: f.employee.ID, LeaveTypeID: f.leaveType.ID, Year: 2026})
	require.NoError(t, err)
	requireDays(t, "5", next.CarriedForward)
	requireDays(t, "12", next.TotalEntitled)
	requireDays(t, "17", f.ledger.Available(next, f.leaveType))

	again, err := f.service.ApplyCarryForward(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Applied)
	assert.Equal(t, 1, again.Skipped)

	next, err = f.store.LeaveBalances().GetByID(ctx, next.ID)
	require.NoError(t, err)
	requireDays(t, "5", next.CarriedForward)
}

func TestLeaveService_InitializeBalancesForYear(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12")

	created, err := f.service.InitializeBalancesForYear(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = f.service.InitializeBalancesForYear(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestLeaveService_InactiveTypeIsNotAccruedOrCarried(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12", fixtures.WithAccrual(leave.AccrualMonthly, "1"), fixtures.WithCarryForward("5"))
	b := f.balance(t)

	retired := f.leaveType
	retired.IsActive = false
	_, err := f.store.LeaveTypes().Update(ctx, retired)
	require.NoError(t, err)

	applied, err := f.ledger.Accrue(ctx, b.ID, fixtures.Date(2025, time.March, 1))
	require.NoError(t, err)
	assert.False(t, applied)
	requireDays(t, "12", f.reload(t, b.ID).TotalEntitled)

	report, err := f.service.ApplyCarryForward(ctx, 2025)
	require.NoError(t, err)
	assert.Zero(t, report.Applied)
	assert.Equal(t, 1, report.Skipped)

	_, err = f.store.LeaveBalances().GetByKey(ctx, leave.BalanceKey{UserID: f.employee.ID, LeaveTypeID: f.leaveType.ID, Year: 2026})
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)
}
