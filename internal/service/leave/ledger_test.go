package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/metrics"
	"github.com/teamzen/hris-backend-go/internal/pkg/testutil"
	"github.com/teamzen/hris-backend-go/internal/repository/gormstore"
)

type ledgerFixture struct {
	store     *gormstore.Store
	ledger    *Ledger
	service   *LeaveServiceImpl
	logger    *RecordingOperationLogger
	metrics   *metrics.Metrics
	org       organization.Organization
	employee  user.User
	approver  user.User
	leaveType leave.LeaveType
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func newLedgerFixture(t *testing.T, maxDays string, opts ...testutil.LeaveTypeOption) *ledgerFixture {
	t.Helper()

	store := testutil.NewStore(t)
	org := testutil.CreateOrganization(t, store, "Acme")
	employee := testutil.CreateUser(t, store, org.ID, "employee@acme.test")
	approver := testutil.CreateUser(t, store, org.ID, "manager@acme.test", testutil.WithRole(user.RoleManager))
	leaveType := testutil.CreateLeaveType(t, store, org.ID, "AL", maxDays, opts...)

	recorder := &RecordingOperationLogger{}
	m := metrics.New()
	ledger := NewLedger(
		store,
		store.LeaveBalances(),
		store.LeaveTypes(),
		store.LedgerEvents(),
		NewEntitlementCalculator(),
		WithOperationLogger(recorder),
		WithMetrics(m),
		WithClock(fixedNow),
	)
	service := NewLeaveService(
		store,
		store.LeaveTypes(),
		store.LeaveBalances(),
		store.LeaveRequests(),
		store.LedgerEvents(),
		store.Holidays(),
		store.Users(),
		ledger,
	)
	service.now = fixedNow
	service.requestService.now = fixedNow

	return &ledgerFixture{
		store:     store,
		ledger:    ledger,
		service:   service,
		logger:    recorder,
		metrics:   m,
		org:       org,
		employee:  employee,
		approver:  approver,
		leaveType: leaveType,
	}
}

// balance creates the 2025 balance for the fixture employee.
func (f *ledgerFixture) balance(t *testing.T) leave.LeaveBalance {
	t.Helper()
	b, _, err := f.ledger.EnsureBalance(context.Background(), f.employee.ID, f.leaveType, 2025, nil)
	require.NoError(t, err)
	return b
}

func (f *ledgerFixture) reload(t *testing.T, id string) leave.LeaveBalance {
	t.Helper()
	b, err := f.store.LeaveBalances().GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func requireDays(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(testutil.Days(want)), "want %s, got %s", want, got.String())
}

func TestLedger_Available_CapsExcessCarryForward(t *testing.T) {
	l := &Ledger{}
	lt := leave.LeaveType{CarryForwardAllowed: true, CarryForwardMaxDays: testutil.Days("5")}
	b := leave.LeaveBalance{
		TotalEntitled:  testutil.Days("10"),
		CarriedForward: testutil.Days("8"),
	}

	// 10 + 8 - 0 - 0 - (8 - 5)
	requireDays(t, "15", l.Available(b, lt))
}

func TestLedger_Available_FloorsAtZero(t *testing.T) {
	l := &Ledger{}
	b := leave.LeaveBalance{
		TotalEntitled:  testutil.Days("2"),
		CarriedForward: testutil.Days("10"),
		Used:           testutil.Days("2"),
	}

	requireDays(t, "0", l.Available(b, leave.LeaveType{}))
}

func TestLedger_Validate(t *testing.T) {
	l := &Ledger{}
	b := leave.LeaveBalance{TotalEntitled: testutil.Days("10")}

	assert.NoError(t, l.Validate(b, leave.LeaveType{}, testutil.Days("10")))
	assert.ErrorIs(t, l.Validate(b, leave.LeaveType{}, testutil.Days("11")), leave.ErrInsufficientBalance)
	assert.ErrorIs(t, l.Validate(b, leave.LeaveType{}, decimal.Zero), leave.ErrInvalidDays)
}

func TestLedger_EnsureBalance_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12")

	first, created, err := f.ledger.EnsureBalance(ctx, f.employee.ID, f.leaveType, 2025, nil)
	require.NoError(t, err)
	assert.True(t, created)
	requireDays(t, "12", first.TotalEntitled)
	requireDays(t, "12", first.Accrued)

	second, created, err := f.ledger.EnsureBalance(ctx, f.employee.ID, f.leaveType, 2025, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	events, err := f.store.LedgerEvents().ListByBalance(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, leave.LedgerEventInitialize, events[0].Type)
}

func TestLedger_EnsureBalance_ProratesByJoinDate(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12", func(lt *leave.LeaveType) {
		lt.ProrateOnJoin = true
		lt.ProrationBasis = leave.ProrationMonthly
		lt.AccrualFrequency = leave.AccrualYearly
	})

	joined := testutil.Date(2025, time.July, 15)
	b, _, err := f.ledger.EnsureBalance(ctx, f.employee.ID, f.leaveType, 2025, &joined)
	require.NoError(t, err)

	requireDays(t, "6", b.TotalEntitled)
	requireDays(t, "0", b.Accrued)
}

func TestLedger_ReserveAndConsume(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	b := f.balance(t)
	requestID := "0198a1f0-0000-7000-8000-000000000001"

	// Act
	reserved, err := f.ledger.Reserve(ctx, b.ID, requestID, testutil.Days("5"), f.employee.ID)
	require.NoError(t, err)

	// Assert
	requireDays(t, "5", reserved.PendingApproval)
	requireDays(t, "5", f.ledger.Available(reserved, f.leaveType))

	consumed, err := f.ledger.Consume(ctx, b.ID, requestID, testutil.Days("5"), f.approver.ID)
	require.NoError(t, err)
	requireDays(t, "5", consumed.Used)
	requireDays(t, "0", consumed.PendingApproval)
	requireDays(t, "5", f.ledger.Available(consumed, f.leaveType))

	stored := f.reload(t, b.ID)
	requireDays(t, "5", stored.Used)
	requireDays(t, "0", stored.PendingApproval)
}

func TestLedger_Reserve_InsufficientLeavesBalanceUntouched(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	b := f.balance(t)

	_, err := f.ledger.Reserve(ctx, b.ID, "0198a1f0-0000-7000-8000-000000000002", testutil.Days("11"), f.employee.ID)
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	stored := f.reload(t, b.ID)
	requireDays(t, "0", stored.PendingApproval)

	events, err := f.store.LedgerEvents().ListByBalance(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1, "only the initialize event is recorded")
}

func TestLedger_Reserve_SameRequestTwice(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	b := f.balance(t)
	requestID := "0198a1f0-0000-7000-8000-000000000003"

	_, err := f.ledger.Reserve(ctx, b.ID, requestID, testutil.Days("2"), f.employee.ID)
	require.NoError(t, err)

	_, err = f.ledger.Reserve(ctx, b.ID, requestID, testutil.Days("2"), f.employee.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
	requireDays(t, "2", f.reload(t, b.ID).PendingApproval)
}

func TestLedger_Release_ExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	b := f.balance(t)
	requestID := "0198a1f0-0000-7000-8000-000000000004"

	_, err := f.ledger.Reserve(ctx, b.ID, requestID, testutil.Days("4"), f.employee.ID)
	require.NoError(t, err)

	released, err := f.ledger.Release(ctx, b.ID, requestID, testutil.Days("4"), f.approver.ID)
	require.NoError(t, err)
	requireDays(t, "0", released.PendingApproval)

	_, err = f.ledger.Release(ctx, b.ID, requestID, testutil.Days("4"), f.approver.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	_, err = f.ledger.Consume(ctx, b.ID, requestID, testutil.Days("4"), f.approver.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	stored := f.reload(t, b.ID)
	requireDays(t, "0", stored.PendingApproval)
	requireDays(t, "0", stored.Used)
}

func TestLedger_Settle_WithoutReservation(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	b := f.balance(t)

	_, err := f.ledger.Release(ctx, b.ID, "0198a1f0-0000-7000-8000-000000000005", testutil.Days("1"), f.approver.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
}

func TestLedger_Consume_MoreThanPendingIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	b := f.balance(t)
	requestID := "0198a1f0-0000-7000-8000-000000000006"

	_, err := f.ledger.Reserve(ctx, b.ID, requestID, testutil.Days("2"), f.employee.ID)
	require.NoError(t, err)

	_, err = f.ledger.Consume(ctx, b.ID, requestID, testutil.Days("3"), f.approver.ID)
	assert.ErrorIs(t, err, leave.ErrNegativeBalance)

	stored := f.reload(t, b.ID)
	requireDays(t, "2", stored.PendingApproval)
	requireDays(t, "0", stored.Used)

	entries := f.logger.Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, OperationConsume, last.Operation)
	assert.Equal(t, operationStatusError, last.Status)
	assert.ErrorIs(t, last.Error, leave.ErrNegativeBalance)
}

func TestLedger_Lock_BlocksMutations(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	b := f.balance(t)

	locked, err := f.ledger.Lock(ctx, b.ID, f.approver.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)
	require.NotNil(t, locked.LockedAt)

	again, err := f.ledger.Lock(ctx, b.ID, f.approver.ID)
	require.NoError(t, err)
	assert.True(t, again.IsLocked)

	_, err = f.ledger.Reserve(ctx, b.ID, "0198a1f0-0000-7000-8000-000000000007", testutil.Days("1"), f.employee.ID)
	assert.ErrorIs(t, err, leave.ErrBalanceLocked)

	events, err := f.store.LedgerEvents().ListByBalance(ctx, b.ID)
	require.NoError(t, err)
	lockEvents := 0
	for _, e := range events {
		if e.Type == leave.LedgerEventLock {
			lockEvents++
		}
	}
	assert.Equal(t, 1, lockEvents)
}

func TestLedger_Reserve_ConcurrentNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	b := f.balance(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	ids := []string{
		"0198a1f0-0000-7000-8000-000000000011",
		"0198a1f0-0000-7000-8000-000000000012",
		"0198a1f0-0000-7000-8000-000000000013",
		"0198a1f0-0000-7000-8000-000000000014",
		"0198a1f0-0000-7000-8000-000000000015",
		"0198a1f0-0000-7000-8000-000000000016",
		"0198a1f0-0000-7000-8000-000000000017",
		"0198a1f0-0000-7000-8000-000000000018",
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(requestID string) {
			defer wg.Done()
			_, err := f.ledger.Reserve(ctx, b.ID, requestID, testutil.Days("3"), f.employee.ID)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(ids[i])
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	stored := f.reload(t, b.ID)
	requireDays(t, "9", stored.PendingApproval)
	assert.False(t, stored.Net().IsNegative())
}
