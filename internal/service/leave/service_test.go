package leave

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/pkg/testutil"
)

func TestLeaveService_CreateLeaveType_InitializesBalances(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12")
	newcomer := testutil.CreateUser(t, f.store, f.org.ID, "newcomer@acme.test", testutil.WithJoinDate(testutil.Date(2025, time.October, 1)))

	// Act
	created, err := f.service.CreateLeaveType(ctx, leave.CreateLeaveTypeRequest{
		OrganizationID:   f.org.ID,
		Name:             "Sick Leave",
		Code:             "SL",
		MaxDaysPerYear:   testutil.Days("12"),
		AccrualFrequency: string(leave.AccrualOneTime),
		ProrateOnJoin:    true,
		ProrationBasis:   string(leave.ProrationMonthly),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "SL", created.Code)
	assert.True(t, created.RequiresApproval)
	assert.True(t, created.IsPaid)

	veteran, err := f.store.LeaveBalances().GetByKey(ctx, leave.BalanceKey{UserID: f.employee.ID, LeaveTypeID: created.ID, Year: 2025})
	require.NoError(t, err)
	requireDays(t, "12", veteran.TotalEntitled)

	// October to December is 3 of 12 months.
	late, err := f.store.LeaveBalances().GetByKey(ctx, leave.BalanceKey{UserID: newcomer.ID, LeaveTypeID: created.ID, Year: 2025})
	require.NoError(t, err)
	requireDays(t, "3", late.TotalEntitled)
}

func TestLeaveService_CreateLeaveType_Errors(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12")

	tests := []struct {
		name    string
		req     leave.CreateLeaveTypeRequest
		wantErr error
	}{
		{
			name: "duplicate code",
			req: leave.CreateLeaveTypeRequest{
				OrganizationID: f.org.ID, Name: "Annual again", Code: f.leaveType.Code,
				MaxDaysPerYear: testutil.Days("12"),
			},
			wantErr: leave.ErrLeaveTypeCodeExists,
		},
		{
			name: "carry forward cap without carry forward",
			req: leave.CreateLeaveTypeRequest{
				OrganizationID: f.org.ID, Name: "Study", Code: "ST",
				MaxDaysPerYear: testutil.Days("5"), CarryForwardMaxDays: testutil.Days("2"),
			},
			wantErr: leave.ErrInvalidLeaveTypeRule,
		},
		{
			name: "encashment rate without encashment",
			req: leave.CreateLeaveTypeRequest{
				OrganizationID: f.org.ID, Name: "Bonus", Code: "BN",
				MaxDaysPerYear: testutil.Days("5"), EncashmentRate: testutil.Days("1.5"),
			},
			wantErr: leave.ErrInvalidLeaveTypeRule,
		},
		{
			name: "accrual above yearly maximum",
			req: leave.CreateLeaveTypeRequest{
				OrganizationID: f.org.ID, Name: "Monthly", Code: "MO",
				MaxDaysPerYear: testutil.Days("5"), AccrualFrequency: string(leave.AccrualMonthly),
				AccrualDays: testutil.Days("6"),
			},
			wantErr: leave.ErrInvalidLeaveTypeRule,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateLeaveType(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLeaveService_UpdateLeaveType(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12")

	name := "Annual Leave"
	allowed := true
	maxCarry := testutil.Days("4")
	resp, err := f.service.UpdateLeaveType(ctx, leave.UpdateLeaveTypeRequest{
		ID:                  f.leaveType.ID,
		OrganizationID:      f.org.ID,
		Name:                &name,
		CarryForwardAllowed: &allowed,
		CarryForwardMaxDays: &maxCarry,
	})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Name)
	assert.True(t, resp.CarryForwardAllowed)
	requireDays(t, "4", resp.CarryForwardMaxDays)
	requireDays(t, "12", resp.MaxDaysPerYear)

	other := testutil.CreateOrganization(t, f.store, "Globex")
	_, err = f.service.UpdateLeaveType(ctx, leave.UpdateLeaveTypeRequest{ID: f.leaveType.ID, OrganizationID: other.ID, Name: &name})
	assert.ErrorIs(t, err, leave.ErrLeaveTypeNotFound)
}

func TestLeaveService_GetBalances(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	f.createRequest(t, "2025-03-10", "2025-03-11")

	balances, err := f.service.GetBalances(ctx, f.org.ID, f.employee.ID, 2025)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, f.leaveType.Code, balances[0].LeaveTypeCode)
	requireDays(t, "2", balances[0].PendingApproval)
	requireDays(t, "8", balances[0].Available)

	events, err := f.service.ListBalanceEvents(ctx, f.org.ID, balances[0].ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	other := testutil.CreateOrganization(t, f.store, "Globex")
	_, err = f.service.ListBalanceEvents(ctx, other.ID, balances[0].ID)
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)
}

func TestLeaveService_InitializeBalances(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "12")
	testutil.CreateLeaveType(t, f.store, f.org.ID, "SL", "6")
	testutil.CreateLeaveType(t, f.store, f.org.ID, "OLD", "6", testutil.Inactive())

	created, err := f.service.InitializeBalances(ctx, f.employee)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = f.service.InitializeBalances(ctx, f.employee)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestLeaveService_OffboardUser(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	pending := f.createRequest(t, "2025-03-10", "2025-03-12")
	approved := f.createRequest(t, "2025-04-01", "2025-04-01")
	_, err := f.service.ApproveLeaveRequest(ctx, f.decide(approved.ID))
	require.NoError(t, err)

	// Act
	err = f.service.OffboardUser(ctx, f.employee.ID, f.approver.ID)

	// Assert
	require.NoError(t, err)

	cancelled, err := f.service.GetLeaveRequest(ctx, f.org.ID, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, string(leave.LeaveRequestStatusCancelled), cancelled.Status)

	kept, err := f.service.GetLeaveRequest(ctx, f.org.ID, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, string(leave.LeaveRequestStatusApproved), kept.Status)

	b := f.currentBalance(t)
	assert.True(t, b.IsLocked)
	requireDays(t, "0", b.PendingApproval)
	requireDays(t, "1", b.Used)

	_, err = f.service.CreateLeaveRequest(ctx, leave.CreateLeaveRequestRequest{
		UserID: f.employee.ID, LeaveTypeID: f.leaveType.ID,
		FromDate: "2025-05-01", ToDate: "2025-05-01", Reason: "one more",
	})
	assert.ErrorIs(t, err, leave.ErrBalanceLocked)
}

func TestLeaveService_Holidays(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")

	created, err := f.service.CreateHoliday(ctx, leave.CreateHolidayRequest{
		OrganizationID: f.org.ID, Name: "Independence Day", Date: "2025-08-17",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-08-17", created.Date)

	_, err = f.service.CreateHoliday(ctx, leave.CreateHolidayRequest{
		OrganizationID: f.org.ID, Name: "Duplicate", Date: "2025-08-17",
	})
	assert.ErrorIs(t, err, leave.ErrHolidayExists)

	_, err = f.service.CreateHoliday(ctx, leave.CreateHolidayRequest{
		OrganizationID: f.org.ID, Name: "New Year", Date: "2026-01-01", IsOptional: true,
	})
	require.NoError(t, err)

	year := 2025
	holidays, err := f.service.ListHolidays(ctx, f.org.ID, &year)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Independence Day", holidays[0].Name)

	all, err := f.service.ListHolidays(ctx, f.org.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLeaveService_ListLeaveTypes(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	testutil.CreateLeaveType(t, f.store, f.org.ID, "OLD", "6", testutil.Inactive())

	active, err := f.service.ListLeaveTypes(ctx, f.org.ID, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := f.service.ListLeaveTypes(ctx, f.org.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := f.service.GetLeaveType(ctx, f.org.ID, f.leaveType.ID)
	require.NoError(t, err)
	assert.True(t, got.MaxDaysPerYear.Equal(decimal.NewFromInt(10)))
}
