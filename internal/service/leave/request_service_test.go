package leave

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/pkg/testutil"
	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

func (f *ledgerFixture) createRequest(t *testing.T, from, to string) leave.LeaveRequestResponse {
	t.Helper()
	resp, err := f.service.CreateLeaveRequest(context.Background(), leave.CreateLeaveRequestRequest{
		UserID:      f.employee.ID,
		LeaveTypeID: f.leaveType.ID,
		FromDate:    from,
		ToDate:      to,
		Reason:      "family trip",
	})
	require.NoError(t, err)
	return resp
}

func (f *ledgerFixture) currentBalance(t *testing.T) leave.LeaveBalance {
	t.Helper()
	b, err := f.store.LeaveBalances().GetByKey(context.Background(), leave.BalanceKey{
		UserID:      f.employee.ID,
		LeaveTypeID: f.leaveType.ID,
		Year:        2025,
	})
	require.NoError(t, err)
	return b
}

func (f *ledgerFixture) decide(id string) leave.DecideLeaveRequestRequest {
	return leave.DecideLeaveRequestRequest{
		RequestID:      id,
		ApproverID:     f.approver.ID,
		OrganizationID: f.org.ID,
	}
}

func TestLeaveService_CreateLeaveRequest_ReservesDays(t *testing.T) {
	f := newLedgerFixture(t, "10")

	// Act
	resp := f.createRequest(t, "2025-03-10", "2025-03-14")

	// Assert
	assert.Equal(t, string(leave.LeaveRequestStatusPending), resp.Status)
	assert.Equal(t, 5, resp.DurationDays)
	require.NotNil(t, resp.LeaveTypeName)
	assert.Equal(t, f.leaveType.Name, *resp.LeaveTypeName)

	b := f.currentBalance(t)
	assert.Equal(t, b.ID, resp.BalanceID)
	requireDays(t, "5", b.PendingApproval)
	requireDays(t, "0", b.Used)
	requireDays(t, "5", f.ledger.Available(b, f.leaveType))
}

func TestLeaveService_ApproveLeaveRequest_MovesPendingToUsed(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	created := f.createRequest(t, "2025-03-10", "2025-03-14")

	comment := "enjoy"
	req := f.decide(created.ID)
	req.Comments = &comment

	// Act
	resp, err := f.service.ApproveLeaveRequest(ctx, req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(leave.LeaveRequestStatusApproved), resp.Status)
	require.NotNil(t, resp.ApproverID)
	assert.Equal(t, f.approver.ID, *resp.ApproverID)
	require.NotNil(t, resp.ApprovedAt)
	assert.Equal(t, fixedNow(), resp.ApprovedAt.UTC())

	b := f.currentBalance(t)
	requireDays(t, "0", b.PendingApproval)
	requireDays(t, "5", b.Used)

	events, err := f.store.LedgerEvents().ListByBalance(ctx, b.ID)
	require.NoError(t, err)
	types := make([]leave.LedgerEventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []leave.LedgerEventType{leave.LedgerEventInitialize, leave.LedgerEventReserve, leave.LedgerEventConsume}, types)
}

func TestLeaveService_CreateLeaveRequest_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")

	// Act
	_, err := f.service.CreateLeaveRequest(ctx, leave.CreateLeaveRequestRequest{
		UserID:      f.employee.ID,
		LeaveTypeID: f.leaveType.ID,
		FromDate:    "2025-03-01",
		ToDate:      "2025-03-11",
		Reason:      "long trip",
	})

	// Assert
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	list, err := f.service.ListLeaveRequests(ctx, f.org.ID, leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestLeaveService_CreateLeaveRequest_Validation(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	inactive := testutil.CreateLeaveType(t, f.store, f.org.ID, "OLD", "10", testutil.Inactive())

	tests := []struct {
		name    string
		req     leave.CreateLeaveRequestRequest
		wantErr error
	}{
		{
			name: "to before from",
			req: leave.CreateLeaveRequestRequest{
				UserID: f.employee.ID, LeaveTypeID: f.leaveType.ID,
				FromDate: "2025-03-14", ToDate: "2025-03-10", Reason: "trip",
			},
			wantErr: leave.ErrInvalidDateRange,
		},
		{
			name: "inactive leave type",
			req: leave.CreateLeaveRequestRequest{
				UserID: f.employee.ID, LeaveTypeID: inactive.ID,
				FromDate: "2025-03-10", ToDate: "2025-03-10", Reason: "trip",
			},
			wantErr: leave.ErrLeaveTypeInactive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateLeaveRequest(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("malformed date", func(t *testing.T) {
		_, err := f.service.CreateLeaveRequest(ctx, leave.CreateLeaveRequestRequest{
			UserID: f.employee.ID, LeaveTypeID: f.leaveType.ID,
			FromDate: "10/03/2025", ToDate: "2025-03-10", Reason: "trip",
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "from_date", verrs[0].Field)
	})
}

func TestLeaveService_RejectLeaveRequest_ReleasesPending(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	created := f.createRequest(t, "2025-03-10", "2025-03-12")

	resp, err := f.service.RejectLeaveRequest(ctx, f.decide(created.ID))
	require.NoError(t, err)
	assert.Equal(t, string(leave.LeaveRequestStatusRejected), resp.Status)
	assert.Nil(t, resp.ApprovedAt)

	b := f.currentBalance(t)
	requireDays(t, "0", b.PendingApproval)
	requireDays(t, "0", b.Used)
	requireDays(t, "10", f.ledger.Available(b, f.leaveType))
}

func TestLeaveService_CancelLeaveRequest(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	created := f.createRequest(t, "2025-03-10", "2025-03-12")

	t.Run("not the owner", func(t *testing.T) {
		_, err := f.service.CancelLeaveRequest(ctx, leave.CancelLeaveRequestRequest{RequestID: created.ID, UserID: f.approver.ID})
		assert.ErrorIs(t, err, leave.ErrNotRequestOwner)
		requireDays(t, "3", f.currentBalance(t).PendingApproval)
	})

	t.Run("owner", func(t *testing.T) {
		resp, err := f.service.CancelLeaveRequest(ctx, leave.CancelLeaveRequestRequest{RequestID: created.ID, UserID: f.employee.ID})
		require.NoError(t, err)
		assert.Equal(t, string(leave.LeaveRequestStatusCancelled), resp.Status)
		assert.Nil(t, resp.ApproverID)
		requireDays(t, "0", f.currentBalance(t).PendingApproval)
	})
}

func TestLeaveService_DecisionIsFinal(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	created := f.createRequest(t, "2025-03-10", "2025-03-14")

	_, err := f.service.ApproveLeaveRequest(ctx, f.decide(created.ID))
	require.NoError(t, err)

	_, err = f.service.ApproveLeaveRequest(ctx, f.decide(created.ID))
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	_, err = f.service.RejectLeaveRequest(ctx, f.decide(created.ID))
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	_, err = f.service.CancelLeaveRequest(ctx, leave.CancelLeaveRequestRequest{RequestID: created.ID, UserID: f.employee.ID})
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	b := f.currentBalance(t)
	requireDays(t, "5", b.Used)
	requireDays(t, "0", b.PendingApproval)
}

func TestLeaveService_ApproveLeaveRequest_OtherOrganization(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "10")
	created := f.createRequest(t, "2025-03-10", "2025-03-14")
	other := testutil.CreateOrganization(t, f.store, "Globex")

	req := f.decide(created.ID)
	req.OrganizationID = other.ID
	_, err := f.service.ApproveLeaveRequest(ctx, req)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	_, err = f.service.GetLeaveRequest(ctx, other.ID, created.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	requireDays(t, "5", f.currentBalance(t).PendingApproval)
}

func TestLeaveService_CreateLeaveRequest_AutoApproved(t *testing.T) {
	f := newLedgerFixture(t, "10", testutil.WithoutApproval())

	resp := f.createRequest(t, "2025-03-10", "2025-03-11")

	assert.Equal(t, string(leave.LeaveRequestStatusApproved), resp.Status)
	require.NotNil(t, resp.ApprovedAt)
	b := f.currentBalance(t)
	requireDays(t, "2", b.Used)
	requireDays(t, "0", b.PendingApproval)
}

func TestLeaveService_ListLeaveRequests_Filters(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "20")
	first := f.createRequest(t, "2025-03-10", "2025-03-10")
	f.createRequest(t, "2025-04-01", "2025-04-02")
	f.createRequest(t, "2025-05-05", "2025-05-05")
	_, err := f.service.ApproveLeaveRequest(ctx, f.decide(first.ID))
	require.NoError(t, err)

	pending := string(leave.LeaveRequestStatusPending)
	list, err := f.service.ListLeaveRequests(ctx, f.org.ID, leave.LeaveRequestFilter{Status: &pending, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.Len(t, list.Requests, 1)
}
