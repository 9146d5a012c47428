package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/testutil"
)

func strPtr(s string) *string { return &s }

func (f *attendanceFixture) requestCorrection(t *testing.T, recordID string, login, logout *string) attendance.CorrectionResponse {
	t.Helper()
	resp, err := f.service.RequestCorrection(context.Background(), attendance.RequestCorrectionRequest{
		UserID:              f.employee.ID,
		AttendanceID:        recordID,
		CorrectedLoginTime:  login,
		CorrectedLogoutTime: logout,
		Reason:              "badge reader was down",
	})
	require.NoError(t, err)
	return resp
}

func (f *attendanceFixture) decide(approver user.User, correctionID string, decision attendance.CorrectionStatus) (attendance.CorrectionResponse, error) {
	return f.service.DecideCorrection(context.Background(), attendance.DecideCorrectionRequest{
		CorrectionID:   correctionID,
		ApproverID:     approver.ID,
		OrganizationID: approver.OrganizationID,
		Decision:       decision,
		Comments:       strPtr("ok"),
	})
}

func TestRequestCorrection_KeepsUnchangedTime(t *testing.T) {
	f := newAttendanceFixture(t)
	record := f.checkIn(t, "09:30:00")

	resp := f.requestCorrection(t, record.ID, nil, strPtr("17:00:00"))

	assert.Equal(t, "pending", resp.Status)
	require.NotNil(t, resp.CorrectedLoginTime)
	assert.Equal(t, "09:30:00", *resp.CorrectedLoginTime)
	require.NotNil(t, resp.CorrectedLogoutTime)
	assert.Equal(t, "17:00:00", *resp.CorrectedLogoutTime)
}

func TestRequestCorrection_Errors(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	record := f.checkIn(t, "09:00:00")

	tests := []struct {
		name    string
		req     attendance.RequestCorrectionRequest
		wantErr error
		field   string
	}{
		{
			name:  "no times",
			req:   attendance.RequestCorrectionRequest{UserID: f.employee.ID, AttendanceID: record.ID, Reason: "x"},
			field: "corrected_login_time",
		},
		{
			name:  "no reason",
			req:   attendance.RequestCorrectionRequest{UserID: f.employee.ID, AttendanceID: record.ID, CorrectedLoginTime: strPtr("08:00:00")},
			field: "reason",
		},
		{
			name:    "logout before login",
			req:     attendance.RequestCorrectionRequest{UserID: f.employee.ID, AttendanceID: record.ID, CorrectedLogoutTime: strPtr("08:00:00"), Reason: "x"},
			wantErr: attendance.ErrLogoutBeforeLogin,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RequestCorrection(ctx, tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.field != "" {
				assert.Contains(t, err.Error(), tt.field)
			}
		})
	}

	t.Run("record of another user", func(t *testing.T) {
		colleague := testutil.CreateUser(t, f.store, f.org.ID, "colleague@acme.test")
		_, err := f.service.RequestCorrection(ctx, attendance.RequestCorrectionRequest{
			UserID: colleague.ID, AttendanceID: record.ID, CorrectedLoginTime: strPtr("08:00:00"), Reason: "x",
		})
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	})
}

func TestDecideCorrection_ApproveRecomputesRecord(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	hr := testutil.CreateUser(t, f.store, f.org.ID, "hr@acme.test", testutil.WithRole(user.RoleHR))
	f.checkIn(t, "09:30:00")
	record, err := f.checkOut("16:00:00")
	require.NoError(t, err)
	require.Equal(t, "absent", record.Status)

	correction := f.requestCorrection(t, record.ID, strPtr("08:45:00"), strPtr("17:15:00"))

	resp, err := f.decide(hr, correction.ID, attendance.CorrectionApproved)
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	require.NotNil(t, resp.ApproverID)
	assert.Equal(t, hr.ID, *resp.ApproverID)
	assert.Equal(t, "ok", resp.ApprovalComments)
	assert.NotNil(t, resp.DecidedAt)

	require.NotNil(t, resp.Attendance)
	assert.Equal(t, "present", resp.Attendance.Status)
	require.NotNil(t, resp.Attendance.WorkedHours)
	assert.Equal(t, "8.50", resp.Attendance.WorkedHours.StringFixed(2))

	stored, err := f.store.Attendance().GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "08:45:00", stored.LoginTime.String())
	assert.Equal(t, "17:15:00", stored.LogoutTime.String())
	assert.True(t, stored.IsVerified)
	assert.Equal(t, attendance.StatusPresent, stored.Status)
}

func TestDecideCorrection_RejectLeavesRecord(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	hr := testutil.CreateUser(t, f.store, f.org.ID, "hr@acme.test", testutil.WithRole(user.RoleHR))
	record := f.checkIn(t, "09:30:00")
	correction := f.requestCorrection(t, record.ID, strPtr("08:45:00"), nil)

	resp, err := f.decide(hr, correction.ID, attendance.CorrectionRejected)
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)
	assert.Nil(t, resp.Attendance)

	stored, err := f.store.Attendance().GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", stored.LoginTime.String())
	assert.Equal(t, attendance.StatusLateLogin, stored.Status)
	assert.False(t, stored.IsVerified)
}

func TestDecideCorrection_OnlyPending(t *testing.T) {
	f := newAttendanceFixture(t)
	hr := testutil.CreateUser(t, f.store, f.org.ID, "hr@acme.test", testutil.WithRole(user.RoleHR))
	record := f.checkIn(t, "09:30:00")
	correction := f.requestCorrection(t, record.ID, strPtr("08:45:00"), nil)

	_, err := f.decide(hr, correction.ID, attendance.CorrectionApproved)
	require.NoError(t, err)

	_, err = f.decide(hr, correction.ID, attendance.CorrectionRejected)
	assert.ErrorIs(t, err, attendance.ErrCorrectionProcessed)

	_, err = f.service.CancelCorrection(context.Background(), attendance.CancelCorrectionRequest{
		CorrectionID: correction.ID, UserID: f.employee.ID,
	})
	assert.ErrorIs(t, err, attendance.ErrCorrectionProcessed)
}

func TestDecideCorrection_OtherOrganization(t *testing.T) {
	f := newAttendanceFixture(t)
	record := f.checkIn(t, "09:30:00")
	correction := f.requestCorrection(t, record.ID, strPtr("08:45:00"), nil)

	other := testutil.CreateOrganization(t, f.store, "Globex")
	outsider := testutil.CreateUser(t, f.store, other.ID, "hr@globex.test", testutil.WithRole(user.RoleHR))

	_, err := f.decide(outsider, correction.ID, attendance.CorrectionApproved)
	assert.ErrorIs(t, err, attendance.ErrCorrectionNotFound)
}

func TestDecideCorrection_InvalidDecision(t *testing.T) {
	f := newAttendanceFixture(t)
	hr := testutil.CreateUser(t, f.store, f.org.ID, "hr@acme.test", testutil.WithRole(user.RoleHR))
	record := f.checkIn(t, "09:30:00")
	correction := f.requestCorrection(t, record.ID, strPtr("08:45:00"), nil)

	_, err := f.decide(hr, correction.ID, attendance.CorrectionCancelled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

func TestCancelCorrection(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	record := f.checkIn(t, "09:30:00")
	correction := f.requestCorrection(t, record.ID, strPtr("08:45:00"), nil)

	colleague := testutil.CreateUser(t, f.store, f.org.ID, "colleague@acme.test")
	_, err := f.service.CancelCorrection(ctx, attendance.CancelCorrectionRequest{CorrectionID: correction.ID, UserID: colleague.ID})
	assert.ErrorIs(t, err, attendance.ErrNotCorrectionOwner)

	resp, err := f.service.CancelCorrection(ctx, attendance.CancelCorrectionRequest{CorrectionID: correction.ID, UserID: f.employee.ID})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)

	_, err = f.service.CancelCorrection(ctx, attendance.CancelCorrectionRequest{CorrectionID: correction.ID, UserID: f.employee.ID})
	assert.ErrorIs(t, err, attendance.ErrCorrectionProcessed)
}

func TestListCorrections(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	hr := testutil.CreateUser(t, f.store, f.org.ID, "hr@acme.test", testutil.WithRole(user.RoleHR))
	record := f.checkIn(t, "09:30:00")
	first := f.requestCorrection(t, record.ID, strPtr("08:45:00"), nil)
	f.requestCorrection(t, record.ID, strPtr("08:50:00"), nil)
	_, err := f.decide(hr, first.ID, attendance.CorrectionApproved)
	require.NoError(t, err)

	all, err := f.service.ListCorrections(ctx, f.org.ID, attendance.ListCorrectionsRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalCount)
	assert.Equal(t, 20, all.Limit)

	pending, err := f.service.ListCorrections(ctx, f.org.ID, attendance.ListCorrectionsRequest{Status: strPtr("pending")})
	require.NoError(t, err)
	require.Len(t, pending.Corrections, 1)
	assert.Equal(t, "08:50:00", *pending.Corrections[0].CorrectedLoginTime)

	mine, err := f.service.GetMyCorrections(ctx, hr.ID, attendance.ListCorrectionsRequest{})
	require.NoError(t, err)
	assert.Empty(t, mine.Corrections)

	_, err = f.service.ListCorrections(ctx, f.org.ID, attendance.ListCorrectionsRequest{Status: strPtr("done")})
	assert.Error(t, err)

	other := testutil.CreateOrganization(t, f.store, "Globex")
	empty, err := f.service.ListCorrections(ctx, other.ID, attendance.ListCorrectionsRequest{})
	require.NoError(t, err)
	assert.Empty(t, empty.Corrections)
}
