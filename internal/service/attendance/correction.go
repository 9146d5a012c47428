package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
)

// RequestCorrection implements attendance.AttendanceService. A time left out of the request
// keeps the record's current value.
func (a *AttendanceServiceImpl) RequestCorrection(ctx context.Context, req attendance.RequestCorrectionRequest) (attendance.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CorrectionResponse{}, err
	}

	member, err := a.activeUser(ctx, req.UserID)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	record, err := a.records.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}
	if record.UserID != member.ID {
		return attendance.CorrectionResponse{}, attendance.ErrAttendanceNotFound
	}

	login, err := correctedClock(req.CorrectedLoginTime, record.LoginTime)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}
	logout, err := correctedClock(req.CorrectedLogoutTime, record.LogoutTime)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}
	if login != nil && logout != nil && logout.Before(*login) {
		return attendance.CorrectionResponse{}, attendance.ErrLogoutBeforeLogin
	}

	created, err := a.corrections.Create(ctx, attendance.Correction{
		AttendanceID:        record.ID,
		RequestedBy:         member.ID,
		CorrectedLoginTime:  login,
		CorrectedLogoutTime: logout,
		Reason:              req.Reason,
		Status:              attendance.CorrectionPending,
	})
	if err != nil {
		return attendance.CorrectionResponse{}, fmt.Errorf("failed to create attendance correction: %w", err)
	}

	slog.Info("Attendance correction requested", "correction_id", created.ID, "attendance_id", record.ID, "user_id", member.ID)
	return attendance.NewCorrectionResponse(created), nil
}

// DecideCorrection implements attendance.AttendanceService. Approval rewrites the record's
// times, then recomputes worked hours and status against the check-in office.
func (a *AttendanceServiceImpl) DecideCorrection(ctx context.Context, req attendance.DecideCorrectionRequest) (attendance.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CorrectionResponse{}, err
	}

	var (
		correction attendance.Correction
		corrected  *attendance.Record
	)
	err := a.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		correction, err = a.corrections.LockForUpdate(ctx, req.CorrectionID)
		if err != nil {
			return err
		}
		requester, err := a.users.GetByID(ctx, correction.RequestedBy)
		if err != nil {
			return fmt.Errorf("failed to load requester: %w", err)
		}
		if requester.OrganizationID != req.OrganizationID {
			return attendance.ErrCorrectionNotFound
		}
		if correction.Status != attendance.CorrectionPending {
			return attendance.ErrCorrectionProcessed
		}

		if req.Decision == attendance.CorrectionApproved {
			record, err := a.applyCorrection(ctx, correction)
			if err != nil {
				return err
			}
			corrected = &record
		}

		decidedAt := a.now().UTC()
		correction.Status = req.Decision
		correction.ApproverID = &req.ApproverID
		correction.DecidedAt = &decidedAt
		if req.Comments != nil {
			correction.ApprovalComments = *req.Comments
		}
		if err := a.corrections.UpdateDecision(ctx, correction); err != nil {
			return fmt.Errorf("failed to save correction decision: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	slog.Info("Attendance correction decided",
		"correction_id", correction.ID,
		"status", correction.Status,
		"approver_id", req.ApproverID,
	)

	resp := attendance.NewCorrectionResponse(correction)
	if corrected != nil {
		record := attendance.NewAttendanceResponse(*corrected)
		resp.Attendance = &record
	}
	return resp, nil
}

func (a *AttendanceServiceImpl) applyCorrection(ctx context.Context, correction attendance.Correction) (attendance.Record, error) {
	record, err := a.records.GetByID(ctx, correction.AttendanceID)
	if err != nil {
		return attendance.Record{}, err
	}
	office, err := a.offices.GetByID(ctx, record.OfficeID)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to load check-in office: %w", err)
	}

	if correction.CorrectedLoginTime != nil {
		record.LoginTime = correction.CorrectedLoginTime
	}
	if correction.CorrectedLogoutTime != nil {
		record.LogoutTime = correction.CorrectedLogoutTime
	}

	if record.LoginTime != nil {
		record.Status = LoginStatus(*record.LoginTime, office.LoginTime)
	}
	if record.LoginTime != nil && record.LogoutTime != nil {
		worked, err := WorkedHours(*record.LoginTime, *record.LogoutTime)
		if err != nil {
			return attendance.Record{}, err
		}
		record.WorkedHours = &worked
		record.Status = LogoutStatus(*record.LogoutTime, office.LogoutTime, record.Status)
	}
	record.IsVerified = true

	if err := a.records.Update(ctx, record); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to save corrected attendance: %w", err)
	}
	return record, nil
}

// CancelCorrection implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CancelCorrection(ctx context.Context, req attendance.CancelCorrectionRequest) (attendance.CorrectionResponse, error) {
	var correction attendance.Correction
	err := a.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		correction, err = a.corrections.LockForUpdate(ctx, req.CorrectionID)
		if err != nil {
			return err
		}
		if correction.RequestedBy != req.UserID {
			return attendance.ErrNotCorrectionOwner
		}
		if correction.Status != attendance.CorrectionPending {
			return attendance.ErrCorrectionProcessed
		}

		decidedAt := a.now().UTC()
		correction.Status = attendance.CorrectionCancelled
		correction.DecidedAt = &decidedAt
		return a.corrections.UpdateDecision(ctx, correction)
	})
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}
	return attendance.NewCorrectionResponse(correction), nil
}

// GetMyCorrections implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyCorrections(ctx context.Context, userID string, req attendance.ListCorrectionsRequest) (attendance.ListCorrectionsResponse, error) {
	member, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return attendance.ListCorrectionsResponse{}, err
	}
	req.RequestedBy = &member.ID
	return a.ListCorrections(ctx, member.OrganizationID, req)
}

// ListCorrections implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListCorrections(ctx context.Context, organizationID string, req attendance.ListCorrectionsRequest) (attendance.ListCorrectionsResponse, error) {
	filter, err := req.ToFilter()
	if err != nil {
		return attendance.ListCorrectionsResponse{}, err
	}

	corrections, total, err := a.corrections.List(ctx, organizationID, filter)
	if err != nil {
		return attendance.ListCorrectionsResponse{}, fmt.Errorf("failed to list attendance corrections: %w", err)
	}

	resp := attendance.ListCorrectionsResponse{
		Corrections: make([]attendance.CorrectionResponse, 0, len(corrections)),
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	for _, c := range corrections {
		resp.Corrections = append(resp.Corrections, attendance.NewCorrectionResponse(c))
	}
	return resp, nil
}

func correctedClock(value *string, current *organization.Clock) (*organization.Clock, error) {
	if value == nil {
		return current, nil
	}
	c, err := organization.ParseClock(*value)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
