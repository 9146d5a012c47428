package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

// UserDirectory is the subset of the user store attendance reads.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// OfficeDirectory is the subset of the office store attendance reads.
type OfficeDirectory interface {
	GetByID(ctx context.Context, id string) (organization.OfficeLocation, error)
}

type AttendanceServiceImpl struct {
	tx          database.Transactor
	records     attendance.AttendanceRepository
	corrections attendance.CorrectionRepository
	offices     OfficeDirectory
	users       UserDirectory
	now         func() time.Time
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

func NewAttendanceService(
	tx database.Transactor,
	records attendance.AttendanceRepository,
	corrections attendance.CorrectionRepository,
	offices OfficeDirectory,
	users UserDirectory,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		tx:          tx,
		records:     records,
		corrections: corrections,
		offices:     offices,
		users:       users,
		now:         time.Now,
	}
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	member, err := a.activeUser(ctx, req.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	office, err := a.offices.GetByID(ctx, req.OfficeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if office.OrganizationID != member.OrganizationID {
		return attendance.AttendanceResponse{}, organization.ErrOfficeNotFound
	}
	if !office.IsActive {
		return attendance.AttendanceResponse{}, organization.ErrOfficeInactive
	}

	nowLocal := a.now().In(a.homeLocation(ctx, member, office))
	loginTime, err := clockOrNow(req.Time, nowLocal)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	fence := MeasureGeofence(office, req.Latitude, req.Longitude)

	var record attendance.Record
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err = a.records.GetOrCreate(ctx, member.ID, office.ID, leave.DateOf(nowLocal))
		if err != nil {
			return fmt.Errorf("failed to load attendance record: %w", err)
		}
		if record.LoginTime != nil {
			return attendance.ErrAlreadyCheckedIn
		}

		meters := fence.Meters()
		record.OfficeID = office.ID
		record.LoginTime = &loginTime
		record.LoginLatitude = &req.Latitude
		record.LoginLongitude = &req.Longitude
		record.LoginDistance = &meters
		record.IsWithinGeofence = fence.Within
		record.Status = LoginStatus(loginTime, office.LoginTime)

		if err := a.records.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to save check-in: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Checked in",
		"user_id", member.ID,
		"office_id", office.ID,
		"status", record.Status,
		"distance_meters", math.Round(fence.DistanceMeters),
		"within_geofence", fence.Within,
	)

	resp := attendance.NewAttendanceResponse(record)
	resp.Distance = &fence.DistanceMeters
	return resp, nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	member, err := a.activeUser(ctx, req.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var (
		record attendance.Record
		fence  Geofence
	)
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		var nowLocal time.Time
		record, nowLocal, err = a.todaysRecord(ctx, member)
		if err != nil {
			return err
		}
		if record.LoginTime == nil {
			return attendance.ErrNotCheckedIn
		}
		if record.LogoutTime != nil {
			return attendance.ErrAlreadyCheckedOut
		}
		if record.OfficeID == "" {
			return attendance.ErrNoOfficeForCheckOut
		}

		office, err := a.offices.GetByID(ctx, record.OfficeID)
		if err != nil {
			return fmt.Errorf("failed to load check-in office: %w", err)
		}

		logoutTime, err := clockOrNow(req.Time, nowLocal)
		if err != nil {
			return err
		}
		worked, err := WorkedHours(*record.LoginTime, logoutTime)
		if err != nil {
			return err
		}

		fence = MeasureGeofence(office, req.Latitude, req.Longitude)
		meters := fence.Meters()
		record.LogoutTime = &logoutTime
		record.LogoutLatitude = &req.Latitude
		record.LogoutLongitude = &req.Longitude
		record.LogoutDistance = &meters
		record.WorkedHours = &worked
		record.Status = LogoutStatus(logoutTime, office.LogoutTime, record.Status)

		if err := a.records.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to save check-out: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Checked out",
		"user_id", member.ID,
		"status", record.Status,
		"worked_hours", record.WorkedHours.String(),
	)

	resp := attendance.NewAttendanceResponse(record)
	resp.Distance = &fence.DistanceMeters
	return resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, userID string, req attendance.ListAttendanceRequest) (attendance.ListAttendanceResponse, error) {
	member, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	req.UserID = &member.ID
	return a.ListAttendance(ctx, member.OrganizationID, req)
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, organizationID string, req attendance.ListAttendanceRequest) (attendance.ListAttendanceResponse, error) {
	filter, err := req.ToFilter()
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.records.List(ctx, organizationID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	resp := attendance.ListAttendanceResponse{
		Records:    make([]attendance.AttendanceResponse, 0, len(records)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, attendance.NewAttendanceResponse(r))
	}
	return resp, nil
}

func (a *AttendanceServiceImpl) activeUser(ctx context.Context, userID string) (user.User, error) {
	member, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, attendance.ErrUnauthorized
		}
		return user.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	if !member.IsActive {
		return user.User{}, user.ErrUserInactive
	}
	return member, nil
}

// todaysRecord finds the record CheckOut closes and the local time it is closed at. An open
// record counts as today's when its date matches the clock of the zone CheckIn dated it in.
func (a *AttendanceServiceImpl) todaysRecord(ctx context.Context, member user.User) (attendance.Record, time.Time, error) {
	open, err := a.records.GetOpenByUser(ctx, member.ID)
	switch {
	case err == nil && open.OfficeID != "":
		office, err := a.offices.GetByID(ctx, open.OfficeID)
		if err != nil {
			return attendance.Record{}, time.Time{}, fmt.Errorf("failed to load check-in office: %w", err)
		}
		nowLocal := a.now().In(a.homeLocation(ctx, member, office))
		if leave.DateOf(nowLocal).Equal(open.AttendanceDate) {
			return open, nowLocal, nil
		}
	case err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.Record{}, time.Time{}, fmt.Errorf("failed to load open attendance record: %w", err)
	}

	nowLocal := a.now().In(a.homeLocation(ctx, member, organization.OfficeLocation{}))
	record, err := a.records.GetByUserAndDate(ctx, member.ID, leave.DateOf(nowLocal))
	if err != nil {
		return attendance.Record{}, time.Time{}, err
	}
	return record, nowLocal, nil
}

// homeLocation is the timezone that decides the attendance day: the user's assigned office,
// else the fallback office, else UTC.
func (a *AttendanceServiceImpl) homeLocation(ctx context.Context, member user.User, fallback organization.OfficeLocation) *time.Location {
	if member.OfficeID != nil && *member.OfficeID != fallback.ID {
		if home, err := a.offices.GetByID(ctx, *member.OfficeID); err == nil {
			return home.Location()
		}
	}
	return fallback.Location()
}

func clockOrNow(value string, nowLocal time.Time) (organization.Clock, error) {
	if value == "" {
		return organization.ClockOf(nowLocal), nil
	}
	return organization.ParseClock(value)
}
