package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

const attendanceColumns = `
	a.id, a.user_id, a.office_id, a.attendance_date,
	a.login_time::text, a.logout_time::text,
	a.login_latitude, a.login_longitude, a.logout_latitude, a.logout_longitude,
	a.login_distance, a.logout_distance,
	a.is_within_geofence, a.status, a.worked_hours, a.remarks, a.is_verified,
	a.created_at, a.updated_at`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// GetOrCreate implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetOrCreate(ctx context.Context, userID, officeID string, day time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)
	query := `
		INSERT INTO attendance_records (id, user_id, office_id, attendance_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, attendance_date) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, newID(), userID, officeID, leave.DateOf(day), string(attendance.StatusAbsent)); err != nil {
		return attendance.Record{}, fmt.Errorf("insert attendance record: %w", err)
	}
	return a.GetByUserAndDate(ctx, userID, day)
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records a WHERE a.id = $1`
	return scanAttendance(q.QueryRow(ctx, query, id))
}

// GetOpenByUser implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetOpenByUser(ctx context.Context, userID string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records a
		WHERE a.user_id = $1 AND a.login_time IS NOT NULL AND a.logout_time IS NULL
		ORDER BY a.attendance_date DESC
		LIMIT 1`
	return scanAttendance(q.QueryRow(ctx, query, userID))
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, day time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records a WHERE a.user_id = $1 AND a.attendance_date = $2`
	return scanAttendance(q.QueryRow(ctx, query, userID, leave.DateOf(day)))
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)
	query := `
		UPDATE attendance_records SET
			office_id = $2, login_time = $3::time, logout_time = $4::time,
			login_latitude = $5, login_longitude = $6, logout_latitude = $7, logout_longitude = $8,
			login_distance = $9, logout_distance = $10,
			is_within_geofence = $11, status = $12, worked_hours = $13, remarks = $14, is_verified = $15,
			updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query,
		record.ID, record.OfficeID, clockText(record.LoginTime), clockText(record.LogoutTime),
		record.LoginLatitude, record.LoginLongitude, record.LogoutLatitude, record.LogoutLongitude,
		record.LoginDistance, record.LogoutDistance,
		record.IsWithinGeofence, string(record.Status), record.WorkedHours, record.Remarks, record.IsVerified,
	)
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) List(ctx context.Context, organizationID string, filter attendance.Filter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"u.organization_id = $1"}
	args := []any{organizationID}
	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}
	if filter.UserID != nil {
		add("a.user_id = $%d", *filter.UserID)
	}
	if filter.FromDate != nil {
		add("a.attendance_date >= $%d", leave.DateOf(*filter.FromDate))
	}
	if filter.ToDate != nil {
		add("a.attendance_date <= $%d", leave.DateOf(*filter.ToDate))
	}
	if filter.Status != nil {
		add("a.status = $%d", *filter.Status)
	}
	from := ` FROM attendance_records a JOIN users u ON u.id = a.user_id WHERE ` + strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count attendance records: %w", err)
	}

	query := `SELECT ` + attendanceColumns + from + ` ORDER BY a.attendance_date DESC, a.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var (
		r          attendance.Record
		day        time.Time
		loginTime  *string
		logoutTime *string
		status     string
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.OfficeID, &day,
		&loginTime, &logoutTime,
		&r.LoginLatitude, &r.LoginLongitude, &r.LogoutLatitude, &r.LogoutLongitude,
		&r.LoginDistance, &r.LogoutDistance,
		&r.IsWithinGeofence, &status, &r.WorkedHours, &r.Remarks, &r.IsVerified,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("scan attendance record: %w", err)
	}
	r.AttendanceDate = leave.DateOf(day)
	r.Status = attendance.Status(status)
	r.LoginTime = parseClockText(loginTime)
	r.LogoutTime = parseClockText(logoutTime)
	return r, nil
}

func clockText(c *organization.Clock) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func parseClockText(s *string) *organization.Clock {
	if s == nil {
		return nil
	}
	c, err := organization.ParseClock(*s)
	if err != nil {
		return nil
	}
	return &c
}
