package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ attendance.AttendanceRepository = (*AttendanceRepository)(nil)

type AttendanceRepository struct {
	store *Store
}

func (r *AttendanceRepository) GetOrCreate(ctx context.Context, userID, officeID string, day time.Time) (attendance.Record, error) {
	model := AttendanceRecord{
		UserID:         userID,
		OfficeID:       officeID,
		AttendanceDate: formatDate(day),
		Status:         string(attendance.StatusAbsent),
	}
	err := r.store.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "attendance_date"}},
			DoNothing: true,
		}).
		Create(&model).Error
	if err != nil {
		return attendance.Record{}, fmt.Errorf("insert attendance record: %w", err)
	}
	return r.GetByUserAndDate(ctx, userID, day)
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	return r.take(r.store.conn(ctx).Where("id = ?", id))
}

func (r *AttendanceRepository) GetOpenByUser(ctx context.Context, userID string) (attendance.Record, error) {
	return r.take(r.store.conn(ctx).
		Where("user_id = ? AND login_time IS NOT NULL AND logout_time IS NULL", userID).
		Order("attendance_date DESC"))
}

func (r *AttendanceRepository) take(query *gorm.DB) (attendance.Record, error) {
	var model AttendanceRecord
	if err := query.Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("get attendance record: %w", err)
	}
	return model.toDomain(), nil
}

func (r *AttendanceRepository) GetByUserAndDate(ctx context.Context, userID string, day time.Time) (attendance.Record, error) {
	return r.take(r.store.conn(ctx).Where("user_id = ? AND attendance_date = ?", userID, formatDate(day)))
}

func (r *AttendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	result := r.store.conn(ctx).Model(&AttendanceRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
		"office_id":          record.OfficeID,
		"login_time":         clockString(record.LoginTime),
		"logout_time":        clockString(record.LogoutTime),
		"login_latitude":     record.LoginLatitude,
		"login_longitude":    record.LoginLongitude,
		"logout_latitude":    record.LogoutLatitude,
		"logout_longitude":   record.LogoutLongitude,
		"login_distance":     record.LoginDistance,
		"logout_distance":    record.LogoutDistance,
		"is_within_geofence": record.IsWithinGeofence,
		"status":             string(record.Status),
		"worked_hours":       record.WorkedHours,
		"remarks":            record.Remarks,
		"is_verified":        record.IsVerified,
	})
	if result.Error != nil {
		return fmt.Errorf("update attendance record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func (r *AttendanceRepository) List(ctx context.Context, organizationID string, filter attendance.Filter) ([]attendance.Record, int64, error) {
	filtered := func() *gorm.DB {
		query := r.store.conn(ctx).Model(&AttendanceRecord{}).
			Joins("JOIN users ON users.id = attendance_records.user_id").
			Where("users.organization_id = ?", organizationID)
		if filter.UserID != nil {
			query = query.Where("attendance_records.user_id = ?", *filter.UserID)
		}
		if filter.FromDate != nil {
			query = query.Where("attendance_records.attendance_date >= ?", formatDate(*filter.FromDate))
		}
		if filter.ToDate != nil {
			query = query.Where("attendance_records.attendance_date <= ?", formatDate(*filter.ToDate))
		}
		if filter.Status != nil {
			query = query.Where("attendance_records.status = ?", *filter.Status)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count attendance records: %w", err)
	}

	var models []AttendanceRecord
	query := filtered().
		Select("attendance_records.*").
		Order("attendance_records.attendance_date DESC").
		Order("attendance_records.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("list attendance records: %w", err)
	}

	records := make([]attendance.Record, 0, len(models))
	for _, m := range models {
		records = append(records, m.toDomain())
	}
	return records, total, nil
}

func clockString(c *organization.Clock) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func parseClockPtr(s *string) *organization.Clock {
	if s == nil || *s == "" {
		return nil
	}
	c, err := organization.ParseClock(*s)
	if err != nil {
		return nil
	}
	return &c
}

func (m AttendanceRecord) toDomain() attendance.Record {
	return attendance.Record{
		ID:               m.ID,
		UserID:           m.UserID,
		OfficeID:         m.OfficeID,
		AttendanceDate:   parseDate(m.AttendanceDate),
		LoginTime:        parseClockPtr(m.LoginTime),
		LogoutTime:       parseClockPtr(m.LogoutTime),
		LoginLatitude:    m.LoginLatitude,
		LoginLongitude:   m.LoginLongitude,
		LogoutLatitude:   m.LogoutLatitude,
		LogoutLongitude:  m.LogoutLongitude,
		LoginDistance:    m.LoginDistance,
		LogoutDistance:   m.LogoutDistance,
		IsWithinGeofence: m.IsWithinGeofence,
		Status:           attendance.Status(m.Status),
		WorkedHours:      m.WorkedHours,
		Remarks:          m.Remarks,
		IsVerified:       m.IsVerified,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
