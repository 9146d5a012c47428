package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ attendance.CorrectionRepository = (*CorrectionRepository)(nil)

type CorrectionRepository struct {
	store *Store
}

func (r *CorrectionRepository) Create(ctx context.Context, correction attendance.Correction) (attendance.Correction, error) {
	model := AttendanceCorrection{
		ID:                  correction.ID,
		AttendanceID:        correction.AttendanceID,
		RequestedBy:         correction.RequestedBy,
		CorrectedLoginTime:  clockString(correction.CorrectedLoginTime),
		CorrectedLogoutTime: clockString(correction.CorrectedLogoutTime),
		Reason:              correction.Reason,
		Status:              string(correction.Status),
		ApprovalComments:    correction.ApprovalComments,
	}
	if err := r.store.conn(ctx).Create(&model).Error; err != nil {
		return attendance.Correction{}, fmt.Errorf("insert attendance correction: %w", err)
	}
	return model.toDomain(), nil
}

func (r *CorrectionRepository) GetByID(ctx context.Context, id string) (attendance.Correction, error) {
	return r.take(r.store.conn(ctx).Where("id = ?", id))
}

func (r *CorrectionRepository) LockForUpdate(ctx context.Context, id string) (attendance.Correction, error) {
	return r.take(r.store.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *CorrectionRepository) take(query *gorm.DB) (attendance.Correction, error) {
	var model AttendanceCorrection
	if err := query.Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return attendance.Correction{}, attendance.ErrCorrectionNotFound
		}
		return attendance.Correction{}, fmt.Errorf("get attendance correction: %w", err)
	}
	return model.toDomain(), nil
}

func (r *CorrectionRepository) UpdateDecision(ctx context.Context, correction attendance.Correction) error {
	result := r.store.conn(ctx).Model(&AttendanceCorrection{}).Where("id = ?", correction.ID).Updates(map[string]any{
		"status":            string(correction.Status),
		"approver_id":       correction.ApproverID,
		"approval_comments": correction.ApprovalComments,
		"decided_at":        correction.DecidedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update attendance correction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return attendance.ErrCorrectionNotFound
	}
	return nil
}

func (r *CorrectionRepository) List(ctx context.Context, organizationID string, filter attendance.CorrectionFilter) ([]attendance.Correction, int64, error) {
	filtered := func() *gorm.DB {
		query := r.store.conn(ctx).Model(&AttendanceCorrection{}).
			Joins("JOIN users ON users.id = attendance_corrections.requested_by").
			Where("users.organization_id = ?", organizationID)
		if filter.RequestedBy != nil {
			query = query.Where("attendance_corrections.requested_by = ?", *filter.RequestedBy)
		}
		if filter.Status != nil {
			query = query.Where("attendance_corrections.status = ?", string(*filter.Status))
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count attendance corrections: %w", err)
	}

	var models []AttendanceCorrection
	query := filtered().
		Select("attendance_corrections.*").
		Order("attendance_corrections.created_at DESC").
		Order("attendance_corrections.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("list attendance corrections: %w", err)
	}

	corrections := make([]attendance.Correction, 0, len(models))
	for _, m := range models {
		corrections = append(corrections, m.toDomain())
	}
	return corrections, total, nil
}

func (m AttendanceCorrection) toDomain() attendance.Correction {
	return attendance.Correction{
		ID:                  m.ID,
		AttendanceID:        m.AttendanceID,
		RequestedBy:         m.RequestedBy,
		CorrectedLoginTime:  parseClockPtr(m.CorrectedLoginTime),
		CorrectedLogoutTime: parseClockPtr(m.CorrectedLogoutTime),
		Reason:              m.Reason,
		Status:              attendance.CorrectionStatus(m.Status),
		ApproverID:          m.ApproverID,
		ApprovalComments:    m.ApprovalComments,
		DecidedAt:           m.DecidedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
