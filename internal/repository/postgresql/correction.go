package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

const correctionColumns = `
	c.id, c.attendance_id, c.requested_by,
	c.corrected_login_time::text, c.corrected_logout_time::text,
	c.reason, c.status, c.approver_id, c.approval_comments, c.decided_at,
	c.created_at, c.updated_at`

type correctionRepositoryImpl struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) attendance.CorrectionRepository {
	return &correctionRepositoryImpl{db: db}
}

// Create implements attendance.CorrectionRepository.
func (c *correctionRepositoryImpl) Create(ctx context.Context, correction attendance.Correction) (attendance.Correction, error) {
	q := GetQuerier(ctx, c.db)
	query := `
		INSERT INTO attendance_corrections (
			id, attendance_id, requested_by, corrected_login_time, corrected_logout_time,
			reason, status, approval_comments, created_at, updated_at
		) VALUES ($1, $2, $3, $4::time, $5::time, $6, $7, $8, NOW(), NOW())
		RETURNING id
	`
	var id string
	err := q.QueryRow(ctx, query,
		newID(), correction.AttendanceID, correction.RequestedBy,
		clockText(correction.CorrectedLoginTime), clockText(correction.CorrectedLogoutTime),
		correction.Reason, string(correction.Status), correction.ApprovalComments,
	).Scan(&id)
	if err != nil {
		return attendance.Correction{}, fmt.Errorf("insert attendance correction: %w", err)
	}
	return c.GetByID(ctx, id)
}

// GetByID implements attendance.CorrectionRepository.
func (c *correctionRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Correction, error) {
	q := GetQuerier(ctx, c.db)
	query := `SELECT ` + correctionColumns + ` FROM attendance_corrections c WHERE c.id = $1`
	return scanCorrection(q.QueryRow(ctx, query, id))
}

// LockForUpdate implements attendance.CorrectionRepository.
func (c *correctionRepositoryImpl) LockForUpdate(ctx context.Context, id string) (attendance.Correction, error) {
	q := GetQuerier(ctx, c.db)
	query := `SELECT ` + correctionColumns + ` FROM attendance_corrections c WHERE c.id = $1 FOR UPDATE`
	return scanCorrection(q.QueryRow(ctx, query, id))
}

// UpdateDecision implements attendance.CorrectionRepository.
func (c *correctionRepositoryImpl) UpdateDecision(ctx context.Context, correction attendance.Correction) error {
	q := GetQuerier(ctx, c.db)
	query := `
		UPDATE attendance_corrections SET
			status = $2, approver_id = $3, approval_comments = $4, decided_at = $5,
			updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query,
		correction.ID, string(correction.Status), correction.ApproverID, correction.ApprovalComments, correction.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("update attendance correction: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return attendance.ErrCorrectionNotFound
	}
	return nil
}

// List implements attendance.CorrectionRepository.
func (c *correctionRepositoryImpl) List(ctx context.Context, organizationID string, filter attendance.CorrectionFilter) ([]attendance.Correction, int64, error) {
	q := GetQuerier(ctx, c.db)

	conditions := []string{"u.organization_id = $1"}
	args := []any{organizationID}
	if filter.RequestedBy != nil {
		args = append(args, *filter.RequestedBy)
		conditions = append(conditions, fmt.Sprintf("c.requested_by = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	from := ` FROM attendance_corrections c JOIN users u ON u.id = c.requested_by WHERE ` + strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count attendance corrections: %w", err)
	}

	query := `SELECT ` + correctionColumns + from + ` ORDER BY c.created_at DESC, c.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance corrections: %w", err)
	}
	defer rows.Close()

	var corrections []attendance.Correction
	for rows.Next() {
		correction, err := scanCorrection(rows)
		if err != nil {
			return nil, 0, err
		}
		corrections = append(corrections, correction)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return corrections, total, nil
}

func scanCorrection(row pgx.Row) (attendance.Correction, error) {
	var (
		c          attendance.Correction
		loginTime  *string
		logoutTime *string
		status     string
	)
	err := row.Scan(
		&c.ID, &c.AttendanceID, &c.RequestedBy,
		&loginTime, &logoutTime,
		&c.Reason, &status, &c.ApproverID, &c.ApprovalComments, &c.DecidedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Correction{}, attendance.ErrCorrectionNotFound
		}
		return attendance.Correction{}, fmt.Errorf("scan attendance correction: %w", err)
	}
	c.Status = attendance.CorrectionStatus(status)
	c.CorrectedLoginTime = parseClockText(loginTime)
	c.CorrectedLogoutTime = parseClockText(logoutTime)
	return c, nil
}
