package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

const leaveRequestColumns = `
	lr.id, lr.user_id, lr.leave_type_id, lr.balance_id,
	lr.from_date, lr.to_date, lr.duration_days, lr.reason,
	lr.status, lr.approver_id, lr.approval_comments, lr.approved_at,
	lr.created_at, lr.updated_at`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// Create implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)
	query := `
		INSERT INTO leave_requests (
			id, user_id, leave_type_id, balance_id,
			from_date, to_date, duration_days, reason, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	request.ID = newID()
	err := q.QueryRow(ctx, query,
		request.ID, request.UserID, request.LeaveTypeID, request.BalanceID,
		request.FromDate, request.ToDate, request.DurationDays, request.Reason, string(request.Status),
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("insert leave request: %w", err)
	}
	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)
	query := `
		SELECT ` + leaveRequestColumns + `, lt.name, u.first_name || ' ' || u.last_name
		FROM leave_requests lr
		JOIN leave_types lt ON lt.id = lr.leave_type_id
		JOIN users u ON u.id = lr.user_id
		WHERE lr.id = $1
	`
	return scanLeaveRequest(q.QueryRow(ctx, query, id), true)
}

// LockForUpdate implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) LockForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)
	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests lr WHERE lr.id = $1 FOR UPDATE`
	return scanLeaveRequest(q.QueryRow(ctx, query, id), false)
}

// UpdateDecision implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) UpdateDecision(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, l.db)
	query := `
		UPDATE leave_requests SET
			status = $2, approver_id = $3, approval_comments = $4, approved_at = $5,
			updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query,
		request.ID, string(request.Status), request.ApproverID, request.ApprovalComments, request.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("update leave request: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// List implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) List(ctx context.Context, organizationID string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, l.db)

	conditions := []string{"u.organization_id = $1"}
	args := []any{organizationID}
	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}
	if filter.UserID != nil {
		add("lr.user_id = $%d", *filter.UserID)
	}
	if filter.LeaveTypeID != nil {
		add("lr.leave_type_id = $%d", *filter.LeaveTypeID)
	}
	if filter.Status != nil {
		add("lr.status = $%d", *filter.Status)
	}
	if filter.Year != nil {
		add("EXTRACT(YEAR FROM lr.from_date) = $%d", *filter.Year)
	}
	where := strings.Join(conditions, " AND ")

	from := `
		FROM leave_requests lr
		JOIN leave_types lt ON lt.id = lr.leave_type_id
		JOIN users u ON u.id = lr.user_id
		WHERE ` + where

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) `+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}

	query := `SELECT ` + leaveRequestColumns + `, lt.name, u.first_name || ' ' || u.last_name ` + from +
		` ORDER BY lr.from_date DESC, lr.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	requests, err := l.list(ctx, query, true, args...)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ListPendingByUser implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) ListPendingByUser(ctx context.Context, userID string) ([]leave.LeaveRequest, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		WHERE lr.user_id = $1 AND lr.status = $2
		ORDER BY lr.from_date
	`
	return l.list(ctx, query, false, userID, string(leave.LeaveRequestStatusPending))
}

func (l *leaveRequestRepositoryImpl) list(ctx context.Context, query string, joined bool, args ...any) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		r, err := scanLeaveRequest(rows, joined)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func scanLeaveRequest(row pgx.Row, joined bool) (leave.LeaveRequest, error) {
	var (
		r      leave.LeaveRequest
		status string
		from   time.Time
		to     time.Time
	)
	dest := []any{
		&r.ID, &r.UserID, &r.LeaveTypeID, &r.BalanceID,
		&from, &to, &r.DurationDays, &r.Reason,
		&status, &r.ApproverID, &r.ApprovalComments, &r.ApprovedAt,
		&r.CreatedAt, &r.UpdatedAt,
	}
	if joined {
		dest = append(dest, &r.LeaveTypeName, &r.UserName)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("scan leave request: %w", err)
	}
	r.Status = leave.LeaveRequestStatus(status)
	r.FromDate = leave.DateOf(from)
	r.ToDate = leave.DateOf(to)
	return r, nil
}
