package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

const leaveBalanceColumns = `
	id, user_id, leave_type_id, year,
	total_entitled, used, pending_approval, carried_forward, accrued, expired,
	last_accrued_date, is_locked, locked_at,
	created_at, updated_at`

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

// CreateIfMissing implements leave.LeaveBalanceRepository.
func (l *leaveBalanceRepositoryImpl) CreateIfMissing(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, bool, error) {
	q := GetQuerier(ctx, l.db)
	query := `
		INSERT INTO leave_balances (
			id, user_id, leave_type_id, year,
			total_entitled, used, pending_approval, carried_forward, accrued, expired,
			last_accrued_date, is_locked, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE, NOW(), NOW())
		ON CONFLICT (user_id, leave_type_id, year) DO NOTHING
		RETURNING ` + leaveBalanceColumns

	created, err := scanLeaveBalance(q.QueryRow(ctx, query,
		newID(), balance.UserID, balance.LeaveTypeID, balance.Year,
		balance.TotalEntitled, balance.Used, balance.PendingApproval,
		balance.CarriedForward, balance.Accrued, balance.Expired,
		balance.LastAccruedDate,
	))
	switch {
	case err == nil:
		return created, true, nil
	case !errors.Is(err, leave.ErrBalanceNotFound):
		return leave.LeaveBalance{}, false, fmt.Errorf("insert leave balance: %w", err)
	}

	// DO NOTHING returns no row when the key already exists.
	existing, err := l.GetByKey(ctx, balance.Key())
	if err != nil {
		return leave.LeaveBalance{}, false, err
	}
	return existing, false, nil
}

// GetByID implements leave.LeaveBalanceRepository.
func (l *leaveBalanceRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, l.db)
	query := `SELECT ` + leaveBalanceColumns + ` FROM leave_balances WHERE id = $1`
	return scanLeaveBalance(q.QueryRow(ctx, query, id))
}

// GetByKey implements leave.LeaveBalanceRepository.
func (l *leaveBalanceRepositoryImpl) GetByKey(ctx context.Context, key leave.BalanceKey) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, l.db)
	query := `
		SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE user_id = $1 AND leave_type_id = $2 AND year = $3
	`
	return scanLeaveBalance(q.QueryRow(ctx, query, key.UserID, key.LeaveTypeID, key.Year))
}

// LockForUpdate implements leave.LeaveBalanceRepository.
func (l *leaveBalanceRepositoryImpl) LockForUpdate(ctx context.Context, id string) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, l.db)
	query := `SELECT ` + leaveBalanceColumns + ` FROM leave_balances WHERE id = $1 FOR UPDATE`
	return scanLeaveBalance(q.QueryRow(ctx, query, id))
}

// UpdateCounters implements leave.LeaveBalanceRepository.
func (l *leaveBalanceRepositoryImpl) UpdateCounters(ctx context.Context, balance leave.LeaveBalance) error {
	q := GetQuerier(ctx, l.db)
	query := `
		UPDATE leave_balances SET
			total_entitled = $2, used = $3, pending_approval = $4,
			carried_forward = $5, accrued = $6, expired = $7,
			last_accrued_date = $8, is_locked = $9, locked_at = $10,
			updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query,
		balance.ID, balance.TotalEntitled, balance.Used, balance.PendingApproval,
		balance.CarriedForward, balance.Accrued, balance.Expired,
		balance.LastAccruedDate, balance.IsLocked, balance.LockedAt,
	)
	if err != nil {
		return fmt.Errorf("update leave balance: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrBalanceNotFound
	}
	return nil
}

// ListByUser implements leave.LeaveBalanceRepository.
func (l *leaveBalanceRepositoryImpl) ListByUser(ctx context.Context, userID string, year int) ([]leave.LeaveBalance, error) {
	query := `
		SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE user_id = $1 AND ($2 = 0 OR year = $2)
		ORDER BY year, leave_type_id
	`
	return l.list(ctx, query, userID, year)
}

// ListByYear implements leave.LeaveBalanceRepository.
func (l *leaveBalanceRepositoryImpl) ListByYear(ctx context.Context, year int) ([]leave.LeaveBalance, error) {
	query := `SELECT ` + leaveBalanceColumns + ` FROM leave_balances WHERE year = $1 ORDER BY id`
	return l.list(ctx, query, year)
}

func (l *leaveBalanceRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, l.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.LeaveBalance
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year,
		&b.TotalEntitled, &b.Used, &b.PendingApproval, &b.CarriedForward, &b.Accrued, &b.Expired,
		&b.LastAccruedDate, &b.IsLocked, &b.LockedAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("scan leave balance: %w", err)
	}
	if b.LastAccruedDate != nil {
		d := b.LastAccruedDate.UTC()
		b.LastAccruedDate = &d
	}
	return b, nil
}
