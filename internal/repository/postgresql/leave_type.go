package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

const leaveTypeColumns = `
	id, organization_id, name, code, description,
	max_days_per_year, carry_forward_allowed, carry_forward_max_days,
	accrual_frequency, accrual_days,
	is_paid, requires_approval, is_active,
	allow_encashment, encashment_rate,
	prorate_on_join, prorate_on_exit, proration_basis,
	created_at, updated_at`

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

// Create implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) Create(ctx context.Context, leaveType leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)
	query := `
		INSERT INTO leave_types (
			id, organization_id, name, code, description,
			max_days_per_year, carry_forward_allowed, carry_forward_max_days,
			accrual_frequency, accrual_days,
			is_paid, requires_approval, is_active,
			allow_encashment, encashment_rate,
			prorate_on_join, prorate_on_exit, proration_basis,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18,
			NOW(), NOW()
		) RETURNING created_at, updated_at
	`
	leaveType.ID = newID()
	err := q.QueryRow(ctx, query,
		leaveType.ID, leaveType.OrganizationID, leaveType.Name, leaveType.Code, leaveType.Description,
		leaveType.MaxDaysPerYear, leaveType.CarryForwardAllowed, leaveType.CarryForwardMaxDays,
		string(leaveType.AccrualFrequency), leaveType.AccrualDays,
		leaveType.IsPaid, leaveType.RequiresApproval, leaveType.IsActive,
		leaveType.AllowEncashment, leaveType.EncashmentRate,
		leaveType.ProrateOnJoin, leaveType.ProrateOnExit, string(leaveType.ProrationBasis),
	).Scan(&leaveType.CreatedAt, &leaveType.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return leave.LeaveType{}, leave.ErrLeaveTypeCodeExists
		}
		return leave.LeaveType{}, fmt.Errorf("insert leave type: %w", err)
	}
	return leaveType, nil
}

// Update implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) Update(ctx context.Context, leaveType leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)
	query := `
		UPDATE leave_types SET
			name = $2, description = $3,
			max_days_per_year = $4, carry_forward_allowed = $5, carry_forward_max_days = $6,
			accrual_frequency = $7, accrual_days = $8,
			is_paid = $9, requires_approval = $10, is_active = $11,
			allow_encashment = $12, encashment_rate = $13,
			prorate_on_join = $14, prorate_on_exit = $15, proration_basis = $16,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leaveTypeColumns

	updated, err := scanLeaveType(q.QueryRow(ctx, query,
		leaveType.ID, leaveType.Name, leaveType.Description,
		leaveType.MaxDaysPerYear, leaveType.CarryForwardAllowed, leaveType.CarryForwardMaxDays,
		string(leaveType.AccrualFrequency), leaveType.AccrualDays,
		leaveType.IsPaid, leaveType.RequiresApproval, leaveType.IsActive,
		leaveType.AllowEncashment, leaveType.EncashmentRate,
		leaveType.ProrateOnJoin, leaveType.ProrateOnExit, string(leaveType.ProrationBasis),
	))
	if err != nil {
		return leave.LeaveType{}, fmt.Errorf("update leave type: %w", err)
	}
	return updated, nil
}

// GetByID implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)
	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE id = $1`
	return scanLeaveType(q.QueryRow(ctx, query, id))
}

// GetByCode implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) GetByCode(ctx context.Context, organizationID, code string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)
	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE organization_id = $1 AND code = $2`
	return scanLeaveType(q.QueryRow(ctx, query, organizationID, code))
}

// ListByOrganization implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)
	query := `
		SELECT ` + leaveTypeColumns + `
		FROM leave_types
		WHERE organization_id = $1 AND ($2 = FALSE OR is_active)
		ORDER BY name
	`
	rows, err := q.Query(ctx, query, organizationID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list leave types: %w", err)
	}
	defer rows.Close()

	var leaveTypes []leave.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, err
		}
		leaveTypes = append(leaveTypes, lt)
	}
	return leaveTypes, rows.Err()
}

func scanLeaveType(row pgx.Row) (leave.LeaveType, error) {
	var (
		lt        leave.LeaveType
		frequency string
		basis     string
	)
	err := row.Scan(
		&lt.ID, &lt.OrganizationID, &lt.Name, &lt.Code, &lt.Description,
		&lt.MaxDaysPerYear, &lt.CarryForwardAllowed, &lt.CarryForwardMaxDays,
		&frequency, &lt.AccrualDays,
		&lt.IsPaid, &lt.RequiresApproval, &lt.IsActive,
		&lt.AllowEncashment, &lt.EncashmentRate,
		&lt.ProrateOnJoin, &lt.ProrateOnExit, &basis,
		&lt.CreatedAt, &lt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("scan leave type: %w", err)
	}
	lt.AccrualFrequency = leave.AccrualFrequency(frequency)
	lt.ProrationBasis = leave.ProrationBasis(basis)
	return lt, nil
}
