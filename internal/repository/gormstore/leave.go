package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ leave.LeaveTypeRepository    = (*LeaveTypeRepository)(nil)
	_ leave.LeaveBalanceRepository = (*LeaveBalanceRepository)(nil)
	_ leave.LeaveRequestRepository = (*LeaveRequestRepository)(nil)
	_ leave.LedgerEventRepository  = (*LedgerEventRepository)(nil)
	_ leave.HolidayRepository      = (*HolidayRepository)(nil)
)

type LeaveTypeRepository struct {
	store *Store
}

func (r *LeaveTypeRepository) Create(ctx context.Context, leaveType leave.LeaveType) (leave.LeaveType, error) {
	model := leaveTypeModel(leaveType)
	if err := r.store.conn(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return leave.LeaveType{}, leave.ErrLeaveTypeCodeExists
		}
		return leave.LeaveType{}, fmt.Errorf("insert leave type: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LeaveTypeRepository) Update(ctx context.Context, leaveType leave.LeaveType) (leave.LeaveType, error) {
	model := leaveTypeModel(leaveType)
	result := r.store.conn(ctx).Model(&model).Select(
		"name", "description", "max_days_per_year", "carry_forward_allowed", "carry_forward_max_days",
		"accrual_frequency", "accrual_days", "is_paid", "requires_approval", "is_active",
		"allow_encashment", "encashment_rate", "prorate_on_join", "prorate_on_exit", "proration_basis", "updated_at",
	).Updates(&model)
	if result.Error != nil {
		return leave.LeaveType{}, fmt.Errorf("update leave type: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return r.GetByID(ctx, leaveType.ID)
}

func (r *LeaveTypeRepository) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	var model LeaveType
	if err := r.store.conn(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("get leave type: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LeaveTypeRepository) GetByCode(ctx context.Context, organizationID, code string) (leave.LeaveType, error) {
	var model LeaveType
	err := r.store.conn(ctx).
		Where("organization_id = ? AND code = ?", organizationID, code).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("get leave type by code: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LeaveTypeRepository) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]leave.LeaveType, error) {
	query := r.store.conn(ctx).Where("organization_id = ?", organizationID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var models []LeaveType
	if err := query.Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list leave types: %w", err)
	}

	leaveTypes := make([]leave.LeaveType, 0, len(models))
	for _, m := range models {
		leaveTypes = append(leaveTypes, m.toDomain())
	}
	return leaveTypes, nil
}

type LeaveBalanceRepository struct {
	store *Store
}

func (r *LeaveBalanceRepository) CreateIfMissing(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, bool, error) {
	model := leaveBalanceModel(balance)
	result := r.store.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "leave_type_id"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return leave.LeaveBalance{}, false, fmt.Errorf("insert leave balance: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return model.toDomain(), true, nil
	}

	existing, err := r.GetByKey(ctx, balance.Key())
	if err != nil {
		return leave.LeaveBalance{}, false, err
	}
	return existing, false, nil
}

func (r *LeaveBalanceRepository) GetByID(ctx context.Context, id string) (leave.LeaveBalance, error) {
	return r.take(r.store.conn(ctx).Where("id = ?", id))
}

func (r *LeaveBalanceRepository) GetByKey(ctx context.Context, key leave.BalanceKey) (leave.LeaveBalance, error) {
	return r.take(r.store.conn(ctx).Where("user_id = ? AND leave_type_id = ? AND year = ?", key.UserID, key.LeaveTypeID, key.Year))
}

func (r *LeaveBalanceRepository) LockForUpdate(ctx context.Context, id string) (leave.LeaveBalance, error) {
	return r.take(r.store.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *LeaveBalanceRepository) take(query *gorm.DB) (leave.LeaveBalance, error) {
	var model LeaveBalance
	if err := query.Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("get leave balance: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LeaveBalanceRepository) UpdateCounters(ctx context.Context, balance leave.LeaveBalance) error {
	result := r.store.conn(ctx).Model(&LeaveBalance{}).Where("id = ?", balance.ID).Updates(map[string]any{
		"total_entitled":    balance.TotalEntitled,
		"used":              balance.Used,
		"pending_approval":  balance.PendingApproval,
		"carried_forward":   balance.CarriedForward,
		"accrued":           balance.Accrued,
		"expired":           balance.Expired,
		"last_accrued_date": formatDatePtr(balance.LastAccruedDate),
		"is_locked":         balance.IsLocked,
		"locked_at":         balance.LockedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update leave balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return leave.ErrBalanceNotFound
	}
	return nil
}

func (r *LeaveBalanceRepository) ListByUser(ctx context.Context, userID string, year int) ([]leave.LeaveBalance, error) {
	query := r.store.conn(ctx).Where("user_id = ?", userID)
	if year != 0 {
		query = query.Where("year = ?", year)
	}
	return r.find(query.Order("year DESC").Order("leave_type_id ASC"))
}

func (r *LeaveBalanceRepository) ListByYear(ctx context.Context, year int) ([]leave.LeaveBalance, error) {
	return r.find(r.store.conn(ctx).Where("year = ?", year).Order("id ASC"))
}

func (r *LeaveBalanceRepository) find(query *gorm.DB) ([]leave.LeaveBalance, error) {
	var models []LeaveBalance
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list leave balances: %w", err)
	}
	balances := make([]leave.LeaveBalance, 0, len(models))
	for _, m := range models {
		balances = append(balances, m.toDomain())
	}
	return balances, nil
}

type LeaveRequestRepository struct {
	store *Store
}

// leaveRequestRow is a leave request joined with its owner and leave type names.
type leaveRequestRow struct {
	LeaveRequest
	LeaveTypeName *string
	UserFirstName *string
	UserLastName  *string
}

func (r *LeaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	model := leaveRequestModel(request)
	if err := r.store.conn(ctx).Create(&model).Error; err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("insert leave request: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LeaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	var row leaveRequestRow
	result := r.joined(ctx).Where("leave_requests.id = ?", id).Limit(1).Scan(&row)
	if result.Error != nil {
		return leave.LeaveRequest{}, fmt.Errorf("get leave request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return row.toDomain(), nil
}

func (r *LeaveRequestRepository) LockForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	var model LeaveRequest
	err := r.store.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("lock leave request: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LeaveRequestRepository) UpdateDecision(ctx context.Context, request leave.LeaveRequest) error {
	result := r.store.conn(ctx).Model(&LeaveRequest{}).Where("id = ?", request.ID).Updates(map[string]any{
		"status":            string(request.Status),
		"approver_id":       request.ApproverID,
		"approval_comments": request.ApprovalComments,
		"approved_at":       request.ApprovedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update leave request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *LeaveRequestRepository) List(ctx context.Context, organizationID string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	filtered := func() *gorm.DB {
		query := r.store.conn(ctx).Table("leave_requests").
			Joins("JOIN users ON users.id = leave_requests.user_id").
			Where("users.organization_id = ?", organizationID)
		if filter.UserID != nil {
			query = query.Where("leave_requests.user_id = ?", *filter.UserID)
		}
		if filter.LeaveTypeID != nil {
			query = query.Where("leave_requests.leave_type_id = ?", *filter.LeaveTypeID)
		}
		if filter.Status != nil {
			query = query.Where("leave_requests.status = ?", *filter.Status)
		}
		if filter.Year != nil {
			query = query.Where("leave_requests.from_date BETWEEN ? AND ?",
				fmt.Sprintf("%04d-01-01", *filter.Year), fmt.Sprintf("%04d-12-31", *filter.Year))
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}

	var rows []leaveRequestRow
	err := filtered().
		Select("leave_requests.*, leave_types.name AS leave_type_name, users.first_name AS user_first_name, users.last_name AS user_last_name").
		Joins("JOIN leave_types ON leave_types.id = leave_requests.leave_type_id").
		Order("leave_requests.created_at DESC").
		Order("leave_requests.id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}

	requests := make([]leave.LeaveRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, row.toDomain())
	}
	return requests, total, nil
}

func (r *LeaveRequestRepository) ListPendingByUser(ctx context.Context, userID string) ([]leave.LeaveRequest, error) {
	var models []LeaveRequest
	err := r.store.conn(ctx).
		Where("user_id = ? AND status = ?", userID, string(leave.LeaveRequestStatusPending)).
		Order("from_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list pending leave requests: %w", err)
	}
	requests := make([]leave.LeaveRequest, 0, len(models))
	for _, m := range models {
		requests = append(requests, m.toDomain())
	}
	return requests, nil
}

func (r *LeaveRequestRepository) joined(ctx context.Context) *gorm.DB {
	return r.store.conn(ctx).Table("leave_requests").
		Select("leave_requests.*, leave_types.name AS leave_type_name, users.first_name AS user_first_name, users.last_name AS user_last_name").
		Joins("LEFT JOIN leave_types ON leave_types.id = leave_requests.leave_type_id").
		Joins("LEFT JOIN users ON users.id = leave_requests.user_id")
}

type LedgerEventRepository struct {
	store *Store
}

func (r *LedgerEventRepository) Append(ctx context.Context, event leave.LedgerEvent) (leave.LedgerEvent, error) {
	metadata := []byte("{}")
	if len(event.Metadata) > 0 {
		raw, err := json.Marshal(event.Metadata)
		if err != nil {
			return leave.LedgerEvent{}, fmt.Errorf("encode ledger event metadata: %w", err)
		}
		metadata = raw
	}

	model := LedgerEvent{
		BalanceID: event.BalanceID,
		RequestID: event.RequestID,
		Type:      string(event.Type),
		Days:      event.Days,
		ActorID:   event.ActorID,
		Metadata:  datatypes.JSON(metadata),
	}
	if err := r.store.conn(ctx).Create(&model).Error; err != nil {
		return leave.LedgerEvent{}, fmt.Errorf("insert ledger event: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LedgerEventRepository) HasRequestEvent(ctx context.Context, requestID string, types ...leave.LedgerEventType) (bool, error) {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	var count int64
	err := r.store.conn(ctx).Model(&LedgerEvent{}).
		Where("request_id = ? AND type IN ?", requestID, names).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count ledger events: %w", err)
	}
	return count > 0, nil
}

func (r *LedgerEventRepository) HasBalanceEvent(ctx context.Context, balanceID string, eventType leave.LedgerEventType) (bool, error) {
	var count int64
	err := r.store.conn(ctx).Model(&LedgerEvent{}).
		Where("balance_id = ? AND type = ?", balanceID, string(eventType)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count ledger events: %w", err)
	}
	return count > 0, nil
}

func (r *LedgerEventRepository) ListByBalance(ctx context.Context, balanceID string) ([]leave.LedgerEvent, error) {
	var models []LedgerEvent
	err := r.store.conn(ctx).
		Where("balance_id = ?", balanceID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}
	events := make([]leave.LedgerEvent, 0, len(models))
	for _, m := range models {
		events = append(events, m.toDomain())
	}
	return events, nil
}

type HolidayRepository struct {
	store *Store
}

func (r *HolidayRepository) Create(ctx context.Context, holiday leave.CompanyHoliday) (leave.CompanyHoliday, error) {
	model := CompanyHoliday{
		OrganizationID: holiday.OrganizationID,
		Name:           holiday.Name,
		Date:           formatDate(holiday.Date),
		IsOptional:     holiday.IsOptional,
	}
	if err := r.store.conn(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return leave.CompanyHoliday{}, leave.ErrHolidayExists
		}
		return leave.CompanyHoliday{}, fmt.Errorf("insert holiday: %w", err)
	}
	return model.toDomain(), nil
}

func (r *HolidayRepository) ListByOrganization(ctx context.Context, organizationID string, year *int) ([]leave.CompanyHoliday, error) {
	query := r.store.conn(ctx).Where("organization_id = ?", organizationID)
	if year != nil {
		query = query.Where("date BETWEEN ? AND ?", fmt.Sprintf("%04d-01-01", *year), fmt.Sprintf("%04d-12-31", *year))
	}

	var models []CompanyHoliday
	if err := query.Order("date ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	holidays := make([]leave.CompanyHoliday, 0, len(models))
	for _, m := range models {
		holidays = append(holidays, m.toDomain())
	}
	return holidays, nil
}

func leaveTypeModel(lt leave.LeaveType) LeaveType {
	return LeaveType{
		ID:                  lt.ID,
		OrganizationID:      lt.OrganizationID,
		Name:                lt.Name,
		Code:                lt.Code,
		Description:         lt.Description,
		MaxDaysPerYear:      lt.MaxDaysPerYear,
		CarryForwardAllowed: lt.CarryForwardAllowed,
		CarryForwardMaxDays: lt.CarryForwardMaxDays,
		AccrualFrequency:    string(lt.AccrualFrequency),
		AccrualDays:         lt.AccrualDays,
		IsPaid:              lt.IsPaid,
		RequiresApproval:    lt.RequiresApproval,
		IsActive:            lt.IsActive,
		AllowEncashment:     lt.AllowEncashment,
		EncashmentRate:      lt.EncashmentRate,
		ProrateOnJoin:       lt.ProrateOnJoin,
		ProrateOnExit:       lt.ProrateOnExit,
		ProrationBasis:      string(lt.ProrationBasis),
	}
}

func (m LeaveType) toDomain() leave.LeaveType {
	return leave.LeaveType{
		ID:                  m.ID,
		OrganizationID:      m.OrganizationID,
		Name:                m.Name,
		Code:                m.Code,
		Description:         m.Description,
		MaxDaysPerYear:      m.MaxDaysPerYear,
		CarryForwardAllowed: m.CarryForwardAllowed,
		CarryForwardMaxDays: m.CarryForwardMaxDays,
		AccrualFrequency:    leave.AccrualFrequency(m.AccrualFrequency),
		AccrualDays:         m.AccrualDays,
		IsPaid:              m.IsPaid,
		RequiresApproval:    m.RequiresApproval,
		IsActive:            m.IsActive,
		AllowEncashment:     m.AllowEncashment,
		EncashmentRate:      m.EncashmentRate,
		ProrateOnJoin:       m.ProrateOnJoin,
		ProrateOnExit:       m.ProrateOnExit,
		ProrationBasis:      leave.ProrationBasis(m.ProrationBasis),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func leaveBalanceModel(b leave.LeaveBalance) LeaveBalance {
	return LeaveBalance{
		ID:              b.ID,
		UserID:          b.UserID,
		LeaveTypeID:     b.LeaveTypeID,
		Year:            b.Year,
		TotalEntitled:   b.TotalEntitled,
		Used:            b.Used,
		PendingApproval: b.PendingApproval,
		CarriedForward:  b.CarriedForward,
		Accrued:         b.Accrued,
		Expired:         b.Expired,
		LastAccruedDate: formatDatePtr(b.LastAccruedDate),
		IsLocked:        b.IsLocked,
		LockedAt:        b.LockedAt,
	}
}

func (m LeaveBalance) toDomain() leave.LeaveBalance {
	return leave.LeaveBalance{
		ID:              m.ID,
		UserID:          m.UserID,
		LeaveTypeID:     m.LeaveTypeID,
		Year:            m.Year,
		TotalEntitled:   m.TotalEntitled,
		Used:            m.Used,
		PendingApproval: m.PendingApproval,
		CarriedForward:  m.CarriedForward,
		Accrued:         m.Accrued,
		Expired:         m.Expired,
		LastAccruedDate: parseDatePtr(m.LastAccruedDate),
		IsLocked:        m.IsLocked,
		LockedAt:        m.LockedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func leaveRequestModel(r leave.LeaveRequest) LeaveRequest {
	return LeaveRequest{
		ID:               r.ID,
		UserID:           r.UserID,
		LeaveTypeID:      r.LeaveTypeID,
		BalanceID:        r.BalanceID,
		FromDate:         formatDate(r.FromDate),
		ToDate:           formatDate(r.ToDate),
		DurationDays:     r.DurationDays,
		Reason:           r.Reason,
		Status:           string(r.Status),
		ApproverID:       r.ApproverID,
		ApprovalComments: r.ApprovalComments,
		ApprovedAt:       r.ApprovedAt,
	}
}

func (m LeaveRequest) toDomain() leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:               m.ID,
		UserID:           m.UserID,
		LeaveTypeID:      m.LeaveTypeID,
		BalanceID:        m.BalanceID,
		FromDate:         parseDate(m.FromDate),
		ToDate:           parseDate(m.ToDate),
		DurationDays:     m.DurationDays,
		Reason:           m.Reason,
		Status:           leave.LeaveRequestStatus(m.Status),
		ApproverID:       m.ApproverID,
		ApprovalComments: m.ApprovalComments,
		ApprovedAt:       m.ApprovedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (row leaveRequestRow) toDomain() leave.LeaveRequest {
	request := row.LeaveRequest.toDomain()
	request.LeaveTypeName = row.LeaveTypeName
	if row.UserFirstName != nil {
		name := *row.UserFirstName
		if row.UserLastName != nil && *row.UserLastName != "" {
			name += " " + *row.UserLastName
		}
		request.UserName = &name
	}
	return request
}

func (m LedgerEvent) toDomain() leave.LedgerEvent {
	event := leave.LedgerEvent{
		ID:        m.ID,
		BalanceID: m.BalanceID,
		RequestID: m.RequestID,
		Type:      leave.LedgerEventType(m.Type),
		Days:      m.Days,
		ActorID:   m.ActorID,
		CreatedAt: m.CreatedAt,
	}
	if len(m.Metadata) > 0 {
		var metadata map[string]any
		if err := json.Unmarshal(m.Metadata, &metadata); err == nil && len(metadata) > 0 {
			event.Metadata = metadata
		}
	}
	return event
}

func (m CompanyHoliday) toDomain() leave.CompanyHoliday {
	return leave.CompanyHoliday{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Date:           parseDate(m.Date),
		IsOptional:     m.IsOptional,
		CreatedAt:      m.CreatedAt,
	}
}
