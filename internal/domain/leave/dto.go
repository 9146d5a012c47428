package leave

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

var (
	accrualFrequencies = []string{string(AccrualMonthly), string(AccrualQuarterly), string(AccrualYearly), string(AccrualOneTime)}
	prorationBases     = []string{string(ProrationDaily), string(ProrationMonthly), string(ProrationQuarterly), string(ProrationAnnually)}
	requestStatuses    = []string{string(LeaveRequestStatusPending), string(LeaveRequestStatusApproved), string(LeaveRequestStatusRejected), string(LeaveRequestStatusCancelled)}
)

type CreateLeaveTypeRequest struct {
	OrganizationID      string          `json:"-"`
	Name                string          `json:"name"`
	Code                string          `json:"code"`
	Description         *string         `json:"description,omitempty"`
	MaxDaysPerYear      decimal.Decimal `json:"max_days_per_year"`
	CarryForwardAllowed bool            `json:"carry_forward_allowed"`
	CarryForwardMaxDays decimal.Decimal `json:"carry_forward_max_days"`
	AccrualFrequency    string          `json:"accrual_frequency"`
	AccrualDays         decimal.Decimal `json:"accrual_days"`
	IsPaid              *bool           `json:"is_paid,omitempty"`
	RequiresApproval    *bool           `json:"requires_approval,omitempty"`
	AllowEncashment     bool            `json:"allow_encashment"`
	EncashmentRate      decimal.Decimal `json:"encashment_rate"`
	ProrateOnJoin       bool            `json:"prorate_on_join"`
	ProrateOnExit       bool            `json:"prorate_on_exit"`
	ProrationBasis      string          `json:"proration_basis"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "organization_id",
			Message: "organization_id is required",
		})
	}

	// Leave type name
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	// Leave type code
	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code is required",
		})
	}
	if len(r.Code) > 20 {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must not exceed 20 characters",
		})
	}

	if !validator.IsNonNegativeDays(r.MaxDaysPerYear) {
		errs = append(errs, validator.ValidationError{
			Field:   "max_days_per_year",
			Message: "max_days_per_year must be a non-negative amount with at most 2 decimals",
		})
	}
	if !validator.IsNonNegativeDays(r.CarryForwardMaxDays) {
		errs = append(errs, validator.ValidationError{
			Field:   "carry_forward_max_days",
			Message: "carry_forward_max_days must be a non-negative amount with at most 2 decimals",
		})
	}
	if !validator.IsNonNegativeDays(r.AccrualDays) {
		errs = append(errs, validator.ValidationError{
			Field:   "accrual_days",
			Message: "accrual_days must be a non-negative amount with at most 2 decimals",
		})
	}
	if r.EncashmentRate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "encashment_rate",
			Message: "encashment_rate must not be negative",
		})
	}

	if r.AccrualFrequency == "" {
		r.AccrualFrequency = string(AccrualYearly)
	}
	if !validator.IsInSlice(r.AccrualFrequency, accrualFrequencies) {
		errs = append(errs, validator.ValidationError{
			Field:   "accrual_frequency",
			Message: "accrual_frequency must be one of monthly, quarterly, yearly, onetime",
		})
	}

	if r.ProrationBasis == "" {
		r.ProrationBasis = string(ProrationMonthly)
	}
	if !validator.IsInSlice(r.ProrationBasis, prorationBases) {
		errs = append(errs, validator.ValidationError{
			Field:   "proration_basis",
			Message: "proration_basis must be one of daily, monthly, quarterly, annually",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateLeaveTypeRequest struct {
	ID                  string           `json:"-"`
	OrganizationID      string           `json:"-"`
	Name                *string          `json:"name,omitempty"`
	Description         *string          `json:"description,omitempty"`
	MaxDaysPerYear      *decimal.Decimal `json:"max_days_per_year,omitempty"`
	CarryForwardAllowed *bool            `json:"carry_forward_allowed,omitempty"`
	CarryForwardMaxDays *decimal.Decimal `json:"carry_forward_max_days,omitempty"`
	AccrualFrequency    *string          `json:"accrual_frequency,omitempty"`
	AccrualDays         *decimal.Decimal `json:"accrual_days,omitempty"`
	IsPaid              *bool            `json:"is_paid,omitempty"`
	RequiresApproval    *bool            `json:"requires_approval,omitempty"`
	IsActive            *bool            `json:"is_active,omitempty"`
	AllowEncashment     *bool            `json:"allow_encashment,omitempty"`
	EncashmentRate      *decimal.Decimal `json:"encashment_rate,omitempty"`
	ProrateOnJoin       *bool            `json:"prorate_on_join,omitempty"`
	ProrateOnExit       *bool            `json:"prorate_on_exit,omitempty"`
	ProrationBasis      *string          `json:"proration_basis,omitempty"`
}

func (r *UpdateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 255 characters",
			})
		}
	}

	for field, value := range map[string]*decimal.Decimal{
		"max_days_per_year":      r.MaxDaysPerYear,
		"carry_forward_max_days": r.CarryForwardMaxDays,
		"accrual_days":           r.AccrualDays,
	} {
		if value != nil && !validator.IsNonNegativeDays(*value) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be a non-negative amount with at most 2 decimals",
			})
		}
	}
	if r.EncashmentRate != nil && r.EncashmentRate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "encashment_rate",
			Message: "encashment_rate must not be negative",
		})
	}
	if r.AccrualFrequency != nil && !validator.IsInSlice(*r.AccrualFrequency, accrualFrequencies) {
		errs = append(errs, validator.ValidationError{
			Field:   "accrual_frequency",
			Message: "accrual_frequency must be one of monthly, quarterly, yearly, onetime",
		})
	}
	if r.ProrationBasis != nil && !validator.IsInSlice(*r.ProrationBasis, prorationBases) {
		errs = append(errs, validator.ValidationError{
			Field:   "proration_basis",
			Message: "proration_basis must be one of daily, monthly, quarterly, annually",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveTypeResponse struct {
	ID                  string          `json:"id"`
	OrganizationID      string          `json:"organization_id"`
	Name                string          `json:"name"`
	Code                string          `json:"code"`
	Description         *string         `json:"description,omitempty"`
	MaxDaysPerYear      decimal.Decimal `json:"max_days_per_year"`
	CarryForwardAllowed bool            `json:"carry_forward_allowed"`
	CarryForwardMaxDays decimal.Decimal `json:"carry_forward_max_days"`
	AccrualFrequency    string          `json:"accrual_frequency"`
	AccrualDays         decimal.Decimal `json:"accrual_days"`
	IsPaid              bool            `json:"is_paid"`
	RequiresApproval    bool            `json:"requires_approval"`
	IsActive            bool            `json:"is_active"`
	AllowEncashment     bool            `json:"allow_encashment"`
	EncashmentRate      decimal.Decimal `json:"encashment_rate"`
	ProrateOnJoin       bool            `json:"prorate_on_join"`
	ProrateOnExit       bool            `json:"prorate_on_exit"`
	ProrationBasis      string          `json:"proration_basis"`
}

func NewLeaveTypeResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
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

type LeaveBalanceResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	LeaveTypeID     string          `json:"leave_type_id"`
	LeaveTypeName   string          `json:"leave_type_name"`
	LeaveTypeCode   string          `json:"leave_type_code"`
	Year            int             `json:"year"`
	TotalEntitled   decimal.Decimal `json:"total_entitled"`
	Used            decimal.Decimal `json:"used"`
	PendingApproval decimal.Decimal `json:"pending_approval"`
	CarriedForward  decimal.Decimal `json:"carried_forward"`
	Accrued         decimal.Decimal `json:"accrued"`
	Expired         decimal.Decimal `json:"expired"`
	Available       decimal.Decimal `json:"available"`
	LastAccruedDate *string         `json:"last_accrued_date,omitempty"`
	IsLocked        bool            `json:"is_locked"`
}

func NewLeaveBalanceResponse(b LeaveBalance, lt LeaveType) LeaveBalanceResponse {
	resp := LeaveBalanceResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		LeaveTypeID:     b.LeaveTypeID,
		LeaveTypeName:   lt.Name,
		LeaveTypeCode:   lt.Code,
		Year:            b.Year,
		TotalEntitled:   b.TotalEntitled,
		Used:            b.Used,
		PendingApproval: b.PendingApproval,
		CarriedForward:  b.CarriedForward,
		Accrued:         b.Accrued,
		Expired:         b.Expired,
		Available:       b.Available(lt.CarryForwardMaxDays),
		IsLocked:        b.IsLocked,
	}
	if b.LastAccruedDate != nil {
		d := b.LastAccruedDate.Format(time.DateOnly)
		resp.LastAccruedDate = &d
	}
	return resp
}

type LedgerEventResponse struct {
	ID        string          `json:"id"`
	BalanceID string          `json:"balance_id"`
	RequestID *string         `json:"request_id,omitempty"`
	Type      string          `json:"type"`
	Days      decimal.Decimal `json:"days"`
	ActorID   *string         `json:"actor_id,omitempty"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewLedgerEventResponse(e LedgerEvent) LedgerEventResponse {
	return LedgerEventResponse{
		ID:        e.ID,
		BalanceID: e.BalanceID,
		RequestID: e.RequestID,
		Type:      string(e.Type),
		Days:      e.Days,
		ActorID:   e.ActorID,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

type CreateLeaveRequestRequest struct {
	UserID      string `json:"-"`
	LeaveTypeID string `json:"leave_type_id"`
	FromDate    string `json:"from_date"`
	ToDate      string `json:"to_date"`
	Reason      string `json:"reason"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	} else if !validator.IsValidUUID(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id must be a valid UUID",
		})
	}

	if _, ok := validator.IsValidDate(r.FromDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "from_date",
			Message: "from_date must be in YYYY-MM-DD format",
		})
	}
	if _, ok := validator.IsValidDate(r.ToDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "to_date",
			Message: "to_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}
	if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DecideLeaveRequestRequest carries an approve or reject decision.
type DecideLeaveRequestRequest struct {
	RequestID      string  `json:"-"`
	ApproverID     string  `json:"-"`
	OrganizationID string  `json:"-"`
	Comments       *string `json:"comments,omitempty"`
}

func (r *DecideLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}
	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "approver_id",
			Message: "approver_id is required",
		})
	}
	if r.Comments != nil && len(*r.Comments) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "comments",
			Message: "comments must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CancelLeaveRequestRequest struct {
	RequestID string `json:"-"`
	UserID    string `json:"-"`
}

func (r *CancelLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}
	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveRequestFilter struct {
	UserID      *string `json:"user_id,omitempty"`
	LeaveTypeID *string `json:"leave_type_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	Year        *int    `json:"year,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, requestStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of pending, approved, rejected, cancelled",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (f LeaveRequestFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type LeaveRequestResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	UserName         *string    `json:"user_name,omitempty"`
	LeaveTypeID      string     `json:"leave_type_id"`
	LeaveTypeName    *string    `json:"leave_type_name,omitempty"`
	BalanceID        string     `json:"balance_id"`
	FromDate         string     `json:"from_date"`
	ToDate           string     `json:"to_date"`
	DurationDays     int        `json:"duration_days"`
	Reason           string     `json:"reason"`
	Status           string     `json:"status"`
	ApproverID       *string    `json:"approver_id,omitempty"`
	ApprovalComments *string    `json:"approval_comments,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		UserName:         r.UserName,
		LeaveTypeID:      r.LeaveTypeID,
		LeaveTypeName:    r.LeaveTypeName,
		BalanceID:        r.BalanceID,
		FromDate:         r.FromDate.Format(time.DateOnly),
		ToDate:           r.ToDate.Format(time.DateOnly),
		DurationDays:     r.DurationDays,
		Reason:           r.Reason,
		Status:           string(r.Status),
		ApproverID:       r.ApproverID,
		ApprovalComments: r.ApprovalComments,
		ApprovedAt:       r.ApprovedAt,
		CreatedAt:        r.CreatedAt,
	}
}

type ListLeaveRequestResponse struct {
	Requests   []LeaveRequestResponse `json:"requests"`
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

type CreateHolidayRequest struct {
	OrganizationID string `json:"-"`
	Name           string `json:"name"`
	Date           string `json:"date"`
	IsOptional     bool   `json:"is_optional"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "organization_id",
			Message: "organization_id is required",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type HolidayResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	IsOptional bool   `json:"is_optional"`
}

func NewHolidayResponse(h CompanyHoliday) HolidayResponse {
	return HolidayResponse{
		ID:         h.ID,
		Name:       h.Name,
		Date:       h.Date.Format(time.DateOnly),
		IsOptional: h.IsOptional,
	}
}
