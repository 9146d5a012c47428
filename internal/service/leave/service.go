package leave

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	tx             database.Transactor
	leaveTypes     leave.LeaveTypeRepository
	balances       leave.LeaveBalanceRepository
	requests       leave.LeaveRequestRepository
	events         leave.LedgerEventRepository
	holidays       leave.HolidayRepository
	users          UserDirectory
	ledger         *Ledger
	requestService *RequestService
	now            func() time.Time
}

var (
	_ leave.LeaveService = (*LeaveServiceImpl)(nil)
	_ leave.BatchService = (*LeaveServiceImpl)(nil)
)

func NewLeaveService(
	tx database.Transactor,
	leaveTypes leave.LeaveTypeRepository,
	balances leave.LeaveBalanceRepository,
	requests leave.LeaveRequestRepository,
	events leave.LedgerEventRepository,
	holidays leave.HolidayRepository,
	users UserDirectory,
	ledger *Ledger,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:             tx,
		leaveTypes:     leaveTypes,
		balances:       balances,
		requests:       requests,
		events:         events,
		holidays:       holidays,
		users:          users,
		ledger:         ledger,
		requestService: NewRequestService(tx, requests, leaveTypes, users, ledger),
		now:            time.Now,
	}
}

// CreateLeaveType implements leave.LeaveService. Active users of the organization get a
// balance for the current year right away.
func (l *LeaveServiceImpl) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	if _, err := l.leaveTypes.GetByCode(ctx, req.OrganizationID, req.Code); err == nil {
		return leave.LeaveTypeResponse{}, leave.ErrLeaveTypeCodeExists
	} else if !errors.Is(err, leave.ErrLeaveTypeNotFound) {
		return leave.LeaveTypeResponse{}, fmt.Errorf("failed to check leave type code: %w", err)
	}

	newLeaveType := leave.LeaveType{
		OrganizationID:      req.OrganizationID,
		Name:                req.Name,
		Code:                req.Code,
		Description:         req.Description,
		MaxDaysPerYear:      req.MaxDaysPerYear,
		CarryForwardAllowed: req.CarryForwardAllowed,
		CarryForwardMaxDays: req.CarryForwardMaxDays,
		AccrualFrequency:    leave.AccrualFrequency(req.AccrualFrequency),
		AccrualDays:         req.AccrualDays,
		IsPaid:              true,
		RequiresApproval:    true,
		IsActive:            true,
		AllowEncashment:     req.AllowEncashment,
		EncashmentRate:      req.EncashmentRate,
		ProrateOnJoin:       req.ProrateOnJoin,
		ProrateOnExit:       req.ProrateOnExit,
		ProrationBasis:      leave.ProrationBasis(req.ProrationBasis),
	}
	if req.IsPaid != nil {
		newLeaveType.IsPaid = *req.IsPaid
	}
	if req.RequiresApproval != nil {
		newLeaveType.RequiresApproval = *req.RequiresApproval
	}
	if err := checkLeaveTypeRules(newLeaveType); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	var created leave.LeaveType
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = l.leaveTypes.Create(ctx, newLeaveType)
		if err != nil {
			return err
		}

		members, err := l.users.ListByOrganization(ctx, created.OrganizationID, true)
		if err != nil {
			return fmt.Errorf("failed to list organization users: %w", err)
		}
		year := l.now().Year()
		for _, member := range members {
			joinDate := member.DateOfJoining
			if _, _, err := l.ledger.EnsureBalance(ctx, member.ID, created, year, &joinDate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	return leave.NewLeaveTypeResponse(created), nil
}

// UpdateLeaveType implements leave.LeaveService.
func (l *LeaveServiceImpl) UpdateLeaveType(ctx context.Context, req leave.UpdateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	existing, err := l.getLeaveType(ctx, req.OrganizationID, req.ID)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.MaxDaysPerYear != nil {
		existing.MaxDaysPerYear = *req.MaxDaysPerYear
	}
	if req.CarryForwardAllowed != nil {
		existing.CarryForwardAllowed = *req.CarryForwardAllowed
	}
	if req.CarryForwardMaxDays != nil {
		existing.CarryForwardMaxDays = *req.CarryForwardMaxDays
	}
	if req.AccrualFrequency != nil {
		existing.AccrualFrequency = leave.AccrualFrequency(*req.AccrualFrequency)
	}
	if req.AccrualDays != nil {
		existing.AccrualDays = *req.AccrualDays
	}
	if req.IsPaid != nil {
		existing.IsPaid = *req.IsPaid
	}
	if req.RequiresApproval != nil {
		existing.RequiresApproval = *req.RequiresApproval
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.AllowEncashment != nil {
		existing.AllowEncashment = *req.AllowEncashment
	}
	if req.EncashmentRate != nil {
		existing.EncashmentRate = *req.EncashmentRate
	}
	if req.ProrateOnJoin != nil {
		existing.ProrateOnJoin = *req.ProrateOnJoin
	}
	if req.ProrateOnExit != nil {
		existing.ProrateOnExit = *req.ProrateOnExit
	}
	if req.ProrationBasis != nil {
		existing.ProrationBasis = leave.ProrationBasis(*req.ProrationBasis)
	}
	if err := checkLeaveTypeRules(existing); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	updated, err := l.leaveTypes.Update(ctx, existing)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	return leave.NewLeaveTypeResponse(updated), nil
}

// GetLeaveType implements leave.LeaveService.
func (l *LeaveServiceImpl) GetLeaveType(ctx context.Context, organizationID, id string) (leave.LeaveTypeResponse, error) {
	leaveType, err := l.getLeaveType(ctx, organizationID, id)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	return leave.NewLeaveTypeResponse(leaveType), nil
}

// ListLeaveTypes implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveTypes(ctx context.Context, organizationID string, includeInactive bool) ([]leave.LeaveTypeResponse, error) {
	leaveTypes, err := l.leaveTypes.ListByOrganization(ctx, organizationID, !includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}

	responses := make([]leave.LeaveTypeResponse, 0, len(leaveTypes))
	for _, lt := range leaveTypes {
		responses = append(responses, leave.NewLeaveTypeResponse(lt))
	}
	return responses, nil
}

// GetBalances implements leave.LeaveService.
func (l *LeaveServiceImpl) GetBalances(ctx context.Context, organizationID, userID string, year int) ([]leave.LeaveBalanceResponse, error) {
	if _, err := l.getMember(ctx, organizationID, userID); err != nil {
		return nil, err
	}

	balances, err := l.balances.ListByUser(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	types := make(map[string]leave.LeaveType)
	responses := make([]leave.LeaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		lt, ok := types[b.LeaveTypeID]
		if !ok {
			lt, err = l.leaveTypes.GetByID(ctx, b.LeaveTypeID)
			if err != nil {
				return nil, fmt.Errorf("failed to get leave type by ID: %w", err)
			}
			types[b.LeaveTypeID] = lt
		}
		responses = append(responses, leave.NewLeaveBalanceResponse(b, lt))
	}
	return responses, nil
}

// ListBalanceEvents implements leave.LeaveService.
func (l *LeaveServiceImpl) ListBalanceEvents(ctx context.Context, organizationID, balanceID string) ([]leave.LedgerEventResponse, error) {
	balance, err := l.balances.GetByID(ctx, balanceID)
	if err != nil {
		return nil, err
	}
	if _, err := l.getMember(ctx, organizationID, balance.UserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, leave.ErrBalanceNotFound
		}
		return nil, err
	}

	events, err := l.events.ListByBalance(ctx, balanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger events: %w", err)
	}

	responses := make([]leave.LedgerEventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, leave.NewLedgerEventResponse(e))
	}
	return responses, nil
}

// CreateLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	created, err := l.requestService.Create(ctx, req)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(created), nil
}

// ApproveLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) ApproveLeaveRequest(ctx context.Context, req leave.DecideLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	approved, err := l.requestService.Approve(ctx, req)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(approved), nil
}

// RejectLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) RejectLeaveRequest(ctx context.Context, req leave.DecideLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	rejected, err := l.requestService.Reject(ctx, req)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(rejected), nil
}

// CancelLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CancelLeaveRequest(ctx context.Context, req leave.CancelLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	cancelled, err := l.requestService.Cancel(ctx, req)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(cancelled), nil
}

// GetLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, organizationID, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := l.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	owner, err := l.getMember(ctx, organizationID, request.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequestResponse{}, err
	}
	if request.UserName == nil {
		name := owner.FullName()
		request.UserName = &name
	}
	return leave.NewLeaveRequestResponse(request), nil
}

// ListLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveRequests(ctx context.Context, organizationID string, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := l.requests.List(ctx, organizationID, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, leave.NewLeaveRequestResponse(request))
	}

	return leave.ListLeaveRequestResponse{
		Requests:   responses,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// CreateHoliday implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateHoliday(ctx context.Context, req leave.CreateHolidayRequest) (leave.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.HolidayResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)

	created, err := l.holidays.Create(ctx, leave.CompanyHoliday{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Date:           date,
		IsOptional:     req.IsOptional,
	})
	if err != nil {
		return leave.HolidayResponse{}, err
	}
	return leave.NewHolidayResponse(created), nil
}

// ListHolidays implements leave.LeaveService.
func (l *LeaveServiceImpl) ListHolidays(ctx context.Context, organizationID string, year *int) ([]leave.HolidayResponse, error) {
	holidays, err := l.holidays.ListByOrganization(ctx, organizationID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	responses := make([]leave.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, leave.NewHolidayResponse(h))
	}
	return responses, nil
}

// InitializeBalances creates the current year balances of a new user, prorated by join date.
func (l *LeaveServiceImpl) InitializeBalances(ctx context.Context, u user.User) (int, error) {
	leaveTypes, err := l.leaveTypes.ListByOrganization(ctx, u.OrganizationID, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list leave types: %w", err)
	}

	year := l.now().Year()
	created := 0
	for _, lt := range leaveTypes {
		joinDate := u.DateOfJoining
		_, ok, err := l.ledger.EnsureBalance(ctx, u.ID, lt, year, &joinDate)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// OffboardUser cancels the user's pending requests and locks every balance they hold.
func (l *LeaveServiceImpl) OffboardUser(ctx context.Context, userID, actorID string) error {
	return l.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := l.requestService.CancelPendingForUser(ctx, userID, actorID); err != nil {
			return err
		}

		balances, err := l.balances.ListByUser(ctx, userID, 0)
		if err != nil {
			return fmt.Errorf("failed to list leave balances: %w", err)
		}
		for _, b := range balances {
			if _, err := l.ledger.Lock(ctx, b.ID, actorID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunAccrual implements leave.BatchService. Each balance is accrued in its own transaction,
// so one failure does not stop the batch.
func (l *LeaveServiceImpl) RunAccrual(ctx context.Context, today time.Time) (leave.AccrualReport, error) {
	report := leave.AccrualReport{Date: leave.DateOf(today)}

	balances, err := l.balances.ListByYear(ctx, today.Year())
	if err != nil {
		return report, fmt.Errorf("failed to list leave balances: %w", err)
	}

	for _, b := range balances {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		applied, err := l.ledger.Accrue(ctx, b.ID, today)
		switch {
		case errors.Is(err, leave.ErrBalanceLocked):
			report.Locked++
		case err != nil:
			report.Failed++
		case applied:
			report.Accrued++
		default:
			report.Skipped++
		}
	}
	return report, nil
}

// ApplyCarryForward implements leave.BatchService.
func (l *LeaveServiceImpl) ApplyCarryForward(ctx context.Context, fromYear int) (leave.CarryForwardReport, error) {
	report := leave.CarryForwardReport{FromYear: fromYear, TotalDays: decimal.Zero}

	balances, err := l.balances.ListByYear(ctx, fromYear)
	if err != nil {
		return report, fmt.Errorf("failed to list leave balances: %w", err)
	}

	types := make(map[string]leave.LeaveType)
	for _, b := range balances {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		lt, ok := types[b.LeaveTypeID]
		if !ok {
			lt, err = l.leaveTypes.GetByID(ctx, b.LeaveTypeID)
			if err != nil {
				report.Failed++
				continue
			}
			types[b.LeaveTypeID] = lt
		}
		if !lt.CarryForwardAllowed || !lt.IsActive {
			report.Skipped++
			continue
		}

		amount, applied, err := l.ledger.CarryForward(ctx, b, lt)
		switch {
		case err != nil:
			report.Failed++
		case applied:
			report.Applied++
			report.TotalDays = report.TotalDays.Add(amount)
		default:
			report.Skipped++
		}
	}
	return report, nil
}

// InitializeBalancesForYear implements leave.BatchService. It returns the number of balances created.
func (l *LeaveServiceImpl) InitializeBalancesForYear(ctx context.Context, year int) (int, error) {
	members, err := l.users.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}

	typesByOrganization := make(map[string][]leave.LeaveType)
	created := 0
	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		leaveTypes, ok := typesByOrganization[member.OrganizationID]
		if !ok {
			leaveTypes, err = l.leaveTypes.ListByOrganization(ctx, member.OrganizationID, true)
			if err != nil {
				return created, fmt.Errorf("failed to list leave types: %w", err)
			}
			typesByOrganization[member.OrganizationID] = leaveTypes
		}

		for _, lt := range leaveTypes {
			joinDate := member.DateOfJoining
			_, ok, err := l.ledger.EnsureBalance(ctx, member.ID, lt, year, &joinDate)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

func (l *LeaveServiceImpl) getLeaveType(ctx context.Context, organizationID, id string) (leave.LeaveType, error) {
	leaveType, err := l.leaveTypes.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveType{}, err
	}
	if leaveType.OrganizationID != organizationID {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return leaveType, nil
}

func (l *LeaveServiceImpl) getMember(ctx context.Context, organizationID, userID string) (user.User, error) {
	member, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if member.OrganizationID != organizationID {
		return user.User{}, user.ErrUserNotFound
	}
	return member, nil
}

func checkLeaveTypeRules(lt leave.LeaveType) error {
	if !lt.CarryForwardAllowed && lt.CarryForwardMaxDays.IsPositive() {
		return fmt.Errorf("%w: carry_forward_max_days needs carry_forward_allowed", leave.ErrInvalidLeaveTypeRule)
	}
	if !lt.AllowEncashment && lt.EncashmentRate.IsPositive() {
		return fmt.Errorf("%w: encashment_rate needs allow_encashment", leave.ErrInvalidLeaveTypeRule)
	}
	if lt.AccrualFrequency.IsIncremental() && lt.AccrualDays.GreaterThan(lt.MaxDaysPerYear) && lt.MaxDaysPerYear.IsPositive() {
		return fmt.Errorf("%w: accrual_days exceeds max_days_per_year", leave.ErrInvalidLeaveTypeRule)
	}
	return nil
}
