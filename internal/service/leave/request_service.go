package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

// UserDirectory is the subset of the user store the leave workflow reads.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]user.User, error)
	ListActive(ctx context.Context) ([]user.User, error)
}

// RequestService drives leave requests through pending -> approved | rejected | cancelled,
// keeping the ledger in step with every transition.
type RequestService struct {
	tx         database.Transactor
	requests   leave.LeaveRequestRepository
	leaveTypes leave.LeaveTypeRepository
	users      UserDirectory
	ledger     *Ledger
	now        func() time.Time
}

func NewRequestService(
	tx database.Transactor,
	requests leave.LeaveRequestRepository,
	leaveTypes leave.LeaveTypeRepository,
	users UserDirectory,
	ledger *Ledger,
) *RequestService {
	return &RequestService{
		tx:         tx,
		requests:   requests,
		leaveTypes: leaveTypes,
		users:      users,
		ledger:     ledger,
		now:        time.Now,
	}
}

// Create reserves the duration against the requester's balance and stores a pending request.
// Leave types that need no approval are approved in the same transaction.
func (r *RequestService) Create(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	fromDate, _ := validator.IsValidDate(req.FromDate)
	toDate, _ := validator.IsValidDate(req.ToDate)
	if toDate.Before(fromDate) {
		return leave.LeaveRequest{}, leave.ErrInvalidDateRange
	}

	requester, err := r.users.GetByID(ctx, req.UserID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if !requester.IsActive {
		return leave.LeaveRequest{}, user.ErrUserInactive
	}

	leaveType, err := r.leaveTypes.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if leaveType.OrganizationID != requester.OrganizationID {
		return leave.LeaveRequest{}, leave.ErrLeaveTypeNotFound
	}
	if !leaveType.IsActive {
		return leave.LeaveRequest{}, leave.ErrLeaveTypeInactive
	}

	var created leave.LeaveRequest
	err = r.tx.WithinTx(ctx, func(ctx context.Context) error {
		balance, _, err := r.ledger.EnsureBalance(ctx, requester.ID, leaveType, fromDate.Year(), &requester.DateOfJoining)
		if err != nil {
			return err
		}

		created, err = r.requests.Create(ctx, leave.LeaveRequest{
			UserID:       requester.ID,
			LeaveTypeID:  leaveType.ID,
			BalanceID:    balance.ID,
			FromDate:     fromDate,
			ToDate:       toDate,
			DurationDays: leave.InclusiveDays(fromDate, toDate),
			Reason:       req.Reason,
			Status:       leave.LeaveRequestStatusPending,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}

		if _, err := r.ledger.Reserve(ctx, balance.ID, created.ID, created.Days(), requester.ID); err != nil {
			return err
		}

		if leaveType.RequiresApproval {
			return nil
		}
		if _, err := r.ledger.Consume(ctx, balance.ID, created.ID, created.Days(), requester.ID); err != nil {
			return err
		}
		approvedAt := r.now().UTC()
		created.Status = leave.LeaveRequestStatusApproved
		created.ApprovedAt = &approvedAt
		return r.requests.UpdateDecision(ctx, created)
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	name := leaveType.Name
	fullName := requester.FullName()
	created.LeaveTypeName = &name
	created.UserName = &fullName
	return created, nil
}

// Approve moves the reservation into used days.
func (r *RequestService) Approve(ctx context.Context, req leave.DecideLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	if err := r.checkOrganization(ctx, req.RequestID, req.OrganizationID); err != nil {
		return leave.LeaveRequest{}, err
	}
	return r.transition(ctx, req.RequestID, leave.LeaveRequestStatusApproved, req.ApproverID, req.Comments, r.ledger.Consume)
}

// Reject releases the reservation.
func (r *RequestService) Reject(ctx context.Context, req leave.DecideLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	if err := r.checkOrganization(ctx, req.RequestID, req.OrganizationID); err != nil {
		return leave.LeaveRequest{}, err
	}
	return r.transition(ctx, req.RequestID, leave.LeaveRequestStatusRejected, req.ApproverID, req.Comments, r.ledger.Release)
}

// Cancel withdraws a pending request on behalf of its owner.
func (r *RequestService) Cancel(ctx context.Context, req leave.CancelLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	request, err := r.requests.GetByID(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if request.UserID != req.UserID {
		return leave.LeaveRequest{}, leave.ErrNotRequestOwner
	}
	return r.transition(ctx, req.RequestID, leave.LeaveRequestStatusCancelled, req.UserID, nil, r.ledger.Release)
}

// CancelPendingForUser cancels every pending request of userID, used when the user is offboarded.
func (r *RequestService) CancelPendingForUser(ctx context.Context, userID, actorID string) (int, error) {
	pending, err := r.requests.ListPendingByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending leave requests: %w", err)
	}
	comment := "cancelled on offboarding"
	for _, request := range pending {
		if _, err := r.transition(ctx, request.ID, leave.LeaveRequestStatusCancelled, actorID, &comment, r.ledger.Release); err != nil {
			return 0, err
		}
	}
	return len(pending), nil
}

type settleFunc func(ctx context.Context, balanceID, requestID string, days decimal.Decimal, actorID string) (leave.LeaveBalance, error)

func (r *RequestService) transition(
	ctx context.Context,
	requestID string,
	next leave.LeaveRequestStatus,
	actorID string,
	comments *string,
	settle settleFunc,
) (leave.LeaveRequest, error) {
	var request leave.LeaveRequest
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		request, err = r.requests.LockForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !request.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", leave.ErrInvalidTransition, request.Status, next)
		}

		if _, err := settle(ctx, request.BalanceID, request.ID, request.Days(), actorID); err != nil {
			return err
		}

		request.Status = next
		request.ApprovalComments = comments
		if next != leave.LeaveRequestStatusCancelled || actorID != request.UserID {
			request.ApproverID = &actorID
		}
		if next == leave.LeaveRequestStatusApproved {
			approvedAt := r.now().UTC()
			request.ApprovedAt = &approvedAt
		}
		return r.requests.UpdateDecision(ctx, request)
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	return request, nil
}

// checkOrganization rejects decisions on requests that belong to another organization.
func (r *RequestService) checkOrganization(ctx context.Context, requestID, organizationID string) error {
	request, err := r.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	owner, err := r.users.GetByID(ctx, request.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return leave.ErrLeaveRequestNotFound
		}
		return err
	}
	if owner.OrganizationID != organizationID {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}
