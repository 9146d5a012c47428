package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	ListTypes(w http.ResponseWriter, r *http.Request)
	GetType(w http.ResponseWriter, r *http.Request)
	CreateType(w http.ResponseWriter, r *http.Request)
	UpdateType(w http.ResponseWriter, r *http.Request)

	GetMyBalances(w http.ResponseWriter, r *http.Request)
	GetBalances(w http.ResponseWriter, r *http.Request)
	ListBalanceEvents(w http.ResponseWriter, r *http.Request)

	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)

	ListHolidays(w http.ResponseWriter, r *http.Request)
	CreateHoliday(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
	now          func() time.Time
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
		now:          time.Now,
	}
}

// ListTypes implements LeaveHandler.
func (l *LeaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	includeInactive := queryBool(r, "include_inactive") && user.HasPermission(claims.Role, user.PermissionLeaveManageTypes)
	types, err := l.leaveService.ListLeaveTypes(r.Context(), claims.OrganizationID, includeInactive)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, types)
}

// GetType implements LeaveHandler.
func (l *LeaveHandlerImpl) GetType(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	leaveType, err := l.leaveService.GetLeaveType(r.Context(), claims.OrganizationID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leaveType)
}

// CreateType implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req leave.CreateLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateType decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID

	leaveType, err := l.leaveService.CreateLeaveType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave type created successfully", leaveType)
}

// UpdateType implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateType(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req leave.UpdateLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateType decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.OrganizationID = claims.OrganizationID

	leaveType, err := l.leaveService.UpdateLeaveType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave type updated successfully", leaveType)
}

// GetMyBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	year, err := l.yearParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	balances, err := l.leaveService.GetBalances(r.Context(), claims.OrganizationID, claims.UserID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balances)
}

// GetBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	userID := queryString(r, "user_id")
	if userID == nil {
		response.BadRequest(w, "user_id is required", map[string]string{"user_id": "user_id is required"})
		return
	}
	year, err := l.yearParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	balances, err := l.leaveService.GetBalances(r.Context(), claims.OrganizationID, *userID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balances)
}

// ListBalanceEvents implements LeaveHandler.
func (l *LeaveHandlerImpl) ListBalanceEvents(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	events, err := l.leaveService.ListBalanceEvents(r.Context(), claims.OrganizationID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, events)
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req leave.CreateLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = claims.UserID

	created, err := l.leaveService.CreateLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", created)
}

// GetMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	filter, err := requestFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter.UserID = &claims.UserID

	l.writeRequests(w, r, claims.OrganizationID, filter)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	filter, err := requestFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	l.writeRequests(w, r, claims.OrganizationID, filter)
}

// GetRequest implements LeaveHandler. Callers without leave.view_all only see their own requests.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	request, err := l.leaveService.GetLeaveRequest(r.Context(), claims.OrganizationID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if request.UserID != claims.UserID && !user.HasPermission(claims.Role, user.PermissionLeaveViewAll) {
		response.HandleError(w, leave.ErrLeaveRequestNotFound)
		return
	}

	response.Success(w, request)
}

// ApproveRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDecision(w, r, "ApproveRequest")
	if !ok {
		return
	}

	approved, err := l.leaveService.ApproveLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved successfully", approved)
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDecision(w, r, "RejectRequest")
	if !ok {
		return
	}

	rejected, err := l.leaveService.RejectLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected successfully", rejected)
}

// CancelRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	cancelled, err := l.leaveService.CancelLeaveRequest(r.Context(), leave.CancelLeaveRequestRequest{
		RequestID: chi.URLParam(r, "id"),
		UserID:    claims.UserID,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled successfully", cancelled)
}

// ListHolidays implements LeaveHandler.
func (l *LeaveHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	year, err := queryInt(r, "year")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	holidays, err := l.leaveService.ListHolidays(r.Context(), claims.OrganizationID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, holidays)
}

// CreateHoliday implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req leave.CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateHoliday decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID

	holiday, err := l.leaveService.CreateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created successfully", holiday)
}

func (l *LeaveHandlerImpl) writeRequests(w http.ResponseWriter, r *http.Request, organizationID string, filter leave.LeaveRequestFilter) {
	list, err := l.leaveService.ListLeaveRequests(r.Context(), organizationID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, list.Requests, list.Page, list.Limit, list.TotalCount, list.TotalPages)
}

// yearParam defaults to the current year.
func (l *LeaveHandlerImpl) yearParam(r *http.Request) (int, error) {
	year, err := queryInt(r, "year")
	if err != nil {
		return 0, err
	}
	if year == nil {
		return l.now().Year(), nil
	}
	return *year, nil
}

func requestFilter(r *http.Request) (leave.LeaveRequestFilter, error) {
	page, limit, err := pagination(r)
	if err != nil {
		return leave.LeaveRequestFilter{}, err
	}
	year, err := queryInt(r, "year")
	if err != nil {
		return leave.LeaveRequestFilter{}, err
	}

	return leave.LeaveRequestFilter{
		UserID:      queryString(r, "user_id"),
		LeaveTypeID: queryString(r, "leave_type_id"),
		Status:      queryString(r, "status"),
		Year:        year,
		Page:        page,
		Limit:       limit,
	}, nil
}

// decodeDecision reads the optional approval comments. An empty body is allowed.
func decodeDecision(w http.ResponseWriter, r *http.Request, op string) (leave.DecideLeaveRequestRequest, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return leave.DecideLeaveRequestRequest{}, false
	}

	var req leave.DecideLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return leave.DecideLeaveRequestRequest{}, false
	}
	req.RequestID = chi.URLParam(r, "id")
	req.ApproverID = claims.UserID
	req.OrganizationID = claims.OrganizationID

	return req, true
}
