package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	ListAttendance(w http.ResponseWriter, r *http.Request)

	RequestCorrection(w http.ResponseWriter, r *http.Request)
	GetMyCorrections(w http.ResponseWriter, r *http.Request)
	ListCorrections(w http.ResponseWriter, r *http.Request)
	ApproveCorrection(w http.ResponseWriter, r *http.Request)
	RejectCorrection(w http.ResponseWriter, r *http.Request)
	CancelCorrection(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// CheckIn implements AttendanceHandler.
func (a *AttendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req attendance.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CheckIn decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = claims.UserID

	record, err := a.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked in successfully", record)
}

// CheckOut implements AttendanceHandler.
func (a *AttendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req attendance.CheckOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CheckOut decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = claims.UserID

	record, err := a.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", record)
}

// GetMyAttendance implements AttendanceHandler.
func (a *AttendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	req, err := attendanceQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	list, err := a.attendanceService.GetMyAttendance(r.Context(), claims.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, list.Records, list.Page, list.Limit, list.TotalCount, list.TotalPages)
}

// ListAttendance implements AttendanceHandler.
func (a *AttendanceHandlerImpl) ListAttendance(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	req, err := attendanceQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	list, err := a.attendanceService.ListAttendance(r.Context(), claims.OrganizationID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, list.Records, list.Page, list.Limit, list.TotalCount, list.TotalPages)
}

func attendanceQuery(r *http.Request) (attendance.ListAttendanceRequest, error) {
	page, limit, err := pagination(r)
	if err != nil {
		return attendance.ListAttendanceRequest{}, err
	}

	return attendance.ListAttendanceRequest{
		UserID:   queryString(r, "user_id"),
		FromDate: queryString(r, "from_date"),
		ToDate:   queryString(r, "to_date"),
		Status:   queryString(r, "status"),
		Page:     page,
		Limit:    limit,
	}, nil
}

// RequestCorrection implements AttendanceHandler.
func (a *AttendanceHandlerImpl) RequestCorrection(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req attendance.RequestCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RequestCorrection decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = claims.UserID

	correction, err := a.attendanceService.RequestCorrection(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance correction requested", correction)
}

// GetMyCorrections implements AttendanceHandler.
func (a *AttendanceHandlerImpl) GetMyCorrections(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	req, err := correctionQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	list, err := a.attendanceService.GetMyCorrections(r.Context(), claims.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, list.Corrections, list.Page, list.Limit, list.TotalCount, list.TotalPages)
}

// ListCorrections implements AttendanceHandler.
func (a *AttendanceHandlerImpl) ListCorrections(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	req, err := correctionQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.RequestedBy = queryString(r, "user_id")

	list, err := a.attendanceService.ListCorrections(r.Context(), claims.OrganizationID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, list.Corrections, list.Page, list.Limit, list.TotalCount, list.TotalPages)
}

// ApproveCorrection implements AttendanceHandler.
func (a *AttendanceHandlerImpl) ApproveCorrection(w http.ResponseWriter, r *http.Request) {
	a.decideCorrection(w, r, attendance.CorrectionApproved, "Attendance correction approved")
}

// RejectCorrection implements AttendanceHandler.
func (a *AttendanceHandlerImpl) RejectCorrection(w http.ResponseWriter, r *http.Request) {
	a.decideCorrection(w, r, attendance.CorrectionRejected, "Attendance correction rejected")
}

func (a *AttendanceHandlerImpl) decideCorrection(w http.ResponseWriter, r *http.Request, decision attendance.CorrectionStatus, message string) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req attendance.DecideCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("DecideCorrection decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.CorrectionID = chi.URLParam(r, "id")
	req.ApproverID = claims.UserID
	req.OrganizationID = claims.OrganizationID
	req.Decision = decision

	correction, err := a.attendanceService.DecideCorrection(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, correction)
}

// CancelCorrection implements AttendanceHandler.
func (a *AttendanceHandlerImpl) CancelCorrection(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	correction, err := a.attendanceService.CancelCorrection(r.Context(), attendance.CancelCorrectionRequest{
		CorrectionID: chi.URLParam(r, "id"),
		UserID:       claims.UserID,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance correction cancelled", correction)
}

func correctionQuery(r *http.Request) (attendance.ListCorrectionsRequest, error) {
	page, limit, err := pagination(r)
	if err != nil {
		return attendance.ListCorrectionsRequest{}, err
	}

	return attendance.ListCorrectionsRequest{
		Status: queryString(r, "status"),
		Page:   page,
		Limit:  limit,
	}, nil
}
