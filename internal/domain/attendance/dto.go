package attendance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

type CheckInRequest struct {
	UserID    string  `json:"-"`
	OfficeID  string  `json:"office_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Time is the local wall-clock check-in time in "HH:MM:SS". Empty means now.
	Time string `json:"time"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if !validator.IsValidUUID(r.OfficeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "office_id",
			Message: "office_id must be a valid UUID",
		})
	}
	if !validator.IsValidCoordinate(r.Latitude, r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude/longitude out of range",
		})
	}
	if r.Time != "" {
		if _, ok := validator.IsValidClock(r.Time); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "time",
				Message: "time must be in HH:MM:SS format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	UserID    string  `json:"-"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Time      string  `json:"time"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if !validator.IsValidCoordinate(r.Latitude, r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude/longitude out of range",
		})
	}
	if r.Time != "" {
		if _, ok := validator.IsValidClock(r.Time); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "time",
				Message: "time must be in HH:MM:SS format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceRequest struct {
	UserID   *string `json:"user_id,omitempty"`
	FromDate *string `json:"from_date,omitempty"`
	ToDate   *string `json:"to_date,omitempty"`
	Status   *string `json:"status,omitempty"`
	Page     int     `json:"page"`
	Limit    int     `json:"limit"`
}

// ToFilter validates the request and converts it to a repository filter.
func (r *ListAttendanceRequest) ToFilter() (Filter, error) {
	var errs validator.ValidationErrors
	f := Filter{UserID: r.UserID, Status: r.Status, Page: r.Page, Limit: r.Limit}

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 31
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}
	if r.FromDate != nil {
		d, ok := validator.IsValidDate(*r.FromDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "from_date",
				Message: "from_date must be in YYYY-MM-DD format",
			})
		}
		f.FromDate = &d
	}
	if r.ToDate != nil {
		d, ok := validator.IsValidDate(*r.ToDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "to_date",
				Message: "to_date must be in YYYY-MM-DD format",
			})
		}
		f.ToDate = &d
	}
	if r.Status != nil && !Status(*r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "invalid status",
		})
	}

	if len(errs) > 0 {
		return Filter{}, errs
	}
	return f, nil
}

type AttendanceResponse struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	OfficeID         string           `json:"office_id"`
	AttendanceDate   string           `json:"attendance_date"`
	LoginTime        *string          `json:"login_time,omitempty"`
	LogoutTime       *string          `json:"logout_time,omitempty"`
	LoginDistance    *int             `json:"login_distance,omitempty"`
	LogoutDistance   *int             `json:"logout_distance,omitempty"`
	IsWithinGeofence bool             `json:"is_within_geofence"`
	Status           string           `json:"status"`
	WorkedHours      *decimal.Decimal `json:"worked_hours,omitempty"`
	Distance         *float64         `json:"distance_meters,omitempty"`
}

func NewAttendanceResponse(r Record) AttendanceResponse {
	resp := AttendanceResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		OfficeID:         r.OfficeID,
		AttendanceDate:   r.AttendanceDate.Format(time.DateOnly),
		LoginDistance:    r.LoginDistance,
		LogoutDistance:   r.LogoutDistance,
		IsWithinGeofence: r.IsWithinGeofence,
		Status:           string(r.Status),
		WorkedHours:      r.WorkedHours,
	}
	if r.LoginTime != nil {
		s := r.LoginTime.String()
		resp.LoginTime = &s
	}
	if r.LogoutTime != nil {
		s := r.LogoutTime.String()
		resp.LogoutTime = &s
	}
	return resp
}

type ListAttendanceResponse struct {
	Records    []AttendanceResponse `json:"records"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

type RequestCorrectionRequest struct {
	UserID              string  `json:"-"`
	AttendanceID        string  `json:"attendance_id"`
	CorrectedLoginTime  *string `json:"corrected_login_time,omitempty"`
	CorrectedLogoutTime *string `json:"corrected_logout_time,omitempty"`
	Reason              string  `json:"reason"`
}

func (r *RequestCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if !validator.IsValidUUID(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id must be a valid UUID",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}
	if r.CorrectedLoginTime == nil && r.CorrectedLogoutTime == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "corrected_login_time",
			Message: "corrected_login_time or corrected_logout_time is required",
		})
	}
	if r.CorrectedLoginTime != nil {
		if _, ok := validator.IsValidClock(*r.CorrectedLoginTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "corrected_login_time",
				Message: "corrected_login_time must be in HH:MM:SS format",
			})
		}
	}
	if r.CorrectedLogoutTime != nil {
		if _, ok := validator.IsValidClock(*r.CorrectedLogoutTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "corrected_logout_time",
				Message: "corrected_logout_time must be in HH:MM:SS format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DecideCorrectionRequest struct {
	CorrectionID   string           `json:"-"`
	ApproverID     string           `json:"-"`
	OrganizationID string           `json:"-"`
	Decision       CorrectionStatus `json:"-"`
	Comments       *string          `json:"comments,omitempty"`
}

func (r *DecideCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CorrectionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "correction_id",
			Message: "correction_id is required",
		})
	}
	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "approver_id",
			Message: "approver_id is required",
		})
	}
	if r.Decision != CorrectionApproved && r.Decision != CorrectionRejected {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be approved or rejected",
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

type CancelCorrectionRequest struct {
	CorrectionID string `json:"-"`
	UserID       string `json:"-"`
}

type ListCorrectionsRequest struct {
	RequestedBy *string `json:"requested_by,omitempty"`
	Status      *string `json:"status,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

func (r *ListCorrectionsRequest) ToFilter() (CorrectionFilter, error) {
	var errs validator.ValidationErrors
	f := CorrectionFilter{RequestedBy: r.RequestedBy, Page: r.Page, Limit: r.Limit}

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
	if r.Status != nil {
		status := CorrectionStatus(*r.Status)
		if !status.IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of pending, approved, rejected, cancelled",
			})
		}
		f.Status = &status
	}

	if len(errs) > 0 {
		return CorrectionFilter{}, errs
	}
	return f, nil
}

type CorrectionResponse struct {
	ID                  string     `json:"id"`
	AttendanceID        string     `json:"attendance_id"`
	RequestedBy         string     `json:"requested_by"`
	CorrectedLoginTime  *string    `json:"corrected_login_time,omitempty"`
	CorrectedLogoutTime *string    `json:"corrected_logout_time,omitempty"`
	Reason              string     `json:"reason"`
	Status              string     `json:"status"`
	ApproverID          *string    `json:"approver_id,omitempty"`
	ApprovalComments    string     `json:"approval_comments,omitempty"`
	DecidedAt           *time.Time `json:"decided_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	// Attendance is the corrected record, set on approval.
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

func NewCorrectionResponse(c Correction) CorrectionResponse {
	resp := CorrectionResponse{
		ID:               c.ID,
		AttendanceID:     c.AttendanceID,
		RequestedBy:      c.RequestedBy,
		Reason:           c.Reason,
		Status:           string(c.Status),
		ApproverID:       c.ApproverID,
		ApprovalComments: c.ApprovalComments,
		DecidedAt:        c.DecidedAt,
		CreatedAt:        c.CreatedAt,
	}
	if c.CorrectedLoginTime != nil {
		s := c.CorrectedLoginTime.String()
		resp.CorrectedLoginTime = &s
	}
	if c.CorrectedLogoutTime != nil {
		s := c.CorrectedLogoutTime.String()
		resp.CorrectedLogoutTime = &s
	}
	return resp
}

type ListCorrectionsResponse struct {
	Corrections []CorrectionResponse `json:"corrections"`
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
}
