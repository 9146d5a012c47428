package attendance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
)

type Status string

const (
	StatusPresent     Status = "present"
	StatusAbsent      Status = "absent"
	StatusLateLogin   Status = "late_login"
	StatusEarlyLogout Status = "early_logout"
	StatusHalfDay     Status = "half_day"
	StatusLeave       Status = "leave"
	StatusHoliday     Status = "holiday"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLateLogin, StatusEarlyLogout, StatusHalfDay, StatusLeave, StatusHoliday:
		return true
	}
	return false
}

// Record is one user's attendance for one calendar day.
type Record struct {
	ID             string
	UserID         string
	OfficeID       string
	AttendanceDate time.Time

	LoginTime       *organization.Clock
	LogoutTime      *organization.Clock
	LoginLatitude   *float64
	LoginLongitude  *float64
	LogoutLatitude  *float64
	LogoutLongitude *float64
	LoginDistance   *int
	LogoutDistance  *int

	IsWithinGeofence bool
	Status           Status
	WorkedHours      *decimal.Decimal
	Remarks          string
	IsVerified       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Filter struct {
	UserID   *string
	FromDate *time.Time
	ToDate   *time.Time
	Status   *string
	Page     int
	Limit    int
}

type CorrectionStatus string

const (
	CorrectionPending   CorrectionStatus = "pending"
	CorrectionApproved  CorrectionStatus = "approved"
	CorrectionRejected  CorrectionStatus = "rejected"
	CorrectionCancelled CorrectionStatus = "cancelled"
)

func (s CorrectionStatus) IsValid() bool {
	switch s {
	case CorrectionPending, CorrectionApproved, CorrectionRejected, CorrectionCancelled:
		return true
	}
	return false
}

// Correction asks HR to replace the login and/or logout time of one attendance record.
type Correction struct {
	ID                  string
	AttendanceID        string
	RequestedBy         string
	CorrectedLoginTime  *organization.Clock
	CorrectedLogoutTime *organization.Clock
	Reason              string
	Status              CorrectionStatus
	ApproverID          *string
	ApprovalComments    string
	DecidedAt           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type CorrectionFilter struct {
	RequestedBy *string
	Status      *CorrectionStatus
	Page        int
	Limit       int
}
