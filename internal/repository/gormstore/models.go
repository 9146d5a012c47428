package gormstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Organization mirrors the organizations table.
type Organization struct {
	ID                  string  `gorm:"type:uuid;primaryKey"`
	Name                string  `gorm:"size:255;not null;uniqueIndex"`
	RegistrationNumber  *string `gorm:"size:100"`
	HeadquartersAddress string  `gorm:"type:text;not null"`
	IsActive            bool    `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (Organization) TableName() string { return "organizations" }

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = newID()
	}
	return nil
}

// OfficeLocation mirrors the office_locations table. Clock columns hold "HH:MM:SS".
type OfficeLocation struct {
	ID              string  `gorm:"type:uuid;primaryKey"`
	OrganizationID  string  `gorm:"type:uuid;not null;index:idx_office_org_name,unique,priority:1"`
	Name            string  `gorm:"size:255;not null;index:idx_office_org_name,unique,priority:2"`
	Address         string  `gorm:"type:text;not null"`
	Latitude        float64 `gorm:"not null"`
	Longitude       float64 `gorm:"not null"`
	GeoRadiusMeters int     `gorm:"not null"`
	LoginTime       string  `gorm:"size:8;not null"`
	LogoutTime      string  `gorm:"size:8;not null"`
	Timezone        string  `gorm:"size:64;not null"`
	IsActive        bool    `gorm:"not null"`
	CreatedAt       time.Time
}

func (OfficeLocation) TableName() string { return "office_locations" }

func (o *OfficeLocation) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = newID()
	}
	return nil
}

// Department mirrors the departments table.
type Department struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	OrganizationID string  `gorm:"type:uuid;not null;index:idx_department_org_name,unique,priority:1"`
	Name           string  `gorm:"size:255;not null;index:idx_department_org_name,unique,priority:2"`
	Description    *string `gorm:"type:text"`
	IsActive       bool    `gorm:"not null"`
	CreatedAt      time.Time
}

func (Department) TableName() string { return "departments" }

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = newID()
	}
	return nil
}

// User mirrors the users table.
type User struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	OrganizationID string  `gorm:"type:uuid;not null;index"`
	Email          string  `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash   string  `gorm:"size:255;not null"`
	FirstName      string  `gorm:"size:100;not null"`
	LastName       string  `gorm:"size:100;not null"`
	PhoneNumber    *string `gorm:"size:20"`
	Role           string  `gorm:"size:20;not null"`
	EmployeeCode   *string `gorm:"size:50"`
	DepartmentID   *string `gorm:"type:uuid"`
	OfficeID       *string `gorm:"type:uuid"`
	ManagerID      *string `gorm:"type:uuid"`
	DateOfJoining  string  `gorm:"size:10;not null"`
	DateOfLeaving  *string `gorm:"size:10"`
	IsActive       bool    `gorm:"not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = newID()
	}
	return nil
}

// LeaveType mirrors the leave_types table.
type LeaveType struct {
	ID                  string          `gorm:"type:uuid;primaryKey"`
	OrganizationID      string          `gorm:"type:uuid;not null;index:idx_leave_types_org_code,unique,priority:1"`
	Name                string          `gorm:"size:255;not null"`
	Code                string          `gorm:"size:20;not null;index:idx_leave_types_org_code,unique,priority:2"`
	Description         *string         `gorm:"type:text"`
	MaxDaysPerYear      decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	CarryForwardAllowed bool            `gorm:"not null"`
	CarryForwardMaxDays decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	AccrualFrequency    string          `gorm:"size:20;not null"`
	AccrualDays         decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	IsPaid              bool            `gorm:"not null"`
	RequiresApproval    bool            `gorm:"not null"`
	IsActive            bool            `gorm:"not null"`
	AllowEncashment     bool            `gorm:"not null"`
	EncashmentRate      decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	ProrateOnJoin       bool            `gorm:"not null"`
	ProrateOnExit       bool            `gorm:"not null"`
	ProrationBasis      string          `gorm:"size:20;not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (LeaveType) TableName() string { return "leave_types" }

func (lt *LeaveType) BeforeCreate(tx *gorm.DB) error {
	if lt.ID == "" {
		lt.ID = newID()
	}
	return nil
}

// LeaveBalance mirrors the leave_balances table.
type LeaveBalance struct {
	ID              string          `gorm:"type:uuid;primaryKey"`
	UserID          string          `gorm:"type:uuid;not null;index:idx_leave_balances_key,unique,priority:1"`
	LeaveTypeID     string          `gorm:"type:uuid;not null;index:idx_leave_balances_key,unique,priority:2"`
	Year            int             `gorm:"not null;index:idx_leave_balances_key,unique,priority:3;index"`
	TotalEntitled   decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	Used            decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	PendingApproval decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	CarriedForward  decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	Accrued         decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	Expired         decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	LastAccruedDate *string         `gorm:"size:10"`
	IsLocked        bool            `gorm:"not null"`
	LockedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (LeaveBalance) TableName() string { return "leave_balances" }

func (b *LeaveBalance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = newID()
	}
	return nil
}

// LeaveRequest mirrors the leave_requests table.
type LeaveRequest struct {
	ID               string  `gorm:"type:uuid;primaryKey"`
	UserID           string  `gorm:"type:uuid;not null;index"`
	LeaveTypeID      string  `gorm:"type:uuid;not null"`
	BalanceID        string  `gorm:"type:uuid;not null;index"`
	FromDate         string  `gorm:"size:10;not null"`
	ToDate           string  `gorm:"size:10;not null"`
	DurationDays     int     `gorm:"not null"`
	Reason           string  `gorm:"type:text;not null"`
	Status           string  `gorm:"size:20;not null;index"`
	ApproverID       *string `gorm:"type:uuid"`
	ApprovalComments *string `gorm:"type:text"`
	ApprovedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (LeaveRequest) TableName() string { return "leave_requests" }

func (r *LeaveRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = newID()
	}
	return nil
}

// LedgerEvent mirrors the append-only leave_ledger_events table.
type LedgerEvent struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	BalanceID string          `gorm:"type:uuid;not null;index:idx_ledger_events_balance,priority:1"`
	RequestID *string         `gorm:"type:uuid;index"`
	Type      string          `gorm:"size:20;not null"`
	Days      decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	ActorID   *string         `gorm:"type:uuid"`
	Metadata  datatypes.JSON  `gorm:"not null"`
	CreatedAt time.Time       `gorm:"not null;index:idx_ledger_events_balance,priority:2"`
}

func (LedgerEvent) TableName() string { return "leave_ledger_events" }

func (e *LedgerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = newID()
	}
	return nil
}

// CompanyHoliday mirrors the company_holidays table.
type CompanyHoliday struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	OrganizationID string `gorm:"type:uuid;not null;index:idx_holidays_org_date,unique,priority:1"`
	Name           string `gorm:"size:255;not null"`
	Date           string `gorm:"size:10;not null;index:idx_holidays_org_date,unique,priority:2"`
	IsOptional     bool   `gorm:"not null"`
	CreatedAt      time.Time
}

func (CompanyHoliday) TableName() string { return "company_holidays" }

func (h *CompanyHoliday) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = newID()
	}
	return nil
}

// AttendanceRecord mirrors the attendance_records table, one row per user and day.
type AttendanceRecord struct {
	ID               string           `gorm:"type:uuid;primaryKey"`
	UserID           string           `gorm:"type:uuid;not null;index:idx_attendance_user_date,unique,priority:1"`
	OfficeID         string           `gorm:"type:uuid;not null"`
	AttendanceDate   string           `gorm:"size:10;not null;index:idx_attendance_user_date,unique,priority:2"`
	LoginTime        *string          `gorm:"size:8"`
	LogoutTime       *string          `gorm:"size:8"`
	LoginLatitude    *float64
	LoginLongitude   *float64
	LogoutLatitude   *float64
	LogoutLongitude  *float64
	LoginDistance    *int
	LogoutDistance   *int
	IsWithinGeofence bool             `gorm:"not null"`
	Status           string           `gorm:"size:20;not null"`
	WorkedHours      *decimal.Decimal `gorm:"type:numeric(5,2)"`
	Remarks          string           `gorm:"type:text;not null"`
	IsVerified       bool             `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (AttendanceRecord) TableName() string { return "attendance_records" }

func (a *AttendanceRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = newID()
	}
	return nil
}

// AttendanceCorrection mirrors the attendance_corrections table.
type AttendanceCorrection struct {
	ID                  string  `gorm:"type:uuid;primaryKey"`
	AttendanceID        string  `gorm:"type:uuid;not null;index"`
	RequestedBy         string  `gorm:"type:uuid;not null;index"`
	CorrectedLoginTime  *string `gorm:"size:8"`
	CorrectedLogoutTime *string `gorm:"size:8"`
	Reason              string  `gorm:"type:text;not null"`
	Status              string  `gorm:"size:20;not null;index"`
	ApproverID          *string `gorm:"type:uuid"`
	ApprovalComments    string  `gorm:"type:text;not null"`
	DecidedAt           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (AttendanceCorrection) TableName() string { return "attendance_corrections" }

func (c *AttendanceCorrection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}
