package fixtures

import (
	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func days(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ==========================================
// DEFAULT LEAVE TYPES
// ==========================================

// DefaultLeaveTypes returns the leave policy a new organization starts with.
func DefaultLeaveTypes(organizationID string) []leave.CreateLeaveTypeRequest {
	return []leave.CreateLeaveTypeRequest{
		// 12 days a year, earned monthly, up to 6 carried into the next year.
		{
			OrganizationID:      organizationID,
			Name:                "Annual Leave",
			Code:                "ANNUAL",
			Description:         strPtr("Paid annual leave, accrued monthly"),
			MaxDaysPerYear:      days(12),
			CarryForwardAllowed: true,
			CarryForwardMaxDays: days(6),
			AccrualFrequency:    string(leave.AccrualMonthly),
			AccrualDays:         decimal.RequireFromString("1"),
			ProrateOnJoin:       true,
			ProrateOnExit:       true,
			ProrationBasis:      string(leave.ProrationMonthly),
		},
		{
			OrganizationID:   organizationID,
			Name:             "Sick Leave",
			Code:             "SICK",
			Description:      strPtr("Paid sick leave"),
			MaxDaysPerYear:   days(12),
			AccrualFrequency: string(leave.AccrualOneTime),
			RequiresApproval: boolPtr(false),
			ProrateOnJoin:    true,
			ProrationBasis:   string(leave.ProrationMonthly),
		},
		{
			OrganizationID:   organizationID,
			Name:             "Marriage Leave",
			Code:             "MARRIAGE",
			Description:      strPtr("Leave for the employee's own wedding"),
			MaxDaysPerYear:   days(3),
			AccrualFrequency: string(leave.AccrualOneTime),
			ProrationBasis:   string(leave.ProrationMonthly),
		},
		{
			OrganizationID:   organizationID,
			Name:             "Unpaid Leave",
			Code:             "UNPAID",
			MaxDaysPerYear:   days(30),
			AccrualFrequency: string(leave.AccrualOneTime),
			IsPaid:           boolPtr(false),
			ProrationBasis:   string(leave.ProrationMonthly),
		},
	}
}

// ==========================================
// DEFAULT DEPARTMENTS
// ==========================================

func DefaultDepartments(organizationID string) []organization.CreateDepartmentRequest {
	return []organization.CreateDepartmentRequest{
		{OrganizationID: organizationID, Name: "Management"},
		{OrganizationID: organizationID, Name: "Human Resources", Description: strPtr("People operations and leave policy")},
		{OrganizationID: organizationID, Name: "Operations"},
	}
}
