package leave

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
)

// EntitlementCalculator computes a starting entitlement from a leave type's proration policy.
type EntitlementCalculator struct{}

func NewEntitlementCalculator() *EntitlementCalculator {
	return &EntitlementCalculator{}
}

// ComputeInitialEntitlement returns the days granted for year to someone joining on joinDate.
// A join date before the year grants the full amount and one after it grants nothing.
func (c *EntitlementCalculator) ComputeInitialEntitlement(joinDate time.Time, leaveType leave.LeaveType, year int) decimal.Decimal {
	full := leaveType.MaxDaysPerYear
	if !leaveType.ProrateOnJoin {
		return full
	}

	joinDate = leave.DateOf(joinDate)
	switch {
	case joinDate.Year() < year:
		return full
	case joinDate.Year() > year:
		return decimal.Zero
	}

	switch leaveType.ProrationBasis {
	case leave.ProrationDaily:
		yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		remaining := leave.InclusiveDays(joinDate, yearEnd)
		return prorate(full, remaining, daysInYear(year))
	case leave.ProrationMonthly:
		month := int(joinDate.Month())
		return prorate(full, 12-month+1, 12)
	case leave.ProrationQuarterly:
		quarter := quarterOf(joinDate)
		return prorate(full, 4-quarter+1, 4)
	default:
		return full
	}
}

func prorate(full decimal.Decimal, part, whole int) decimal.Decimal {
	return full.Mul(decimal.NewFromInt(int64(part))).Div(decimal.NewFromInt(int64(whole))).Round(2)
}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
