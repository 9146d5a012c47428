package attendance

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/pkg/utils"
)

// Geofence is the outcome of measuring a reported position against an office.
type Geofence struct {
	DistanceMeters float64
	Within         bool
}

// Meters is the distance rounded to whole meters, as stored on the record.
func (g Geofence) Meters() int {
	return int(math.Round(g.DistanceMeters))
}

func MeasureGeofence(office organization.OfficeLocation, latitude, longitude float64) Geofence {
	distance := utils.CalculateHaversineDistance(latitude, longitude, office.Latitude, office.Longitude)
	return Geofence{
		DistanceMeters: distance,
		Within:         utils.WithinRadius(distance, office.GeoRadiusMeters),
	}
}

// LoginStatus is late_login strictly after the office start, present otherwise.
func LoginStatus(login, officeLogin organization.Clock) attendance.Status {
	if login.After(officeLogin) {
		return attendance.StatusLateLogin
	}
	return attendance.StatusPresent
}

// LogoutStatus decides the day's final status. Leaving early after arriving late marks the day absent.
func LogoutStatus(logout, officeLogout organization.Clock, current attendance.Status) attendance.Status {
	switch {
	case logout.Before(officeLogout) && current == attendance.StatusLateLogin:
		return attendance.StatusAbsent
	case logout.Before(officeLogout):
		return attendance.StatusEarlyLogout
	default:
		return attendance.StatusPresent
	}
}

// WorkedHours returns logout minus login in hours, rounded to two places.
func WorkedHours(login, logout organization.Clock) (decimal.Decimal, error) {
	if logout.Before(login) {
		return decimal.Zero, attendance.ErrLogoutBeforeLogin
	}
	seconds := decimal.NewFromInt(logout.Seconds() - login.Seconds())
	return seconds.Div(decimal.NewFromInt(3600)).Round(2), nil
}
