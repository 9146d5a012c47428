package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
)

func TestLoginStatus(t *testing.T) {
	start := organization.NewClock(9, 0, 0)

	assert.Equal(t, attendance.StatusPresent, LoginStatus(organization.NewClock(8, 59, 59), start))
	assert.Equal(t, attendance.StatusPresent, LoginStatus(start, start))
	assert.Equal(t, attendance.StatusLateLogin, LoginStatus(organization.NewClock(9, 0, 1), start))
}

func TestLogoutStatus(t *testing.T) {
	end := organization.NewClock(17, 0, 0)
	early := organization.NewClock(16, 30, 0)

	tests := []struct {
		name    string
		logout  organization.Clock
		current attendance.Status
		want    attendance.Status
	}{
		{"late then early is absent", early, attendance.StatusLateLogin, attendance.StatusAbsent},
		{"on time then early", early, attendance.StatusPresent, attendance.StatusEarlyLogout},
		{"late then full day", end, attendance.StatusLateLogin, attendance.StatusPresent},
		{"overtime", organization.NewClock(19, 0, 0), attendance.StatusPresent, attendance.StatusPresent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogoutStatus(tt.logout, end, tt.current))
		})
	}
}

func TestWorkedHours(t *testing.T) {
	hours, err := WorkedHours(organization.NewClock(9, 0, 0), organization.NewClock(17, 20, 0))
	require.NoError(t, err)
	assert.Equal(t, "8.33", hours.StringFixed(2))

	hours, err = WorkedHours(organization.NewClock(9, 0, 0), organization.NewClock(9, 0, 0))
	require.NoError(t, err)
	assert.True(t, hours.IsZero())

	_, err = WorkedHours(organization.NewClock(9, 0, 0), organization.NewClock(8, 0, 0))
	assert.ErrorIs(t, err, attendance.ErrLogoutBeforeLogin)
}

func TestMeasureGeofence(t *testing.T) {
	office := organization.OfficeLocation{Latitude: 0, Longitude: 0, GeoRadiusMeters: 100}

	inside := MeasureGeofence(office, 0.0005, 0)
	assert.True(t, inside.Within)
	assert.Equal(t, 56, inside.Meters())

	outside := MeasureGeofence(office, 0.001, 0)
	assert.False(t, outside.Within)
	assert.Equal(t, 111, outside.Meters())
}
