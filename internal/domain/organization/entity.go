package organization

import (
	"fmt"
	"time"
)

type Organization struct {
	ID                  string
	Name                string
	RegistrationNumber  *string
	HeadquartersAddress string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OfficeLocation is a geofenced office with its working hours.
type OfficeLocation struct {
	ID              string
	OrganizationID  string
	Name            string
	Address         string
	Latitude        float64
	Longitude       float64
	GeoRadiusMeters int
	LoginTime       Clock
	LogoutTime      Clock
	Timezone        string
	IsActive        bool
	CreatedAt       time.Time
}

// Location resolves the office timezone, falling back to UTC.
func (o OfficeLocation) Location() *time.Location {
	if o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Department struct {
	ID             string
	OrganizationID string
	Name           string
	Description    *string
	IsActive       bool
	CreatedAt      time.Time
}

const DefaultGeoRadiusMeters = 100

// Clock is a wall-clock time of day in seconds since midnight.
type Clock int

func NewClock(hour, minute, second int) Clock {
	return Clock(hour*3600 + minute*60 + second)
}

// ParseClock parses "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(time.TimeOnly, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return NewClock(t.Hour(), t.Minute(), t.Second()), nil
}

// ClockOf returns the wall-clock part of t, dropping sub-second precision.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute(), t.Second())
}

func (c Clock) String() string {
	s := int(c)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// Seconds since midnight.
func (c Clock) Seconds() int64 {
	return int64(c)
}

func (c Clock) After(other Clock) bool  { return c > other }
func (c Clock) Before(other Clock) bool { return c < other }
