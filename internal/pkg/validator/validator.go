package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse(time.DateOnly, dateStr)
	return date, err == nil
}

// IsValidClock checks a wall-clock time in "HH:MM:SS" form.
func IsValidClock(clock string) (time.Time, bool) {
	t, err := time.Parse(time.TimeOnly, clock)
	return t, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsValidCoordinate reports whether lat/lon are inside WGS84 bounds.
func IsValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// IsPositiveDays reports whether d is a positive day quantity with at most two decimals.
func IsPositiveDays(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}

// IsNonNegativeDays is IsPositiveDays but allows zero.
func IsNonNegativeDays(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2))
}
