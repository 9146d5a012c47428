package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn    = errors.New("you have already checked in today")
	ErrNotCheckedIn        = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut   = errors.New("you have already checked out")
	ErrLogoutBeforeLogin   = errors.New("check-out time is before check-in time")
	ErrNoOfficeForCheckOut = errors.New("attendance record has no office location")

	// Correction errors
	ErrCorrectionNotFound  = errors.New("attendance correction not found")
	ErrCorrectionProcessed = errors.New("this correction has already been processed")
	ErrNotCorrectionOwner  = errors.New("only the requester can cancel this correction")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
)
