package attendance

import "context"

type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)
	GetMyAttendance(ctx context.Context, userID string, req ListAttendanceRequest) (ListAttendanceResponse, error)
	ListAttendance(ctx context.Context, organizationID string, req ListAttendanceRequest) (ListAttendanceResponse, error)

	RequestCorrection(ctx context.Context, req RequestCorrectionRequest) (CorrectionResponse, error)
	DecideCorrection(ctx context.Context, req DecideCorrectionRequest) (CorrectionResponse, error)
	CancelCorrection(ctx context.Context, req CancelCorrectionRequest) (CorrectionResponse, error)
	GetMyCorrections(ctx context.Context, userID string, req ListCorrectionsRequest) (ListCorrectionsResponse, error)
	ListCorrections(ctx context.Context, organizationID string, req ListCorrectionsRequest) (ListCorrectionsResponse, error)
}
