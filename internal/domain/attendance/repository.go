package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// GetOrCreate returns the record for (userID, day), inserting an empty one for officeID when absent.
	GetOrCreate(ctx context.Context, userID, officeID string, day time.Time) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	GetByUserAndDate(ctx context.Context, userID string, day time.Time) (Record, error)
	// GetOpenByUser returns the user's latest record with a login and no logout.
	GetOpenByUser(ctx context.Context, userID string) (Record, error)
	Update(ctx context.Context, record Record) error
	List(ctx context.Context, organizationID string, filter Filter) ([]Record, int64, error)
}

type CorrectionRepository interface {
	Create(ctx context.Context, correction Correction) (Correction, error)
	GetByID(ctx context.Context, id string) (Correction, error)
	LockForUpdate(ctx context.Context, id string) (Correction, error)
	UpdateDecision(ctx context.Context, correction Correction) error
	// List returns corrections whose attendance record belongs to a user of organizationID.
	List(ctx context.Context, organizationID string, filter CorrectionFilter) ([]Correction, int64, error)
}
