package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamzen/hris-backend-go/internal/domain/leave"
)

const (
	JobLeaveAccrual      = "leave_accrual"
	JobLeaveYearRollover = "leave_year_rollover"
)

// LeaveJobs drives the periodic side of the leave ledger. Every run is idempotent,
// so a tick that repeats work already done is a no-op.
type LeaveJobs struct {
	batch leave.BatchService
	now   func() time.Time
}

func NewLeaveJobs(batch leave.BatchService) *LeaveJobs {
	return &LeaveJobs{batch: batch, now: time.Now}
}

// Register adds the leave jobs to s, both ticking every interval.
func (j *LeaveJobs) Register(s *Scheduler, interval time.Duration) {
	s.AddJob(JobLeaveAccrual, interval, j.Accrue)
	s.AddJob(JobLeaveYearRollover, interval, j.Rollover)
}

// Accrue credits every incremental balance whose period has started.
func (j *LeaveJobs) Accrue(ctx context.Context) error {
	report, err := j.batch.RunAccrual(ctx, j.now().UTC())
	if err != nil {
		return err
	}

	slog.Info("Leave accrual finished",
		"date", report.Date.Format(time.DateOnly),
		"scanned", report.Scanned,
		"accrued", report.Accrued,
		"skipped", report.Skipped,
		"locked", report.Locked,
		"failed", report.Failed,
	)
	if report.Failed > 0 {
		return fmt.Errorf("%d balances failed to accrue", report.Failed)
	}
	return nil
}

// Rollover opens the current year's balances and carries last year's unused days into them.
func (j *LeaveJobs) Rollover(ctx context.Context) error {
	year := j.now().UTC().Year()

	opened, err := j.batch.InitializeBalancesForYear(ctx, year)
	if err != nil {
		return fmt.Errorf("initialize %d balances: %w", year, err)
	}

	report, err := j.batch.ApplyCarryForward(ctx, year-1)
	if err != nil {
		return fmt.Errorf("carry forward %d: %w", year-1, err)
	}

	if opened > 0 || report.Applied > 0 {
		slog.Info("Leave year rollover finished",
			"year", year,
			"balances_opened", opened,
			"carried_forward", report.Applied,
			"carried_days", report.TotalDays.String(),
			"failed", report.Failed,
		)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d balances failed to carry forward", report.Failed)
	}
	return nil
}
