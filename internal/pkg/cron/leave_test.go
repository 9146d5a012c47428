package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
)

type fakeBatch struct {
	accrualDates []time.Time
	initYears    []int
	carryYears   []int
	accrualErr   error
	failed       int
}

func (f *fakeBatch) RunAccrual(ctx context.Context, today time.Time) (leave.AccrualReport, error) {
	f.accrualDates = append(f.accrualDates, today)
	return leave.AccrualReport{Date: leave.DateOf(today), Failed: f.failed}, f.accrualErr
}

func (f *fakeBatch) ApplyCarryForward(ctx context.Context, fromYear int) (leave.CarryForwardReport, error) {
	f.carryYears = append(f.carryYears, fromYear)
	return leave.CarryForwardReport{FromYear: fromYear, Applied: 1, TotalDays: decimal.NewFromInt(5)}, nil
}

func (f *fakeBatch) InitializeBalancesForYear(ctx context.Context, year int) (int, error) {
	f.initYears = append(f.initYears, year)
	return 2, nil
}

func newTestLeaveJobs(batch *fakeBatch) *LeaveJobs {
	jobs := NewLeaveJobs(batch)
	jobs.now = func() time.Time { return time.Date(2026, time.January, 1, 0, 5, 0, 0, time.UTC) }
	return jobs
}

func TestLeaveJobs_Register(t *testing.T) {
	s := NewScheduler()
	newTestLeaveJobs(&fakeBatch{}).Register(s, time.Hour)

	assert.Equal(t, []string{JobLeaveAccrual, JobLeaveYearRollover}, s.Jobs())
}

func TestLeaveJobs_RunOnce(t *testing.T) {
	batch := &fakeBatch{}
	s := NewScheduler()
	newTestLeaveJobs(batch).Register(s, time.Hour)

	require.NoError(t, s.RunOnce(context.Background()))

	require.Len(t, batch.accrualDates, 1)
	assert.Equal(t, "2026-01-01", batch.accrualDates[0].Format(time.DateOnly))
	assert.Equal(t, []int{2026}, batch.initYears)
	assert.Equal(t, []int{2025}, batch.carryYears)
}

func TestLeaveJobs_AccrueReportsFailures(t *testing.T) {
	jobs := newTestLeaveJobs(&fakeBatch{failed: 3})
	err := jobs.Accrue(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 balances")

	boom := errors.New("db down")
	jobs = newTestLeaveJobs(&fakeBatch{accrualErr: boom})
	assert.ErrorIs(t, jobs.Accrue(context.Background()), boom)
}
