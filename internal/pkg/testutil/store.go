// Package testutil builds throwaway sqlite stores and fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
	"github.com/teamzen/hris-backend-go/internal/repository/gormstore"
	"gorm.io/gorm/logger"
)

// NewStore opens a migrated sqlite store in a temp dir, closed when t ends.
func NewStore(t testing.TB) *gormstore.Store {
	t.Helper()
	store, _ := NewStoreWithDSN(t)
	return store
}

// NewStoreWithDSN is NewStore that also returns the sqlite DSN, for code under test that
// opens its own connection.
func NewStoreWithDSN(t testing.TB) (*gormstore.Store, string) {
	t.Helper()

	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "hris.db")
	db, _, cleanup, err := database.OpenGorm(ctx, dsn, database.GormOptions{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	store := gormstore.New(db)
	require.NoError(t, store.AutoMigrate(ctx))
	return store, dsn
}

// Days is decimal.RequireFromString for test literals.
func Days(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func CreateOrganization(t testing.TB, store *gormstore.Store, name string) organization.Organization {
	t.Helper()
	org, err := store.Organizations().Create(context.Background(), organization.Organization{
		Name:                name,
		HeadquartersAddress: "Jl. Sudirman 1",
		IsActive:            true,
	})
	require.NoError(t, err)
	return org
}

func CreateOffice(t testing.TB, store *gormstore.Store, organizationID string) organization.OfficeLocation {
	t.Helper()
	office, err := store.Offices().Create(context.Background(), organization.OfficeLocation{
		OrganizationID:  organizationID,
		Name:            "Head Office",
		Address:         "Jl. Sudirman 1",
		Latitude:        -6.2088,
		Longitude:       106.8456,
		GeoRadiusMeters: organization.DefaultGeoRadiusMeters,
		LoginTime:       organization.NewClock(9, 0, 0),
		LogoutTime:      organization.NewClock(17, 0, 0),
		Timezone:        "UTC",
		IsActive:        true,
	})
	require.NoError(t, err)
	return office
}

// UserOption tweaks a fixture user before insert.
type UserOption func(*user.User)

func WithRole(role user.Role) UserOption {
	return func(u *user.User) { u.Role = role }
}

func WithJoinDate(d time.Time) UserOption {
	return func(u *user.User) { u.DateOfJoining = d }
}

func WithPasswordHash(hash string) UserOption {
	return func(u *user.User) { u.PasswordHash = hash }
}

func CreateUser(t testing.TB, store *gormstore.Store, organizationID, email string, opts ...UserOption) user.User {
	t.Helper()
	u := user.User{
		OrganizationID: organizationID,
		Email:          email,
		PasswordHash:   "x",
		FirstName:      "Test",
		LastName:       "User",
		Role:           user.RoleEmployee,
		DateOfJoining:  Date(2020, time.January, 1),
		IsActive:       true,
	}
	for _, opt := range opts {
		opt(&u)
	}
	created, err := store.Users().Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

// LeaveTypeOption tweaks a fixture leave type before insert.
type LeaveTypeOption func(*leave.LeaveType)

func WithCarryForward(maxDays string) LeaveTypeOption {
	return func(lt *leave.LeaveType) {
		lt.CarryForwardAllowed = true
		lt.CarryForwardMaxDays = Days(maxDays)
	}
}

func WithAccrual(frequency leave.AccrualFrequency, days string) LeaveTypeOption {
	return func(lt *leave.LeaveType) {
		lt.AccrualFrequency = frequency
		lt.AccrualDays = Days(days)
	}
}

func WithoutApproval() LeaveTypeOption {
	return func(lt *leave.LeaveType) { lt.RequiresApproval = false }
}

func Inactive() LeaveTypeOption {
	return func(lt *leave.LeaveType) { lt.IsActive = false }
}

func CreateLeaveType(t testing.TB, store *gormstore.Store, organizationID, code string, maxDays string, opts ...LeaveTypeOption) leave.LeaveType {
	t.Helper()
	lt := leave.LeaveType{
		OrganizationID:      organizationID,
		Name:                "Leave " + code,
		Code:                code,
		MaxDaysPerYear:      Days(maxDays),
		CarryForwardMaxDays: decimal.Zero,
		AccrualFrequency:    leave.AccrualOneTime,
		AccrualDays:         decimal.Zero,
		IsPaid:              true,
		RequiresApproval:    true,
		IsActive:            true,
		EncashmentRate:      decimal.Zero,
		ProrationBasis:      leave.ProrationMonthly,
	}
	for _, opt := range opts {
		opt(&lt)
	}
	created, err := store.LeaveTypes().Create(context.Background(), lt)
	require.NoError(t, err)
	return created
}
