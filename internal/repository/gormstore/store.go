// Package gormstore implements the domain repositories on gorm, for both postgres and sqlite.
package gormstore

import (
	"context"
	"errors"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19
	dateLayout            = time.DateOnly
)

type txKey struct{}

// Store owns the gorm handle. Repositories built from it share its transaction handling.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithinTx implements database.Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Ping checks the underlying connection pool.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// conn returns the transaction carried by ctx, or the root handle.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// AutoMigrate creates or updates every table the repositories use.
func (s *Store) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&Organization{},
		&OfficeLocation{},
		&Department{},
		&User{},
		&LeaveType{},
		&LeaveBalance{},
		&LeaveRequest{},
		&LedgerEvent{},
		&CompanyHoliday{},
		&AttendanceRecord{},
		&AttendanceCorrection{},
	)
}

func (s *Store) LeaveTypes() *LeaveTypeRepository {
	return &LeaveTypeRepository{store: s}
}

func (s *Store) LeaveBalances() *LeaveBalanceRepository {
	return &LeaveBalanceRepository{store: s}
}

func (s *Store) LeaveRequests() *LeaveRequestRepository {
	return &LeaveRequestRepository{store: s}
}

func (s *Store) LedgerEvents() *LedgerEventRepository {
	return &LedgerEventRepository{store: s}
}

func (s *Store) Holidays() *HolidayRepository {
	return &HolidayRepository{store: s}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) Organizations() *OrganizationRepository {
	return &OrganizationRepository{store: s}
}

func (s *Store) Offices() *OfficeRepository {
	return &OfficeRepository{store: s}
}

func (s *Store) Departments() *DepartmentRepository {
	return &DepartmentRepository{store: s}
}

func (s *Store) Attendance() *AttendanceRepository {
	return &AttendanceRepository{store: s}
}

func (s *Store) Corrections() *CorrectionRepository {
	return &CorrectionRepository{store: s}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func parseDatePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := parseDate(*s)
	return &t
}
