// Package app assembles repositories, services and HTTP handlers for either storage backend.
package app

import (
	"context"

	"github.com/teamzen/hris-backend-go/internal/domain/attendance"
	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	appHTTP "github.com/teamzen/hris-backend-go/internal/handler/http"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
	"github.com/teamzen/hris-backend-go/internal/pkg/jwt"
	"github.com/teamzen/hris-backend-go/internal/repository/gormstore"
	"github.com/teamzen/hris-backend-go/internal/repository/postgresql"
	attendanceService "github.com/teamzen/hris-backend-go/internal/service/attendance"
	authService "github.com/teamzen/hris-backend-go/internal/service/auth"
	leaveService "github.com/teamzen/hris-backend-go/internal/service/leave"
	organizationService "github.com/teamzen/hris-backend-go/internal/service/organization"
	userService "github.com/teamzen/hris-backend-go/internal/service/user"
)

// Repositories is one backend's set of stores sharing a Transactor.
type Repositories struct {
	Tx            database.Transactor
	Ping          func(ctx context.Context) error
	LeaveTypes    leave.LeaveTypeRepository
	Balances      leave.LeaveBalanceRepository
	Requests      leave.LeaveRequestRepository
	Events        leave.LedgerEventRepository
	Holidays      leave.HolidayRepository
	Users         user.UserRepository
	Organizations organization.OrganizationRepository
	Offices       organization.OfficeRepository
	Departments   organization.DepartmentRepository
	Attendance    attendance.AttendanceRepository
	Corrections   attendance.CorrectionRepository
}

// PgxRepositories builds the raw SQL backend.
func PgxRepositories(db *database.DB) Repositories {
	return Repositories{
		Tx:            postgresql.NewTransactor(db),
		Ping:          db.Ping,
		LeaveTypes:    postgresql.NewLeaveTypeRepository(db),
		Balances:      postgresql.NewLeaveBalanceRepository(db),
		Requests:      postgresql.NewLeaveRequestRepository(db),
		Events:        postgresql.NewLedgerEventRepository(db),
		Holidays:      postgresql.NewHolidayRepository(db),
		Users:         postgresql.NewUserRepository(db),
		Organizations: postgresql.NewOrganizationRepository(db),
		Offices:       postgresql.NewOfficeRepository(db),
		Departments:   postgresql.NewDepartmentRepository(db),
		Attendance:    postgresql.NewAttendanceRepository(db),
		Corrections:   postgresql.NewCorrectionRepository(db),
	}
}

// GormRepositories builds the gorm backend, which serves postgres and sqlite.
func GormRepositories(store *gormstore.Store) Repositories {
	return Repositories{
		Tx:            store,
		Ping:          store.Ping,
		LeaveTypes:    store.LeaveTypes(),
		Balances:      store.LeaveBalances(),
		Requests:      store.LeaveRequests(),
		Events:        store.LedgerEvents(),
		Holidays:      store.Holidays(),
		Users:         store.Users(),
		Organizations: store.Organizations(),
		Offices:       store.Offices(),
		Departments:   store.Departments(),
		Attendance:    store.Attendance(),
		Corrections:   store.Corrections(),
	}
}

type Services struct {
	Leave        *leaveService.LeaveServiceImpl
	Attendance   *attendanceService.AttendanceServiceImpl
	User         *userService.UserServiceImpl
	Organization *organizationService.OrganizationServiceImpl
	Auth         *authService.AuthServiceImpl
}

func NewServices(repos Repositories, jwtService jwt.Service, ledgerOpts ...leaveService.LedgerOption) Services {
	ledger := leaveService.NewLedger(
		repos.Tx,
		repos.Balances,
		repos.LeaveTypes,
		repos.Events,
		leaveService.NewEntitlementCalculator(),
		ledgerOpts...,
	)
	leaveSvc := leaveService.NewLeaveService(
		repos.Tx,
		repos.LeaveTypes,
		repos.Balances,
		repos.Requests,
		repos.Events,
		repos.Holidays,
		repos.Users,
		ledger,
	)

	return Services{
		Leave:        leaveSvc,
		Attendance:   attendanceService.NewAttendanceService(repos.Tx, repos.Attendance, repos.Corrections, repos.Offices, repos.Users),
		User:         userService.NewUserService(repos.Tx, repos.Users, repos.Offices, leaveSvc),
		Organization: organizationService.NewOrganizationService(repos.Tx, repos.Organizations, repos.Offices, repos.Departments, leaveSvc),
		Auth:         authService.NewAuthService(repos.Users, jwtService),
	}
}

func (s Services) Handlers() appHTTP.Handlers {
	return appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(s.Auth),
		Leave:        appHTTP.NewLeaveHandler(s.Leave),
		Attendance:   appHTTP.NewAttendanceHandler(s.Attendance),
		User:         appHTTP.NewUserHandler(s.User),
		Organization: appHTTP.NewOrganizationHandler(s.Organization),
	}
}
