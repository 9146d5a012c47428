package organization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/pkg/testutil"
	"github.com/teamzen/hris-backend-go/internal/repository/gormstore"
	leaveservice "github.com/teamzen/hris-backend-go/internal/service/leave"
)

func newOrganizationService(t *testing.T) (*OrganizationServiceImpl, *gormstore.Store) {
	t.Helper()

	store := testutil.NewStore(t)
	ledger := leaveservice.NewLedger(store, store.LeaveBalances(), store.LeaveTypes(), store.LedgerEvents(), leaveservice.NewEntitlementCalculator())
	leaveSvc := leaveservice.NewLeaveService(
		store, store.LeaveTypes(), store.LeaveBalances(), store.LeaveRequests(),
		store.LedgerEvents(), store.Holidays(), store.Users(), ledger,
	)
	return NewOrganizationService(store, store.Organizations(), store.Offices(), store.Departments(), leaveSvc), store
}

func TestOrganizationService_CreateOrganization_SeedsDefaults(t *testing.T) {
	ctx := context.Background()
	service, store := newOrganizationService(t)

	// Act
	created, err := service.CreateOrganization(ctx, organization.CreateOrganizationRequest{
		Name:                "Acme",
		HeadquartersAddress: "Jl. Sudirman 1",
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	got, err := service.GetOrganization(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	leaveTypes, err := store.LeaveTypes().ListByOrganization(ctx, created.ID, true)
	require.NoError(t, err)
	assert.Len(t, leaveTypes, 4)

	departments, err := service.ListDepartments(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, departments, 3)
}

func TestOrganizationService_CreateOrganization_Errors(t *testing.T) {
	ctx := context.Background()
	service, _ := newOrganizationService(t)

	_, err := service.CreateOrganization(ctx, organization.CreateOrganizationRequest{Name: "Acme", HeadquartersAddress: "HQ"})
	require.NoError(t, err)

	_, err = service.CreateOrganization(ctx, organization.CreateOrganizationRequest{Name: "Acme", HeadquartersAddress: "HQ"})
	assert.ErrorIs(t, err, organization.ErrOrganizationNameExists)

	_, err = service.CreateOrganization(ctx, organization.CreateOrganizationRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "headquarters_address")

	_, err = service.GetOrganization(ctx, "0198a1f0-0000-7000-8000-000000000404")
	assert.ErrorIs(t, err, organization.ErrOrganizationNotFound)
}

func TestOrganizationService_CreateOffice(t *testing.T) {
	ctx := context.Background()
	service, store := newOrganizationService(t)
	org := testutil.CreateOrganization(t, store, "Acme")

	office, err := service.CreateOffice(ctx, organization.CreateOfficeRequest{
		OrganizationID: org.ID,
		Name:           "Jakarta",
		Latitude:       -6.2088,
		Longitude:      106.8456,
		LoginTime:      "09:00:00",
		LogoutTime:     "18:00:00",
		Timezone:       "Asia/Jakarta",
	})

	require.NoError(t, err)
	assert.Equal(t, organization.DefaultGeoRadiusMeters, office.GeoRadiusMeters)
	assert.Equal(t, "09:00:00", office.LoginTime)
	assert.Equal(t, "Asia/Jakarta", office.Timezone)

	_, err = service.CreateOffice(ctx, organization.CreateOfficeRequest{
		OrganizationID: org.ID, Name: "Jakarta", LoginTime: "09:00:00", LogoutTime: "18:00:00",
	})
	assert.ErrorIs(t, err, organization.ErrOfficeNameExists)

	offices, err := service.ListOffices(ctx, org.ID)
	require.NoError(t, err)
	assert.Len(t, offices, 1)
}

func TestOrganizationService_CreateOffice_Validation(t *testing.T) {
	service, store := newOrganizationService(t)
	org := testutil.CreateOrganization(t, store, "Acme")

	tests := []struct {
		name  string
		req   organization.CreateOfficeRequest
		field string
	}{
		{"logout before login", organization.CreateOfficeRequest{Name: "A", LoginTime: "18:00:00", LogoutTime: "09:00:00"}, "logout_time"},
		{"bad clock", organization.CreateOfficeRequest{Name: "A", LoginTime: "9am", LogoutTime: "18:00:00"}, "login_time"},
		{"bad timezone", organization.CreateOfficeRequest{Name: "A", LoginTime: "09:00:00", LogoutTime: "18:00:00", Timezone: "Mars/Olympus"}, "timezone"},
		{"latitude out of range", organization.CreateOfficeRequest{Name: "A", Latitude: 95, LoginTime: "09:00:00", LogoutTime: "18:00:00"}, "latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.OrganizationID = org.ID
			_, err := service.CreateOffice(context.Background(), tt.req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestOrganizationService_CreateDepartment(t *testing.T) {
	ctx := context.Background()
	service, store := newOrganizationService(t)
	org := testutil.CreateOrganization(t, store, "Acme")

	dept, err := service.CreateDepartment(ctx, organization.CreateDepartmentRequest{OrganizationID: org.ID, Name: "Finance"})
	require.NoError(t, err)
	assert.Equal(t, "Finance", dept.Name)

	_, err = service.CreateDepartment(ctx, organization.CreateDepartmentRequest{OrganizationID: org.ID, Name: "Finance"})
	assert.ErrorIs(t, err, organization.ErrDepartmentNameExists)

	other := testutil.CreateOrganization(t, store, "Globex")
	_, err = service.CreateDepartment(ctx, organization.CreateDepartmentRequest{OrganizationID: other.ID, Name: "Finance"})
	assert.NoError(t, err)
}
