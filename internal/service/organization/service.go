package organization

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/fixtures"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

// LeavePolicy creates the leave types a new organization is seeded with.
type LeavePolicy interface {
	CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error)
}

type OrganizationServiceImpl struct {
	tx            database.Transactor
	organizations organization.OrganizationRepository
	offices       organization.OfficeRepository
	departments   organization.DepartmentRepository
	policy        LeavePolicy
}

var _ organization.OrganizationService = (*OrganizationServiceImpl)(nil)

func NewOrganizationService(
	tx database.Transactor,
	organizations organization.OrganizationRepository,
	offices organization.OfficeRepository,
	departments organization.DepartmentRepository,
	policy LeavePolicy,
) *OrganizationServiceImpl {
	return &OrganizationServiceImpl{
		tx:            tx,
		organizations: organizations,
		offices:       offices,
		departments:   departments,
		policy:        policy,
	}
}

// CreateOrganization implements organization.OrganizationService. The organization is created
// together with its default leave types and departments.
func (o *OrganizationServiceImpl) CreateOrganization(ctx context.Context, req organization.CreateOrganizationRequest) (organization.OrganizationResponse, error) {
	if err := req.Validate(); err != nil {
		return organization.OrganizationResponse{}, err
	}

	var created organization.Organization
	err := o.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = o.organizations.Create(ctx, organization.Organization{
			Name:                req.Name,
			RegistrationNumber:  req.RegistrationNumber,
			HeadquartersAddress: req.HeadquartersAddress,
			IsActive:            true,
		})
		if err != nil {
			return err
		}

		for _, lt := range fixtures.DefaultLeaveTypes(created.ID) {
			if _, err := o.policy.CreateLeaveType(ctx, lt); err != nil {
				return fmt.Errorf("failed to seed leave type %s: %w", lt.Code, err)
			}
		}
		for _, dept := range fixtures.DefaultDepartments(created.ID) {
			if _, err := o.createDepartment(ctx, dept); err != nil {
				return fmt.Errorf("failed to seed department %s: %w", dept.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return organization.OrganizationResponse{}, err
	}

	slog.Info("Created organization", "organization_id", created.ID, "name", created.Name)
	return organization.NewOrganizationResponse(created), nil
}

// GetOrganization implements organization.OrganizationService.
func (o *OrganizationServiceImpl) GetOrganization(ctx context.Context, id string) (organization.OrganizationResponse, error) {
	org, err := o.organizations.GetByID(ctx, id)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}
	return organization.NewOrganizationResponse(org), nil
}

// CreateOffice implements organization.OrganizationService.
func (o *OrganizationServiceImpl) CreateOffice(ctx context.Context, req organization.CreateOfficeRequest) (organization.OfficeResponse, error) {
	if err := req.Validate(); err != nil {
		return organization.OfficeResponse{}, err
	}
	if _, err := o.organizations.GetByID(ctx, req.OrganizationID); err != nil {
		return organization.OfficeResponse{}, err
	}

	// Validate already checked both clocks.
	login, _ := organization.ParseClock(req.LoginTime)
	logout, _ := organization.ParseClock(req.LogoutTime)

	office, err := o.offices.Create(ctx, organization.OfficeLocation{
		OrganizationID:  req.OrganizationID,
		Name:            req.Name,
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		GeoRadiusMeters: req.GeoRadiusMeters,
		LoginTime:       login,
		LogoutTime:      logout,
		Timezone:        req.Timezone,
		IsActive:        true,
	})
	if err != nil {
		return organization.OfficeResponse{}, err
	}
	return organization.NewOfficeResponse(office), nil
}

// ListOffices implements organization.OrganizationService.
func (o *OrganizationServiceImpl) ListOffices(ctx context.Context, organizationID string) ([]organization.OfficeResponse, error) {
	offices, err := o.offices.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", err)
	}

	responses := make([]organization.OfficeResponse, 0, len(offices))
	for _, office := range offices {
		responses = append(responses, organization.NewOfficeResponse(office))
	}
	return responses, nil
}

// CreateDepartment implements organization.OrganizationService.
func (o *OrganizationServiceImpl) CreateDepartment(ctx context.Context, req organization.CreateDepartmentRequest) (organization.DepartmentResponse, error) {
	if err := req.Validate(); err != nil {
		return organization.DepartmentResponse{}, err
	}
	if _, err := o.organizations.GetByID(ctx, req.OrganizationID); err != nil {
		return organization.DepartmentResponse{}, err
	}

	dept, err := o.createDepartment(ctx, req)
	if err != nil {
		return organization.DepartmentResponse{}, err
	}
	return organization.NewDepartmentResponse(dept), nil
}

func (o *OrganizationServiceImpl) createDepartment(ctx context.Context, req organization.CreateDepartmentRequest) (organization.Department, error) {
	return o.departments.Create(ctx, organization.Department{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		IsActive:       true,
	})
}

// ListDepartments implements organization.OrganizationService.
func (o *OrganizationServiceImpl) ListDepartments(ctx context.Context, organizationID string) ([]organization.DepartmentResponse, error) {
	departments, err := o.departments.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	responses := make([]organization.DepartmentResponse, 0, len(departments))
	for _, dept := range departments {
		responses = append(responses, organization.NewDepartmentResponse(dept))
	}
	return responses, nil
}
