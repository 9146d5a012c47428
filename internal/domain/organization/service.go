package organization

import "context"

type OrganizationService interface {
	CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (OrganizationResponse, error)
	GetOrganization(ctx context.Context, id string) (OrganizationResponse, error)
	CreateOffice(ctx context.Context, req CreateOfficeRequest) (OfficeResponse, error)
	ListOffices(ctx context.Context, organizationID string) ([]OfficeResponse, error)
	CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	ListDepartments(ctx context.Context, organizationID string) ([]DepartmentResponse, error)
}
