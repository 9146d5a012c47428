package organization

import "context"

type OrganizationRepository interface {
	Create(ctx context.Context, org Organization) (Organization, error)
	GetByID(ctx context.Context, id string) (Organization, error)
}

type OfficeRepository interface {
	Create(ctx context.Context, office OfficeLocation) (OfficeLocation, error)
	GetByID(ctx context.Context, id string) (OfficeLocation, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]OfficeLocation, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, dept Department) (Department, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]Department, error)
}
