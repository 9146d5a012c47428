package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"gorm.io/gorm"
)

var (
	_ organization.OrganizationRepository = (*OrganizationRepository)(nil)
	_ organization.OfficeRepository       = (*OfficeRepository)(nil)
	_ organization.DepartmentRepository   = (*DepartmentRepository)(nil)
)

type OrganizationRepository struct {
	store *Store
}

func (r *OrganizationRepository) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	model := Organization{
		Name:                org.Name,
		RegistrationNumber:  org.RegistrationNumber,
		HeadquartersAddress: org.HeadquartersAddress,
		IsActive:            org.IsActive,
	}
	if err := r.store.conn(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return organization.Organization{}, organization.ErrOrganizationNameExists
		}
		return organization.Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	return model.toDomain(), nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	var model Organization
	if err := r.store.conn(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		return organization.Organization{}, fmt.Errorf("get organization: %w", err)
	}
	return model.toDomain(), nil
}

type OfficeRepository struct {
	store *Store
}

func (r *OfficeRepository) Create(ctx context.Context, office organization.OfficeLocation) (organization.OfficeLocation, error) {
	model := OfficeLocation{
		OrganizationID:  office.OrganizationID,
		Name:            office.Name,
		Address:         office.Address,
		Latitude:        office.Latitude,
		Longitude:       office.Longitude,
		GeoRadiusMeters: office.GeoRadiusMeters,
		LoginTime:       office.LoginTime.String(),
		LogoutTime:      office.LogoutTime.String(),
		Timezone:        office.Timezone,
		IsActive:        office.IsActive,
	}
	if err := r.store.conn(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return organization.OfficeLocation{}, organization.ErrOfficeNameExists
		}
		return organization.OfficeLocation{}, fmt.Errorf("insert office location: %w", err)
	}
	return model.toDomain(), nil
}

func (r *OfficeRepository) GetByID(ctx context.Context, id string) (organization.OfficeLocation, error) {
	var model OfficeLocation
	if err := r.store.conn(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return organization.OfficeLocation{}, organization.ErrOfficeNotFound
		}
		return organization.OfficeLocation{}, fmt.Errorf("get office location: %w", err)
	}
	return model.toDomain(), nil
}

func (r *OfficeRepository) ListByOrganization(ctx context.Context, organizationID string) ([]organization.OfficeLocation, error) {
	var models []OfficeLocation
	err := r.store.conn(ctx).Where("organization_id = ?", organizationID).Order("name ASC").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list office locations: %w", err)
	}
	offices := make([]organization.OfficeLocation, 0, len(models))
	for _, m := range models {
		offices = append(offices, m.toDomain())
	}
	return offices, nil
}

type DepartmentRepository struct {
	store *Store
}

func (r *DepartmentRepository) Create(ctx context.Context, dept organization.Department) (organization.Department, error) {
	model := Department{
		OrganizationID: dept.OrganizationID,
		Name:           dept.Name,
		Description:    dept.Description,
		IsActive:       dept.IsActive,
	}
	if err := r.store.conn(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return organization.Department{}, organization.ErrDepartmentNameExists
		}
		return organization.Department{}, fmt.Errorf("insert department: %w", err)
	}
	return model.toDomain(), nil
}

func (r *DepartmentRepository) ListByOrganization(ctx context.Context, organizationID string) ([]organization.Department, error) {
	var models []Department
	err := r.store.conn(ctx).Where("organization_id = ?", organizationID).Order("name ASC").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	departments := make([]organization.Department, 0, len(models))
	for _, m := range models {
		departments = append(departments, m.toDomain())
	}
	return departments, nil
}

func (m Organization) toDomain() organization.Organization {
	return organization.Organization{
		ID:                  m.ID,
		Name:                m.Name,
		RegistrationNumber:  m.RegistrationNumber,
		HeadquartersAddress: m.HeadquartersAddress,
		IsActive:            m.IsActive,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func (m OfficeLocation) toDomain() organization.OfficeLocation {
	loginTime, _ := organization.ParseClock(m.LoginTime)
	logoutTime, _ := organization.ParseClock(m.LogoutTime)
	return organization.OfficeLocation{
		ID:              m.ID,
		OrganizationID:  m.OrganizationID,
		Name:            m.Name,
		Address:         m.Address,
		Latitude:        m.Latitude,
		Longitude:       m.Longitude,
		GeoRadiusMeters: m.GeoRadiusMeters,
		LoginTime:       loginTime,
		LogoutTime:      logoutTime,
		Timezone:        m.Timezone,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
	}
}

func (m Department) toDomain() organization.Department {
	return organization.Department{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Description:    m.Description,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
	}
}
