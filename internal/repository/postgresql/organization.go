package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

type organizationRepositoryImpl struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) organization.OrganizationRepository {
	return &organizationRepositoryImpl{db: db}
}

// Create implements organization.OrganizationRepository.
func (o *organizationRepositoryImpl) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	q := GetQuerier(ctx, o.db)
	query := `
		INSERT INTO organizations (id, name, registration_number, headquarters_address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	org.ID = newID()
	err := q.QueryRow(ctx, query, org.ID, org.Name, org.RegistrationNumber, org.HeadquartersAddress, org.IsActive).
		Scan(&org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return organization.Organization{}, organization.ErrOrganizationNameExists
		}
		return organization.Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	return org, nil
}

// GetByID implements organization.OrganizationRepository.
func (o *organizationRepositoryImpl) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	q := GetQuerier(ctx, o.db)
	query := `
		SELECT id, name, registration_number, headquarters_address, is_active, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	var org organization.Organization
	err := q.QueryRow(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.RegistrationNumber, &org.HeadquartersAddress, &org.IsActive, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		return organization.Organization{}, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

const officeColumns = `
	id, organization_id, name, address, latitude, longitude, geo_radius_meters,
	login_time::text, logout_time::text, timezone, is_active, created_at`

type officeRepositoryImpl struct {
	db *database.DB
}

func NewOfficeRepository(db *database.DB) organization.OfficeRepository {
	return &officeRepositoryImpl{db: db}
}

// Create implements organization.OfficeRepository.
func (o *officeRepositoryImpl) Create(ctx context.Context, office organization.OfficeLocation) (organization.OfficeLocation, error) {
	q := GetQuerier(ctx, o.db)
	query := `
		INSERT INTO office_locations (
			id, organization_id, name, address, latitude, longitude, geo_radius_meters,
			login_time, logout_time, timezone, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::time, $9::time, $10, $11, NOW())
		RETURNING created_at
	`
	office.ID = newID()
	err := q.QueryRow(ctx, query,
		office.ID, office.OrganizationID, office.Name, office.Address,
		office.Latitude, office.Longitude, office.GeoRadiusMeters,
		office.LoginTime.String(), office.LogoutTime.String(), office.Timezone, office.IsActive,
	).Scan(&office.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return organization.OfficeLocation{}, organization.ErrOfficeNameExists
		}
		return organization.OfficeLocation{}, fmt.Errorf("insert office location: %w", err)
	}
	return office, nil
}

// GetByID implements organization.OfficeRepository.
func (o *officeRepositoryImpl) GetByID(ctx context.Context, id string) (organization.OfficeLocation, error) {
	q := GetQuerier(ctx, o.db)
	return scanOffice(q.QueryRow(ctx, `SELECT `+officeColumns+` FROM office_locations WHERE id = $1`, id))
}

// ListByOrganization implements organization.OfficeRepository.
func (o *officeRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string) ([]organization.OfficeLocation, error) {
	q := GetQuerier(ctx, o.db)
	rows, err := q.Query(ctx, `SELECT `+officeColumns+` FROM office_locations WHERE organization_id = $1 ORDER BY name`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list office locations: %w", err)
	}
	defer rows.Close()

	var offices []organization.OfficeLocation
	for rows.Next() {
		office, err := scanOffice(rows)
		if err != nil {
			return nil, err
		}
		offices = append(offices, office)
	}
	return offices, rows.Err()
}

func scanOffice(row pgx.Row) (organization.OfficeLocation, error) {
	var (
		office     organization.OfficeLocation
		loginTime  string
		logoutTime string
	)
	err := row.Scan(
		&office.ID, &office.OrganizationID, &office.Name, &office.Address,
		&office.Latitude, &office.Longitude, &office.GeoRadiusMeters,
		&loginTime, &logoutTime, &office.Timezone, &office.IsActive, &office.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.OfficeLocation{}, organization.ErrOfficeNotFound
		}
		return organization.OfficeLocation{}, fmt.Errorf("scan office location: %w", err)
	}
	if office.LoginTime, err = organization.ParseClock(loginTime); err != nil {
		return organization.OfficeLocation{}, err
	}
	if office.LogoutTime, err = organization.ParseClock(logoutTime); err != nil {
		return organization.OfficeLocation{}, err
	}
	return office, nil
}

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) organization.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

// Create implements organization.DepartmentRepository.
func (d *departmentRepositoryImpl) Create(ctx context.Context, dept organization.Department) (organization.Department, error) {
	q := GetQuerier(ctx, d.db)
	query := `
		INSERT INTO departments (id, organization_id, name, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	dept.ID = newID()
	err := q.QueryRow(ctx, query, dept.ID, dept.OrganizationID, dept.Name, dept.Description, dept.IsActive).
		Scan(&dept.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return organization.Department{}, organization.ErrDepartmentNameExists
		}
		return organization.Department{}, fmt.Errorf("insert department: %w", err)
	}
	return dept, nil
}

// ListByOrganization implements organization.DepartmentRepository.
func (d *departmentRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string) ([]organization.Department, error) {
	q := GetQuerier(ctx, d.db)
	query := `
		SELECT id, organization_id, name, description, is_active, created_at
		FROM departments
		WHERE organization_id = $1
		ORDER BY name
	`
	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var departments []organization.Department
	for rows.Next() {
		var dept organization.Department
		if err := rows.Scan(&dept.ID, &dept.OrganizationID, &dept.Name, &dept.Description, &dept.IsActive, &dept.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}
