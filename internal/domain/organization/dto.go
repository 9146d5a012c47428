package organization

import (
	"time"

	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

type CreateOrganizationRequest struct {
	Name                string  `json:"name"`
	RegistrationNumber  *string `json:"registration_number,omitempty"`
	HeadquartersAddress string  `json:"headquarters_address"`
}

func (r *CreateOrganizationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}
	if validator.IsEmpty(r.HeadquartersAddress) {
		errs = append(errs, validator.ValidationError{
			Field:   "headquarters_address",
			Message: "headquarters_address is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type OrganizationResponse struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	RegistrationNumber  *string `json:"registration_number,omitempty"`
	HeadquartersAddress string  `json:"headquarters_address"`
	IsActive            bool    `json:"is_active"`
}

func NewOrganizationResponse(o Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:                  o.ID,
		Name:                o.Name,
		RegistrationNumber:  o.RegistrationNumber,
		HeadquartersAddress: o.HeadquartersAddress,
		IsActive:            o.IsActive,
	}
}

type CreateOfficeRequest struct {
	OrganizationID  string  `json:"-"`
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	GeoRadiusMeters int     `json:"geo_radius_meters"`
	LoginTime       string  `json:"login_time"`
	LogoutTime      string  `json:"logout_time"`
	Timezone        string  `json:"timezone"`
}

func (r *CreateOfficeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "organization_id",
			Message: "organization_id is required",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if !validator.IsValidCoordinate(r.Latitude, r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude/longitude out of range",
		})
	}
	if r.GeoRadiusMeters == 0 {
		r.GeoRadiusMeters = DefaultGeoRadiusMeters
	}
	if r.GeoRadiusMeters < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "geo_radius_meters",
			Message: "geo_radius_meters must be positive",
		})
	}

	login, loginOK := validator.IsValidClock(r.LoginTime)
	if !loginOK {
		errs = append(errs, validator.ValidationError{
			Field:   "login_time",
			Message: "login_time must be in HH:MM:SS format",
		})
	}
	logout, logoutOK := validator.IsValidClock(r.LogoutTime)
	if !logoutOK {
		errs = append(errs, validator.ValidationError{
			Field:   "logout_time",
			Message: "logout_time must be in HH:MM:SS format",
		})
	}
	if loginOK && logoutOK && !logout.After(login) {
		errs = append(errs, validator.ValidationError{
			Field:   "logout_time",
			Message: "logout_time must be after login_time",
		})
	}

	if r.Timezone == "" {
		r.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "timezone",
			Message: "timezone must be a valid IANA zone",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type OfficeResponse struct {
	ID              string  `json:"id"`
	OrganizationID  string  `json:"organization_id"`
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	GeoRadiusMeters int     `json:"geo_radius_meters"`
	LoginTime       string  `json:"login_time"`
	LogoutTime      string  `json:"logout_time"`
	Timezone        string  `json:"timezone"`
	IsActive        bool    `json:"is_active"`
}

func NewOfficeResponse(o OfficeLocation) OfficeResponse {
	return OfficeResponse{
		ID:              o.ID,
		OrganizationID:  o.OrganizationID,
		Name:            o.Name,
		Address:         o.Address,
		Latitude:        o.Latitude,
		Longitude:       o.Longitude,
		GeoRadiusMeters: o.GeoRadiusMeters,
		LoginTime:       o.LoginTime.String(),
		LogoutTime:      o.LogoutTime.String(),
		Timezone:        o.Timezone,
		IsActive:        o.IsActive,
	}
}

type CreateDepartmentRequest struct {
	OrganizationID string  `json:"-"`
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
}

func (r *CreateDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "organization_id",
			Message: "organization_id is required",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DepartmentResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

func NewDepartmentResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
	}
}
