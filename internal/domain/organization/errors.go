package organization

import "errors"

var (
	ErrOrganizationNotFound   = errors.New("organization not found")
	ErrOrganizationNameExists = errors.New("organization name already exists")
	ErrOfficeNotFound         = errors.New("office location not found")
	ErrOfficeNameExists       = errors.New("office location name already exists in this organization")
	ErrOfficeInactive         = errors.New("office location is not active")
	ErrDepartmentNotFound     = errors.New("department not found")
	ErrDepartmentNameExists   = errors.New("department name already exists in this organization")
)
