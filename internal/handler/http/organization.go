package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/handler/http/response"
)

type OrganizationHandler interface {
	GetOrganization(w http.ResponseWriter, r *http.Request)
	CreateOffice(w http.ResponseWriter, r *http.Request)
	ListOffices(w http.ResponseWriter, r *http.Request)
	CreateDepartment(w http.ResponseWriter, r *http.Request)
	ListDepartments(w http.ResponseWriter, r *http.Request)
}

type OrganizationHandlerImpl struct {
	organizationService organization.OrganizationService
}

func NewOrganizationHandler(organizationService organization.OrganizationService) OrganizationHandler {
	return &OrganizationHandlerImpl{
		organizationService: organizationService,
	}
}

// GetOrganization implements OrganizationHandler. It returns the caller's own organization.
func (o *OrganizationHandlerImpl) GetOrganization(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	org, err := o.organizationService.GetOrganization(r.Context(), claims.OrganizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, org)
}

// CreateOffice implements OrganizationHandler.
func (o *OrganizationHandlerImpl) CreateOffice(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req organization.CreateOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateOffice decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID

	office, err := o.organizationService.CreateOffice(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Office location created successfully", office)
}

// ListOffices implements OrganizationHandler.
func (o *OrganizationHandlerImpl) ListOffices(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	offices, err := o.organizationService.ListOffices(r.Context(), claims.OrganizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, offices)
}

// CreateDepartment implements OrganizationHandler.
func (o *OrganizationHandlerImpl) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req organization.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateDepartment decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrganizationID = claims.OrganizationID

	department, err := o.organizationService.CreateDepartment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Department created successfully", department)
}

// ListDepartments implements OrganizationHandler.
func (o *OrganizationHandlerImpl) ListDepartments(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	departments, err := o.organizationService.ListDepartments(r.Context(), claims.OrganizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, departments)
}
