package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/response"
	"github.com/stemsi/admissions-backend/internal/service"
	"github.com/stemsi/admissions-backend/internal/validator"
)

// CompanyHandler handles company staff endpoints for job postings and job applications.
type CompanyHandler struct {
	catalog     *service.CatalogService
	jobApps     *service.JobApplicationService
	projections *service.ProjectionService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(catalog *service.CatalogService, jobApps *service.JobApplicationService, projections *service.ProjectionService) *CompanyHandler {
	return &CompanyHandler{catalog: catalog, jobApps: jobApps, projections: projections}
}

// ListJobs godoc
// GET /api/v1/companies/:company_id/jobs
func (h *CompanyHandler) ListJobs(c *gin.Context) {
	companyID, ok := organization(c)
	if !ok {
		return
	}

	jobs, err := h.catalog.ListCompanyJobs(c.Request.Context(), companyID)
	if err != nil {
		failWith(c, err)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}

	response.Success(c, http.StatusOK, gin.H{"jobs": jobs})
}

// CreateJob godoc
// POST /api/v1/companies/:company_id/jobs
func (h *CompanyHandler) CreateJob(c *gin.Context) {
	companyID, ok := organization(c)
	if !ok {
		return
	}

	var req model.CreateJobRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	job, err := h.catalog.CreateJob(c.Request.Context(), companyID, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"job": job})
}

// UpdateJobRequirements godoc
// PUT /api/v1/companies/:company_id/jobs/:id/requirements
func (h *CompanyHandler) UpdateJobRequirements(c *gin.Context) {
	companyID, ok := organization(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateJobRequirementsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	job, err := h.catalog.UpdateJobRequirements(c.Request.Context(), companyID, jobID, req.Requirements)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"job": job})
}

// ListJobApplications godoc
// GET /api/v1/companies/:company_id/job-applications?status=
func (h *CompanyHandler) ListJobApplications(c *gin.Context) {
	companyID, ok := organization(c)
	if !ok {
		return
	}

	var q model.JobApplicationListQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	var status *model.JobApplicationStatus
	if q.Status != "" {
		s := model.JobApplicationStatus(q.Status)
		status = &s
	}

	apps, err := h.projections.CompanyJobApplications(c.Request.Context(), companyID, status)
	if err != nil {
		failWith(c, err)
		return
	}
	if apps == nil {
		apps = []model.JobApplication{}
	}

	response.Success(c, http.StatusOK, gin.H{"job_applications": apps})
}

// UpdateJobApplicationStatus godoc
// PUT /api/v1/companies/:company_id/job-applications/:id/status
func (h *CompanyHandler) UpdateJobApplicationStatus(c *gin.Context) {
	companyID, ok := organization(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateJobApplicationStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	app, err := h.jobApps.Transition(c.Request.Context(), companyID, id, req.Status)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"job_application": app})
}
