package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
	"github.com/stemsi/admissions-backend/internal/response"
	"github.com/stemsi/admissions-backend/internal/service"
	"github.com/stemsi/admissions-backend/internal/validator"
)

const defaultPerPage = 20

// InstitutionHandler handles institution staff endpoints: catalog, review, and publishing.
type InstitutionHandler struct {
	catalog     *service.CatalogService
	apps        *service.ApplicationService
	admissions  *service.AdmissionService
	projections *service.ProjectionService
}

// NewInstitutionHandler creates a new InstitutionHandler.
func NewInstitutionHandler(
	catalog *service.CatalogService,
	apps *service.ApplicationService,
	admissions *service.AdmissionService,
	projections *service.ProjectionService,
) *InstitutionHandler {
	return &InstitutionHandler{
		catalog:     catalog,
		apps:        apps,
		admissions:  admissions,
		projections: projections,
	}
}

// ListCourses godoc
// GET /api/v1/institutions/:institution_id/courses
func (h *InstitutionHandler) ListCourses(c *gin.Context) {
	instID, ok := organization(c)
	if !ok {
		return
	}

	courses, err := h.catalog.ListInstitutionCourses(c.Request.Context(), instID)
	if err != nil {
		failWith(c, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// CreateCourse godoc
// POST /api/v1/institutions/:institution_id/courses
// Raw requirement text is normalized; malformed fields are rejected with 422.
func (h *InstitutionHandler) CreateCourse(c *gin.Context) {
	instID, ok := organization(c)
	if !ok {
		return
	}

	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.catalog.CreateCourse(c.Request.Context(), instID, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// UpdateCourseRequirements godoc
// PUT /api/v1/institutions/:institution_id/courses/:id/requirements
// Existing applications keep their stored verdicts.
func (h *InstitutionHandler) UpdateCourseRequirements(c *gin.Context) {
	instID, ok := organization(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCourseRequirementsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.catalog.UpdateCourseRequirements(c.Request.Context(), instID, courseID, req.Requirements)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// ListApplications godoc
// GET /api/v1/institutions/:institution_id/applications?status=&course_id=&page=1&per_page=20
func (h *InstitutionHandler) ListApplications(c *gin.Context) {
	instID, ok := organization(c)
	if !ok {
		return
	}

	var q model.ApplicationListQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = defaultPerPage
	}

	var filter repository.ApplicationFilter
	if q.Status != "" {
		status := model.ApplicationStatus(q.Status)
		filter.Status = &status
	}
	if q.CourseID != "" {
		courseID := uuid.MustParse(q.CourseID) // validated by the uuid binding
		filter.CourseID = &courseID
	}

	apps, total, err := h.projections.InstitutionApplications(c.Request.Context(), instID, filter, q.Page, q.PerPage)
	if err != nil {
		failWith(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"applications": apps}, &response.Pagination{
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(q.PerPage))),
	})
}

// UpdateApplicationStatus godoc
// PUT /api/v1/institutions/:institution_id/applications/:id/status
// Moves an application along pending → approved/rejected, or rejected → pending.
func (h *InstitutionHandler) UpdateApplicationStatus(c *gin.Context) {
	instID, ok := organization(c)
	if !ok {
		return
	}
	appID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateApplicationStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	app, err := h.admissions.Transition(c.Request.Context(), instID, appID, req.Status)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// OverrideApplication godoc
// POST /api/v1/institutions/:institution_id/applications/override
// Files an application for a student regardless of the verdict, which is still recorded.
func (h *InstitutionHandler) OverrideApplication(c *gin.Context) {
	instID, ok := organization(c)
	if !ok {
		return
	}

	var req model.OverrideApplicationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	app, err := h.apps.Override(c.Request.Context(), instID, req.StudentID, req.CourseID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"application": app})
}

// PublishAdmissions godoc
// POST /api/v1/institutions/:institution_id/publish-admissions
// Admits every approved application in one batch. Calling it again admits nothing new.
func (h *InstitutionHandler) PublishAdmissions(c *gin.Context) {
	instID, ok := organization(c)
	if !ok {
		return
	}

	batch, err := h.admissions.Publish(c.Request.Context(), instID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"batch": batch})
}

// ListBatches godoc
// GET /api/v1/institutions/:institution_id/admission-batches
func (h *InstitutionHandler) ListBatches(c *gin.Context) {
	instID, ok := organization(c)
	if !ok {
		return
	}

	batches, err := h.admissions.ListBatches(c.Request.Context(), instID)
	if err != nil {
		failWith(c, err)
		return
	}
	if batches == nil {
		batches = []model.AdmissionBatch{}
	}

	response.Success(c, http.StatusOK, gin.H{"batches": batches})
}
