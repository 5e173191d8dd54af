package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
	"github.com/stemsi/admissions-backend/internal/response"
	"github.com/stemsi/admissions-backend/internal/service"
	"github.com/stemsi/admissions-backend/internal/validator"
)

const maxNoticeLimit = 100

// StudentPortalHandler handles student-facing endpoints: listings, records, and applications.
type StudentPortalHandler struct {
	projections *service.ProjectionService
	records     *service.StudentRecordService
	apps        *service.ApplicationService
	jobApps     *service.JobApplicationService
	notices     repository.NoticeStore
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	projections *service.ProjectionService,
	records *service.StudentRecordService,
	apps *service.ApplicationService,
	jobApps *service.JobApplicationService,
	notices repository.NoticeStore,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		projections: projections,
		records:     records,
		apps:        apps,
		jobApps:     jobApps,
		notices:     notices,
	}
}

// ListCourses godoc
// GET /api/v1/student/courses
// Returns every course annotated with the student's qualification verdict and reasons.
func (h *StudentPortalHandler) ListCourses(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}

	courses, err := h.projections.StudentCourses(c.Request.Context(), studentID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// ListJobs godoc
// GET /api/v1/student/jobs
// Returns every job with the student's match score, best match first.
func (h *StudentPortalHandler) ListJobs(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}

	jobs, err := h.projections.StudentJobs(c.Request.Context(), studentID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"jobs": jobs})
}

// GetAcademicRecord godoc
// GET /api/v1/student/academic-record
func (h *StudentPortalHandler) GetAcademicRecord(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}

	rec, err := h.records.Get(c.Request.Context(), studentID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

// UpdateAcademicRecord godoc
// PUT /api/v1/student/academic-record
// Replaces the student's academic record. Raw values are normalized before storage.
func (h *StudentPortalHandler) UpdateAcademicRecord(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}

	var req model.UpdateAcademicRecordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.records.Update(c.Request.Context(), studentID, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

// SubmitApplication godoc
// POST /api/v1/student/applications
// Evaluates the student against the course, enforces the quota, and stores the verdict snapshot.
func (h *StudentPortalHandler) SubmitApplication(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}

	var req model.SubmitApplicationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	app, err := h.apps.Submit(c.Request.Context(), studentID, req.CourseID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"application": app})
}

// WithdrawApplication godoc
// DELETE /api/v1/student/applications/:id
// Only pending applications can be withdrawn; the quota slot is released.
func (h *StudentPortalHandler) WithdrawApplication(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}
	appID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.apps.Withdraw(c.Request.Context(), studentID, appID); err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Application withdrawn"})
}

// SubmitJobApplication godoc
// POST /api/v1/student/job-applications
// Scores the student against the job and stores the score snapshot.
func (h *StudentPortalHandler) SubmitJobApplication(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}

	var req model.SubmitJobApplicationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	app, err := h.jobApps.Submit(c.Request.Context(), studentID, req.JobID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"job_application": app})
}

// WithdrawJobApplication godoc
// DELETE /api/v1/student/job-applications/:id
func (h *StudentPortalHandler) WithdrawJobApplication(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.jobApps.Withdraw(c.Request.Context(), studentID, id); err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Job application withdrawn"})
}

// GetAdmissions godoc
// GET /api/v1/student/admissions
// Returns every course and job application the student holds, with their stored snapshots.
func (h *StudentPortalHandler) GetAdmissions(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}

	view, err := h.projections.StudentAdmissions(c.Request.Context(), studentID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// ListNotices godoc
// GET /api/v1/student/notices?limit=20
// Returns the student's most recent decision notices, newest first.
func (h *StudentPortalHandler) ListNotices(c *gin.Context) {
	studentID, ok := subject(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"limit": "limit must be a positive integer"})
		return
	}
	limit = min(limit, maxNoticeLimit)

	notices, err := h.notices.ListByStudent(c.Request.Context(), studentID, limit)
	if err != nil {
		failWith(c, err)
		return
	}
	if notices == nil {
		notices = []model.AdmissionNotice{}
	}

	response.Success(c, http.StatusOK, gin.H{"notices": notices})
}
