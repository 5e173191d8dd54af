package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/handler"
	"github.com/stemsi/admissions-backend/internal/middleware"
	"github.com/stemsi/admissions-backend/internal/response"
	"github.com/stemsi/admissions-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	StudentPortal *handler.StudentPortalHandler
	Institution   *handler.InstitutionHandler
	Company       *handler.CompanyHandler
	WS            *handler.WSHandler
	System        *handler.SystemHandler
}

// Limiters holds the request throttles applied to route groups.
type Limiters struct {
	// PerIP guards every API route.
	PerIP *middleware.RateLimiter
	// Apply caps application submissions per student across all instances.
	Apply middleware.Limiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokens middleware.TokenValidator,
	handlers *Handlers,
	limiters Limiters,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	api := router.Group("/api/v1")
	if limiters.PerIP != nil {
		api.Use(limiters.PerIP.Middleware())
	}
	api.Use(middleware.CacheControl("no-store"))

	// ─── 1. Student Group ──────────────────────────────────────────────
	studentAPI := api.Group("/student")
	studentAPI.Use(middleware.RequireJWT(tokens, service.RoleStudent))
	{
		studentAPI.GET("/courses", handlers.StudentPortal.ListCourses)
		studentAPI.GET("/jobs", handlers.StudentPortal.ListJobs)
		studentAPI.GET("/academic-record", handlers.StudentPortal.GetAcademicRecord)
		studentAPI.PUT("/academic-record", handlers.StudentPortal.UpdateAcademicRecord)
		studentAPI.GET("/admissions", handlers.StudentPortal.GetAdmissions)
		studentAPI.GET("/notices", handlers.StudentPortal.ListNotices)

		submit := []gin.HandlerFunc{}
		if limiters.Apply != nil {
			submit = append(submit, middleware.LimitPerStudent(limiters.Apply, config.CacheKey.ApplyRateLimitKey, log))
		}
		studentAPI.POST("/applications", append(submit, handlers.StudentPortal.SubmitApplication)...)
		studentAPI.DELETE("/applications/:id", handlers.StudentPortal.WithdrawApplication)
		studentAPI.POST("/job-applications", append(submit, handlers.StudentPortal.SubmitJobApplication)...)
		studentAPI.DELETE("/job-applications/:id", handlers.StudentPortal.WithdrawJobApplication)
	}

	// ─── 2. Institution Group (JWT + organization scope) ───────────────
	institutionAPI := api.Group("/institutions/:institution_id")
	institutionAPI.Use(
		middleware.RequireJWT(tokens, service.RoleInstitutionStaff),
		middleware.RequireOrgParam("institution_id"),
	)
	{
		institutionAPI.GET("/courses", handlers.Institution.ListCourses)
		institutionAPI.POST("/courses", handlers.Institution.CreateCourse)
		institutionAPI.PUT("/courses/:id/requirements", handlers.Institution.UpdateCourseRequirements)

		institutionAPI.GET("/applications", handlers.Institution.ListApplications)
		institutionAPI.POST("/applications/override", handlers.Institution.OverrideApplication)
		institutionAPI.PUT("/applications/:id/status", handlers.Institution.UpdateApplicationStatus)

		institutionAPI.POST("/publish-admissions", handlers.Institution.PublishAdmissions)
		institutionAPI.GET("/admission-batches", handlers.Institution.ListBatches)
	}

	// ─── 3. Company Group (JWT + organization scope) ───────────────────
	companyAPI := api.Group("/companies/:company_id")
	companyAPI.Use(
		middleware.RequireJWT(tokens, service.RoleCompanyStaff),
		middleware.RequireOrgParam("company_id"),
	)
	{
		companyAPI.GET("/jobs", handlers.Company.ListJobs)
		companyAPI.POST("/jobs", handlers.Company.CreateJob)
		companyAPI.PUT("/jobs/:id/requirements", handlers.Company.UpdateJobRequirements)

		companyAPI.GET("/job-applications", handlers.Company.ListJobApplications)
		companyAPI.PUT("/job-applications/:id/status", handlers.Company.UpdateJobApplicationStatus)
	}

	// ─── 4. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(tokens))
	{
		ws.GET("/student/admissions/stream", handlers.WS.AdmissionsStream)
	}

	return router
}
