package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/eligibility"
	"github.com/stemsi/admissions-backend/internal/middleware"
	"github.com/stemsi/admissions-backend/internal/response"
	"github.com/stemsi/admissions-backend/internal/service"
)

// failWith maps a service error to its HTTP status and error code.
// Unrecognized errors become 500 and are attached to the context for the access log.
func failWith(c *gin.Context, err error) {
	var (
		nq  *service.NotQualifiedError
		qe  *service.QuotaExceededError
		ist *service.InvalidStateTransitionError
		cr  *service.CapacityReachedError
		ve  *eligibility.ValidationError
	)

	switch {
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, ve.Fields)
	case errors.As(err, &nq):
		response.FailWithReasons(c, http.StatusUnprocessableEntity, response.ErrNotQualified, nq.Reasons)
	case errors.As(err, &qe):
		response.FailWithDetails(c, http.StatusConflict, response.ErrQuotaExceeded, map[string]any{
			"institution_id": qe.InstitutionID,
			"limit":          qe.Limit,
			"active":         qe.Active,
		})
	case errors.As(err, &ist):
		response.FailWithDetails(c, http.StatusConflict, response.ErrInvalidStateTransition, map[string]any{
			"from": ist.From,
			"to":   ist.To,
		})
	case errors.As(err, &cr):
		response.FailWithDetails(c, http.StatusConflict, response.ErrCapacityReached, map[string]any{
			"course_id": cr.CourseID,
			"capacity":  cr.Capacity,
		})
	case errors.Is(err, service.ErrDuplicateApplication):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateApplication)
	case errors.Is(err, service.ErrNotWithdrawable):
		response.Fail(c, http.StatusConflict, response.ErrNotWithdrawable)
	case errors.Is(err, service.ErrRecordNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrRecordNotFound)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrConcurrentModification):
		_ = c.Error(err)
		c.Header("Retry-After", "1")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrConcurrentModification)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// uuidParam parses a UUID path parameter, writing 400 INVALID_ID on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// subject returns the authenticated user's ID, writing 401 when claims are missing.
func subject(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.SubjectID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	}
	return id, ok
}

// organization returns the organization scoped by RequireOrgParam, writing 403 when absent.
func organization(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetOrgID(c)
	if !ok {
		response.Fail(c, http.StatusForbidden, response.ErrOrganizationNeeded)
	}
	return id, ok
}
