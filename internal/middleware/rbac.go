package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/response"
)

// ContextKeyOrgID is the Gin context key for the organization a staff request is scoped to.
const ContextKeyOrgID = "org_id"

// RequireOrgParam checks that the organization in the path matches the staff token's organization.
// Must run after RequireJWT.
func RequireOrgParam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if claims.OrgID == uuid.Nil {
			response.AbortFail(c, http.StatusForbidden, response.ErrOrganizationNeeded)
			return
		}

		orgID, err := uuid.Parse(c.Param(param))
		if err != nil {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		if orgID != claims.OrgID {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		c.Set(ContextKeyOrgID, orgID)
		c.Next()
	}
}

// GetOrgID returns the organization set by RequireOrgParam.
func GetOrgID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(ContextKeyOrgID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
