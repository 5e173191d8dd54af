package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Success(c, http.StatusOK, nil) })

	cases := []struct {
		name   string
		header string
		keep   bool
	}{
		{"reused", "trace-42", true},
		{"generated when absent", "", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"control characters", "abc\tdef", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(HeaderRequestID, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			if tc.keep {
				assert.Equal(t, tc.header, got)
			} else {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			}

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, got, body.Metadata.RequestID)
		})
	}
}

func TestFailVariants(t *testing.T) {
	r := gin.New()
	r.GET("/reasons", func(c *gin.Context) {
		FailWithReasons(c, http.StatusUnprocessableEntity, ErrNotQualified, []string{"Missing GPA"})
	})
	r.GET("/details", func(c *gin.Context) {
		FailWithDetails(c, http.StatusConflict, ErrQuotaExceeded, map[string]any{"limit": 2, "active": 2})
	})
	r.GET("/abort", func(c *gin.Context) {
		AbortFail(c, http.StatusTooManyRequests, ErrRateLimitExceeded)
		assert.True(t, c.IsAborted())
	})

	decode := func(path string) (int, Response) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body
	}

	code, body := decode("/reasons")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, ErrNotQualified, body.Error.Code)
	assert.Equal(t, []string{"Missing GPA"}, body.Error.Reasons)
	assert.Equal(t, GetMessage(ErrNotQualified), body.Error.Message)

	code, body = decode("/details")
	assert.Equal(t, http.StatusConflict, code)
	assert.EqualValues(t, 2, body.Error.Details["limit"])

	code, body = decode("/abort")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, ErrRateLimitExceeded, body.Error.Code)
}

func TestEveryCodeHasAMessage(t *testing.T) {
	codes := []ErrCode{
		ErrTokenRequired, ErrTokenInvalid, ErrTokenExpired,
		ErrForbidden, ErrStudentAccessOnly, ErrInstitutionOnly, ErrCompanyAccessOnly, ErrOrganizationNeeded,
		ErrValidation, ErrInvalidID, ErrNotFound, ErrRecordNotFound,
		ErrNotQualified, ErrQuotaExceeded, ErrDuplicateApplication, ErrInvalidStateTransition,
		ErrCapacityReached, ErrNotWithdrawable, ErrConcurrentModification,
		ErrRateLimitExceeded, ErrInternal,
	}
	fallback := GetMessage("SOMETHING_ELSE")
	for _, code := range codes {
		assert.NotEqual(t, fallback, GetMessage(code), code)
	}
}
