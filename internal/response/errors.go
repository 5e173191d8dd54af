package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly  ErrCode = "STUDENT_ACCESS_ONLY"
	ErrInstitutionOnly    ErrCode = "INSTITUTION_ACCESS_ONLY"
	ErrCompanyAccessOnly  ErrCode = "COMPANY_ACCESS_ONLY"
	ErrOrganizationNeeded ErrCode = "ORGANIZATION_REQUIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrRecordNotFound ErrCode = "ACADEMIC_RECORD_NOT_FOUND"

	// ─── Admissions ────────────────────────────────────────────────────
	ErrNotQualified           ErrCode = "NOT_QUALIFIED"
	ErrQuotaExceeded          ErrCode = "QUOTA_EXCEEDED"
	ErrDuplicateApplication   ErrCode = "DUPLICATE_APPLICATION"
	ErrInvalidStateTransition ErrCode = "INVALID_STATE_TRANSITION"
	ErrCapacityReached        ErrCode = "CAPACITY_REACHED"
	ErrNotWithdrawable        ErrCode = "NOT_WITHDRAWABLE"
	ErrConcurrentModification ErrCode = "CONCURRENT_MODIFICATION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrInstitutionOnly:
		return "This resource is restricted to institution staff."
	case ErrCompanyAccessOnly:
		return "This resource is restricted to company staff."
	case ErrOrganizationNeeded:
		return "Your token is not bound to an organization."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrRecordNotFound:
		return "No academic record on file. Please complete your academic record first."

	// ─── Admissions ────────────────────────────────────────────────────
	case ErrNotQualified:
		return "You do not meet the requirements for this course."
	case ErrQuotaExceeded:
		return "You already hold the maximum number of active applications for this institution."
	case ErrDuplicateApplication:
		return "You have already applied."
	case ErrInvalidStateTransition:
		return "The requested status change is not allowed from the current status."
	case ErrCapacityReached:
		return "The course intake capacity has been reached."
	case ErrNotWithdrawable:
		return "Only pending applications can be withdrawn."
	case ErrConcurrentModification:
		return "The request conflicted with another update. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
