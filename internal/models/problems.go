package models

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	ErrorCodeInvalidField    ErrorCode = "INVALID_FIELD"
	ErrorCodeMissingField    ErrorCode = "MISSING_FIELD"
	ErrorCodeNotAvailable    ErrorCode = "NO_AVAILABILITY"
	ErrorCodeDuplicate       ErrorCode = "DUPLICATE"
	ErrorCodeTypeHasPets     ErrorCode = "TYPE_HAS_PETS"
	ErrorCodeUnknownAnimal   ErrorCode = "UNKNOWN_ANIMAL"
	ErrorCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrorCodeRemovalFailed   ErrorCode = "REMOVAL_FAILED"
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeInternalError   ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError ErrorCode = "VALIDATION_ERROR"
)

const (
	ProblemTypeValidationError = "validation-error"
	ProblemTypeBusinessError   = "business-logic-error"
	ProblemTypeNotFound        = "not-found"
	ProblemTypeUnauthorized    = "unauthorized"
	ProblemTypeInternalError   = "internal-error"
)

// ProblemDetails is the RFC7807-style error body all handlers respond with.
type ProblemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
	Code   string `json:"code,omitempty"`
}

func NewProblemDetails(status int, title, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   getProblemType(status),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// NewValidationProblem creates a validation error problem
func NewValidationProblem(field, message string, code ErrorCode) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeValidationError,
		Title:  "Validation Failed",
		Status: 400,
		Detail: message,
		Field:  field,
		Code:   string(code),
	}
}

// NewBusinessLogicProblem creates a business logic error problem
func NewBusinessLogicProblem(status int, title, detail string, code ErrorCode) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeBusinessError,
		Title:  title,
		Status: status,
		Detail: detail,
		Code:   string(code),
	}
}

// NewNotFoundProblem creates a not found error problem
func NewNotFoundProblem(resource string) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeNotFound,
		Title:  "Resource Not Found",
		Status: 404,
		Detail: resource + " not found",
	}
}

// NewUnauthorizedProblem creates an unauthorized error problem
func NewUnauthorizedProblem() *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeUnauthorized,
		Title:  "Unauthorized",
		Status: 401,
		Detail: "Missing or invalid credentials",
		Code:   string(ErrorCodeUnauthorized),
	}
}

// NewInternalErrorProblem creates an internal server error problem
func NewInternalErrorProblem() *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeInternalError,
		Title:  "Internal Server Error",
		Status: 500,
		Detail: "An unexpected error occurred",
	}
}

// Helper function to get problem type URI based on status code
func getProblemType(status int) string {
	switch status {
	case 400:
		return ProblemTypeValidationError
	case 401:
		return ProblemTypeUnauthorized
	case 404:
		return ProblemTypeNotFound
	case 409, 415, 422:
		return ProblemTypeBusinessError
	default:
		return ProblemTypeInternalError
	}
}
