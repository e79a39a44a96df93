package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/models"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// SecretCheck decides whether a presented credential grants ledger access.
// Kept pluggable so per-caller credentials can replace the static secret
// without touching the handlers.
type SecretCheck func(provided string) bool

// StaticSecret returns a SecretCheck comparing against one shared secret
func StaticSecret(secret string) SecretCheck {
	return func(provided string) bool {
		return provided == secret
	}
}

// OwnerAuthMiddleware gates a route on the OwnerPC header. The check runs
// before any query handling; a missing or wrong credential is rejected
// outright.
func OwnerAuthMiddleware(check SecretCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !check(c.GetHeader("OwnerPC")) {
			c.AbortWithStatusJSON(401, models.NewUnauthorizedProblem())
			return
		}
		c.Next()
	}
}

// RequireJSON rejects requests whose media type is not application/json
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() != "application/json" {
			problem := models.NewProblemDetails(415, "Unsupported Media Type", "Expected application/json media type")
			c.AbortWithStatusJSON(415, problem)
			return
		}
		c.Next()
	}
}

// CORSMiddleware handles CORS headers
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Header("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, OwnerPC")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// ResponseHelpers provides methods for REST-native responses
type ResponseHelpers struct{}

// Success sends the resource directly (no wrapper)
func (h *ResponseHelpers) Success(c *gin.Context, resource interface{}) {
	c.JSON(200, resource)
}

// Created sends a 201 created response with the created resource
func (h *ResponseHelpers) Created(c *gin.Context, resource interface{}) {
	c.JSON(201, resource)
}

// NoContent sends a 204 no content response
func (h *ResponseHelpers) NoContent(c *gin.Context) {
	c.Status(204)
}

func (h *ResponseHelpers) ValidationError(c *gin.Context, field, message string) {
	problem := models.NewValidationProblem(field, message, models.ErrorCodeInvalidField)
	h.setRequestIDHeader(c)
	c.JSON(400, problem)
}

// BindError translates a gin binding failure into a validation problem
func (h *ResponseHelpers) BindError(c *gin.Context, err error) {
	h.setRequestIDHeader(c)

	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		fieldError := validationErrors[0]
		problem := models.NewValidationProblem(
			strings.ToLower(fieldError.Field()),
			bindValidationMessage(fieldError),
			models.ErrorCodeInvalidField,
		)
		c.JSON(400, problem)
		return
	}

	problem := models.NewProblemDetails(400, "Bad Request", "Malformed data")
	c.JSON(400, problem)
}

// BusinessError sends a business logic error
func (h *ResponseHelpers) BusinessError(c *gin.Context, status int, title, detail string, code models.ErrorCode) {
	problem := models.NewBusinessLogicProblem(status, title, detail, code)
	h.setRequestIDHeader(c)
	c.JSON(status, problem)
}

// NotFound sends a 404 not found response
func (h *ResponseHelpers) NotFound(c *gin.Context, resource string) {
	problem := models.NewNotFoundProblem(resource)
	h.setRequestIDHeader(c)
	c.JSON(404, problem)
}

// InternalError sends a 500 internal server error response. The detail is
// logged, never returned to the caller.
func (h *ResponseHelpers) InternalError(c *gin.Context, detail string) {
	problem := models.NewInternalErrorProblem()
	h.setRequestIDHeader(c)

	log.Error().
		Str("request_id", getRequestID(c)).
		Str("detail", detail).
		Msg("Internal server error")

	c.JSON(500, problem)
}

func (h *ResponseHelpers) setRequestIDHeader(c *gin.Context) {
	if requestID := getRequestID(c); requestID != "" {
		c.Header("X-Request-ID", requestID)
	}
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		return requestID.(string)
	}
	return ""
}

func bindValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Value must be one of: " + err.Param()
	default:
		return "Invalid value"
	}
}

// Create a global instance for easy access
var Response = &ResponseHelpers{}
