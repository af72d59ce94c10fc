package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bhojsoft/testseries-service/internal/repositories"
	"github.com/bhojsoft/testseries-service/internal/services"
	"github.com/bhojsoft/testseries-service/internal/utils"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

// ErrorResponse is the uniform error payload for every endpoint.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps operations that return no resource body.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler shares.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c, h.logger).Info(msg, args...)
}

// LogError logs a failure with the request-scoped logger.
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.LoggerFromContext(c, h.logger).Error(msg, args...)
}

// parseIDParam reads a numeric path parameter. On failure it writes a 400
// response and returns false.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0, false
	}
	return uint(id), true
}

// parsePageFilters reads page/size query parameters with sane bounds.
func (h *BaseHandler) parsePageFilters(c *gin.Context) repositories.PageFilters {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return repositories.PageFilters{Limit: size, Offset: (page - 1) * size}
}

// handleServiceError maps service-layer failures onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrAdminNotFound),
		errors.Is(err, services.ErrInstituteNotFound),
		errors.Is(err, services.ErrTeacherNotFound),
		errors.Is(err, services.ErrStudentNotFound),
		errors.Is(err, services.ErrTestNotFound),
		errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Email is already registered",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid email or password",
		})
	case errors.Is(err, services.ErrOTPInvalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "OTP is invalid or expired",
		})
	case errors.Is(err, services.ErrResetTokenInvalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Reset token is invalid or expired",
		})
	case errors.Is(err, services.ErrInstituteNotApproved):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Institute is not approved yet",
		})
	case errors.Is(err, services.ErrTeacherNotApproved):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Teacher is not approved yet",
		})
	case errors.Is(err, services.ErrTestNotApproved):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Test is not approved yet",
		})
	case errors.Is(err, services.ErrTestNotVisible):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Test is not visible to this student",
		})
	case errors.Is(err, services.ErrAnswerCountMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Answer count does not match question count",
		})
	case errors.Is(err, services.ErrSubmissionRequired):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Only students who took the test can review it",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
