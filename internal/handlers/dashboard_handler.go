package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bhojsoft/testseries-service/internal/services"
	"github.com/bhojsoft/testseries-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Platform returns platform-wide counts and leaderboards.
func (h *DashboardHandler) Platform(c *gin.Context) {
	h.LogRequest(c, "Getting platform dashboard")

	response, err := h.service.Platform(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Student returns one student's performance summary.
func (h *DashboardHandler) Student(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.service.Student(c.Request.Context(), principal, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
