package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bhojsoft/testseries-service/internal/services"
	"github.com/bhojsoft/testseries-service/internal/utils"
)

type SearchHandler struct {
	BaseHandler
	service services.SearchService
}

func NewSearchHandler(service services.SearchService, logger utils.Logger) *SearchHandler {
	return &SearchHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Students searches students by name, with score summaries.
func (h *SearchHandler) Students(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	name := c.Query("name")
	h.LogRequest(c, "Searching students", "query", name)

	response, err := h.service.Students(c.Request.Context(), principal, name, h.parsePageFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Courses searches courses by name.
func (h *SearchHandler) Courses(c *gin.Context) {
	name := c.Query("name")
	h.LogRequest(c, "Searching courses", "query", name)

	response, err := h.service.Courses(c.Request.Context(), name, h.parsePageFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
