package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bhojsoft/testseries-service/internal/services"
	"github.com/bhojsoft/testseries-service/internal/utils"
)

type InstituteHandler struct {
	BaseHandler
	service services.InstituteService
}

func NewInstituteHandler(service services.InstituteService, logger utils.Logger) *InstituteHandler {
	return &InstituteHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// List returns registered institutes.
func (h *InstituteHandler) List(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	page := h.parsePageFilters(c)
	institutes, pagination, err := h.service.List(c.Request.Context(), principal, page)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"institutes": institutes,
		"pagination": pagination,
	})
}

// GetByID returns one institute.
func (h *InstituteHandler) GetByID(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	institute, err := h.service.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, institute)
}

// Approve marks an institute approved. Main admin only; repeats are no-ops.
func (h *InstituteHandler) Approve(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Approving institute", "institute_id", id)

	if err := h.service.Approve(c.Request.Context(), principal, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Institute approved"})
}

// ApproveTeacher approves a teacher, by the owning institute or an admin.
func (h *InstituteHandler) ApproveTeacher(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	teacherID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Approving teacher", "teacher_id", teacherID)

	if err := h.service.ApproveTeacher(c.Request.Context(), principal, teacherID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Teacher approved"})
}

// Teachers returns the institute's teacher roster.
func (h *InstituteHandler) Teachers(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	teachers, err := h.service.Teachers(c.Request.Context(), principal, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teachers": teachers})
}

// Students returns the institute's student roster.
func (h *InstituteHandler) Students(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	students, err := h.service.Students(c.Request.Context(), principal, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

// Tests returns tests authored by the institute's teachers.
func (h *InstituteHandler) Tests(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.service.Tests(c.Request.Context(), principal, id, h.parsePageFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// AddStudent attaches a student to the institute.
func (h *InstituteHandler) AddStudent(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := h.parseIDParam(c, "student_id")
	if !ok {
		return
	}

	h.LogRequest(c, "Adding student to institute", "institute_id", id, "student_id", studentID)

	if err := h.service.AddStudent(c.Request.Context(), principal, id, studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Student added to institute"})
}

// AddTeacher moves a teacher under the institute. The approval flag resets
// when the institute changes.
func (h *InstituteHandler) AddTeacher(c *gin.Context) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	teacherID, ok := h.parseIDParam(c, "teacher_id")
	if !ok {
		return
	}

	h.LogRequest(c, "Adding teacher to institute", "institute_id", id, "teacher_id", teacherID)

	if err := h.service.AddTeacher(c.Request.Context(), principal, id, teacherID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Teacher added to institute"})
}
