package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/services"
	"github.com/bhojsoft/testseries-service/internal/utils"
)

type HandlerManager struct {
	authHandler         *AuthHandler
	testHandler         *TestHandler
	submissionHandler   *SubmissionHandler
	instituteHandler    *InstituteHandler
	notificationHandler *NotificationHandler
	reviewHandler       *ReviewHandler
	searchHandler       *SearchHandler
	dashboardHandler    *DashboardHandler
	courseHandler       *CourseHandler

	authMiddleware *AuthMiddleware
	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *auth.TokenService,
	resolver *auth.PrincipalResolver,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:         NewAuthHandler(serviceManager.Auth(), logger),
		testHandler:         NewTestHandler(serviceManager.Test(), logger),
		submissionHandler:   NewSubmissionHandler(serviceManager.Submission(), logger),
		instituteHandler:    NewInstituteHandler(serviceManager.Institute(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		reviewHandler:       NewReviewHandler(serviceManager.Review(), logger),
		searchHandler:       NewSearchHandler(serviceManager.Search(), logger),
		dashboardHandler:    NewDashboardHandler(serviceManager.Dashboard(), logger),
		courseHandler:       NewCourseHandler(serviceManager.Course(), logger),
		authMiddleware:      NewAuthMiddleware(tokens, resolver),
		serviceManager:      serviceManager,
	}
}

// SetupRoutes registers every API route on the router.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	// Public auth surface: no token required.
	public := router.Group("/api/v1/auth")
	{
		public.POST("/register/:role", hm.authHandler.Register)
		public.POST("/login/:role", hm.authHandler.Login)
		public.POST("/otp/send", hm.authHandler.SendOTP)
		public.POST("/otp/verify", hm.authHandler.VerifyOTP)
		public.POST("/password-reset", hm.authHandler.RequestPasswordReset)
		public.POST("/password-reset/confirm", hm.authHandler.ConfirmPasswordReset)
	}

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())
	{
		// Own profile
		v1.GET("/profile", hm.authHandler.GetProfile)
		v1.PUT("/profile", hm.authHandler.UpdateProfile)

		// Tests
		tests := v1.Group("/tests")
		{
			tests.POST("", hm.authMiddleware.RequireRoles(models.RoleTeacher, models.RoleInstitute, models.RoleSubAdmin), hm.testHandler.Create)
			tests.GET("", hm.testHandler.List)
			tests.GET("/mine", hm.testHandler.ListMine)
			tests.GET("/top-picked", hm.testHandler.TopPicked)
			tests.GET("/:id", hm.testHandler.GetByID)
			tests.PUT("/:id", hm.authMiddleware.RequireRoles(models.RoleTeacher, models.RoleInstitute, models.RoleSubAdmin), hm.testHandler.Update)
			tests.DELETE("/:id", hm.authMiddleware.RequireRoles(models.RoleTeacher, models.RoleInstitute, models.RoleSubAdmin), hm.testHandler.Delete)
			tests.POST("/:id/approve", hm.authMiddleware.RequireAdmin(), hm.testHandler.Approve)
			tests.POST("/:id/questions/import", hm.authMiddleware.RequireRoles(models.RoleTeacher, models.RoleInstitute, models.RoleSubAdmin), hm.testHandler.ImportQuestions)

			tests.POST("/:id/submit", hm.authMiddleware.RequireRoles(models.RoleStudent), hm.submissionHandler.Submit)
			tests.GET("/:id/submissions", hm.submissionHandler.ListByTest)

			tests.GET("/:id/reviews", hm.reviewHandler.ListByTest)
		}

		// Submissions
		v1.GET("/submissions/:id", hm.submissionHandler.GetResult)

		// Students
		students := v1.Group("/students")
		{
			students.GET("/:id/submissions", hm.submissionHandler.History)
			students.GET("/:id/dashboard", hm.dashboardHandler.Student)
		}

		// Institutes
		institutes := v1.Group("/institutes")
		{
			institutes.GET("", hm.instituteHandler.List)
			institutes.GET("/:id", hm.instituteHandler.GetByID)
			institutes.POST("/:id/approve", hm.authMiddleware.RequireAdmin(), hm.instituteHandler.Approve)
			institutes.GET("/:id/teachers", hm.instituteHandler.Teachers)
			institutes.GET("/:id/students", hm.instituteHandler.Students)
			institutes.GET("/:id/tests", hm.instituteHandler.Tests)
			institutes.POST("/:id/students/:student_id", hm.authMiddleware.RequireRoles(models.RoleInstitute, models.RoleSubAdmin), hm.instituteHandler.AddStudent)
			institutes.POST("/:id/teachers/:teacher_id", hm.authMiddleware.RequireRoles(models.RoleInstitute, models.RoleSubAdmin), hm.instituteHandler.AddTeacher)
		}

		// Teacher approval sits with the owning institute or an admin.
		v1.POST("/teachers/:id/approve",
			hm.authMiddleware.RequireRoles(models.RoleInstitute, models.RoleSubAdmin),
			hm.instituteHandler.ApproveTeacher)

		// Notifications
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.List)
			notifications.PUT("/:id/seen", hm.notificationHandler.MarkSeen)
		}

		// Reviews
		v1.POST("/reviews", hm.authMiddleware.RequireRoles(models.RoleStudent), hm.reviewHandler.Create)

		// Search
		search := v1.Group("/search")
		{
			search.GET("/students", hm.searchHandler.Students)
			search.GET("/courses", hm.searchHandler.Courses)
		}

		// Dashboard
		v1.GET("/dashboard/platform", hm.authMiddleware.RequireAdmin(), hm.dashboardHandler.Platform)

		// Courses
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.authMiddleware.RequireAdmin(), hm.courseHandler.Create)
			courses.GET("", hm.courseHandler.List)
			courses.GET("/:id", hm.courseHandler.GetByID)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "testseries-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
