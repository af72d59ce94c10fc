package services

import (
	"context"
	"io"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

type AuthResponse struct {
	Token   string      `json:"token"`
	Role    models.Role `json:"role"`
	Profile interface{} `json:"profile"`
}

type TestResponse struct {
	*models.Test
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type TestListResponse struct {
	Tests      []*TestResponse   `json:"tests"`
	Pagination models.Pagination `json:"pagination"`
}

type SubmissionResultResponse struct {
	SubmissionID   uint    `json:"submission_id"`
	TestID         uint    `json:"test_id"`
	TestTitle      string  `json:"test_title"`
	Score          float64 `json:"score"`
	CorrectCount   int     `json:"correct_answers"`
	IncorrectCount int     `json:"incorrect_answers"`
	TotalQuestions int     `json:"total_questions"`
	Passed         bool    `json:"passed"`
}

type SubmissionListResponse struct {
	Submissions []models.Submission `json:"submissions"`
	Pagination  models.Pagination   `json:"pagination"`
}

type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnseenCount   int64                 `json:"unseen_count"`
	Pagination    models.Pagination     `json:"pagination"`
}

type ReviewListResponse struct {
	Reviews      []models.Review   `json:"reviews"`
	AverageStars float64           `json:"average_stars"`
	Pagination   models.Pagination `json:"pagination"`
}

type StudentSearchResponse struct {
	Students   []repositories.StudentScore `json:"students"`
	Pagination models.Pagination           `json:"pagination"`
}

type CourseListResponse struct {
	Courses    []models.Course   `json:"courses"`
	Pagination models.Pagination `json:"pagination"`
}

type StudentDashboardResponse struct {
	TestsTaken           int64   `json:"tests_taken"`
	AverageScore         float64 `json:"average_score"`
	BestScore            float64 `json:"best_score"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

type PlatformDashboardResponse struct {
	TestsBySubject []repositories.SubjectCount `json:"tests_by_subject"`
	TopStudents    []repositories.StudentScore `json:"top_students"`
	TopTests       []models.Test               `json:"top_tests"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, role models.Role, req *models.RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, role models.Role, req *models.LoginRequest) (*AuthResponse, error)

	GetProfile(ctx context.Context, actor *auth.Principal) (interface{}, error)
	UpdateProfile(ctx context.Context, actor *auth.Principal, req *models.ProfileUpdateRequest) (interface{}, error)

	SendOTP(ctx context.Context, req *models.OTPRequest) error
	VerifyOTP(ctx context.Context, req *models.OTPVerifyRequest) error

	RequestPasswordReset(ctx context.Context, req *models.PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req *models.PasswordResetConfirmRequest) error
}

type TestService interface {
	Create(ctx context.Context, actor *auth.Principal, req *models.TestCreateRequest) (*TestResponse, error)
	GetByID(ctx context.Context, actor *auth.Principal, id uint) (*TestResponse, error)
	Update(ctx context.Context, actor *auth.Principal, id uint, req *models.TestUpdateRequest) (*TestResponse, error)
	Delete(ctx context.Context, actor *auth.Principal, id uint) error

	List(ctx context.Context, actor *auth.Principal, filters repositories.TestFilters) (*TestListResponse, error)
	ListMine(ctx context.Context, actor *auth.Principal, filters repositories.PageFilters) (*TestListResponse, error)
	TopPicked(ctx context.Context, limit int) ([]models.Test, error)

	Approve(ctx context.Context, actor *auth.Principal, id uint) error

	// ImportQuestions reads an xlsx sheet and appends its rows as questions.
	ImportQuestions(ctx context.Context, actor *auth.Principal, testID uint, r io.Reader) (int, error)
}

type SubmissionService interface {
	Submit(ctx context.Context, actor *auth.Principal, testID uint, req *models.SubmitTestRequest) (*SubmissionResultResponse, error)
	GetResult(ctx context.Context, actor *auth.Principal, submissionID uint) (*SubmissionResultResponse, error)
	History(ctx context.Context, actor *auth.Principal, studentID uint, filters repositories.PageFilters) (*SubmissionListResponse, error)
	ListByTest(ctx context.Context, actor *auth.Principal, testID uint, filters repositories.PageFilters) (*SubmissionListResponse, error)
}

type InstituteService interface {
	Approve(ctx context.Context, actor *auth.Principal, id uint) error
	ApproveTeacher(ctx context.Context, actor *auth.Principal, teacherID uint) error

	List(ctx context.Context, actor *auth.Principal, filters repositories.PageFilters) ([]models.Institute, models.Pagination, error)
	GetByID(ctx context.Context, actor *auth.Principal, id uint) (*models.Institute, error)
	Teachers(ctx context.Context, actor *auth.Principal, instituteID uint) ([]models.Teacher, error)
	Students(ctx context.Context, actor *auth.Principal, instituteID uint) ([]models.Student, error)
	Tests(ctx context.Context, actor *auth.Principal, instituteID uint, filters repositories.PageFilters) (*TestListResponse, error)

	AddStudent(ctx context.Context, actor *auth.Principal, instituteID, studentID uint) error
	AddTeacher(ctx context.Context, actor *auth.Principal, instituteID, teacherID uint) error
}

type NotificationService interface {
	Notify(ctx context.Context, recipientID uint, role models.Role, activityType models.ActivityType, message string, relatedID *uint) error
	List(ctx context.Context, actor *auth.Principal, filters repositories.NotificationFilters) (*NotificationListResponse, error)
	MarkSeen(ctx context.Context, actor *auth.Principal, id uint) error

	// HandleEvent consumes activity events and persists notifications.
	HandleEvent(ctx context.Context, event *events.Event) error
}

type ReviewService interface {
	Create(ctx context.Context, actor *auth.Principal, req *models.ReviewCreateRequest) (*models.Review, error)
	ListByTest(ctx context.Context, testID uint, filters repositories.PageFilters) (*ReviewListResponse, error)
}

type SearchService interface {
	Students(ctx context.Context, actor *auth.Principal, name string, filters repositories.PageFilters) (*StudentSearchResponse, error)
	Courses(ctx context.Context, name string, filters repositories.PageFilters) (*CourseListResponse, error)
}

type DashboardService interface {
	Platform(ctx context.Context) (*PlatformDashboardResponse, error)
	Student(ctx context.Context, actor *auth.Principal, studentID uint) (*StudentDashboardResponse, error)
}

type CourseService interface {
	Create(ctx context.Context, actor *auth.Principal, req *models.CourseCreateRequest) (*models.Course, error)
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, filters repositories.PageFilters) (*CourseListResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Test() TestService
	Submission() SubmissionService
	Institute() InstituteService
	Notification() NotificationService
	Review() ReviewService
	Search() SearchService
	Dashboard() DashboardService
	Course() CourseService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
