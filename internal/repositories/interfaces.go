package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/models"
)

// ErrNotFound is returned by every repository when a record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	Subject       *string            `json:"subject"`
	Class         *string            `json:"class"`
	Kind          *models.TestKind   `json:"kind"`
	Visibility    *models.Visibility `json:"visibility"`
	InstituteID   *uint              `json:"institute_id"`
	CreatedByID   *uint              `json:"created_by_id"`
	CreatedByRole *models.Role       `json:"created_by_role"`
	IsApproved    *bool              `json:"is_approved"`

	// VisibleOnly restricts results to what a student may see: public
	// tests, plus institute tests of VisibleToInstitute when set.
	VisibleOnly        bool  `json:"-"`
	VisibleToInstitute *uint `json:"-"`

	DateFrom      *time.Time         `json:"date_from"`
	DateTo        *time.Time         `json:"date_to"`
	Limit         int                `json:"limit"`
	Offset        int                `json:"offset"`
	SortBy        string             `json:"sort_by"`    // "created_at", "title", "views"
	SortOrder     string             `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	TestID    *uint      `json:"test_id"`
	StudentID *uint      `json:"student_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

type NotificationFilters struct {
	UnseenOnly bool `json:"unseen_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

type PageFilters struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int64  `json:"count"`
}

type StudentScore struct {
	StudentID    uint    `json:"student_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profile_image"`
	AverageScore float64 `json:"average_score"`
	TestsTaken   int64   `json:"tests_taken"`
}

type StudentStats struct {
	TestsTaken   int64   `json:"tests_taken"`
	AverageScore float64 `json:"average_score"`
	BestScore    float64 `json:"best_score"`
}

// ===== PRINCIPAL REPOSITORIES =====

type AdminRepository interface {
	Create(ctx context.Context, tx *gorm.DB, admin *models.Admin) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Admin, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Admin, error)
	Update(ctx context.Context, tx *gorm.DB, admin *models.Admin) error
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type InstituteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, institute *models.Institute) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Institute, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Institute, error)
	Update(ctx context.Context, tx *gorm.DB, institute *models.Institute) error
	SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error
	List(ctx context.Context, tx *gorm.DB, filters PageFilters) ([]models.Institute, int64, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	GetTeachers(ctx context.Context, tx *gorm.DB, instituteID uint) ([]models.Teacher, error)
	GetStudents(ctx context.Context, tx *gorm.DB, instituteID uint) ([]models.Student, error)
}

type TeacherRepository interface {
	Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Teacher, error)
	Update(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error
	SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error
	ListByInstitute(ctx context.Context, tx *gorm.DB, instituteID uint, filters PageFilters) ([]models.Teacher, int64, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Student, error)
	Update(ctx context.Context, tx *gorm.DB, student *models.Student) error
	// SetInstitute with nil detaches the student from any institute.
	SetInstitute(ctx context.Context, tx *gorm.DB, studentID uint, instituteID *uint) error
	MarkEmailVerified(ctx context.Context, tx *gorm.DB, studentID uint) error
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

// ===== TEST DOMAIN REPOSITORIES =====

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	// GetByTest returns a test's questions ordered by position.
	GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]models.Question, error)
}

type TestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	Update(ctx context.Context, tx *gorm.DB, test *models.Test) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters TestFilters) ([]models.Test, int64, error)
	SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error
	IncrementViews(ctx context.Context, tx *gorm.DB, id uint) error
	TopByViews(ctx context.Context, tx *gorm.DB, limit int) ([]models.Test, error)
	ListByInstituteTeachers(ctx context.Context, tx *gorm.DB, instituteID uint, filters PageFilters) ([]models.Test, int64, error)

	// Question membership
	AddQuestions(ctx context.Context, tx *gorm.DB, testID uint, rows []models.TestQuestion) error
	RemoveQuestions(ctx context.Context, tx *gorm.DB, testID uint, questionIDs []uint) error
	CountQuestions(ctx context.Context, tx *gorm.DB, testID uint) (int64, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	List(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]models.Submission, int64, error)
	CountByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (int64, error)
	GetStudentStats(ctx context.Context, tx *gorm.DB, studentID uint) (*StudentStats, error)
}

// ===== SUPPORTING REPOSITORIES =====

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error)
	// MarkSeen is idempotent and keeps the first seen timestamp.
	MarkSeen(ctx context.Context, tx *gorm.DB, id uint) error
	ListByRecipient(ctx context.Context, tx *gorm.DB, recipientID uint, role models.Role, filters NotificationFilters) ([]models.Notification, int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *models.Review) error
	ListByTest(ctx context.Context, tx *gorm.DB, testID uint, filters PageFilters) ([]models.Review, int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	List(ctx context.Context, tx *gorm.DB, filters PageFilters) ([]models.Course, int64, error)
	SearchByName(ctx context.Context, tx *gorm.DB, name string, filters PageFilters) ([]models.Course, int64, error)
}

type DashboardRepository interface {
	TestCountBySubject(ctx context.Context) ([]SubjectCount, error)
	TopStudentsByAverageScore(ctx context.Context, limit int) ([]StudentScore, error)
	// CompletionPercentage is the share of visible tests the student has
	// submitted at least once, 0..100.
	CompletionPercentage(ctx context.Context, studentID uint) (float64, error)
	SearchStudentsWithScores(ctx context.Context, name string, limit, offset int) ([]StudentScore, int64, error)
}
