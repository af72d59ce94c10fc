package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/cache"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

// PostgreSQLRepository wires every sub-repository over one gorm handle.
type PostgreSQLRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager

	admin        repositories.AdminRepository
	institute    repositories.InstituteRepository
	teacher      repositories.TeacherRepository
	student      repositories.StudentRepository
	question     repositories.QuestionRepository
	test         repositories.TestRepository
	submission   repositories.SubmissionRepository
	notification repositories.NotificationRepository
	review       repositories.ReviewRepository
	course       repositories.CourseRepository
	dashboard    repositories.DashboardRepository
}

func NewPostgreSQLRepository(db *gorm.DB, redisClient *redis.Client) *PostgreSQLRepository {
	cacheManager := cache.NewCacheManager(redisClient)
	return newPostgreSQLRepository(db, cacheManager)
}

func newPostgreSQLRepository(db *gorm.DB, cacheManager *cache.CacheManager) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:           db,
		cacheManager: cacheManager,
		admin:        NewAdminPostgreSQL(db),
		institute:    NewInstitutePostgreSQL(db),
		teacher:      NewTeacherPostgreSQL(db),
		student:      NewStudentPostgreSQL(db),
		question:     NewQuestionPostgreSQL(db),
		test:         NewTestPostgreSQL(db, cacheManager),
		submission:   NewSubmissionPostgreSQL(db, cacheManager),
		notification: NewNotificationPostgreSQL(db),
		review:       NewReviewPostgreSQL(db),
		course:       NewCoursePostgreSQL(db),
		dashboard:    NewDashboardPostgreSQL(db, cacheManager),
	}
}

func (r *PostgreSQLRepository) Admin() repositories.AdminRepository               { return r.admin }
func (r *PostgreSQLRepository) Institute() repositories.InstituteRepository       { return r.institute }
func (r *PostgreSQLRepository) Teacher() repositories.TeacherRepository           { return r.teacher }
func (r *PostgreSQLRepository) Student() repositories.StudentRepository           { return r.student }
func (r *PostgreSQLRepository) Question() repositories.QuestionRepository         { return r.question }
func (r *PostgreSQLRepository) Test() repositories.TestRepository                 { return r.test }
func (r *PostgreSQLRepository) Submission() repositories.SubmissionRepository     { return r.submission }
func (r *PostgreSQLRepository) Notification() repositories.NotificationRepository { return r.notification }
func (r *PostgreSQLRepository) Review() repositories.ReviewRepository             { return r.review }
func (r *PostgreSQLRepository) Course() repositories.CourseRepository             { return r.course }
func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository       { return r.dashboard }

// WithTransaction runs fn against a repository clone bound to one
// transaction. Every call made through the clone shares the same tx.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newPostgreSQLRepository(tx, r.cacheManager))
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// PostgreSQLRepositoryManager manages the repository lifecycle.
type PostgreSQLRepositoryManager struct {
	db          *gorm.DB
	redisClient *redis.Client
	repository  *PostgreSQLRepository
}

func NewRepositoryManager(db *gorm.DB, redisClient *redis.Client) *PostgreSQLRepositoryManager {
	return &PostgreSQLRepositoryManager{
		db:          db,
		redisClient: redisClient,
	}
}

func (m *PostgreSQLRepositoryManager) Initialize() error {
	if m.db == nil {
		return fmt.Errorf("database connection is required")
	}
	m.repository = NewPostgreSQLRepository(m.db, m.redisClient)
	return nil
}

// GetRepository returns the managed repository, building it on first use.
// Returning a typed-nil *PostgreSQLRepository here would pass interface
// nil checks downstream, so an uninitialized manager initializes itself.
func (m *PostgreSQLRepositoryManager) GetRepository() repositories.Repository {
	if m.repository == nil {
		if err := m.Initialize(); err != nil {
			return nil
		}
	}
	return m.repository
}

func (m *PostgreSQLRepositoryManager) HealthCheck(ctx context.Context) error {
	if m.repository == nil {
		return fmt.Errorf("repository not initialized")
	}
	if err := m.repository.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if m.repository.cacheManager != nil {
		if err := m.repository.cacheManager.HealthCheck(ctx); err != nil {
			// Cache is optional; the service keeps working without it.
			return nil
		}
	}
	return nil
}

func (m *PostgreSQLRepositoryManager) Shutdown(ctx context.Context) error {
	if m.repository == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- m.repository.Close() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
