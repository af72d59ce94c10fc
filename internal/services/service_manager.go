package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/cache"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/mailer"
	"github.com/bhojsoft/testseries-service/internal/repositories"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

// ServiceManagerDeps carries everything the services need.
type ServiceManagerDeps struct {
	Repo           repositories.Repository
	Tokens         *auth.TokenService
	OTPStore       *cache.OTPStore
	Mailer         mailer.Mailer
	EventPublisher events.EventPublisher
	Logger         *slog.Logger
	Validator      *validator.Validator

	// FrontendBaseURL anchors links embedded in outbound mail.
	FrontendBaseURL string
}

// serviceManager implements ServiceManager.
type serviceManager struct {
	deps ServiceManagerDeps

	authService         AuthService
	testService         TestService
	submissionService   SubmissionService
	instituteService    InstituteService
	notificationService NotificationService
	reviewService       ReviewService
	searchService       SearchService
	dashboardService    DashboardService
	courseService       CourseService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(deps ServiceManagerDeps) ServiceManager {
	return &serviceManager{deps: deps}
}

func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.deps.Repo == nil {
		return fmt.Errorf("repository is required")
	}
	if sm.deps.Tokens == nil {
		return fmt.Errorf("token service is required")
	}

	logger := sm.deps.Logger
	logger.Info("Initializing service manager")

	sm.authService = NewAuthService(sm.deps.Repo, sm.deps.Tokens, sm.deps.OTPStore, sm.deps.Mailer, sm.deps.EventPublisher, logger, sm.deps.Validator, sm.deps.FrontendBaseURL)
	sm.testService = NewTestService(sm.deps.Repo, logger, sm.deps.Validator)
	sm.submissionService = NewSubmissionService(sm.deps.Repo, sm.deps.EventPublisher, logger, sm.deps.Validator)
	sm.instituteService = NewInstituteService(sm.deps.Repo, sm.deps.EventPublisher, logger)
	sm.notificationService = NewNotificationService(sm.deps.Repo, logger)
	sm.reviewService = NewReviewService(sm.deps.Repo, logger, sm.deps.Validator)
	sm.searchService = NewSearchService(sm.deps.Repo, logger)
	sm.dashboardService = NewDashboardService(sm.deps.Repo, logger)
	sm.courseService = NewCourseService(sm.deps.Repo, logger, sm.deps.Validator)

	sm.initialized = true
	logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) get(name string, svc interface{}) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if svc == nil {
		panic(name + " service not initialized")
	}
}

func (sm *serviceManager) Auth() AuthService {
	sm.get("auth", sm.authService)
	return sm.authService
}

func (sm *serviceManager) Test() TestService {
	sm.get("test", sm.testService)
	return sm.testService
}

func (sm *serviceManager) Submission() SubmissionService {
	sm.get("submission", sm.submissionService)
	return sm.submissionService
}

func (sm *serviceManager) Institute() InstituteService {
	sm.get("institute", sm.instituteService)
	return sm.instituteService
}

func (sm *serviceManager) Notification() NotificationService {
	sm.get("notification", sm.notificationService)
	return sm.notificationService
}

func (sm *serviceManager) Review() ReviewService {
	sm.get("review", sm.reviewService)
	return sm.reviewService
}

func (sm *serviceManager) Search() SearchService {
	sm.get("search", sm.searchService)
	return sm.searchService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.get("dashboard", sm.dashboardService)
	return sm.dashboardService
}

func (sm *serviceManager) Course() CourseService {
	sm.get("course", sm.courseService)
	return sm.courseService
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")
	if sm.deps.EventPublisher != nil {
		if err := sm.deps.EventPublisher.Close(); err != nil {
			sm.deps.Logger.Error("failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	return nil
}
