package services

import (
	"context"
	"testing"
	"time"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/mailer"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

func managerDeps() ServiceManagerDeps {
	return ServiceManagerDeps{
		Repo:            newStubRepository(),
		Tokens:          auth.NewTokenService("test-secret", time.Hour),
		Mailer:          mailer.Noop{},
		EventPublisher:  events.NewMockEventPublisher(testLogger()),
		Logger:          testLogger(),
		Validator:       validator.New(),
		FrontendBaseURL: "https://app.example.com",
	}
}

func TestServiceManager_Initialize(t *testing.T) {
	ctx := context.Background()

	manager := NewServiceManager(managerDeps())
	if err := manager.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	// Initialize twice is harmless.
	if err := manager.Initialize(ctx); err != nil {
		t.Fatalf("repeat Initialize failed: %v", err)
	}

	if manager.Auth() == nil {
		t.Error("Auth() returned nil")
	}
	if manager.Test() == nil {
		t.Error("Test() returned nil")
	}
	if manager.Submission() == nil {
		t.Error("Submission() returned nil")
	}
	if manager.Institute() == nil {
		t.Error("Institute() returned nil")
	}
	if manager.Notification() == nil {
		t.Error("Notification() returned nil")
	}
	if manager.Review() == nil {
		t.Error("Review() returned nil")
	}
	if manager.Search() == nil {
		t.Error("Search() returned nil")
	}
	if manager.Dashboard() == nil {
		t.Error("Dashboard() returned nil")
	}
	if manager.Course() == nil {
		t.Error("Course() returned nil")
	}

	if err := manager.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
	if err := manager.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestServiceManager_RequiresRepo(t *testing.T) {
	deps := managerDeps()
	deps.Repo = nil

	manager := NewServiceManager(deps)
	if err := manager.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize should fail without a repository")
	}
}

func TestServiceManager_PanicsBeforeInitialize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when using an uninitialized manager")
		}
	}()

	manager := NewServiceManager(managerDeps())
	manager.Auth()
}
