package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSubmissionFixture(t *testing.T) (*stubRepository, *events.MockEventPublisher, SubmissionService) {
	t.Helper()

	repo := newStubRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewSubmissionService(repo, publisher, testLogger(), validator.New())
	return repo, publisher, service
}

func seedApprovedTest(repo *stubRepository) *models.Test {
	return repo.seedTest(
		models.Test{
			Title:        "Algebra Basics",
			Subject:      "Math",
			Duration:     30,
			TotalMarks:   10,
			PassingMarks: 5,
			Visibility:   models.VisibilityAll,
			IsApproved:   true,
		},
		models.Question{Prompt: "2+2?", CorrectAnswer: "4", Marks: 1},
		models.Question{Prompt: "3*3?", CorrectAnswer: "9", Marks: 1},
		models.Question{Prompt: "10/2?", CorrectAnswer: "5", Marks: 1},
	)
}

func TestSubmissionService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("grades and stores the submission", func(t *testing.T) {
		repo, publisher, service := newSubmissionFixture(t)
		test := seedApprovedTest(repo)
		student := &auth.Principal{ID: 100, Role: models.RoleStudent, Name: "Asha"}

		result, err := service.Submit(ctx, student, test.ID, &models.SubmitTestRequest{
			Answers: []string{" 4 ", "9", "wrong"},
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		if result.CorrectCount != 2 || result.IncorrectCount != 1 {
			t.Errorf("breakdown = %d/%d, want 2/1", result.CorrectCount, result.IncorrectCount)
		}
		if result.Score != 66.67 {
			t.Errorf("Score = %v, want 66.67", result.Score)
		}
		// Passing needs 50%, the student scored 66.67%.
		if !result.Passed {
			t.Error("Passed = false, want true")
		}
		if len(repo.submissions) != 1 {
			t.Fatalf("stored submissions = %d, want 1", len(repo.submissions))
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("published events = %d, want 1", len(published))
		}
		event := published[0]
		if event.Type != events.TypeActivity {
			t.Errorf("event type = %q, want %q", event.Type, events.TypeActivity)
		}
		if event.Source != "testseries-service" {
			t.Errorf("event source = %q", event.Source)
		}
		if event.Version != "1.0" {
			t.Errorf("event version = %q", event.Version)
		}
		payload, ok := event.Data.(events.ActivityPayload)
		if !ok {
			t.Fatalf("event data is %T, want ActivityPayload", event.Data)
		}
		if payload.ActivityType != string(models.ActivityTestSubmit) {
			t.Errorf("activity type = %q, want TEST_SUBMIT", payload.ActivityType)
		}
		if payload.RecipientID != student.ID {
			t.Errorf("recipient = %d, want %d", payload.RecipientID, student.ID)
		}
	})

	t.Run("answer count mismatch writes nothing", func(t *testing.T) {
		repo, publisher, service := newSubmissionFixture(t)
		test := seedApprovedTest(repo)
		student := &auth.Principal{ID: 100, Role: models.RoleStudent}

		_, err := service.Submit(ctx, student, test.ID, &models.SubmitTestRequest{
			Answers: []string{"4"},
		})
		if !errors.Is(err, ErrAnswerCountMismatch) {
			t.Fatalf("error = %v, want ErrAnswerCountMismatch", err)
		}
		if len(repo.submissions) != 0 {
			t.Errorf("stored submissions = %d, want 0", len(repo.submissions))
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("no event should be published for a rejected submission")
		}
	})

	t.Run("only students submit", func(t *testing.T) {
		repo, _, service := newSubmissionFixture(t)
		test := seedApprovedTest(repo)
		teacher := &auth.Principal{ID: 5, Role: models.RoleTeacher}

		_, err := service.Submit(ctx, teacher, test.ID, &models.SubmitTestRequest{Answers: []string{"4", "9", "5"}})
		if !IsPermissionError(err) {
			t.Fatalf("error = %v, want PermissionError", err)
		}
	})

	t.Run("invisible test rejected", func(t *testing.T) {
		repo, _, service := newSubmissionFixture(t)
		test := repo.seedTest(
			models.Test{
				Title:       "Hidden",
				Subject:     "Math",
				Visibility:  models.VisibilityInstitute,
				InstituteID: uintPtr(9),
				IsApproved:  true,
				TotalMarks:  1,
			},
			models.Question{Prompt: "?", CorrectAnswer: "a"},
		)
		outsider := &auth.Principal{ID: 100, Role: models.RoleStudent}

		_, err := service.Submit(ctx, outsider, test.ID, &models.SubmitTestRequest{Answers: []string{"a"}})
		if !errors.Is(err, ErrTestNotVisible) {
			t.Fatalf("error = %v, want ErrTestNotVisible", err)
		}
	})

	t.Run("unknown test", func(t *testing.T) {
		_, _, service := newSubmissionFixture(t)
		student := &auth.Principal{ID: 100, Role: models.RoleStudent}

		_, err := service.Submit(ctx, student, 999, &models.SubmitTestRequest{Answers: []string{"a"}})
		if !errors.Is(err, ErrTestNotFound) {
			t.Fatalf("error = %v, want ErrTestNotFound", err)
		}
	})
}

func TestSubmissionService_GetResult(t *testing.T) {
	ctx := context.Background()
	repo, _, service := newSubmissionFixture(t)
	test := seedApprovedTest(repo)
	submission := repo.seedSubmission(models.Submission{
		TestID:         test.ID,
		StudentID:      100,
		Score:          100,
		CorrectCount:   3,
		TotalQuestions: 3,
	})

	t.Run("owner reads own result", func(t *testing.T) {
		owner := &auth.Principal{ID: 100, Role: models.RoleStudent}
		result, err := service.GetResult(ctx, owner, submission.ID)
		if err != nil {
			t.Fatalf("GetResult failed: %v", err)
		}
		if result.TestTitle != test.Title {
			t.Errorf("TestTitle = %q, want %q", result.TestTitle, test.Title)
		}
		if !result.Passed {
			t.Error("Passed = false, want true")
		}
	})

	t.Run("other students blocked", func(t *testing.T) {
		other := &auth.Principal{ID: 200, Role: models.RoleStudent}
		if _, err := service.GetResult(ctx, other, submission.ID); !IsPermissionError(err) {
			t.Fatalf("error = %v, want PermissionError", err)
		}
	})

	t.Run("admins read any result", func(t *testing.T) {
		admin := &auth.Principal{ID: 1, Role: models.RoleMainAdmin}
		if _, err := service.GetResult(ctx, admin, submission.ID); err != nil {
			t.Fatalf("GetResult failed: %v", err)
		}
	})
}

func TestSubmissionService_History(t *testing.T) {
	ctx := context.Background()
	repo, _, service := newSubmissionFixture(t)
	test := seedApprovedTest(repo)
	repo.seedSubmission(models.Submission{TestID: test.ID, StudentID: 100, Score: 50})
	repo.seedSubmission(models.Submission{TestID: test.ID, StudentID: 100, Score: 80})
	repo.seedSubmission(models.Submission{TestID: test.ID, StudentID: 200, Score: 90})

	t.Run("retakes show as separate rows", func(t *testing.T) {
		student := &auth.Principal{ID: 100, Role: models.RoleStudent}
		resp, err := service.History(ctx, student, 100, pageFilters(0, 0))
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(resp.Submissions) != 2 {
			t.Errorf("submissions = %d, want 2", len(resp.Submissions))
		}
	})

	t.Run("students cannot read another history", func(t *testing.T) {
		student := &auth.Principal{ID: 100, Role: models.RoleStudent}
		if _, err := service.History(ctx, student, 200, pageFilters(0, 0)); !IsPermissionError(err) {
			t.Fatalf("error = %v, want PermissionError", err)
		}
	})
}

func TestSubmissionService_ListByTest(t *testing.T) {
	ctx := context.Background()
	repo, _, service := newSubmissionFixture(t)
	test := repo.seedTest(models.Test{
		Title: "T", Subject: "Math", TotalMarks: 1,
		CreatedByID: 7, CreatedByRole: models.RoleTeacher,
		Visibility: models.VisibilityAll, IsApproved: true,
	})
	repo.seedSubmission(models.Submission{TestID: test.ID, StudentID: 100})

	t.Run("creator lists submissions", func(t *testing.T) {
		creator := &auth.Principal{ID: 7, Role: models.RoleTeacher}
		resp, err := service.ListByTest(ctx, creator, test.ID, pageFilters(0, 0))
		if err != nil {
			t.Fatalf("ListByTest failed: %v", err)
		}
		if len(resp.Submissions) != 1 {
			t.Errorf("submissions = %d, want 1", len(resp.Submissions))
		}
	})

	t.Run("non-creator blocked", func(t *testing.T) {
		other := &auth.Principal{ID: 8, Role: models.RoleTeacher}
		if _, err := service.ListByTest(ctx, other, test.ID, pageFilters(0, 0)); !IsPermissionError(err) {
			t.Fatalf("error = %v, want PermissionError", err)
		}
	})
}
