package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

func newReviewFixture(t *testing.T) (*stubRepository, ReviewService) {
	t.Helper()

	repo := newStubRepository()
	return repo, NewReviewService(repo, testLogger(), validator.New())
}

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("student who took the test reviews it", func(t *testing.T) {
		repo, service := newReviewFixture(t)
		test := seedApprovedTest(repo)
		repo.seedSubmission(models.Submission{TestID: test.ID, StudentID: 100, Score: 70})
		student := &auth.Principal{ID: 100, Role: models.RoleStudent, Name: "Asha"}

		review, err := service.Create(ctx, student, &models.ReviewCreateRequest{
			TestID:  test.ID,
			Stars:   4,
			Comment: "Good coverage",
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if review.Stars != 4 {
			t.Errorf("Stars = %d, want 4", review.Stars)
		}
		if review.StudentName != "Asha" {
			t.Errorf("StudentName = %q, want Asha", review.StudentName)
		}
	})

	t.Run("no submission no review", func(t *testing.T) {
		repo, service := newReviewFixture(t)
		test := seedApprovedTest(repo)
		student := &auth.Principal{ID: 100, Role: models.RoleStudent}

		_, err := service.Create(ctx, student, &models.ReviewCreateRequest{TestID: test.ID, Stars: 5})
		if !errors.Is(err, ErrSubmissionRequired) {
			t.Fatalf("error = %v, want ErrSubmissionRequired", err)
		}
	})

	t.Run("only students review", func(t *testing.T) {
		repo, service := newReviewFixture(t)
		test := seedApprovedTest(repo)
		teacher := &auth.Principal{ID: 5, Role: models.RoleTeacher}

		if _, err := service.Create(ctx, teacher, &models.ReviewCreateRequest{TestID: test.ID, Stars: 5}); !IsPermissionError(err) {
			t.Fatalf("error = %v, want PermissionError", err)
		}
	})

	t.Run("stars out of range rejected", func(t *testing.T) {
		repo, service := newReviewFixture(t)
		test := seedApprovedTest(repo)
		repo.seedSubmission(models.Submission{TestID: test.ID, StudentID: 100})
		student := &auth.Principal{ID: 100, Role: models.RoleStudent}

		_, err := service.Create(ctx, student, &models.ReviewCreateRequest{TestID: test.ID, Stars: 6})
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("error = %v, want ValidationErrors", err)
		}
	})
}

func TestReviewService_ListByTest(t *testing.T) {
	ctx := context.Background()
	repo, service := newReviewFixture(t)
	test := seedApprovedTest(repo)
	repo.reviews = append(repo.reviews,
		models.Review{ID: 1, TestID: test.ID, StudentID: 100, Stars: 5},
		models.Review{ID: 2, TestID: test.ID, StudentID: 200, Stars: 2},
	)

	resp, err := service.ListByTest(ctx, test.ID, pageFilters(0, 0))
	if err != nil {
		t.Fatalf("ListByTest failed: %v", err)
	}
	if len(resp.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(resp.Reviews))
	}
	if resp.AverageStars != 3.5 {
		t.Errorf("AverageStars = %v, want 3.5", resp.AverageStars)
	}

	if _, err := service.ListByTest(ctx, 999, pageFilters(0, 0)); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("error = %v, want ErrTestNotFound", err)
	}
}
