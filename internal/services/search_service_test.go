package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

func TestSearchService_Students(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepository()
	service := NewSearchService(repo, testLogger())

	asha := repo.seedStudent(models.Student{Name: "Asha Patel", Email: "asha@example.com"})
	repo.seedStudent(models.Student{Name: "Asha Verma", Email: "averma@example.com"})
	repo.seedStudent(models.Student{Name: "Noor Khan", Email: "noor@example.com"})
	test := seedApprovedTest(repo)
	repo.seedSubmission(models.Submission{TestID: test.ID, StudentID: asha.ID, Score: 80})

	teacher := &auth.Principal{ID: 5, Role: models.RoleTeacher}

	t.Run("matches by name with scores", func(t *testing.T) {
		resp, err := service.Students(ctx, teacher, "asha", pageFilters(0, 0))
		if err != nil {
			t.Fatalf("Students failed: %v", err)
		}
		// Only students with at least one submission appear.
		if len(resp.Students) != 1 {
			t.Fatalf("students = %d, want 1", len(resp.Students))
		}
		if resp.Students[0].AverageScore != 80 {
			t.Errorf("AverageScore = %v, want 80", resp.Students[0].AverageScore)
		}
	})

	t.Run("blank name rejected", func(t *testing.T) {
		_, err := service.Students(ctx, teacher, "   ", pageFilters(0, 0))
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("error = %v, want ValidationErrors", err)
		}
	})

	t.Run("students cannot search students", func(t *testing.T) {
		student := &auth.Principal{ID: asha.ID, Role: models.RoleStudent}
		if _, err := service.Students(ctx, student, "noor", pageFilters(0, 0)); !IsPermissionError(err) {
			t.Fatalf("error = %v, want PermissionError", err)
		}
	})
}

func TestSearchService_Courses(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepository()
	service := NewSearchService(repo, testLogger())

	for _, name := range []string{"NEET Biology", "NEET Physics", "JEE Maths"} {
		course := &models.Course{Name: name, Mode: models.CourseModeOnline, CreatedByID: 1}
		if err := repo.Course().Create(ctx, nil, course); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	resp, err := service.Courses(ctx, "neet", pageFilters(0, 0))
	if err != nil {
		t.Fatalf("Courses failed: %v", err)
	}
	if len(resp.Courses) != 2 {
		t.Errorf("courses = %d, want 2", len(resp.Courses))
	}
}
