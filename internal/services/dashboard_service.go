package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

const (
	topStudentsLimit = 10
	topTestsLimit    = 10
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

// Platform aggregates the public landing numbers: tests per subject, the
// best performing students and the most viewed tests.
func (s *dashboardService) Platform(ctx context.Context) (*PlatformDashboardResponse, error) {
	bySubject, err := s.repo.Dashboard().TestCountBySubject(ctx)
	if err != nil {
		return nil, err
	}

	topStudents, err := s.repo.Dashboard().TopStudentsByAverageScore(ctx, topStudentsLimit)
	if err != nil {
		return nil, err
	}

	topTests, err := s.repo.Test().TopByViews(ctx, nil, topTestsLimit)
	if err != nil {
		return nil, err
	}

	return &PlatformDashboardResponse{
		TestsBySubject: bySubject,
		TopStudents:    topStudents,
		TopTests:       topTests,
	}, nil
}

// Student builds one student's progress card.
func (s *dashboardService) Student(ctx context.Context, actor *auth.Principal, studentID uint) (*StudentDashboardResponse, error) {
	if actor.IsStudent() && actor.ID != studentID {
		return nil, NewPermissionError(actor.ID, string(actor.Role), studentID, "dashboard", "read", "students only see their own dashboard")
	}

	if _, err := s.repo.Student().GetByID(ctx, nil, studentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	stats, err := s.repo.Submission().GetStudentStats(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}

	completion, err := s.repo.Dashboard().CompletionPercentage(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &StudentDashboardResponse{
		TestsTaken:           stats.TestsTaken,
		AverageScore:         stats.AverageScore,
		BestScore:            stats.BestScore,
		CompletionPercentage: completion,
	}, nil
}
