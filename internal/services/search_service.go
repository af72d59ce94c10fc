package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

type searchService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewSearchService(repo repositories.Repository, logger *slog.Logger) SearchService {
	return &searchService{repo: repo, logger: logger}
}

// Students searches by name among students who have taken at least one
// test, returning each match with its average score.
func (s *searchService) Students(ctx context.Context, actor *auth.Principal, name string, filters repositories.PageFilters) (*StudentSearchResponse, error) {
	if actor.IsStudent() {
		return nil, NewPermissionError(actor.ID, string(actor.Role), 0, "student", "search", "students cannot search other students")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validator.ValidationErrors{{Field: "name", Message: "is required", Rule: "required"}}
	}

	scores, total, err := s.repo.Dashboard().SearchStudentsWithScores(ctx, name, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return &StudentSearchResponse{
		Students:   scores,
		Pagination: models.NewPagination(filters.Offset/limit+1, limit, total),
	}, nil
}

// Courses matches course names case-insensitively.
func (s *searchService) Courses(ctx context.Context, name string, filters repositories.PageFilters) (*CourseListResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validator.ValidationErrors{{Field: "name", Message: "is required", Rule: "required"}}
	}

	courses, total, err := s.repo.Course().SearchByName(ctx, nil, name, filters)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		fillDuration(&courses[i])
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return &CourseListResponse{
		Courses:    courses,
		Pagination: models.NewPagination(filters.Offset/limit+1, limit, total),
	}, nil
}
