package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

type reviewService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewReviewService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) ReviewService {
	return &reviewService{repo: repo, logger: logger, validator: v}
}

// Create stores a review. Only students who actually took the test may
// review it.
func (s *reviewService) Create(ctx context.Context, actor *auth.Principal, req *models.ReviewCreateRequest) (*models.Review, error) {
	if !actor.IsStudent() {
		return nil, NewPermissionError(actor.ID, string(actor.Role), req.TestID, "review", "create", "only students review tests")
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Test().GetByID(ctx, nil, req.TestID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}

	taken, err := s.repo.Submission().CountByStudentAndTest(ctx, nil, actor.ID, req.TestID)
	if err != nil {
		return nil, err
	}
	if taken == 0 {
		return nil, ErrSubmissionRequired
	}

	review := &models.Review{
		TestID:    req.TestID,
		StudentID: actor.ID,
		Stars:     req.Stars,
		Comment:   req.Comment,
	}
	if err := s.repo.Review().Create(ctx, nil, review); err != nil {
		return nil, err
	}
	review.StudentName = actor.Name

	s.logger.Info("review created", "review_id", review.ID, "test_id", req.TestID, "student_id", actor.ID)
	return review, nil
}

func (s *reviewService) ListByTest(ctx context.Context, testID uint, filters repositories.PageFilters) (*ReviewListResponse, error) {
	if _, err := s.repo.Test().GetByID(ctx, nil, testID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}

	reviews, total, err := s.repo.Review().ListByTest(ctx, nil, testID, filters)
	if err != nil {
		return nil, err
	}

	var average float64
	if len(reviews) > 0 {
		var sum int
		for _, r := range reviews {
			sum += r.Stars
		}
		average = float64(sum) / float64(len(reviews))
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return &ReviewListResponse{
		Reviews:      reviews,
		AverageStars: average,
		Pagination:   models.NewPagination(filters.Offset/limit+1, limit, total),
	}, nil
}
