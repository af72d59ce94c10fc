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

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) CourseService {
	return &courseService{repo: repo, logger: logger, validator: v}
}

func (s *courseService) Create(ctx context.Context, actor *auth.Principal, req *models.CourseCreateRequest) (*models.Course, error) {
	if !actor.Role.IsAdmin() {
		return nil, NewPermissionError(actor.ID, string(actor.Role), 0, "course", "create", "only admins manage courses")
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, validator.ValidationErrors{{
			Field:   "end_date",
			Message: "cannot be before start date",
			Rule:    "date_order",
		}}
	}

	course := &models.Course{
		Name:        req.Name,
		Mode:        req.Mode,
		Price:       req.Price,
		OfferPrice:  req.OfferPrice,
		Thumbnail:   req.Thumbnail,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedByID: actor.ID,
	}
	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, err
	}
	fillDuration(course)

	s.logger.Info("course created", "course_id", course.ID, "admin_id", actor.ID)
	return course, nil
}

// fillDuration derives the advertised duration in whole weeks.
func fillDuration(course *models.Course) {
	if course.StartDate == nil || course.EndDate == nil {
		return
	}
	days := int(course.EndDate.Sub(*course.StartDate).Hours() / 24)
	if days < 0 {
		return
	}
	course.DurationWeeks = days / 7
}

func (s *courseService) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	fillDuration(course)
	return course, nil
}

func (s *courseService) List(ctx context.Context, filters repositories.PageFilters) (*CourseListResponse, error) {
	courses, total, err := s.repo.Course().List(ctx, nil, filters)
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
