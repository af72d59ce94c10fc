package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

type submissionService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewSubmissionService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) SubmissionService {
	return &submissionService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      v,
	}
}

// Submit grades a student's answers against the test's questions. A count
// mismatch fails before anything is written.
func (s *submissionService) Submit(ctx context.Context, actor *auth.Principal, testID uint, req *models.SubmitTestRequest) (*SubmissionResultResponse, error) {
	if !actor.IsStudent() {
		return nil, NewPermissionError(actor.ID, string(actor.Role), testID, "test", "submit", "only students submit tests")
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	if !canStudentSee(test, actor) {
		return nil, ErrTestNotVisible
	}

	questions, err := s.repo.Question().GetByTest(ctx, nil, testID)
	if err != nil {
		return nil, err
	}
	if len(req.Answers) != len(questions) {
		return nil, fmt.Errorf("%w: got %d answers for %d questions",
			ErrAnswerCountMismatch, len(req.Answers), len(questions))
	}

	breakdown := scoreAnswers(questions, req.Answers)

	submission := &models.Submission{
		TestID:         testID,
		StudentID:      actor.ID,
		Answers:        req.Answers,
		Score:          breakdown.Score,
		CorrectCount:   breakdown.CorrectCount,
		IncorrectCount: breakdown.IncorrectCount,
		TotalQuestions: breakdown.TotalQuestions,
		SubmittedAt:    time.Now(),
	}
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Submission().Create(ctx, nil, submission)
	})
	if err != nil {
		return nil, err
	}

	s.publishSubmitEvent(ctx, actor, test, submission)

	s.logger.Info("test submitted",
		"submission_id", submission.ID,
		"test_id", testID,
		"student_id", actor.ID,
		"score", breakdown.Score)

	return resultResponse(submission, test), nil
}

func (s *submissionService) publishSubmitEvent(ctx context.Context, actor *auth.Principal, test *models.Test, submission *models.Submission) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewEvent(events.TypeActivity, events.ActivityPayload{
		RecipientID:   actor.ID,
		RecipientRole: string(models.RoleStudent),
		ActivityType:  string(models.ActivityTestSubmit),
		Message:       fmt.Sprintf("Submitted %q with score %.2f", test.Title, submission.Score),
		RelatedID:     &submission.TestID,
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish submit event", "error", err, "submission_id", submission.ID)
	}
}

func resultResponse(submission *models.Submission, test *models.Test) *SubmissionResultResponse {
	passed := false
	if test.TotalMarks > 0 {
		passed = submission.Score >= float64(test.PassingMarks)/float64(test.TotalMarks)*100
	}
	return &SubmissionResultResponse{
		SubmissionID:   submission.ID,
		TestID:         test.ID,
		TestTitle:      test.Title,
		Score:          submission.Score,
		CorrectCount:   submission.CorrectCount,
		IncorrectCount: submission.IncorrectCount,
		TotalQuestions: submission.TotalQuestions,
		Passed:         passed,
	}
}

func (s *submissionService) GetResult(ctx context.Context, actor *auth.Principal, submissionID uint) (*SubmissionResultResponse, error) {
	submission, err := s.repo.Submission().GetByID(ctx, nil, submissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	if actor.IsStudent() && submission.StudentID != actor.ID {
		return nil, NewPermissionError(actor.ID, string(actor.Role), submissionID, "submission", "read", "not the owner")
	}

	test := submission.Test
	if test == nil {
		test, err = s.repo.Test().GetByID(ctx, nil, submission.TestID)
		if err != nil {
			return nil, err
		}
	}
	return resultResponse(submission, test), nil
}

func (s *submissionService) History(ctx context.Context, actor *auth.Principal, studentID uint, filters repositories.PageFilters) (*SubmissionListResponse, error) {
	if actor.IsStudent() && actor.ID != studentID {
		return nil, NewPermissionError(actor.ID, string(actor.Role), studentID, "submission", "list", "students only see their own history")
	}

	subFilters := repositories.SubmissionFilters{
		StudentID: &studentID,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}
	submissions, total, err := s.repo.Submission().List(ctx, nil, subFilters)
	if err != nil {
		return nil, err
	}
	return listResponse(submissions, total, filters), nil
}

func (s *submissionService) ListByTest(ctx context.Context, actor *auth.Principal, testID uint, filters repositories.PageFilters) (*SubmissionListResponse, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	if !actor.Role.IsAdmin() && !(test.CreatedByID == actor.ID && test.CreatedByRole == actor.Role) {
		return nil, NewPermissionError(actor.ID, string(actor.Role), testID, "submission", "list", "not the test creator")
	}

	subFilters := repositories.SubmissionFilters{
		TestID: &testID,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}
	submissions, total, err := s.repo.Submission().List(ctx, nil, subFilters)
	if err != nil {
		return nil, err
	}
	return listResponse(submissions, total, filters), nil
}

func listResponse(submissions []models.Submission, total int64, filters repositories.PageFilters) *SubmissionListResponse {
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return &SubmissionListResponse{
		Submissions: submissions,
		Pagination:  models.NewPagination(filters.Offset/limit+1, limit, total),
	}
}
