package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

type testService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) TestService {
	return &testService{repo: repo, logger: logger, validator: v}
}

// ===== CREATE =====

func (s *testService) Create(ctx context.Context, actor *auth.Principal, req *models.TestCreateRequest) (*TestResponse, error) {
	if actor.Role == models.RoleStudent {
		return nil, NewPermissionError(actor.ID, string(actor.Role), 0, "test", "create", "students cannot author tests")
	}
	if errs := s.validator.ValidateTestCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if actor.Role == models.RoleTeacher {
		if err := s.checkTeacherCanAuthor(ctx, actor.ID); err != nil {
			return nil, err
		}
	}

	kind := req.Kind
	if kind == "" {
		kind = models.TestKindScheduled
	}

	visibility, instituteID := deriveVisibility(actor, req.InstituteID, kind)
	if visibility == models.VisibilityInstitute && instituteID != nil {
		if _, err := s.repo.Institute().GetByID(ctx, nil, *instituteID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrInstituteNotFound
			}
			return nil, err
		}
	}

	startTime := req.StartTime
	if kind == models.TestKindPractice {
		// Practice tests carry no schedule.
		startTime = nil
	}

	test := &models.Test{
		Title:         req.Title,
		Subject:       req.Subject,
		Class:         req.Class,
		Topic:         req.Topic,
		Description:   req.Description,
		Kind:          kind,
		Visibility:    visibility,
		InstituteID:   instituteID,
		StartTime:     startTime,
		Duration:      req.Duration,
		TotalMarks:    req.TotalMarks,
		PassingMarks:  req.PassingMarks,
		ImageURL:      req.ImageURL,
		CreatedByID:   actor.ID,
		CreatedByRole: actor.Role,
		// Admin-authored tests skip the approval queue.
		IsApproved: actor.Role.IsAdmin(),
	}

	// Questions, the test and the join rows land atomically.
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		questions := buildQuestions(req.Questions, actor)
		if err := txRepo.Question().CreateBatch(ctx, nil, questions); err != nil {
			return err
		}
		if err := txRepo.Test().Create(ctx, nil, test); err != nil {
			return err
		}
		rows := make([]models.TestQuestion, len(questions))
		for i, q := range questions {
			rows[i] = models.TestQuestion{QuestionID: q.ID, Position: i + 1}
		}
		return txRepo.Test().AddQuestions(ctx, nil, test.ID, rows)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("test created", "test_id", test.ID, "creator_id", actor.ID, "role", actor.Role, "questions", len(req.Questions))
	return s.GetByID(ctx, actor, test.ID)
}

func buildQuestions(inputs []models.QuestionInput, actor *auth.Principal) []*models.Question {
	questions := make([]*models.Question, len(inputs))
	for i, in := range inputs {
		marks := in.Marks
		if marks <= 0 {
			marks = 1
		}
		questions[i] = &models.Question{
			Prompt:        in.Prompt,
			Options:       in.Options,
			CorrectAnswer: in.CorrectAnswer,
			Marks:         marks,
			CreatedByID:   actor.ID,
			CreatedByRole: actor.Role,
		}
	}
	return questions
}

func (s *testService) checkTeacherCanAuthor(ctx context.Context, teacherID uint) error {
	teacher, err := s.repo.Teacher().GetByID(ctx, nil, teacherID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTeacherNotFound
		}
		return err
	}
	if !teacher.IsApproved {
		return ErrTeacherNotApproved
	}
	if teacher.Institute != nil && !teacher.Institute.IsApproved {
		return ErrInstituteNotApproved
	}
	return nil
}

// ===== READ =====

func (s *testService) GetByID(ctx context.Context, actor *auth.Principal, id uint) (*TestResponse, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}

	if actor.IsStudent() {
		if !canStudentSee(test, actor) {
			return nil, ErrTestNotVisible
		}
		// Views feed the top-picked ranking.
		if err := s.repo.Test().IncrementViews(ctx, nil, id); err != nil {
			s.logger.Warn("failed to increment test views", "test_id", id, "error", err)
		}
		test.Views++
	}

	return s.toResponse(test, actor), nil
}

func (s *testService) toResponse(test *models.Test, actor *auth.Principal) *TestResponse {
	canModify := s.canModify(test, actor)
	return &TestResponse{Test: test, CanEdit: canModify, CanDelete: canModify}
}

func (s *testService) canModify(test *models.Test, actor *auth.Principal) bool {
	if actor.Role.IsAdmin() {
		return true
	}
	return test.CreatedByID == actor.ID && test.CreatedByRole == actor.Role
}

// ===== UPDATE / DELETE =====

func (s *testService) Update(ctx context.Context, actor *auth.Principal, id uint, req *models.TestUpdateRequest) (*TestResponse, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	if !s.canModify(test, actor) {
		return nil, NewPermissionError(actor.ID, string(actor.Role), id, "test", "update", "not the creator")
	}
	if errs := s.validator.ValidateTestUpdate(req, test); len(errs) > 0 {
		return nil, errs
	}

	applyTestUpdate(test, req)
	if err := s.repo.Test().Update(ctx, nil, test); err != nil {
		return nil, err
	}

	s.logger.Info("test updated", "test_id", id, "actor_id", actor.ID)
	return s.toResponse(test, actor), nil
}

func applyTestUpdate(test *models.Test, req *models.TestUpdateRequest) {
	if req.Title != nil {
		test.Title = *req.Title
	}
	if req.Subject != nil {
		test.Subject = *req.Subject
	}
	if req.Class != nil {
		test.Class = *req.Class
	}
	if req.Topic != nil {
		test.Topic = *req.Topic
	}
	if req.Description != nil {
		test.Description = req.Description
	}
	if req.StartTime != nil {
		test.StartTime = req.StartTime
	}
	if req.Duration != nil {
		test.Duration = *req.Duration
	}
	if req.TotalMarks != nil {
		test.TotalMarks = *req.TotalMarks
	}
	if req.PassingMarks != nil {
		test.PassingMarks = *req.PassingMarks
	}
	if req.ImageURL != nil {
		test.ImageURL = req.ImageURL
	}
}

func (s *testService) Delete(ctx context.Context, actor *auth.Principal, id uint) error {
	test, err := s.repo.Test().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTestNotFound
		}
		return err
	}
	if !s.canModify(test, actor) {
		return NewPermissionError(actor.ID, string(actor.Role), id, "test", "delete", "not the creator")
	}
	if err := s.repo.Test().Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("test deleted", "test_id", id, "actor_id", actor.ID)
	return nil
}

// ===== LIST =====

func (s *testService) List(ctx context.Context, actor *auth.Principal, filters repositories.TestFilters) (*TestListResponse, error) {
	filters = scopeTestFilters(actor, filters)
	tests, total, err := s.repo.Test().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}
	return s.toListResponse(tests, total, filters.Limit, filters.Offset, actor), nil
}

func (s *testService) ListMine(ctx context.Context, actor *auth.Principal, filters repositories.PageFilters) (*TestListResponse, error) {
	role := actor.Role
	testFilters := repositories.TestFilters{
		CreatedByID:   &actor.ID,
		CreatedByRole: &role,
		Limit:         filters.Limit,
		Offset:        filters.Offset,
	}
	tests, total, err := s.repo.Test().List(ctx, nil, testFilters)
	if err != nil {
		return nil, err
	}
	return s.toListResponse(tests, total, filters.Limit, filters.Offset, actor), nil
}

func (s *testService) toListResponse(tests []models.Test, total int64, limit, offset int, actor *auth.Principal) *TestListResponse {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	responses := make([]*TestResponse, len(tests))
	for i := range tests {
		responses[i] = s.toResponse(&tests[i], actor)
	}
	return &TestListResponse{
		Tests:      responses,
		Pagination: models.NewPagination(offset/limit+1, limit, total),
	}
}

func (s *testService) TopPicked(ctx context.Context, limit int) ([]models.Test, error) {
	return s.repo.Test().TopByViews(ctx, nil, limit)
}

// ===== APPROVAL =====

// Approve is idempotent: approving an approved test changes nothing.
func (s *testService) Approve(ctx context.Context, actor *auth.Principal, id uint) error {
	if actor.Role != models.RoleMainAdmin {
		return NewPermissionError(actor.ID, string(actor.Role), id, "test", "approve", "only main admins approve tests")
	}
	if err := s.repo.Test().SetApproved(ctx, nil, id, true); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTestNotFound
		}
		return err
	}
	s.logger.Info("test approved", "test_id", id, "admin_id", actor.ID)
	return nil
}

// ===== XLSX IMPORT =====

// ImportQuestions appends questions from the first sheet of an xlsx file.
// Expected columns: prompt, options (pipe separated), correct answer, marks.
func (s *testService) ImportQuestions(ctx context.Context, actor *auth.Principal, testID uint, r io.Reader) (int, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrTestNotFound
		}
		return 0, err
	}
	if !s.canModify(test, actor) {
		return 0, NewPermissionError(actor.ID, string(actor.Role), testID, "test", "import_questions", "not the creator")
	}

	file, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	rows, err := file.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	inputs, errs := parseQuestionRows(rows)
	if len(errs) > 0 {
		return 0, errs
	}
	for _, in := range inputs {
		if verrs := s.validator.ValidateQuestionInput(in); len(verrs) > 0 {
			return 0, verrs
		}
	}
	if len(inputs) == 0 {
		return 0, validator.ValidationErrors{{Field: "file", Message: "contains no question rows", Rule: "required"}}
	}

	existing, err := s.repo.Test().CountQuestions(ctx, nil, testID)
	if err != nil {
		return 0, err
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		questions := buildQuestions(inputs, actor)
		if err := txRepo.Question().CreateBatch(ctx, nil, questions); err != nil {
			return err
		}
		joinRows := make([]models.TestQuestion, len(questions))
		for i, q := range questions {
			joinRows[i] = models.TestQuestion{QuestionID: q.ID, Position: int(existing) + i + 1}
		}
		return txRepo.Test().AddQuestions(ctx, nil, testID, joinRows)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("questions imported", "test_id", testID, "count", len(inputs), "actor_id", actor.ID)
	return len(inputs), nil
}

func parseQuestionRows(rows [][]string) ([]models.QuestionInput, validator.ValidationErrors) {
	var inputs []models.QuestionInput
	var errs validator.ValidationErrors

	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		if len(row) < 3 {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("row[%d]", i+1),
				Message: "needs prompt, options and correct answer columns",
				Rule:    "row_shape",
			})
			continue
		}

		input := models.QuestionInput{
			Prompt:        strings.TrimSpace(row[0]),
			CorrectAnswer: strings.TrimSpace(row[2]),
		}
		for _, opt := range strings.Split(row[1], "|") {
			if trimmed := strings.TrimSpace(opt); trimmed != "" {
				input.Options = append(input.Options, trimmed)
			}
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			marks, err := strconv.Atoi(strings.TrimSpace(row[3]))
			if err != nil {
				errs = append(errs, validator.ValidationError{
					Field:   fmt.Sprintf("row[%d].marks", i+1),
					Message: "must be a number",
					Value:   row[3],
					Rule:    "numeric",
				})
				continue
			}
			input.Marks = marks
		}
		inputs = append(inputs, input)
	}
	return inputs, errs
}
