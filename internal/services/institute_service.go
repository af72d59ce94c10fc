package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type instituteService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewInstituteService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger) InstituteService {
	return &instituteService{repo: repo, eventPublisher: eventPublisher, logger: logger}
}

// Approve marks an institute approved. Repeating the call is a no-op.
func (s *instituteService) Approve(ctx context.Context, actor *auth.Principal, id uint) error {
	if actor.Role != models.RoleMainAdmin {
		return NewPermissionError(actor.ID, string(actor.Role), id, "institute", "approve", "only main admins approve institutes")
	}

	institute, err := s.repo.Institute().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInstituteNotFound
		}
		return err
	}
	if institute.IsApproved {
		return nil
	}

	if err := s.repo.Institute().SetApproved(ctx, nil, id, true); err != nil {
		return err
	}

	s.publishActivity(ctx, id, models.RoleInstitute, models.ActivityInstituteApproved,
		fmt.Sprintf("%s has been approved", institute.Name), &id)
	s.logger.Info("institute approved", "institute_id", id, "admin_id", actor.ID)
	return nil
}

// ApproveTeacher is restricted to main admins and the teacher's own
// institute.
func (s *instituteService) ApproveTeacher(ctx context.Context, actor *auth.Principal, teacherID uint) error {
	teacher, err := s.repo.Teacher().GetByID(ctx, nil, teacherID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTeacherNotFound
		}
		return err
	}

	allowed := actor.Role == models.RoleMainAdmin ||
		(actor.Role == models.RoleInstitute && actor.ID == teacher.InstituteID)
	if !allowed {
		return NewPermissionError(actor.ID, string(actor.Role), teacherID, "teacher", "approve", "not this teacher's institute")
	}
	if teacher.IsApproved {
		return nil
	}

	if err := s.repo.Teacher().SetApproved(ctx, nil, teacherID, true); err != nil {
		return err
	}

	s.publishActivity(ctx, teacherID, models.RoleTeacher, models.ActivityTeacherApproved,
		fmt.Sprintf("%s has been approved", teacher.Name), &teacher.InstituteID)
	s.logger.Info("teacher approved", "teacher_id", teacherID, "actor_id", actor.ID, "role", actor.Role)
	return nil
}

func (s *instituteService) List(ctx context.Context, actor *auth.Principal, filters repositories.PageFilters) ([]models.Institute, models.Pagination, error) {
	institutes, total, err := s.repo.Institute().List(ctx, nil, filters)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return institutes, models.NewPagination(filters.Offset/limit+1, limit, total), nil
}

func (s *instituteService) GetByID(ctx context.Context, actor *auth.Principal, id uint) (*models.Institute, error) {
	institute, err := s.repo.Institute().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInstituteNotFound
		}
		return nil, err
	}
	return institute, nil
}

func (s *instituteService) Teachers(ctx context.Context, actor *auth.Principal, instituteID uint) ([]models.Teacher, error) {
	if err := s.checkRosterAccess(actor, instituteID, "teachers"); err != nil {
		return nil, err
	}
	return s.repo.Institute().GetTeachers(ctx, nil, instituteID)
}

func (s *instituteService) Students(ctx context.Context, actor *auth.Principal, instituteID uint) ([]models.Student, error) {
	if err := s.checkRosterAccess(actor, instituteID, "students"); err != nil {
		return nil, err
	}
	return s.repo.Institute().GetStudents(ctx, nil, instituteID)
}

func (s *instituteService) checkRosterAccess(actor *auth.Principal, instituteID uint, roster string) error {
	if actor.Role.IsAdmin() {
		return nil
	}
	if actor.Role == models.RoleInstitute && actor.ID == instituteID {
		return nil
	}
	return NewPermissionError(actor.ID, string(actor.Role), instituteID, "institute", "list_"+roster, "not this institute")
}

// Tests lists every test authored by the institute's teachers.
func (s *instituteService) Tests(ctx context.Context, actor *auth.Principal, instituteID uint, filters repositories.PageFilters) (*TestListResponse, error) {
	if err := s.checkRosterAccess(actor, instituteID, "tests"); err != nil {
		return nil, err
	}

	tests, total, err := s.repo.Test().ListByInstituteTeachers(ctx, nil, instituteID, filters)
	if err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	responses := make([]*TestResponse, len(tests))
	for i := range tests {
		responses[i] = &TestResponse{Test: &tests[i]}
	}
	return &TestListResponse{
		Tests:      responses,
		Pagination: models.NewPagination(filters.Offset/limit+1, limit, total),
	}, nil
}

// AddStudent affiliates a student with an institute.
func (s *instituteService) AddStudent(ctx context.Context, actor *auth.Principal, instituteID, studentID uint) error {
	if err := s.checkRosterAccess(actor, instituteID, "students"); err != nil {
		return err
	}

	if _, err := s.repo.Institute().GetByID(ctx, nil, instituteID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInstituteNotFound
		}
		return err
	}
	if _, err := s.repo.Student().GetByID(ctx, nil, studentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	if err := s.repo.Student().SetInstitute(ctx, nil, studentID, &instituteID); err != nil {
		return err
	}
	s.logger.Info("student added to institute", "student_id", studentID, "institute_id", instituteID, "actor_id", actor.ID)
	return nil
}

func (s *instituteService) AddTeacher(ctx context.Context, actor *auth.Principal, instituteID, teacherID uint) error {
	if err := s.checkRosterAccess(actor, instituteID, "teachers"); err != nil {
		return err
	}

	if _, err := s.repo.Institute().GetByID(ctx, nil, instituteID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInstituteNotFound
		}
		return err
	}
	teacher, err := s.repo.Teacher().GetByID(ctx, nil, teacherID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTeacherNotFound
		}
		return err
	}

	if teacher.InstituteID == instituteID {
		return nil
	}

	// Approval is institute-scoped, so moving resets it.
	teacher.InstituteID = instituteID
	teacher.IsApproved = false
	if err := s.repo.Teacher().Update(ctx, nil, teacher); err != nil {
		return err
	}
	s.logger.Info("teacher added to institute", "teacher_id", teacherID, "institute_id", instituteID, "actor_id", actor.ID)
	return nil
}

func (s *instituteService) publishActivity(ctx context.Context, recipientID uint, role models.Role, activityType models.ActivityType, message string, relatedID *uint) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewEvent(events.TypeActivity, events.ActivityPayload{
		RecipientID:   recipientID,
		RecipientRole: string(role),
		ActivityType:  string(activityType),
		Message:       message,
		RelatedID:     relatedID,
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish activity event", "error", err, "activity", activityType)
	}
}
