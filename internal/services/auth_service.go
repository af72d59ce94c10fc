package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/cache"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/mailer"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

type authService struct {
	repo            repositories.Repository
	tokens          *auth.TokenService
	otpStore        *cache.OTPStore
	mail            mailer.Mailer
	eventPublisher  events.EventPublisher
	logger          *slog.Logger
	validator       *validator.Validator
	frontendBaseURL string
}

func NewAuthService(
	repo repositories.Repository,
	tokens *auth.TokenService,
	otpStore *cache.OTPStore,
	mail mailer.Mailer,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
	frontendBaseURL string,
) AuthService {
	return &authService{
		repo:            repo,
		tokens:          tokens,
		otpStore:        otpStore,
		mail:            mail,
		eventPublisher:  eventPublisher,
		logger:          logger,
		validator:       v,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
	}
}

// ===== REGISTRATION =====

func (s *authService) Register(ctx context.Context, role models.Role, req *models.RegisterRequest) (*AuthResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if !role.Valid() {
		return nil, auth.ErrUnknownRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	switch role {
	case models.RoleMainAdmin, models.RoleSubAdmin:
		return s.registerAdmin(ctx, role, req, string(hash))
	case models.RoleInstitute:
		return s.registerInstitute(ctx, req, string(hash))
	case models.RoleTeacher:
		return s.registerTeacher(ctx, req, string(hash))
	default:
		return s.registerStudent(ctx, req, string(hash))
	}
}

func (s *authService) registerAdmin(ctx context.Context, role models.Role, req *models.RegisterRequest, hash string) (*AuthResponse, error) {
	taken, err := s.repo.Admin().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	admin := &models.Admin{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     role,
	}
	if err := s.repo.Admin().Create(ctx, nil, admin); err != nil {
		return nil, err
	}

	s.logger.Info("admin registered", "admin_id", admin.ID, "role", role)
	return s.issueResponse(admin.ID, role, nil, admin)
}

func (s *authService) registerInstitute(ctx context.Context, req *models.RegisterRequest, hash string) (*AuthResponse, error) {
	taken, err := s.repo.Institute().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	institute := &models.Institute{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
	}
	if err := s.repo.Institute().Create(ctx, nil, institute); err != nil {
		return nil, err
	}

	s.logger.Info("institute registered, pending approval", "institute_id", institute.ID)
	return s.issueResponse(institute.ID, models.RoleInstitute, &institute.ID, institute)
}

func (s *authService) registerTeacher(ctx context.Context, req *models.RegisterRequest, hash string) (*AuthResponse, error) {
	if req.InstituteID == nil {
		return nil, validator.ValidationErrors{{
			Field:   "institute_id",
			Message: "is required for teachers",
			Rule:    "required",
		}}
	}

	institute, err := s.repo.Institute().GetByID(ctx, nil, *req.InstituteID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInstituteNotFound
		}
		return nil, err
	}
	if !institute.IsApproved {
		return nil, ErrInstituteNotApproved
	}

	taken, err := s.repo.Teacher().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	teacher := &models.Teacher{
		Name:        req.Name,
		Email:       req.Email,
		Password:    hash,
		InstituteID: institute.ID,
	}
	if err := s.repo.Teacher().Create(ctx, nil, teacher); err != nil {
		return nil, err
	}

	s.logger.Info("teacher registered, pending approval", "teacher_id", teacher.ID, "institute_id", institute.ID)
	return s.issueResponse(teacher.ID, models.RoleTeacher, &teacher.InstituteID, teacher)
}

func (s *authService) registerStudent(ctx context.Context, req *models.RegisterRequest, hash string) (*AuthResponse, error) {
	if req.InstituteID != nil {
		if _, err := s.repo.Institute().GetByID(ctx, nil, *req.InstituteID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrInstituteNotFound
			}
			return nil, err
		}
	}

	taken, err := s.repo.Student().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	student := &models.Student{
		Name:        req.Name,
		Email:       req.Email,
		Password:    hash,
		Mobile:      req.Mobile,
		InstituteID: req.InstituteID,
	}
	if err := s.repo.Student().Create(ctx, nil, student); err != nil {
		return nil, err
	}

	s.logger.Info("student registered", "student_id", student.ID)
	return s.issueResponse(student.ID, models.RoleStudent, student.InstituteID, student)
}

// ===== LOGIN =====

func (s *authService) Login(ctx context.Context, role models.Role, req *models.LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if !role.Valid() {
		return nil, auth.ErrUnknownRole
	}

	var (
		id          uint
		hash        string
		instituteID *uint
		profile     interface{}
		gate        func() error
	)

	switch role {
	case models.RoleMainAdmin, models.RoleSubAdmin:
		admin, err := s.repo.Admin().GetByEmail(ctx, nil, req.Email)
		if err != nil {
			return nil, loginErr(err)
		}
		// The stored role wins over the requested one.
		role = admin.Role
		id, hash, profile = admin.ID, admin.Password, admin
	case models.RoleInstitute:
		institute, err := s.repo.Institute().GetByEmail(ctx, nil, req.Email)
		if err != nil {
			return nil, loginErr(err)
		}
		id, hash, profile = institute.ID, institute.Password, institute
		instituteID = &institute.ID
	case models.RoleTeacher:
		teacher, err := s.repo.Teacher().GetByEmail(ctx, nil, req.Email)
		if err != nil {
			return nil, loginErr(err)
		}
		id, hash, profile = teacher.ID, teacher.Password, teacher
		instituteID = &teacher.InstituteID
		gate = func() error { return s.checkTeacherApproval(ctx, teacher) }
	default:
		student, err := s.repo.Student().GetByEmail(ctx, nil, req.Email)
		if err != nil {
			return nil, loginErr(err)
		}
		id, hash, profile = student.ID, student.Password, student
		instituteID = student.InstituteID
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Approval gates run only after the password matches.
	if gate != nil {
		if err := gate(); err != nil {
			return nil, err
		}
	}

	s.publishActivity(ctx, id, role, models.ActivityLoginSuccess, "Logged in successfully", nil)

	return s.issueResponse(id, role, instituteID, profile)
}

func (s *authService) checkTeacherApproval(ctx context.Context, teacher *models.Teacher) error {
	if !teacher.IsApproved {
		return ErrTeacherNotApproved
	}
	institute, err := s.repo.Institute().GetByID(ctx, nil, teacher.InstituteID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInstituteNotApproved
		}
		return err
	}
	if !institute.IsApproved {
		return ErrInstituteNotApproved
	}
	return nil
}

func loginErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidCredentials
	}
	return err
}

func (s *authService) issueResponse(id uint, role models.Role, instituteID *uint, profile interface{}) (*AuthResponse, error) {
	token, err := s.tokens.Issue(id, role, instituteID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{Token: token, Role: role, Profile: profile}, nil
}

// ===== PROFILE =====

func (s *authService) GetProfile(ctx context.Context, actor *auth.Principal) (interface{}, error) {
	switch actor.Role {
	case models.RoleMainAdmin, models.RoleSubAdmin:
		admin, err := s.repo.Admin().GetByID(ctx, nil, actor.ID)
		return orNotFound(admin, err, ErrAdminNotFound)
	case models.RoleInstitute:
		institute, err := s.repo.Institute().GetByID(ctx, nil, actor.ID)
		return orNotFound(institute, err, ErrInstituteNotFound)
	case models.RoleTeacher:
		teacher, err := s.repo.Teacher().GetByID(ctx, nil, actor.ID)
		return orNotFound(teacher, err, ErrTeacherNotFound)
	default:
		student, err := s.repo.Student().GetByID(ctx, nil, actor.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrStudentNotFound
			}
			return nil, err
		}
		if stats, err := s.repo.Submission().GetStudentStats(ctx, nil, actor.ID); err == nil {
			student.AverageScore = stats.AverageScore
			student.TestsTaken = int(stats.TestsTaken)
		}
		return student, nil
	}
}

func orNotFound(v interface{}, err error, notFound error) (interface{}, error) {
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return v, nil
}

func (s *authService) UpdateProfile(ctx context.Context, actor *auth.Principal, req *models.ProfileUpdateRequest) (interface{}, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	var profile interface{}
	var err error

	switch actor.Role {
	case models.RoleMainAdmin, models.RoleSubAdmin:
		var admin *models.Admin
		admin, err = s.repo.Admin().GetByID(ctx, nil, actor.ID)
		if err == nil {
			if req.Name != nil {
				admin.Name = *req.Name
			}
			err = s.repo.Admin().Update(ctx, nil, admin)
			profile = admin
		}
	case models.RoleInstitute:
		var institute *models.Institute
		institute, err = s.repo.Institute().GetByID(ctx, nil, actor.ID)
		if err == nil {
			if req.Name != nil {
				institute.Name = *req.Name
			}
			err = s.repo.Institute().Update(ctx, nil, institute)
			profile = institute
		}
	case models.RoleTeacher:
		var teacher *models.Teacher
		teacher, err = s.repo.Teacher().GetByID(ctx, nil, actor.ID)
		if err == nil {
			if req.Name != nil {
				teacher.Name = *req.Name
			}
			err = s.repo.Teacher().Update(ctx, nil, teacher)
			profile = teacher
		}
	default:
		var student *models.Student
		student, err = s.repo.Student().GetByID(ctx, nil, actor.ID)
		if err == nil {
			if req.Name != nil {
				student.Name = *req.Name
			}
			if req.Mobile != nil {
				student.Mobile = *req.Mobile
			}
			if req.ProfileImage != nil {
				student.ProfileImage = req.ProfileImage
			}
			err = s.repo.Student().Update(ctx, nil, student)
			profile = student
		}
	}

	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	s.publishActivity(ctx, actor.ID, actor.Role, models.ActivityProfileUpdated, "Profile updated", nil)
	return profile, nil
}

// ===== OTP =====

func (s *authService) SendOTP(ctx context.Context, req *models.OTPRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	student, err := s.repo.Student().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	if err := s.otpStore.SaveOTP(ctx, req.Email, code); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	msg := mailer.Message{
		ToName:    student.Name,
		ToAddress: student.Email,
		Subject:   "Your verification code",
		PlainBody: fmt.Sprintf("Your verification code is %s. It expires in a few minutes.", code),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send otp mail: %w", err)
	}

	s.logger.Info("otp sent", "email", req.Email)
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *models.OTPVerifyRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	if err := s.otpStore.VerifyOTP(ctx, req.Email, req.Code); err != nil {
		if errors.Is(err, cache.ErrOTPNotFound) || errors.Is(err, cache.ErrOTPMismatch) {
			return ErrOTPInvalid
		}
		return err
	}

	student, err := s.repo.Student().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	return s.repo.Student().MarkEmailVerified(ctx, nil, student.ID)
}

// ===== PASSWORD RESET =====

func (s *authService) RequestPasswordReset(ctx context.Context, req *models.PasswordResetRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	student, err := s.repo.Student().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Do not reveal which addresses exist.
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.otpStore.SaveResetToken(ctx, token, student.Email, 0); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendBaseURL, url.QueryEscape(token))
	msg := mailer.Message{
		ToName:    student.Name,
		ToAddress: student.Email,
		Subject:   "Password reset request",
		PlainBody: fmt.Sprintf("Open this link to reset your password: %s", link),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, req *models.PasswordResetConfirmRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	email, err := s.otpStore.ConsumeResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, cache.ErrOTPNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	student, err := s.repo.Student().GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	student.Password = string(hash)
	return s.repo.Student().Update(ctx, nil, student)
}

// ===== HELPERS =====

func (s *authService) publishActivity(ctx context.Context, recipientID uint, role models.Role, activityType models.ActivityType, message string, relatedID *uint) {
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

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
