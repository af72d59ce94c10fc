package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/cache"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/mailer"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/validator"
)

// recordingMailer keeps sent messages for assertions.
type recordingMailer struct {
	mu       sync.Mutex
	messages []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.messages...)
}

type authFixture struct {
	repo      *stubRepository
	publisher *events.MockEventPublisher
	mail      *recordingMailer
	tokens    *auth.TokenService
	service   AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newStubRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	mail := &recordingMailer{}
	tokens := auth.NewTokenService("test-secret", time.Hour)
	otpStore := cache.NewOTPStore(client, 10*time.Minute)

	service := NewAuthService(repo, tokens, otpStore, mail, publisher, testLogger(), validator.New(), "https://app.example.com")
	return &authFixture{repo: repo, publisher: publisher, mail: mail, tokens: tokens, service: service}
}

func registerReq(name, email string) *models.RegisterRequest {
	return &models.RegisterRequest{Name: name, Email: email, Password: "s3cretpass"}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("student round trip", func(t *testing.T) {
		f := newAuthFixture(t)

		resp, err := f.service.Register(ctx, models.RoleStudent, registerReq("Asha", "asha@example.com"))
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.Role != models.RoleStudent {
			t.Errorf("role = %q, want student", resp.Role)
		}
		if resp.Token == "" {
			t.Fatal("expected a token")
		}
		if _, err := f.tokens.Verify(resp.Token); err != nil {
			t.Fatalf("issued token failed verification: %v", err)
		}

		login, err := f.service.Login(ctx, models.RoleStudent, &models.LoginRequest{
			Email: "asha@example.com", Password: "s3cretpass",
		})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if login.Token == "" {
			t.Error("login should issue a token")
		}

		// Login publishes an activity event.
		published := f.publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("published events = %d, want 1", len(published))
		}
		payload := published[0].Data.(events.ActivityPayload)
		if payload.ActivityType != string(models.ActivityLoginSuccess) {
			t.Errorf("activity = %q, want LOGIN_SUCCESS", payload.ActivityType)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		if _, err := f.service.Register(ctx, models.RoleStudent, registerReq("Asha", "asha@example.com")); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		_, err := f.service.Login(ctx, models.RoleStudent, &models.LoginRequest{
			Email: "asha@example.com", Password: "wrongpass1",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email indistinguishable from wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.service.Login(ctx, models.RoleStudent, &models.LoginRequest{
			Email: "ghost@example.com", Password: "whatever1",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		if _, err := f.service.Register(ctx, models.RoleStudent, registerReq("Asha", "asha@example.com")); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, err := f.service.Register(ctx, models.RoleStudent, registerReq("Imposter", "asha@example.com")); !errors.Is(err, ErrEmailTaken) {
			t.Fatalf("error = %v, want ErrEmailTaken", err)
		}
	})

	t.Run("teacher needs an approved institute", func(t *testing.T) {
		f := newAuthFixture(t)
		pending := f.repo.seedInstitute(models.Institute{Name: "Pending"})

		req := registerReq("Ravi", "ravi@example.com")
		req.InstituteID = &pending.ID
		if _, err := f.service.Register(ctx, models.RoleTeacher, req); !errors.Is(err, ErrInstituteNotApproved) {
			t.Fatalf("error = %v, want ErrInstituteNotApproved", err)
		}

		approved := f.repo.seedInstitute(models.Institute{Name: "Approved", IsApproved: true})
		req2 := registerReq("Ravi", "ravi@example.com")
		req2.InstituteID = &approved.ID
		resp, err := f.service.Register(ctx, models.RoleTeacher, req2)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.Role != models.RoleTeacher {
			t.Errorf("role = %q, want teacher", resp.Role)
		}
	})

	t.Run("teacher approval gates login", func(t *testing.T) {
		f := newAuthFixture(t)
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}

		pending := f.repo.seedInstitute(models.Institute{Name: "Pending"})
		teacher := f.repo.seedTeacher(models.Teacher{
			Name:        "Ravi",
			Email:       "ravi@example.com",
			Password:    string(hash),
			InstituteID: pending.ID,
			IsApproved:  true,
		})
		login := &models.LoginRequest{Email: "ravi@example.com", Password: "s3cretpass"}

		if _, err := f.service.Login(ctx, models.RoleTeacher, login); !errors.Is(err, ErrInstituteNotApproved) {
			t.Fatalf("error = %v, want ErrInstituteNotApproved", err)
		}

		pending.IsApproved = true
		teacher.IsApproved = false
		if _, err := f.service.Login(ctx, models.RoleTeacher, login); !errors.Is(err, ErrTeacherNotApproved) {
			t.Fatalf("error = %v, want ErrTeacherNotApproved", err)
		}

		// Bad credentials are reported before approval state.
		_, err = f.service.Login(ctx, models.RoleTeacher, &models.LoginRequest{
			Email: "ravi@example.com", Password: "wrongpass1",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("error = %v, want ErrInvalidCredentials", err)
		}

		teacher.IsApproved = true
		resp, err := f.service.Login(ctx, models.RoleTeacher, login)
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.Token == "" {
			t.Error("approved teacher should get a token")
		}
	})

	t.Run("teacher without institute rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.service.Register(ctx, models.RoleTeacher, registerReq("Ravi", "ravi@example.com"))
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("error = %v, want ValidationErrors", err)
		}
	})

	t.Run("stored admin role wins over the requested one", func(t *testing.T) {
		f := newAuthFixture(t)
		if _, err := f.service.Register(ctx, models.RoleSubAdmin, registerReq("Ops", "ops@example.com")); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		login, err := f.service.Login(ctx, models.RoleMainAdmin, &models.LoginRequest{
			Email: "ops@example.com", Password: "s3cretpass",
		})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if login.Role != models.RoleSubAdmin {
			t.Errorf("role = %q, want sub-admin from storage", login.Role)
		}
	})
}

func TestAuthService_OTPFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	if _, err := f.service.Register(ctx, models.RoleStudent, registerReq("Asha", "asha@example.com")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := f.service.SendOTP(ctx, &models.OTPRequest{Email: "asha@example.com"}); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}

	sent := f.mail.sent()
	if len(sent) != 1 {
		t.Fatalf("mails sent = %d, want 1", len(sent))
	}
	if sent[0].ToAddress != "asha@example.com" {
		t.Errorf("mail to = %q", sent[0].ToAddress)
	}

	t.Run("wrong code rejected", func(t *testing.T) {
		err := f.service.VerifyOTP(ctx, &models.OTPVerifyRequest{Email: "asha@example.com", Code: "000000"})
		if !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("error = %v, want ErrOTPInvalid", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		err := f.service.SendOTP(ctx, &models.OTPRequest{Email: "ghost@example.com"})
		if !errors.Is(err, ErrStudentNotFound) {
			t.Fatalf("error = %v, want ErrStudentNotFound", err)
		}
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	if _, err := f.service.Register(ctx, models.RoleStudent, registerReq("Asha", "asha@example.com")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := f.service.RequestPasswordReset(ctx, &models.PasswordResetRequest{Email: "asha@example.com"}); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	sent := f.mail.sent()
	if len(sent) != 1 {
		t.Fatalf("mails sent = %d, want 1", len(sent))
	}
	if !strings.Contains(sent[0].PlainBody, "https://app.example.com/reset-password?token=") {
		t.Errorf("mail body should carry the reset link, got %q", sent[0].PlainBody)
	}

	t.Run("unknown email stays silent", func(t *testing.T) {
		if err := f.service.RequestPasswordReset(ctx, &models.PasswordResetRequest{Email: "ghost@example.com"}); err != nil {
			t.Fatalf("unknown email must not error: %v", err)
		}
		if len(f.mail.sent()) != 1 {
			t.Error("no mail should go to unknown addresses")
		}
	})

	t.Run("bogus token rejected", func(t *testing.T) {
		err := f.service.ConfirmPasswordReset(ctx, &models.PasswordResetConfirmRequest{
			Token: "bogus", NewPassword: "brandnewpass",
		})
		if !errors.Is(err, ErrResetTokenInvalid) {
			t.Fatalf("error = %v, want ErrResetTokenInvalid", err)
		}
	})
}

func TestAuthService_Profile(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	resp, err := f.service.Register(ctx, models.RoleStudent, registerReq("Asha", "asha@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	student := resp.Profile.(*models.Student)
	actor := &auth.Principal{ID: student.ID, Role: models.RoleStudent}

	name := "Asha P"
	mobile := "9876543210"
	updated, err := f.service.UpdateProfile(ctx, actor, &models.ProfileUpdateRequest{Name: &name, Mobile: &mobile})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	got := updated.(*models.Student)
	if got.Name != "Asha P" || got.Mobile != "9876543210" {
		t.Errorf("updated profile = %q/%q", got.Name, got.Mobile)
	}

	profile, err := f.service.GetProfile(ctx, actor)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.(*models.Student).Name != "Asha P" {
		t.Errorf("profile name = %q, want Asha P", profile.(*models.Student).Name)
	}
}
