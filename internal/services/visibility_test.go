package services

import (
	"testing"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

func uintPtr(v uint) *uint { return &v }

func TestDeriveVisibility(t *testing.T) {
	instituteID := uintPtr(7)

	tests := []struct {
		name            string
		actor           *auth.Principal
		requested       *uint
		kind            models.TestKind
		wantVisibility  models.Visibility
		wantInstituteID *uint
	}{
		{
			name:            "teacher always institute scoped",
			actor:           &auth.Principal{ID: 1, Role: models.RoleTeacher, InstituteID: instituteID},
			requested:       nil,
			kind:            models.TestKindScheduled,
			wantVisibility:  models.VisibilityInstitute,
			wantInstituteID: instituteID,
		},
		{
			name:            "institute always institute scoped",
			actor:           &auth.Principal{ID: 7, Role: models.RoleInstitute, InstituteID: instituteID},
			requested:       nil,
			kind:            models.TestKindScheduled,
			wantVisibility:  models.VisibilityInstitute,
			wantInstituteID: instituteID,
		},
		{
			name:           "admin defaults to all",
			actor:          &auth.Principal{ID: 2, Role: models.RoleMainAdmin},
			requested:      nil,
			kind:           models.TestKindScheduled,
			wantVisibility: models.VisibilityAll,
		},
		{
			name:            "admin naming an institute scopes to it",
			actor:           &auth.Principal{ID: 2, Role: models.RoleSubAdmin},
			requested:       instituteID,
			kind:            models.TestKindScheduled,
			wantVisibility:  models.VisibilityInstitute,
			wantInstituteID: instituteID,
		},
		{
			name:           "teacher practice test open to everyone",
			actor:          &auth.Principal{ID: 1, Role: models.RoleTeacher, InstituteID: instituteID},
			requested:      nil,
			kind:           models.TestKindPractice,
			wantVisibility: models.VisibilityAll,
		},
		{
			name:           "practice test ignores a requested institute",
			actor:          &auth.Principal{ID: 2, Role: models.RoleSubAdmin},
			requested:      instituteID,
			kind:           models.TestKindPractice,
			wantVisibility: models.VisibilityAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visibility, instID := deriveVisibility(tt.actor, tt.requested, tt.kind)
			if visibility != tt.wantVisibility {
				t.Errorf("visibility = %q, want %q", visibility, tt.wantVisibility)
			}
			switch {
			case tt.wantInstituteID == nil && instID != nil:
				t.Errorf("institute id = %d, want nil", *instID)
			case tt.wantInstituteID != nil && (instID == nil || *instID != *tt.wantInstituteID):
				t.Errorf("institute id = %v, want %d", instID, *tt.wantInstituteID)
			}
		})
	}
}

func TestCanStudentSee(t *testing.T) {
	affiliated := &auth.Principal{ID: 1, Role: models.RoleStudent, InstituteID: uintPtr(5)}
	unaffiliated := &auth.Principal{ID: 2, Role: models.RoleStudent}

	tests := []struct {
		name    string
		test    models.Test
		student *auth.Principal
		want    bool
	}{
		{
			name:    "unapproved test hidden from everyone",
			test:    models.Test{Visibility: models.VisibilityAll},
			student: affiliated,
			want:    false,
		},
		{
			name:    "approved public test",
			test:    models.Test{IsApproved: true, Visibility: models.VisibilityAll},
			student: unaffiliated,
			want:    true,
		},
		{
			name:    "institute test for its own student",
			test:    models.Test{IsApproved: true, Visibility: models.VisibilityInstitute, InstituteID: uintPtr(5)},
			student: affiliated,
			want:    true,
		},
		{
			name:    "institute test for a foreign student",
			test:    models.Test{IsApproved: true, Visibility: models.VisibilityInstitute, InstituteID: uintPtr(9)},
			student: affiliated,
			want:    false,
		},
		{
			name:    "institute test for an unaffiliated student",
			test:    models.Test{IsApproved: true, Visibility: models.VisibilityInstitute, InstituteID: uintPtr(5)},
			student: unaffiliated,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canStudentSee(&tt.test, tt.student); got != tt.want {
				t.Errorf("canStudentSee() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScopeTestFilters(t *testing.T) {
	t.Run("student narrows to approved visible tests", func(t *testing.T) {
		actor := &auth.Principal{ID: 3, Role: models.RoleStudent, InstituteID: uintPtr(4)}

		got := scopeTestFilters(actor, repositories.TestFilters{})

		if got.IsApproved == nil || !*got.IsApproved {
			t.Error("IsApproved should be forced to true")
		}
		if !got.VisibleOnly {
			t.Error("VisibleOnly should be set")
		}
		if got.VisibleToInstitute == nil || *got.VisibleToInstitute != 4 {
			t.Errorf("VisibleToInstitute = %v, want 4", got.VisibleToInstitute)
		}
	})

	t.Run("unaffiliated student still restricted to public tests", func(t *testing.T) {
		actor := &auth.Principal{ID: 3, Role: models.RoleStudent}

		got := scopeTestFilters(actor, repositories.TestFilters{})

		if !got.VisibleOnly {
			t.Error("VisibleOnly should be set")
		}
		if got.VisibleToInstitute != nil {
			t.Errorf("VisibleToInstitute = %v, want nil", got.VisibleToInstitute)
		}
	})

	t.Run("teacher sees own tests", func(t *testing.T) {
		actor := &auth.Principal{ID: 8, Role: models.RoleTeacher, InstituteID: uintPtr(4)}

		got := scopeTestFilters(actor, repositories.TestFilters{})

		if got.CreatedByID == nil || *got.CreatedByID != 8 {
			t.Errorf("CreatedByID = %v, want 8", got.CreatedByID)
		}
		if got.CreatedByRole == nil || *got.CreatedByRole != models.RoleTeacher {
			t.Errorf("CreatedByRole = %v, want teacher", got.CreatedByRole)
		}
	})

	t.Run("admin filters untouched", func(t *testing.T) {
		actor := &auth.Principal{ID: 1, Role: models.RoleMainAdmin}

		got := scopeTestFilters(actor, repositories.TestFilters{})

		if got.IsApproved != nil || got.VisibleOnly || got.CreatedByID != nil {
			t.Errorf("admin filters should pass through unchanged, got %+v", got)
		}
	})
}
