package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/bhojsoft/testseries-service/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	instituteID := uint(7)
	token, err := svc.Issue(42, models.RoleTeacher, &instituteID, 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	id, err := claims.PrincipalID()
	if err != nil {
		t.Fatalf("PrincipalID failed: %v", err)
	}
	if id != 42 {
		t.Errorf("subject = %d, want 42", id)
	}
	if claims.Role != models.RoleTeacher {
		t.Errorf("role = %q, want %q", claims.Role, models.RoleTeacher)
	}
	if claims.InstituteID == nil || *claims.InstituteID != 7 {
		t.Errorf("institute_id = %v, want 7", claims.InstituteID)
	}
}

func TestTokenExpiry(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue(1, models.RoleStudent, nil, -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = svc.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Issue(1, models.RoleStudent, nil, 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("Verify accepted a token signed with a different secret")
	}
}

func TestTokenGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q) error = %v, want ErrTokenMalformed", tok, err)
		}
	}
}
