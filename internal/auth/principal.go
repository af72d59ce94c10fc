package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

var (
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrUnknownRole       = errors.New("unknown role")
)

// Principal is the normalized identity attached to every authenticated
// request.
type Principal struct {
	ID          uint
	Role        models.Role
	Name        string
	Email       string
	InstituteID *uint
}

// IsStudent reports whether the principal is a student.
func (p *Principal) IsStudent() bool { return p.Role == models.RoleStudent }

// PrincipalResolver loads the concrete principal record behind a verified
// token. The role set is closed: each kind has exactly one resolution arm and
// anything else is rejected.
type PrincipalResolver struct {
	repo repositories.Repository
}

func NewPrincipalResolver(repo repositories.Repository) *PrincipalResolver {
	return &PrincipalResolver{repo: repo}
}

// Resolve maps verified claims to a live principal. A still-valid token whose
// subject no longer exists resolves to ErrPrincipalNotFound.
func (r *PrincipalResolver) Resolve(ctx context.Context, claims *Claims) (*Principal, error) {
	id, err := claims.PrincipalID()
	if err != nil {
		return nil, ErrTokenMalformed
	}

	switch claims.Role {
	case models.RoleMainAdmin, models.RoleSubAdmin:
		admin, err := r.repo.Admin().GetByID(ctx, nil, id)
		if err != nil {
			return nil, notFoundOr(err)
		}
		// The stored role wins: a demoted admin keeps sub-admin rights even
		// with an older main-admin token.
		return &Principal{ID: admin.ID, Role: admin.Role, Name: admin.Name, Email: admin.Email}, nil

	case models.RoleInstitute:
		inst, err := r.repo.Institute().GetByID(ctx, nil, id)
		if err != nil {
			return nil, notFoundOr(err)
		}
		return &Principal{ID: inst.ID, Role: models.RoleInstitute, Name: inst.Name, Email: inst.Email, InstituteID: &inst.ID}, nil

	case models.RoleTeacher:
		teacher, err := r.repo.Teacher().GetByID(ctx, nil, id)
		if err != nil {
			return nil, notFoundOr(err)
		}
		instituteID := teacher.InstituteID
		return &Principal{ID: teacher.ID, Role: models.RoleTeacher, Name: teacher.Name, Email: teacher.Email, InstituteID: &instituteID}, nil

	case models.RoleStudent:
		student, err := r.repo.Student().GetByID(ctx, nil, id)
		if err != nil {
			return nil, notFoundOr(err)
		}
		return &Principal{ID: student.ID, Role: models.RoleStudent, Name: student.Name, Email: student.Email, InstituteID: student.InstituteID}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, claims.Role)
	}
}

func notFoundOr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrPrincipalNotFound
	}
	return err
}
