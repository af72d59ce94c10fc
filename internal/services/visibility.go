package services

import (
	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

// deriveVisibility decides test visibility from the creator and the test
// kind, never from client input. Practice tests are open to every student;
// teachers scope scheduled tests to their institute; admins scope to an
// institute only when they name one.
func deriveVisibility(actor *auth.Principal, requestedInstitute *uint, kind models.TestKind) (models.Visibility, *uint) {
	if kind == models.TestKindPractice {
		return models.VisibilityAll, nil
	}
	switch actor.Role {
	case models.RoleTeacher, models.RoleInstitute:
		return models.VisibilityInstitute, actor.InstituteID
	default:
		if requestedInstitute != nil {
			return models.VisibilityInstitute, requestedInstitute
		}
		return models.VisibilityAll, nil
	}
}

// canStudentSee is the single visibility check for listing, reading and
// submitting a test.
func canStudentSee(test *models.Test, student *auth.Principal) bool {
	if !test.IsApproved {
		return false
	}
	if test.Visibility == models.VisibilityAll {
		return true
	}
	if test.InstituteID == nil || student.InstituteID == nil {
		return false
	}
	return *test.InstituteID == *student.InstituteID
}

// scopeTestFilters narrows a listing query to what the actor may see.
func scopeTestFilters(actor *auth.Principal, filters repositories.TestFilters) repositories.TestFilters {
	switch actor.Role {
	case models.RoleStudent:
		approved := true
		filters.IsApproved = &approved
		filters.VisibleOnly = true
		filters.VisibleToInstitute = actor.InstituteID
	case models.RoleTeacher:
		filters.CreatedByID = &actor.ID
		role := models.RoleTeacher
		filters.CreatedByRole = &role
	case models.RoleInstitute:
		filters.InstituteID = actor.InstituteID
	}
	return filters
}
