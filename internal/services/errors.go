package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the handler layer maps to HTTP statuses.
var (
	ErrAdminNotFound        = errors.New("admin not found")
	ErrInstituteNotFound    = errors.New("institute not found")
	ErrTeacherNotFound      = errors.New("teacher not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrTestNotFound         = errors.New("test not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrCourseNotFound       = errors.New("course not found")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrOTPInvalid         = errors.New("otp is invalid or expired")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")

	ErrInstituteNotApproved = errors.New("institute is not approved")
	ErrTeacherNotApproved   = errors.New("teacher is not approved")
	ErrTestNotApproved      = errors.New("test is not approved")

	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
	ErrTestNotVisible      = errors.New("test is not visible to this student")
	ErrSubmissionRequired  = errors.New("student has no submissions")
)

// PermissionError carries who tried what on which resource.
type PermissionError struct {
	UserID     uint
	Role       string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %d cannot %s %s %d: %s",
		e.Role, e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID uint, role string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		Role:       role,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a permission failure.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
