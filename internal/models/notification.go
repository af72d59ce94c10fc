package models

import "time"

// ActivityType classifies what produced a notification.
type ActivityType string

const (
	ActivityTestSubmit        ActivityType = "TEST_SUBMIT"
	ActivityLoginSuccess      ActivityType = "LOGIN_SUCCESS"
	ActivityProfileUpdated    ActivityType = "PROFILE_UPDATED"
	ActivityInstituteApproved ActivityType = "INSTITUTE_APPROVED"
	ActivityTeacherApproved   ActivityType = "TEACHER_APPROVED"
)

// Notification is created as a side effect of other operations and mutated
// exactly once, when the recipient marks it seen.
type Notification struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	RecipientID   uint         `json:"recipient_id" gorm:"not null;index:idx_recipient"`
	RecipientRole Role         `json:"recipient_role" gorm:"not null;size:20;index:idx_recipient"`
	Message       string       `json:"message" gorm:"not null;type:text" validate:"required"`
	ActivityType  ActivityType `json:"activity_type" gorm:"not null;size:50;index" validate:"required,oneof=TEST_SUBMIT LOGIN_SUCCESS PROFILE_UPDATED INSTITUTE_APPROVED TEACHER_APPROVED"`
	RelatedID     *uint        `json:"related_id"`

	IsSeen bool       `json:"is_seen" gorm:"not null;default:false;index"`
	SeenAt *time.Time `json:"seen_at"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }
