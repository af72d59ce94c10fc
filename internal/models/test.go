package models

import (
	"time"

	"gorm.io/gorm"
)

type TestKind string

const (
	TestKindScheduled TestKind = "scheduled"
	// Practice tests have no schedule and are visible to everyone.
	TestKindPractice TestKind = "practice"
)

// Visibility controls which students may list and submit a test.
type Visibility string

const (
	VisibilityAll       Visibility = "all"
	VisibilityInstitute Visibility = "institute"
)

type Test struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Subject     string  `json:"subject" gorm:"not null;size:100;index" validate:"required,max=100"`
	Class       string  `json:"class" gorm:"size:50" validate:"omitempty,max=50"`
	Topic       string  `json:"topic" gorm:"size:100" validate:"omitempty,max=100"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`

	Kind         TestKind   `json:"kind" gorm:"not null;default:scheduled;index" validate:"omitempty,oneof=scheduled practice"`
	Visibility   Visibility `json:"visibility" gorm:"not null;default:all;index" validate:"omitempty,oneof=all institute"`
	InstituteID  *uint      `json:"institute_id" gorm:"index"`
	StartTime    *time.Time `json:"start_time"`
	Duration     int        `json:"duration" gorm:"not null" validate:"required,min=5,max=300"` // minutes
	TotalMarks   int        `json:"total_marks" gorm:"not null" validate:"required,min=1"`
	PassingMarks int        `json:"passing_marks" gorm:"not null" validate:"required,min=0"`
	ImageURL     *string    `json:"test_image" gorm:"size:500"`

	CreatedByID   uint  `json:"created_by_id" gorm:"not null;index"`
	CreatedByRole Role  `json:"created_by_role" gorm:"not null;size:20"`
	IsApproved    bool  `json:"is_approved" gorm:"not null;default:false;index"`
	Views         int64 `json:"views" gorm:"not null;default:0;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Institute *Institute     `json:"institute,omitempty" gorm:"foreignKey:InstituteID"`
	Questions []TestQuestion `json:"-" gorm:"foreignKey:TestID"`
	Reviews   []Review       `json:"reviews,omitempty" gorm:"foreignKey:TestID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

func (Test) TableName() string { return "tests" }
