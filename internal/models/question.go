package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is a single multiple-choice item. Options are stored as a JSONB
// array; a submitted answer matches the correct answer after whitespace
// trimming and case folding.
type Question struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	Prompt        string                      `json:"prompt" gorm:"type:text;not null" validate:"required,min=1"`
	Options       datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb;not null" validate:"required,min=2,max=10,dive,required"`
	CorrectAnswer string                      `json:"correct_answer" gorm:"not null;size:500" validate:"required"`
	Marks         int                         `json:"marks" gorm:"default:1" validate:"min=1,max=100"`

	CreatedByID   uint `json:"created_by_id" gorm:"not null;index"`
	CreatedByRole Role `json:"created_by_role" gorm:"not null;size:20;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TestQuestion links a question into a test at a fixed position. Question
// order within a test is the Position order.
type TestQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	TestID     uint `json:"test_id" gorm:"not null;index;uniqueIndex:idx_test_question"`
	QuestionID uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_test_question"`
	Position   int  `json:"position" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string     { return "questions" }
func (TestQuestion) TableName() string { return "test_questions" }
