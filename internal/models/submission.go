package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission records one scored attempt at a test. Submissions are
// append-only; retakes add new rows.
type Submission struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	TestID    uint `json:"test_id" gorm:"not null;index"`
	StudentID uint `json:"student_id" gorm:"not null;index"`

	Answers        datatypes.JSONSlice[string] `json:"answers" gorm:"type:jsonb;not null"`
	Score          float64                     `json:"score" gorm:"not null"` // 0..100, two decimal places
	CorrectCount   int                         `json:"correct_answers" gorm:"not null"`
	IncorrectCount int                         `json:"incorrect_answers" gorm:"not null"`
	TotalQuestions int                         `json:"total_questions" gorm:"not null"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Test    *Test    `json:"test,omitempty" gorm:"foreignKey:TestID"`
	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Submission) TableName() string { return "submissions" }
