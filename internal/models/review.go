package models

import "time"

// Review is a student rating of a test.
type Review struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	TestID    uint   `json:"test_id" gorm:"not null;index"`
	StudentID uint   `json:"student_id" gorm:"not null;index"`
	Stars     int    `json:"star_count" gorm:"not null" validate:"required,min=1,max=5"`
	Comment   string `json:"review" gorm:"type:text" validate:"omitempty,max=2000"`

	CreatedAt time.Time `json:"created_at"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`

	// Computed from the joined student row
	StudentName string `json:"student_name,omitempty" gorm:"-"`
}

func (Review) TableName() string { return "reviews" }
