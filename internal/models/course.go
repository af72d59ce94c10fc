package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseMode string

const (
	CourseModeOnline  CourseMode = "online"
	CourseModeOffline CourseMode = "offline"
)

// Course is a catalog entry surfaced through search and listings.
type Course struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"course_name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text"`
	Mode        CourseMode `json:"online_offline" gorm:"not null;default:online;size:10" validate:"omitempty,oneof=online offline"`
	Price       float64    `json:"price" gorm:"not null;default:0" validate:"min=0"`
	OfferPrice  *float64   `json:"offer_prize"`
	Thumbnail   *string    `json:"thumbnail_image" gorm:"size:500"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	CreatedByID uint `json:"created_by_id" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Computed: whole weeks between start and end dates
	DurationWeeks int `json:"course_duration" gorm:"-"`
}

func (Course) TableName() string { return "courses" }
