package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin is a platform operator. Main admins approve institutes and tests;
// sub admins have the same surface minus approval rights.
type Admin struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;size:100" validate:"required,min=2,max=100"`
	Email    string `json:"email" gorm:"not null;uniqueIndex;size:255" validate:"required,email"`
	Password string `json:"-" gorm:"not null;size:255"`
	Role     Role   `json:"role" gorm:"not null;default:sub-admin;size:20" validate:"omitempty,oneof=main-admin sub-admin"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Institute is a tenant. It owns teachers and students and stays unusable
// until a main admin approves it.
type Institute struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"not null;size:200;index" validate:"required,min=2,max=200"`
	Email      string `json:"email" gorm:"not null;uniqueIndex;size:255" validate:"required,email"`
	Password   string `json:"-" gorm:"not null;size:255"`
	IsApproved bool   `json:"is_approved" gorm:"not null;default:false;index"`
	AdminID    *uint  `json:"admin_id" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Teachers []Teacher `json:"teachers,omitempty" gorm:"foreignKey:InstituteID"`
	Students []Student `json:"students,omitempty" gorm:"foreignKey:InstituteID"`
}

// Teacher belongs to exactly one institute. Login and authoring both require
// the teacher and the owning institute to be approved.
type Teacher struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:100" validate:"required,min=2,max=100"`
	Email       string `json:"email" gorm:"not null;uniqueIndex;size:255" validate:"required,email"`
	Password    string `json:"-" gorm:"not null;size:255"`
	Subject     string `json:"subject" gorm:"size:100" validate:"omitempty,max=100"`
	InstituteID uint   `json:"institute_id" gorm:"not null;index"`
	IsApproved  bool   `json:"is_approved" gorm:"not null;default:false;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Institute *Institute `json:"institute,omitempty" gorm:"foreignKey:InstituteID"`
}

// Student takes tests. Institute affiliation is optional; unaffiliated
// students only see tests with "all" visibility.
type Student struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"not null;size:100" validate:"required,min=2,max=100"`
	Email        string  `json:"email" gorm:"not null;uniqueIndex;size:255" validate:"required,email"`
	Password     string  `json:"-" gorm:"not null;size:255"`
	Mobile       string  `json:"mobile" gorm:"size:20" validate:"omitempty,min=8,max=20"`
	ProfileImage *string `json:"profile_image" gorm:"size:500"`
	InstituteID  *uint   `json:"institute_id" gorm:"index"`

	EmailVerified bool `json:"email_verified" gorm:"not null;default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Institute *Institute `json:"institute,omitempty" gorm:"foreignKey:InstituteID"`

	// Computed fields (not stored)
	AverageScore float64 `json:"average_score,omitempty" gorm:"-"`
	TestsTaken   int     `json:"tests_taken,omitempty" gorm:"-"`
}

func (Admin) TableName() string     { return "admins" }
func (Institute) TableName() string { return "institutes" }
func (Teacher) TableName() string   { return "teachers" }
func (Student) TableName() string   { return "students" }
