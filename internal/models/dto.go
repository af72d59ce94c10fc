package models

import "time"

// ===== AUTH / ACCOUNT REQUESTS =====

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Mobile      string `json:"mobile" validate:"omitempty,min=8,max=20"`
	InstituteID *uint  `json:"institute_id"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=100"`
	Mobile       *string `json:"mobile" validate:"omitempty,min=8,max=20"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,max=500"`
}

type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type OTPVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// ===== TEST AUTHORING REQUESTS =====

type QuestionInput struct {
	Prompt        string   `json:"prompt" validate:"required,min=1"`
	Options       []string `json:"options" validate:"required,min=2,max=10,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Marks         int      `json:"marks" validate:"omitempty,min=1,max=100"`
}

type TestCreateRequest struct {
	Title        string          `json:"title" validate:"required,min=1,max=200"`
	Subject      string          `json:"subject" validate:"required,max=100"`
	Class        string          `json:"class" validate:"omitempty,max=50"`
	Topic        string          `json:"topic" validate:"omitempty,max=100"`
	Description  *string         `json:"description" validate:"omitempty,max=2000"`
	Kind         TestKind        `json:"kind" validate:"omitempty,oneof=scheduled practice"`
	Questions    []QuestionInput `json:"questions" validate:"required,min=1,max=200,dive"`
	StartTime    *time.Time      `json:"start_time"`
	Duration     int             `json:"duration" validate:"omitempty,min=5,max=300"`
	TotalMarks   int             `json:"total_marks" validate:"required,min=1"`
	PassingMarks int             `json:"passing_marks" validate:"required,min=0"`
	InstituteID  *uint           `json:"institute_id"`
	ImageURL     *string         `json:"test_image" validate:"omitempty,max=500"`
}

type TestUpdateRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Subject      *string    `json:"subject" validate:"omitempty,max=100"`
	Class        *string    `json:"class" validate:"omitempty,max=50"`
	Topic        *string    `json:"topic" validate:"omitempty,max=100"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	StartTime    *time.Time `json:"start_time"`
	Duration     *int       `json:"duration" validate:"omitempty,min=5,max=300"`
	TotalMarks   *int       `json:"total_marks" validate:"omitempty,min=1"`
	PassingMarks *int       `json:"passing_marks" validate:"omitempty,min=0"`
	ImageURL     *string    `json:"test_image" validate:"omitempty,max=500"`
}

// ===== SUBMISSION REQUESTS =====

type SubmitTestRequest struct {
	Answers []string `json:"answers" validate:"required,min=1"`
}

// ===== REVIEW REQUESTS =====

type ReviewCreateRequest struct {
	TestID  uint   `json:"testid" validate:"required"`
	Stars   int    `json:"star_count" validate:"required,min=1,max=5"`
	Comment string `json:"review" validate:"omitempty,max=2000"`
}

// ===== COURSE REQUESTS =====

type CourseCreateRequest struct {
	Name       string     `json:"course_name" validate:"required,min=1,max=200"`
	Mode       CourseMode `json:"online_offline" validate:"required,oneof=online offline"`
	Price      float64    `json:"price" validate:"required,min=0"`
	OfferPrice *float64   `json:"offer_prize" validate:"omitempty,min=0"`
	Thumbnail  *string    `json:"thumbnail_image" validate:"omitempty,max=500"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
}

// ===== SHARED RESPONSE SHAPES =====

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	PageSize    int   `json:"page_size"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		PageSize:    limit,
	}
}
