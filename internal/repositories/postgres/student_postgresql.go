package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (r *StudentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (r *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	db := dbOr(tx, r.db)
	var student models.Student
	if err := db.WithContext(ctx).First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (r *StudentPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Student, error) {
	db := dbOr(tx, r.db)
	var student models.Student
	if err := db.WithContext(ctx).Where("email = ?", email).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student by email: %w", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get student by email: %w", err)
	}
	return &student, nil
}

func (r *StudentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Save(student).Error; err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

func (r *StudentPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := dbOr(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Student{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check student email: %w", err)
	}
	return count > 0, nil
}

func (r *StudentPostgreSQL) SetInstitute(ctx context.Context, tx *gorm.DB, studentID uint, instituteID *uint) error {
	db := dbOr(tx, r.db)
	result := db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", studentID).Update("institute_id", instituteID)
	if result.Error != nil {
		return fmt.Errorf("failed to set student institute: %w", result.Error)
	}
	return nil
}

func (r *StudentPostgreSQL) MarkEmailVerified(ctx context.Context, tx *gorm.DB, studentID uint) error {
	db := dbOr(tx, r.db)
	result := db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", studentID).
		Updates(map[string]interface{}{"email_verified": true, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to mark student email verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("student %d: %w", studentID, repositories.ErrNotFound)
	}
	return nil
}
