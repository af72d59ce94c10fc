package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type TeacherPostgreSQL struct {
	db *gorm.DB
}

func NewTeacherPostgreSQL(db *gorm.DB) repositories.TeacherRepository {
	return &TeacherPostgreSQL{db: db}
}

func (r *TeacherPostgreSQL) Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Create(teacher).Error; err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	return nil
}

func (r *TeacherPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	db := dbOr(tx, r.db)
	var teacher models.Teacher
	if err := db.WithContext(ctx).Preload("Institute").First(&teacher, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("teacher %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return &teacher, nil
}

func (r *TeacherPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Teacher, error) {
	db := dbOr(tx, r.db)
	var teacher models.Teacher
	if err := db.WithContext(ctx).Where("email = ?", email).First(&teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("teacher by email: %w", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get teacher by email: %w", err)
	}
	return &teacher, nil
}

func (r *TeacherPostgreSQL) Update(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Save(teacher).Error; err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}
	return nil
}

func (r *TeacherPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := dbOr(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Teacher{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check teacher email: %w", err)
	}
	return count > 0, nil
}

func (r *TeacherPostgreSQL) SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error {
	db := dbOr(tx, r.db)
	result := db.WithContext(ctx).Model(&models.Teacher{}).Where("id = ?", id).Update("is_approved", approved)
	if result.Error != nil {
		return fmt.Errorf("failed to set teacher approval: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Teacher{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to set teacher approval: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("teacher %d: %w", id, repositories.ErrNotFound)
		}
	}
	return nil
}

func (r *TeacherPostgreSQL) ListByInstitute(ctx context.Context, tx *gorm.DB, instituteID uint, filters repositories.PageFilters) ([]models.Teacher, int64, error) {
	db := dbOr(tx, r.db)
	query := db.WithContext(ctx).Model(&models.Teacher{}).Where("institute_id = ?", instituteID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count teachers: %w", err)
	}

	var teachers []models.Teacher
	query = ApplyPagination(query, filters.Limit, filters.Offset).Order("created_at DESC")
	if err := query.Find(&teachers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list teachers: %w", err)
	}
	return teachers, total, nil
}
