package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type InstitutePostgreSQL struct {
	db *gorm.DB
}

func NewInstitutePostgreSQL(db *gorm.DB) repositories.InstituteRepository {
	return &InstitutePostgreSQL{db: db}
}

func (r *InstitutePostgreSQL) Create(ctx context.Context, tx *gorm.DB, institute *models.Institute) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Create(institute).Error; err != nil {
		return fmt.Errorf("failed to create institute: %w", err)
	}
	return nil
}

func (r *InstitutePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Institute, error) {
	db := dbOr(tx, r.db)
	var institute models.Institute
	if err := db.WithContext(ctx).First(&institute, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("institute %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get institute: %w", err)
	}
	return &institute, nil
}

func (r *InstitutePostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Institute, error) {
	db := dbOr(tx, r.db)
	var institute models.Institute
	if err := db.WithContext(ctx).Where("email = ?", email).First(&institute).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("institute by email: %w", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get institute by email: %w", err)
	}
	return &institute, nil
}

func (r *InstitutePostgreSQL) Update(ctx context.Context, tx *gorm.DB, institute *models.Institute) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Save(institute).Error; err != nil {
		return fmt.Errorf("failed to update institute: %w", err)
	}
	return nil
}

func (r *InstitutePostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := dbOr(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Institute{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check institute email: %w", err)
	}
	return count > 0, nil
}

// SetApproved is idempotent: re-approving an approved institute is a no-op.
func (r *InstitutePostgreSQL) SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error {
	db := dbOr(tx, r.db)
	result := db.WithContext(ctx).Model(&models.Institute{}).Where("id = ?", id).Update("is_approved", approved)
	if result.Error != nil {
		return fmt.Errorf("failed to set institute approval: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Institute{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to set institute approval: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("institute %d: %w", id, repositories.ErrNotFound)
		}
	}
	return nil
}

func (r *InstitutePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.PageFilters) ([]models.Institute, int64, error) {
	db := dbOr(tx, r.db)
	query := db.WithContext(ctx).Model(&models.Institute{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count institutes: %w", err)
	}

	var institutes []models.Institute
	query = ApplyPagination(query, filters.Limit, filters.Offset).Order("created_at DESC")
	if err := query.Find(&institutes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list institutes: %w", err)
	}
	return institutes, total, nil
}

func (r *InstitutePostgreSQL) GetTeachers(ctx context.Context, tx *gorm.DB, instituteID uint) ([]models.Teacher, error) {
	db := dbOr(tx, r.db)
	var teachers []models.Teacher
	if err := db.WithContext(ctx).Where("institute_id = ?", instituteID).Order("created_at DESC").Find(&teachers).Error; err != nil {
		return nil, fmt.Errorf("failed to get institute teachers: %w", err)
	}
	return teachers, nil
}

func (r *InstitutePostgreSQL) GetStudents(ctx context.Context, tx *gorm.DB, instituteID uint) ([]models.Student, error) {
	db := dbOr(tx, r.db)
	var students []models.Student
	if err := db.WithContext(ctx).Where("institute_id = ?", instituteID).Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to get institute students: %w", err)
	}
	return students, nil
}
