package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (r *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := dbOr(tx, r.db)
	var course models.Course
	if err := db.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (r *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.PageFilters) ([]models.Course, int64, error) {
	db := dbOr(tx, r.db)
	query := db.WithContext(ctx).Model(&models.Course{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	var courses []models.Course
	query = ApplyPagination(query, filters.Limit, filters.Offset).Order("created_at DESC")
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, total, nil
}

func (r *CoursePostgreSQL) SearchByName(ctx context.Context, tx *gorm.DB, name string, filters repositories.PageFilters) ([]models.Course, int64, error) {
	db := dbOr(tx, r.db)
	query := db.WithContext(ctx).Model(&models.Course{}).
		Where("name ILIKE ?", "%"+name+"%")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	var courses []models.Course
	query = ApplyPagination(query, filters.Limit, filters.Offset).Order("created_at DESC")
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search courses: %w", err)
	}
	return courses, total, nil
}
