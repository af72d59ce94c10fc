package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/cache"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSubmissionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Create(submission).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	cache.InvalidateStudentCache(ctx, r.cacheManager, submission.StudentID)
	return nil
}

func (r *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	db := dbOr(tx, r.db)
	var submission models.Submission
	err := db.WithContext(ctx).Preload("Test").Preload("Student").First(&submission, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

func (r *SubmissionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]models.Submission, int64, error) {
	db := dbOr(tx, r.db)
	query := db.WithContext(ctx).Model(&models.Submission{})

	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	var submissions []models.Submission
	query = ApplyPagination(query, filters.Limit, filters.Offset).Order("submitted_at DESC")
	if err := query.Preload("Test").Find(&submissions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, total, nil
}

func (r *SubmissionPostgreSQL) CountByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (int64, error) {
	db := dbOr(tx, r.db)
	var count int64
	err := db.WithContext(ctx).Model(&models.Submission{}).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func (r *SubmissionPostgreSQL) GetStudentStats(ctx context.Context, tx *gorm.DB, studentID uint) (*repositories.StudentStats, error) {
	fetch := func() (*repositories.StudentStats, error) {
		db := dbOr(tx, r.db)
		var stats repositories.StudentStats
		err := db.WithContext(ctx).Model(&models.Submission{}).
			Select("COUNT(*) AS tests_taken, COALESCE(AVG(score), 0) AS average_score, COALESCE(MAX(score), 0) AS best_score").
			Where("student_id = ?", studentID).
			Scan(&stats).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get student stats: %w", err)
		}
		return &stats, nil
	}

	if tx == nil && r.cacheManager != nil {
		var stats repositories.StudentStats
		key := fmt.Sprintf("student:%d:stats", studentID)
		err := r.cacheManager.Stats.CacheOrExecute(ctx, key, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
			return fetch()
		})
		if err != nil {
			return nil, err
		}
		return &stats, nil
	}
	return fetch()
}
