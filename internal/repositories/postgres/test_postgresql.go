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

type TestPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.TestRepository {
	return &TestPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

func (r *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	// Cache only reads outside a transaction; inside one the caller needs
	// the transactional view.
	if tx == nil && r.cacheManager != nil {
		var test models.Test
		key := fmt.Sprintf("id:%d", id)
		err := r.cacheManager.Test.CacheOrExecute(ctx, key, &test, cache.TestCacheConfig.TTL, func() (interface{}, error) {
			return r.getByID(ctx, r.db, id)
		})
		if err != nil {
			// Unwrap so callers can match repositories.ErrNotFound.
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
			}
			return nil, err
		}
		return &test, nil
	}
	return r.getByID(ctx, dbOr(tx, r.db), id)
}

func (r *TestPostgreSQL) getByID(ctx context.Context, db *gorm.DB, id uint) (*models.Test, error) {
	var test models.Test
	err := db.WithContext(ctx).
		Preload("Institute").
		Preload("Questions", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Preload("Questions.Question").
		First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	test.QuestionsCount = len(test.Questions)
	return &test, nil
}

func (r *TestPostgreSQL) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Save(test).Error; err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}
	cache.InvalidateTestCache(ctx, r.cacheManager, test.ID)
	return nil
}

func (r *TestPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := dbOr(tx, r.db)
	result := db.WithContext(ctx).Delete(&models.Test{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete test: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
	}
	cache.InvalidateTestCache(ctx, r.cacheManager, id)
	return nil
}

func (r *TestPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]models.Test, int64, error) {
	db := dbOr(tx, r.db)
	query := ApplyTestFilters(db.WithContext(ctx).Model(&models.Test{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tests: %w", err)
	}

	var tests []models.Test
	query = ApplyPaginationAndSort(query, filters)
	if err := query.Preload("Institute").Find(&tests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}
	return tests, total, nil
}

func (r *TestPostgreSQL) SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error {
	db := dbOr(tx, r.db)
	result := db.WithContext(ctx).Model(&models.Test{}).Where("id = ?", id).Update("is_approved", approved)
	if result.Error != nil {
		return fmt.Errorf("failed to set test approval: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Test{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to set test approval: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
		}
	}
	cache.InvalidateTestCache(ctx, r.cacheManager, id)
	return nil
}

func (r *TestPostgreSQL) IncrementViews(ctx context.Context, tx *gorm.DB, id uint) error {
	db := dbOr(tx, r.db)
	result := db.WithContext(ctx).Model(&models.Test{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment test views: %w", result.Error)
	}
	cache.InvalidateTestCache(ctx, r.cacheManager, id)
	return nil
}

func (r *TestPostgreSQL) TopByViews(ctx context.Context, tx *gorm.DB, limit int) ([]models.Test, error) {
	db := dbOr(tx, r.db)
	if limit <= 0 {
		limit = 10
	}
	var tests []models.Test
	err := db.WithContext(ctx).
		Where("is_approved = ?", true).
		Order("views DESC").
		Limit(limit).
		Find(&tests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top tests: %w", err)
	}
	return tests, nil
}

// ListByInstituteTeachers returns tests authored by any teacher of the institute.
func (r *TestPostgreSQL) ListByInstituteTeachers(ctx context.Context, tx *gorm.DB, instituteID uint, filters repositories.PageFilters) ([]models.Test, int64, error) {
	db := dbOr(tx, r.db)
	subquery := db.WithContext(ctx).Model(&models.Teacher{}).Select("id").Where("institute_id = ?", instituteID)
	query := db.WithContext(ctx).Model(&models.Test{}).
		Where("created_by_role = ? AND created_by_id IN (?)", models.RoleTeacher, subquery)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count institute tests: %w", err)
	}

	var tests []models.Test
	query = ApplyPagination(query, filters.Limit, filters.Offset).Order("created_at DESC")
	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list institute tests: %w", err)
	}
	return tests, total, nil
}

func (r *TestPostgreSQL) AddQuestions(ctx context.Context, tx *gorm.DB, testID uint, rows []models.TestQuestion) error {
	if len(rows) == 0 {
		return nil
	}
	db := dbOr(tx, r.db)
	for i := range rows {
		rows[i].TestID = testID
	}
	if err := db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("failed to add questions to test: %w", err)
	}
	cache.InvalidateTestCache(ctx, r.cacheManager, testID)
	return nil
}

func (r *TestPostgreSQL) RemoveQuestions(ctx context.Context, tx *gorm.DB, testID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	db := dbOr(tx, r.db)
	err := db.WithContext(ctx).
		Where("test_id = ? AND question_id IN ?", testID, questionIDs).
		Delete(&models.TestQuestion{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove questions from test: %w", err)
	}
	cache.InvalidateTestCache(ctx, r.cacheManager, testID)
	return nil
}

func (r *TestPostgreSQL) CountQuestions(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	db := dbOr(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).Model(&models.TestQuestion{}).Where("test_id = ?", testID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count test questions: %w", err)
	}
	return count, nil
}
