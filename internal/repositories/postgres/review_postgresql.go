package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type ReviewPostgreSQL struct {
	db *gorm.DB
}

func NewReviewPostgreSQL(db *gorm.DB) repositories.ReviewRepository {
	return &ReviewPostgreSQL{db: db}
}

func (r *ReviewPostgreSQL) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *ReviewPostgreSQL) ListByTest(ctx context.Context, tx *gorm.DB, testID uint, filters repositories.PageFilters) ([]models.Review, int64, error) {
	db := dbOr(tx, r.db)
	query := db.WithContext(ctx).Model(&models.Review{}).Where("test_id = ?", testID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []models.Review
	query = ApplyPagination(query, filters.Limit, filters.Offset).Order("created_at DESC")
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	// Attach reviewer names without preloading full student rows into the payload.
	if len(reviews) > 0 {
		ids := make([]uint, 0, len(reviews))
		for _, rv := range reviews {
			ids = append(ids, rv.StudentID)
		}
		var students []models.Student
		if err := db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&students).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to load reviewer names: %w", err)
		}
		names := make(map[uint]string, len(students))
		for _, s := range students {
			names[s.ID] = s.Name
		}
		for i := range reviews {
			reviews[i].StudentName = names[reviews[i].StudentID]
		}
	}

	return reviews, total, nil
}
