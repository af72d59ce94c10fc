package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/cache"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type DashboardPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDashboardPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DashboardRepository {
	return &DashboardPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *DashboardPostgreSQL) TestCountBySubject(ctx context.Context) ([]repositories.SubjectCount, error) {
	fetch := func() ([]repositories.SubjectCount, error) {
		var counts []repositories.SubjectCount
		err := r.db.WithContext(ctx).Model(&models.Test{}).
			Select("subject, COUNT(*) AS count").
			Where("is_approved = ?", true).
			Group("subject").
			Order("count DESC").
			Scan(&counts).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count tests by subject: %w", err)
		}
		return counts, nil
	}

	if r.cacheManager != nil {
		var counts []repositories.SubjectCount
		err := r.cacheManager.Stats.CacheOrExecute(ctx, "tests:by_subject", &counts, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
			return fetch()
		})
		if err != nil {
			return nil, err
		}
		return counts, nil
	}
	return fetch()
}

func (r *DashboardPostgreSQL) TopStudentsByAverageScore(ctx context.Context, limit int) ([]repositories.StudentScore, error) {
	if limit <= 0 {
		limit = 10
	}
	fetch := func() ([]repositories.StudentScore, error) {
		var scores []repositories.StudentScore
		err := r.db.WithContext(ctx).Model(&models.Submission{}).
			Select("submissions.student_id, students.name, students.email, students.profile_image, AVG(submissions.score) AS average_score, COUNT(*) AS tests_taken").
			Joins("JOIN students ON students.id = submissions.student_id").
			Group("submissions.student_id, students.name, students.email, students.profile_image").
			Order("average_score DESC").
			Limit(limit).
			Scan(&scores).Error
		if err != nil {
			return nil, fmt.Errorf("failed to rank students: %w", err)
		}
		return scores, nil
	}

	if r.cacheManager != nil {
		var scores []repositories.StudentScore
		key := fmt.Sprintf("students:top:%d", limit)
		err := r.cacheManager.Stats.CacheOrExecute(ctx, key, &scores, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
			return fetch()
		})
		if err != nil {
			return nil, err
		}
		return scores, nil
	}
	return fetch()
}

// CompletionPercentage is the share of approved tests a student has at
// least one submission for.
func (r *DashboardPostgreSQL) CompletionPercentage(ctx context.Context, studentID uint) (float64, error) {
	var totalTests int64
	err := r.db.WithContext(ctx).Model(&models.Test{}).
		Where("is_approved = ?", true).
		Count(&totalTests).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tests: %w", err)
	}
	if totalTests == 0 {
		return 0, nil
	}

	var takenTests int64
	err = r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("student_id = ?", studentID).
		Distinct("test_id").
		Count(&takenTests).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count taken tests: %w", err)
	}

	return float64(takenTests) / float64(totalTests) * 100, nil
}

// SearchStudentsWithScores matches students by name who have at least one
// submission, returning each with their average score.
func (r *DashboardPostgreSQL) SearchStudentsWithScores(ctx context.Context, name string, limit, offset int) ([]repositories.StudentScore, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Submission{}).
		Joins("JOIN students ON students.id = submissions.student_id").
		Where("students.name ILIKE ?", "%"+name+"%").
		Group("submissions.student_id, students.name, students.email, students.profile_image")

	var total int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("name ILIKE ?", "%"+name+"%").
		Where("id IN (?)", r.db.Model(&models.Submission{}).Select("DISTINCT student_id")).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count matched students: %w", err)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var scores []repositories.StudentScore
	err = base.
		Select("submissions.student_id, students.name, students.email, students.profile_image, AVG(submissions.score) AS average_score, COUNT(*) AS tests_taken").
		Order("students.name ASC").
		Limit(limit).
		Offset(offset).
		Scan(&scores).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search students: %w", err)
	}
	return scores, total, nil
}
