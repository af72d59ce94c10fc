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

type NotificationPostgreSQL struct {
	db *gorm.DB
}

func NewNotificationPostgreSQL(db *gorm.DB) repositories.NotificationRepository {
	return &NotificationPostgreSQL{db: db}
}

func (r *NotificationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *NotificationPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).CreateInBatches(notifications, 100).Error; err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

func (r *NotificationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error) {
	db := dbOr(tx, r.db)
	var notification models.Notification
	if err := db.WithContext(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("notification %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

// MarkSeen is idempotent; seen_at keeps the first-seen timestamp.
func (r *NotificationPostgreSQL) MarkSeen(ctx context.Context, tx *gorm.DB, id uint) error {
	db := dbOr(tx, r.db)
	now := time.Now()
	result := db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND is_seen = ?", id, false).
		Updates(map[string]interface{}{"is_seen": true, "seen_at": now})
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification seen: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to mark notification seen: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("notification %d: %w", id, repositories.ErrNotFound)
		}
	}
	return nil
}

func (r *NotificationPostgreSQL) ListByRecipient(ctx context.Context, tx *gorm.DB, recipientID uint, role models.Role, filters repositories.NotificationFilters) ([]models.Notification, int64, error) {
	db := dbOr(tx, r.db)
	query := db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_role = ?", recipientID, role)
	if filters.UnseenOnly {
		query = query.Where("is_seen = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	query = ApplyPagination(query, filters.Limit, filters.Offset).Order("created_at DESC")
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}
