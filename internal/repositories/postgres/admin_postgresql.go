package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type AdminPostgreSQL struct {
	db *gorm.DB
}

func NewAdminPostgreSQL(db *gorm.DB) repositories.AdminRepository {
	return &AdminPostgreSQL{db: db}
}

func (r *AdminPostgreSQL) Create(ctx context.Context, tx *gorm.DB, admin *models.Admin) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *AdminPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Admin, error) {
	db := dbOr(tx, r.db)
	var admin models.Admin
	if err := db.WithContext(ctx).First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}

func (r *AdminPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Admin, error) {
	db := dbOr(tx, r.db)
	var admin models.Admin
	if err := db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin by email: %w", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return &admin, nil
}

func (r *AdminPostgreSQL) Update(ctx context.Context, tx *gorm.DB, admin *models.Admin) error {
	db := dbOr(tx, r.db)
	if err := db.WithContext(ctx).Save(admin).Error; err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	return nil
}

func (r *AdminPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := dbOr(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Admin{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check admin email: %w", err)
	}
	return count > 0, nil
}
