package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

// dbOr picks the transaction handle when one is supplied.
func dbOr(tx, db *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// ApplyTestFilters applies common filters to test queries.
func ApplyTestFilters(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Class != nil {
		query = query.Where("class = ?", *filters.Class)
	}
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.Visibility != nil {
		query = query.Where("visibility = ?", *filters.Visibility)
	}
	if filters.InstituteID != nil {
		query = query.Where("institute_id = ?", *filters.InstituteID)
	}
	if filters.CreatedByID != nil {
		query = query.Where("created_by_id = ?", *filters.CreatedByID)
	}
	if filters.CreatedByRole != nil {
		query = query.Where("created_by_role = ?", *filters.CreatedByRole)
	}
	if filters.IsApproved != nil {
		query = query.Where("is_approved = ?", *filters.IsApproved)
	}
	if filters.VisibleOnly {
		if filters.VisibleToInstitute != nil {
			query = query.Where("visibility = ? OR (visibility = ? AND institute_id = ?)",
				models.VisibilityAll, models.VisibilityInstitute, *filters.VisibleToInstitute)
		} else {
			query = query.Where("visibility = ?", models.VisibilityAll)
		}
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies limit/offset and a validated sort column.
func ApplyPaginationAndSort(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	allowed := map[string]bool{
		"created_at": true,
		"title":      true,
		"views":      true,
		"subject":    true,
		"start_time": true,
	}

	sortBy := filters.SortBy
	if sortBy == "" || !allowed[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if strings.ToLower(sortOrder) != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	return ApplyPagination(query, filters.Limit, filters.Offset)
}

// ApplyPagination clamps and applies limit/offset.
func ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
