package repository

import (
	"context"
	"time"

	"pink-basket/internal/apperror"
	"pink-basket/internal/model"
	"pink-basket/prometheus"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns all categories ordered by display_order, then id
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	defer prometheus.TrackDBOperation("list_categories")(time.Now())

	categories := make([]model.Category, 0)
	err := r.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&categories).Error
	return categories, apperror.Storage("list categories", err)
}

// Create inserts a category
func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	defer prometheus.TrackDBOperation("create_category")(time.Now())

	return apperror.Storage("create category", r.db.WithContext(ctx).Create(category).Error)
}

// Delete hard-deletes a category. Products pointing at it are left alone.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("delete_category")(time.Now())

	result := r.db.WithContext(ctx).Delete(&model.Category{}, id)
	if result.Error != nil {
		return apperror.Storage("delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("category", id)
	}
	return nil
}

// Exists reports whether a category with id is present
func (r *CategoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, apperror.Storage("check category", err)
	}
	return count > 0, nil
}

// NamesByID maps category id to name for report joins
func (r *CategoryRepository) NamesByID(ctx context.Context) (map[uint]string, error) {
	categories, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}
