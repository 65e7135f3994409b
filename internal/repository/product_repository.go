package repository

import (
	"context"
	"errors"
	"time"

	"pink-basket/internal/apperror"
	"pink-basket/internal/model"
	"pink-basket/prometheus"

	"gorm.io/gorm"
)

// uncategorised products sort after every real category
const listingOrder = "COALESCE(categories.display_order, 2147483647) ASC, products.name ASC, products.id ASC"

// mutableColumns are overwritten by a full product update
var mutableColumns = []string{
	"name", "description", "sku", "price_cents", "category_id",
	"image_url", "stock_quantity", "reorder_level",
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) withCategory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
}

// ListActive returns storefront products, optionally restricted to one category
func (r *ProductRepository) ListActive(ctx context.Context, categoryID *uint) ([]model.Product, error) {
	defer prometheus.TrackDBOperation("list_products")(time.Now())

	query := r.withCategory(ctx).Where("products.is_active = ?", true)
	if categoryID != nil {
		query = query.Where("products.category_id = ?", *categoryID)
	}

	products := make([]model.Product, 0)
	if err := query.Order(listingOrder).Find(&products).Error; err != nil {
		return nil, apperror.Storage("list products", err)
	}
	return products, nil
}

// ListAll returns every product, active or not, for admin views and reports
func (r *ProductRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	defer prometheus.TrackDBOperation("list_all_products")(time.Now())

	products := make([]model.Product, 0)
	if err := r.withCategory(ctx).Order(listingOrder).Find(&products).Error; err != nil {
		return nil, apperror.Storage("list all products", err)
	}
	return products, nil
}

// Get returns one product regardless of its active flag
func (r *ProductRepository) Get(ctx context.Context, id uint) (*model.Product, error) {
	defer prometheus.TrackDBOperation("get_product")(time.Now())

	var product model.Product
	err := r.withCategory(ctx).Where("products.id = ?", id).Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("product", id)
	}
	if err != nil {
		return nil, apperror.Storage("get product", err)
	}
	return &product, nil
}

// ActiveByIDs returns the active products among ids, in id order
func (r *ProductRepository) ActiveByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	products := make([]model.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	err := r.withCategory(ctx).
		Where("products.id IN ? AND products.is_active = ?", ids, true).
		Order("products.id ASC").
		Find(&products).Error
	return products, apperror.Storage("products by id", err)
}

// RandomActiveInCategory picks up to limit other active products of a category
func (r *ProductRepository) RandomActiveInCategory(ctx context.Context, categoryID, excludeID uint, limit int) ([]model.Product, error) {
	products := make([]model.Product, 0, limit)
	err := r.withCategory(ctx).
		Where("products.category_id = ? AND products.id <> ? AND products.is_active = ?", categoryID, excludeID, true).
		Order("RANDOM()").
		Limit(limit).
		Find(&products).Error
	return products, apperror.Storage("products in category", err)
}

// Create inserts a new, active product
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	defer prometheus.TrackDBOperation("create_product")(time.Now())

	product.IsActive = true
	if product.ReorderLevel <= 0 {
		product.ReorderLevel = model.DefaultReorderLevel
	}
	return apperror.Storage("create product", r.db.WithContext(ctx).Create(product).Error)
}

// Update overwrites every mutable field of product; zero values are written too
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	defer prometheus.TrackDBOperation("update_product")(time.Now())

	if product.ReorderLevel <= 0 {
		product.ReorderLevel = model.DefaultReorderLevel
	}
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", product.ID).
		Select(mutableColumns).
		Updates(product)
	if result.Error != nil {
		return apperror.Storage("update product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product", product.ID)
	}
	return nil
}

// SoftDelete marks a product inactive; the row is kept for order history
func (r *ProductRepository) SoftDelete(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("soft_delete_product")(time.Now())

	result := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return apperror.Storage("soft delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}
