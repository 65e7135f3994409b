package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pink-basket/internal/apperror"
	"pink-basket/internal/model"
	"pink-basket/internal/repository"
	"pink-basket/pkg/cache"
	"pink-basket/pkg/media"
	"pink-basket/pkg/money"
	"pink-basket/prometheus"

	"go.uber.org/zap"
)

// listingPrefix namespaces every cached storefront read.
const listingPrefix = "products:"

// ImageFile is an uploaded product image.
type ImageFile struct {
	Filename string
	Content  io.Reader
}

// ProductInput carries the admin form for create and update. Price is the
// decimal currency string exactly as typed.
type ProductInput struct {
	Name             string
	Description      string
	SKU              string
	Price            string
	CategoryID       uint
	StockQuantity    int
	ReorderLevel     int
	Image            *ImageFile
	ExistingImageURL string
}

type CatalogService struct {
	categories *repository.CategoryRepository
	products   *repository.ProductRepository
	ledger     *repository.InventoryLedger
	uploader   media.Uploader
	cache      cache.Store
	listingTTL time.Duration
	log        *zap.Logger
}

func NewCatalogService(
	categories *repository.CategoryRepository,
	products *repository.ProductRepository,
	ledger *repository.InventoryLedger,
	uploader media.Uploader,
	store cache.Store,
	listingTTL time.Duration,
	log *zap.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		ledger:     ledger,
		uploader:   uploader,
		cache:      store,
		listingTTL: listingTTL,
		log:        log,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

// CreateCategory stores a new category; a nil displayOrder means DefaultDisplayOrder.
func (s *CatalogService) CreateCategory(ctx context.Context, name string, displayOrder *int) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("name", "name is required")
	}

	category := &model.Category{Name: name, DisplayOrder: model.DefaultDisplayOrder}
	if displayOrder != nil {
		category.DisplayOrder = *displayOrder
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	prometheus.RecordCatalogOperation("category", "create")
	s.invalidateListings(ctx)
	return category, nil
}

// DeleteCategory removes the category only; its products become uncategorised.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	prometheus.RecordCatalogOperation("category", "delete")
	s.invalidateListings(ctx)
	return nil
}

// ListProducts returns the storefront listing, served from cache when possible.
func (s *CatalogService) ListProducts(ctx context.Context, categoryID *uint) ([]model.Product, error) {
	key := listingKey(categoryID)

	var products []model.Product
	found, err := cache.GetJSON(ctx, s.cache, key, &products)
	if err != nil {
		s.log.Warn("Product listing cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return products, nil
	}

	products, err = s.products.ListActive(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, key, products, s.listingTTL); err != nil {
		s.log.Warn("Product listing cache write failed", zap.String("key", key), zap.Error(err))
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	return s.products.Get(ctx, id)
}

// CreateProduct validates the form, uploads the image and stores the product.
// Nothing is written when the image host fails.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	product, err := s.buildProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	if in.Image == nil {
		return nil, apperror.Validation("image", "image is required")
	}

	url, err := s.uploadImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	product.ImageURL = url

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	prometheus.RecordCatalogOperation("product", "create")
	prometheus.UpdateProductInventory(product.ID, product.StockQuantity)
	s.invalidateListings(ctx)
	return product, nil
}

// UpdateProduct overwrites every mutable field of product id. A new image is
// uploaded only when supplied; otherwise ExistingImageURL, then the stored
// URL, is kept.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*model.Product, error) {
	current, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := s.buildProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	product.ID = id

	switch {
	case in.Image != nil:
		if product.ImageURL, err = s.uploadImage(ctx, in.Image); err != nil {
			return nil, err
		}
	case strings.TrimSpace(in.ExistingImageURL) != "":
		product.ImageURL = strings.TrimSpace(in.ExistingImageURL)
	default:
		product.ImageURL = current.ImageURL
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	prometheus.RecordCatalogOperation("product", "update")
	prometheus.UpdateProductInventory(id, product.StockQuantity)
	s.invalidateListings(ctx)
	return s.products.Get(ctx, id)
}

// DeleteProduct hides the product from the storefront. Order history keeps
// its snapshot.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.SoftDelete(ctx, id); err != nil {
		return err
	}
	prometheus.RecordCatalogOperation("product", "delete")
	s.invalidateListings(ctx)
	return nil
}

// SetStock overwrites the stock balance of product id.
func (s *CatalogService) SetStock(ctx context.Context, id uint, quantity int) (*model.Product, error) {
	if err := s.ledger.Set(ctx, id, quantity); err != nil {
		return nil, err
	}
	prometheus.RecordCatalogOperation("product", "set_stock")
	s.invalidateListings(ctx)
	return s.products.Get(ctx, id)
}

func (s *CatalogService) buildProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("name", "name is required")
	}

	priceCents, err := money.ParseCents(in.Price)
	if err != nil {
		return nil, apperror.Validation("price_cents", "price_cents: %v", err)
	}

	if in.CategoryID == 0 {
		return nil, apperror.Validation("category_id", "category_id is required")
	}
	exists, err := s.categories.Exists(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.Validation("category_id", "category %d does not exist", in.CategoryID)
	}

	if in.StockQuantity < 0 {
		return nil, apperror.Validation("stock_quantity", "stock_quantity must not be negative")
	}
	if in.ReorderLevel < 0 {
		return nil, apperror.Validation("reorder_level", "reorder_level must not be negative")
	}

	categoryID := in.CategoryID
	return &model.Product{
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		SKU:           strings.TrimSpace(in.SKU),
		PriceCents:    priceCents,
		CategoryID:    &categoryID,
		StockQuantity: in.StockQuantity,
		ReorderLevel:  in.ReorderLevel,
	}, nil
}

func (s *CatalogService) uploadImage(ctx context.Context, image *ImageFile) (string, error) {
	url, err := s.uploader.Upload(ctx, image.Filename, image.Content)
	if err != nil {
		s.log.Error("Image upload failed", zap.String("filename", image.Filename), zap.Error(err))
		return "", apperror.Dependency("image host", err)
	}
	return url, nil
}

// invalidateListings drops cached listings. A failure only costs freshness
// until the TTL runs out.
func (s *CatalogService) invalidateListings(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, listingPrefix); err != nil {
		s.log.Warn("Product listing cache invalidation failed", zap.Error(err))
	}
}

func listingKey(categoryID *uint) string {
	if categoryID == nil {
		return listingPrefix + "list:all"
	}
	return fmt.Sprintf("%slist:%d", listingPrefix, *categoryID)
}
