package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"pink-basket/internal/apperror"
	"pink-basket/internal/service"
	"pink-basket/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StockRequest is the body of the restock action
type StockRequest struct {
	StockQuantity *int `json:"stock_quantity" validate:"required,gte=0"`
}

type ProductHandler struct {
	catalog *service.CatalogService
	reports *service.ReportService
}

func NewProductHandler(catalog *service.CatalogService, reports *service.ReportService) *ProductHandler {
	return &ProductHandler{catalog: catalog, reports: reports}
}

// ListProducts returns active products, optionally filtered by category_id
func (h *ProductHandler) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	var categoryID *uint
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := parseID(raw, "category_id")
		if err != nil {
			return respondError(c, err, "Invalid category filter")
		}
		categoryID = &id
	}

	products, err := h.catalog.ListProducts(c.Request().Context(), categoryID)
	if err != nil {
		return respondError(c, err, "Failed to fetch products")
	}

	log.Debug("Products listed", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// GetProduct returns one product, including inactive ones
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return respondError(c, err, "Invalid product id")
	}

	product, err := h.catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch product")
	}
	return c.JSON(http.StatusOK, product)
}

// GetRecommendations returns products bought together with this one
func (h *ProductHandler) GetRecommendations(c echo.Context) error {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return respondError(c, err, "Invalid product id")
	}

	recs, err := h.reports.Recommend(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch recommendations")
	}
	return c.JSON(http.StatusOK, recs)
}

// CreateProduct handles the multipart product form
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	in, closeImage, err := productForm(c)
	if err != nil {
		return respondError(c, err, "Invalid request data")
	}
	defer closeImage()

	product, err := h.catalog.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err, "Failed to create product")
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int64("price_cents", product.PriceCents),
		zap.Int("stock_quantity", product.StockQuantity))
	return c.JSON(http.StatusCreated, echo.Map{
		"success":   true,
		"image_url": product.ImageURL,
		"product":   product,
	})
}

// UpdateProduct overwrites a product from the multipart form
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return respondError(c, err, "Invalid product id")
	}

	in, closeImage, err := productForm(c)
	if err != nil {
		return respondError(c, err, "Invalid request data")
	}
	defer closeImage()

	product, err := h.catalog.UpdateProduct(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}

	log.Info("Product updated", zap.Uint("product_id", id), zap.Bool("new_image", in.Image != nil))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

// DeleteProduct soft-deletes a product
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return respondError(c, err, "Invalid product id")
	}

	if err := h.catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete product")
	}

	log.Info("Product deactivated", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// SetStock overwrites the stock balance
func (h *ProductHandler) SetStock(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return respondError(c, err, "Invalid product id")
	}

	var req StockRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperror.Validation("stock_quantity", "stock_quantity must be a non-negative integer"), "Invalid stock")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err, "Invalid stock")
	}

	product, err := h.catalog.SetStock(c.Request().Context(), id, *req.StockQuantity)
	if err != nil {
		return respondError(c, err, "Failed to update stock")
	}

	log.Info("Stock set", zap.Uint("product_id", id), zap.Int("stock_quantity", product.StockQuantity))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

// productForm reads the multipart product fields. The returned func closes
// the uploaded file, if any.
func productForm(c echo.Context) (service.ProductInput, func(), error) {
	noop := func() {}
	in := service.ProductInput{
		Name:             c.FormValue("name"),
		Description:      c.FormValue("description"),
		SKU:              c.FormValue("sku"),
		Price:            c.FormValue("price_cents"),
		ExistingImageURL: c.FormValue("existing_image_url"),
	}

	categoryID, err := parseID(c.FormValue("category_id"), "category_id")
	if err != nil {
		return in, noop, err
	}
	in.CategoryID = categoryID

	if in.StockQuantity, err = formInt(c, "stock_quantity", true); err != nil {
		return in, noop, err
	}
	if in.ReorderLevel, err = formInt(c, "reorder_level", false); err != nil {
		return in, noop, err
	}

	fh, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, noop, nil
	case err != nil:
		return in, noop, apperror.Validation("image", "image could not be read")
	case fh.Size == 0:
		return in, noop, nil
	}

	file, err := fh.Open()
	if err != nil {
		return in, noop, apperror.Validation("image", "image could not be read")
	}
	in.Image = &service.ImageFile{Filename: fh.Filename, Content: file}
	return in, closer(file), nil
}

func formInt(c echo.Context, field string, required bool) (int, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		if required {
			return 0, apperror.Validation(field, "%s is required", field)
		}
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation(field, "%s must be an integer", field)
	}
	return n, nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}
