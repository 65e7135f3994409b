package handler

import (
	"net/http"

	"pink-basket/internal/service"
	"pink-basket/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CategoryRequest struct {
	Name         string `json:"name" validate:"required"`
	DisplayOrder *int   `json:"display_order"`
}

type DeleteCategoryRequest struct {
	ID uint `json:"id" validate:"required"`
}

type CategoryHandler struct {
	catalog *service.CatalogService
}

func NewCategoryHandler(catalog *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

// ListCategories returns categories in display order
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to retrieve categories")
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

// CreateCategory handles creating a new category
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)

	var req CategoryRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err, "Invalid request data")
	}

	category, err := h.catalog.CreateCategory(c.Request().Context(), req.Name, req.DisplayOrder)
	if err != nil {
		return respondError(c, err, "Failed to create category")
	}

	log.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name),
		zap.Int("display_order", category.DisplayOrder))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "category": category})
}

// DeleteCategory hard-deletes the category named in the body
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)

	var req DeleteCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err, "Invalid request data")
	}

	if err := h.catalog.DeleteCategory(c.Request().Context(), req.ID); err != nil {
		return respondError(c, err, "Failed to delete category")
	}

	log.Info("Category deleted", zap.Uint("category_id", req.ID))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
