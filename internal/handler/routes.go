package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers bundles every route handler of the service
type Handlers struct {
	Categories *CategoryHandler
	Products   *ProductHandler
	Orders     *OrderHandler
	Admin      *AdminHandler
}

// RegisterRoutes mounts the public storefront and the admin-gated routes.
func RegisterRoutes(e *echo.Echo, h Handlers, adminAuth echo.MiddlewareFunc) {
	e.GET("/health", Health)

	api := e.Group("/api")

	api.GET("/products", h.Products.ListProducts)
	api.GET("/products/:id", h.Products.GetProduct)
	api.GET("/products/:id/recommendations", h.Products.GetRecommendations)
	api.POST("/products", h.Products.CreateProduct, adminAuth)
	api.PUT("/products/:id", h.Products.UpdateProduct, adminAuth)
	api.DELETE("/products/:id", h.Products.DeleteProduct, adminAuth)
	api.PATCH("/products/:id/stock", h.Products.SetStock, adminAuth)

	api.GET("/categories", h.Categories.ListCategories)
	api.POST("/categories", h.Categories.CreateCategory, adminAuth)
	api.DELETE("/categories", h.Categories.DeleteCategory, adminAuth)

	api.POST("/orders", h.Orders.PlaceOrder)
	api.GET("/orders", h.Orders.ListOrders, adminAuth)
	api.PUT("/orders", h.Orders.UpdateOrderStatus, adminAuth)

	api.POST("/admin/login", h.Admin.Login)
	api.POST("/admin/logout", h.Admin.Logout)

	admin := api.Group("/admin", adminAuth)
	admin.GET("/sales", h.Admin.Sales)
	admin.GET("/inventory", h.Admin.Inventory)
}

// Health is the liveness probe
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
