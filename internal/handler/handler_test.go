package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	mid "pink-basket/internal/middleware"
	"pink-basket/internal/model"
	"pink-basket/internal/repository"
	"pink-basket/internal/service"
	"pink-basket/internal/testutil"
	"pink-basket/pkg/cache"
	"pink-basket/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	adminPassword = "pink-basket-admin"
	cookieName    = "admin_session"
)

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	_, _ = io.ReadAll(r)
	return "https://img.example.com/" + filename, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(uint, string) {}

type testServer struct {
	e        *echo.Echo
	db       *gorm.DB
	products *repository.ProductRepository
	ledger   *repository.InventoryLedger
	cats     *repository.CategoryRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	log := zap.NewNop()
	store := cache.NewMemory(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	cats := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	ledger := repository.NewInventoryLedger(db)
	orders := repository.NewOrderRepository(db)

	catalog := service.NewCatalogService(cats, products, ledger, stubUploader{}, store, time.Minute, log)
	orderSvc := service.NewOrderService(db, products, ledger, orders, nopNotifier{}, store, log)
	reports := service.NewReportService(orders, products)

	sessions := jwtutil.NewSessionUtil(jwtutil.SessionConfig{SigningKey: strings.Repeat("k", 32), TTL: time.Hour})
	admin, err := NewAdminHandler(adminPassword, sessions, CookieConfig{Name: cookieName}, reports)
	require.NoError(t, err)

	e := echo.New()
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Use(mid.RequestIDMiddleware)

	RegisterRoutes(e, Handlers{
		Categories: NewCategoryHandler(catalog),
		Products:   NewProductHandler(catalog, reports),
		Orders:     NewOrderHandler(orderSvc),
		Admin:      admin,
	}, mid.AdminAuth(sessions, cookieName))

	return &testServer{e: e, db: db, products: products, ledger: ledger, cats: cats}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return s.do(req)
}

func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := s.json(http.MethodPost, "/api/admin/login", echo.Map{"password": adminPassword}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func (s *testServer) seed(t *testing.T, name string, priceCents int64, stock int) *model.Product {
	t.Helper()
	cat := &model.Category{Name: "Snacks", DisplayOrder: 1}
	require.NoError(t, s.cats.Create(context.Background(), cat))
	p := &model.Product{Name: name, PriceCents: priceCents, CategoryID: &cat.ID, StockQuantity: stock}
	require.NoError(t, s.products.Create(context.Background(), p))
	return p
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func checkout(id uint, qty int) echo.Map {
	return echo.Map{
		"customer_name": "Lerato",
		"phone":         "+266 5555 0000",
		"address":       "12 Kingsway, Maseru",
		"items":         []echo.Map{{"id": id, "name": "Chips", "price_cents": 1500, "quantity": qty}},
	}
}

func TestPlaceOrder(t *testing.T) {
	s := newTestServer(t)
	chips := s.seed(t, "Chips", 1500, 10)

	rec := s.json(http.MethodPost, "/api/orders", checkout(chips.ID, 2), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3000), body["total_cents"])

	balance, err := s.ledger.Balance(context.Background(), chips.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, balance)
}

func TestPlaceOrder_MissingAddress(t *testing.T) {
	s := newTestServer(t)
	chips := s.seed(t, "Chips", 1500, 10)

	req := checkout(chips.ID, 1)
	delete(req, "address")
	rec := s.json(http.MethodPost, "/api/orders", req, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "address", decode(t, rec)["field"])

	balance, err := s.ledger.Balance(context.Background(), chips.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}

func TestPlaceOrder_InsufficientStockNamesProduct(t *testing.T) {
	s := newTestServer(t)
	chips := s.seed(t, "Chips", 1500, 1)

	rec := s.json(http.MethodPost, "/api/orders", checkout(chips.ID, 2), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "insufficient stock for Chips", decode(t, rec)["error"])
}

func TestAdminRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodGet, "/api/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.json(http.MethodPost, "/api/admin/login", echo.Map{"password": "guess"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.json(http.MethodGet, "/api/orders", nil, &http.Cookie{Name: cookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := s.login(t)
	rec = s.json(http.MethodGet, "/api/orders", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/sales", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	assert.Equal(t, http.StatusOK, s.do(req).Code)
}

func TestCreateProduct_Multipart(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t)
	cat := &model.Category{Name: "Bakery", DisplayOrder: 1}
	require.NoError(t, s.cats.Create(context.Background(), cat))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("name", "Cake")
	_ = w.WriteField("price_cents", "19.999")
	_ = w.WriteField("category_id", uintPath(cat.ID))
	_ = w.WriteField("stock_quantity", "4")
	part, err := w.CreateFormFile("image", "cake.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.AddCookie(cookie)
	rec := s.do(req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "https://img.example.com/cake.png", body["image_url"])
	product := body["product"].(map[string]any)
	assert.Equal(t, float64(2000), product["price_cents"])
}

func TestSetStock(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t)
	p := s.seed(t, "Chips", 1500, 3)
	path := "/api/products/" + uintPath(p.ID) + "/stock"

	rec := s.json(http.MethodPatch, path, echo.Map{"stock_quantity": 12}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.json(http.MethodPatch, path, echo.Map{"stock_quantity": -1}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.json(http.MethodPatch, path, echo.Map{"stock_quantity": 2.5}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.json(http.MethodPatch, path, echo.Map{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	balance, err := s.ledger.Balance(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, balance)
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t)

	rec := s.json(http.MethodPost, "/api/categories", echo.Map{"name": "Bakery"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	category := decode(t, rec)["category"].(map[string]any)
	assert.Equal(t, float64(model.DefaultDisplayOrder), category["display_order"])

	rec = s.json(http.MethodPost, "/api/categories", echo.Map{"name": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.json(http.MethodDelete, "/api/categories", echo.Map{"id": 999}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.json(http.MethodDelete, "/api/categories", echo.Map{"id": category["id"]}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["categories"])
}

func TestListProducts_SoftDeleteHidesProduct(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t)
	p := s.seed(t, "Chips", 1500, 3)

	rec := s.json(http.MethodDelete, "/api/products/"+uintPath(p.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(http.MethodGet, "/api/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["products"])

	rec = s.json(http.MethodGet, "/api/products/"+uintPath(p.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["is_active"])

	rec = s.json(http.MethodGet, "/api/products/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStorageFailureIsOpaque(t *testing.T) {
	s := newTestServer(t)
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := s.json(http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to retrieve categories", decode(t, rec)["error"])
}

func TestUnknownRouteEnvelope(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec), "error")
}

func uintPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
