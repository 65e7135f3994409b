package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"pink-basket/internal/model"
	"pink-basket/internal/repository"
	"pink-basket/internal/testutil"
	"pink-basket/pkg/cache"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeUploader struct {
	err   error
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.ReadAll(r)
	return "https://img.example.com/" + filename, nil
}

type notification struct {
	OrderID uint
	Hint    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(orderID uint, hint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{orderID, hint})
}

func (f *fakeNotifier) calls() []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification(nil), f.sent...)
}

type fixture struct {
	db         *gorm.DB
	categories *repository.CategoryRepository
	products   *repository.ProductRepository
	ledger     *repository.InventoryLedger
	orders     *repository.OrderRepository
	cache      *cache.Memory
	uploader   *fakeUploader
	notifier   *fakeNotifier
	catalog    *CatalogService
	orderSvc   *OrderService
	reports    *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	f := &fixture{
		db:         db,
		categories: repository.NewCategoryRepository(db),
		products:   repository.NewProductRepository(db),
		ledger:     repository.NewInventoryLedger(db),
		orders:     repository.NewOrderRepository(db),
		cache:      cache.NewMemory(time.Hour),
		uploader:   &fakeUploader{},
		notifier:   &fakeNotifier{},
	}
	t.Cleanup(func() { _ = f.cache.Close() })

	log := zap.NewNop()
	f.catalog = NewCatalogService(f.categories, f.products, f.ledger, f.uploader, f.cache, time.Minute, log)
	f.orderSvc = NewOrderService(db, f.products, f.ledger, f.orders, f.notifier, f.cache, log)
	f.reports = NewReportService(f.orders, f.products)
	return f
}

func (f *fixture) category(t *testing.T, name string, order int) *model.Category {
	t.Helper()
	c, err := f.catalog.CreateCategory(context.Background(), name, &order)
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, name string, priceCents int64, categoryID uint, stock int) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, PriceCents: priceCents, CategoryID: &categoryID, StockQuantity: stock}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	balance, err := f.ledger.Balance(context.Background(), id)
	require.NoError(t, err)
	return balance
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	orders, err := f.orders.List(context.Background())
	require.NoError(t, err)
	return len(orders)
}
