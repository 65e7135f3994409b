package prometheus

import (
	"pink-basket/pkg/config"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Catalog metrics
	CatalogOperationsCounter *prometheus.CounterVec

	// Inventory metrics
	ProductInventoryGauge *prometheus.GaugeVec
	StockDecrementCounter *prometheus.CounterVec

	// Order metrics
	OrdersPlacedCounter          prometheus.Counter
	OrderPlacementFailureCounter *prometheus.CounterVec
	OrderValueHistogram          prometheus.Histogram

	// Notification metrics
	NotificationsCounter *prometheus.CounterVec

	// Admin session metrics
	AdminLoginCounter *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics registers the Prometheus metrics using the configured prefix.
// Later calls are no-ops so tests can build several servers in one process.
func InitMetrics(cfg *config.Config) {
	initOnce.Do(func() {
		register(cfg.Metrics.Prefix)
	})
}

func register(prefix string) {
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_catalog_operations_total",
			Help: "Total number of catalog write operations",
		},
		[]string{"entity", "operation"},
	)

	ProductInventoryGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_product_inventory",
			Help: "Last observed stock quantity per product",
		},
		[]string{"product_id"},
	)

	StockDecrementCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_decrement_total",
			Help: "Conditional stock decrements by result",
		},
		[]string{"result"},
	)

	OrdersPlacedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_orders_placed_total",
			Help: "Total number of committed orders",
		},
	)

	OrderPlacementFailureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_placement_failures_total",
			Help: "Rejected or failed order placements by reason",
		},
		[]string{"reason"},
	)

	OrderValueHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_order_value_cents",
			Help:    "Distribution of committed order totals in cents",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
		},
	)

	NotificationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_notifications_total",
			Help: "Order confirmation notifications by result",
		},
		[]string{"result"},
	)

	AdminLoginCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_admin_logins_total",
			Help: "Admin login attempts by result",
		},
		[]string{"result"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// RecordCatalogOperation increments the counter for catalog writes
func RecordCatalogOperation(entity, operation string) {
	if CatalogOperationsCounter == nil {
		return
	}
	CatalogOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// UpdateProductInventory updates the gauge for product inventory
func UpdateProductInventory(productID uint, count int) {
	if ProductInventoryGauge == nil {
		return
	}
	ProductInventoryGauge.WithLabelValues(strconv.FormatUint(uint64(productID), 10)).Set(float64(count))
}

// RecordStockDecrement counts one conditional decrement attempt
func RecordStockDecrement(ok bool) {
	if StockDecrementCounter == nil {
		return
	}
	result := "claimed"
	if !ok {
		result = "insufficient"
	}
	StockDecrementCounter.WithLabelValues(result).Inc()
}

// RecordOrderPlaced counts a committed order and its value
func RecordOrderPlaced(totalCents int64) {
	if OrdersPlacedCounter == nil {
		return
	}
	OrdersPlacedCounter.Inc()
	OrderValueHistogram.Observe(float64(totalCents))
}

// RecordOrderFailure counts a rejected placement
func RecordOrderFailure(reason string) {
	if OrderPlacementFailureCounter == nil {
		return
	}
	OrderPlacementFailureCounter.WithLabelValues(reason).Inc()
}

// RecordNotification counts a confirmation attempt
func RecordNotification(result string) {
	if NotificationsCounter == nil {
		return
	}
	NotificationsCounter.WithLabelValues(result).Inc()
}

// RecordAdminLogin counts an admin login attempt
func RecordAdminLogin(result string) {
	if AdminLoginCounter == nil {
		return
	}
	AdminLoginCounter.WithLabelValues(result).Inc()
}
