package service

import (
	"context"
	"sort"
	"strings"

	"pink-basket/internal/model"
	"pink-basket/internal/repository"
)

const topN = 5

// ClientSales aggregates orders per customer name.
type ClientSales struct {
	Name         string `json:"name"`
	Orders       int    `json:"orders"`
	RevenueCents int64  `json:"revenue_cents"`
}

// ProductSales aggregates snapshot lines per product name, or per category.
type ProductSales struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	RevenueCents int64  `json:"revenue_cents"`
}

type SalesReport struct {
	TotalRevenueCents int64          `json:"total_revenue_cents"`
	TotalOrders       int            `json:"total_orders"`
	ItemsSold         int            `json:"items_sold"`
	TopClients        []ClientSales  `json:"top_clients"`
	TopProducts       []ProductSales `json:"top_products"`
	Categories        []ProductSales `json:"categories"`
}

type InventoryItem struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	CategoryName    string `json:"category_name"`
	PriceCents      int64  `json:"price_cents"`
	StockQuantity   int    `json:"stock_quantity"`
	ReorderLevel    int    `json:"reorder_level"`
	Status          string `json:"status"`
	StockValueCents int64  `json:"stock_value_cents"`
}

type InventoryReport struct {
	Items                []InventoryItem `json:"items"`
	TotalStockValueCents int64           `json:"total_stock_value_cents"`
	LowStockCount        int             `json:"low_stock_count"`
}

// Recommendations lists related products and where they came from:
// "orders" for co-purchases, "category" for the fallback.
type Recommendations struct {
	Source   string          `json:"source"`
	Products []model.Product `json:"products"`
}

const recommendationLimit = 4

type ReportService struct {
	orders   *repository.OrderRepository
	products *repository.ProductRepository
}

func NewReportService(orders *repository.OrderRepository, products *repository.ProductRepository) *ReportService {
	return &ReportService{orders: orders, products: products}
}

// Sales folds every order into revenue totals. Categories come from the
// current product→category mapping, so reassigned products move their
// history with them.
func (s *ReportService) Sales(ctx context.Context) (*SalesReport, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	categoryOf := make(map[uint]string, len(products))
	for _, p := range products {
		categoryOf[p.ID] = p.CategoryName
	}

	report := &SalesReport{TotalOrders: len(orders)}
	clients := map[string]*ClientSales{}
	byProduct := map[string]*ProductSales{}
	byCategory := map[string]*ProductSales{}

	for _, o := range orders {
		report.TotalRevenueCents += o.TotalCents

		c := clients[o.CustomerName]
		if c == nil {
			c = &ClientSales{Name: o.CustomerName}
			clients[o.CustomerName] = c
		}
		c.Orders++
		c.RevenueCents += o.TotalCents

		for _, line := range o.Lines() {
			report.ItemsSold += line.Quantity
			addLine(byProduct, line.Name, line)

			category := categoryOf[line.ID]
			if category == "" {
				category = model.UncategorizedName
			}
			addLine(byCategory, category, line)
		}
	}

	report.TopClients = make([]ClientSales, 0, len(clients))
	for _, c := range clients {
		report.TopClients = append(report.TopClients, *c)
	}
	sort.Slice(report.TopClients, func(i, j int) bool {
		a, b := report.TopClients[i], report.TopClients[j]
		if a.RevenueCents != b.RevenueCents {
			return a.RevenueCents > b.RevenueCents
		}
		return a.Name < b.Name
	})
	if len(report.TopClients) > topN {
		report.TopClients = report.TopClients[:topN]
	}

	report.TopProducts = sortedSales(byProduct)
	if len(report.TopProducts) > topN {
		report.TopProducts = report.TopProducts[:topN]
	}
	report.Categories = sortedSales(byCategory)
	return report, nil
}

// Inventory lists active products with their stock label. A non-empty search
// keeps products whose name or SKU contains it, case-insensitively.
func (s *ReportService) Inventory(ctx context.Context, search string) (*InventoryReport, error) {
	products, err := s.products.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	report := &InventoryReport{Items: make([]InventoryItem, 0, len(products))}
	for _, p := range products {
		value := p.PriceCents * int64(p.StockQuantity)
		report.TotalStockValueCents += value
		if p.StockQuantity <= p.EffectiveReorderLevel() {
			report.LowStockCount++
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}

		category := p.CategoryName
		if category == "" {
			category = model.UncategorizedName
		}
		report.Items = append(report.Items, InventoryItem{
			ID:              p.ID,
			Name:            p.Name,
			SKU:             p.SKU,
			CategoryName:    category,
			PriceCents:      p.PriceCents,
			StockQuantity:   p.StockQuantity,
			ReorderLevel:    p.EffectiveReorderLevel(),
			Status:          p.StockStatus(),
			StockValueCents: value,
		})
	}
	return report, nil
}

// Recommend returns up to four active products bought together with
// productID, most frequent first. Without any co-purchase history it falls
// back to other active products from the same category.
func (s *ReportService) Recommend(ctx context.Context, productID uint) (*Recommendations, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[uint]int{}
	for _, o := range orders {
		lines := o.Lines()
		if !containsProduct(lines, productID) {
			continue
		}
		seen := map[uint]bool{}
		for _, line := range lines {
			if line.ID == productID || seen[line.ID] {
				continue
			}
			seen[line.ID] = true
			counts[line.ID]++
		}
	}

	if len(counts) > 0 {
		ids := make([]uint, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		candidates, err := s.products.ActiveByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if counts[a.ID] != counts[b.ID] {
				return counts[a.ID] > counts[b.ID]
			}
			return a.ID < b.ID
		})
		if len(candidates) > recommendationLimit {
			candidates = candidates[:recommendationLimit]
		}
		if len(candidates) > 0 {
			return &Recommendations{Source: "orders", Products: candidates}, nil
		}
	}

	fallback := make([]model.Product, 0)
	if product.CategoryID != nil {
		fallback, err = s.products.RandomActiveInCategory(ctx, *product.CategoryID, productID, recommendationLimit)
		if err != nil {
			return nil, err
		}
	}
	return &Recommendations{Source: "category", Products: fallback}, nil
}

func addLine(into map[string]*ProductSales, key string, line model.LineItem) {
	agg := into[key]
	if agg == nil {
		agg = &ProductSales{Name: key}
		into[key] = agg
	}
	agg.Quantity += line.Quantity
	agg.RevenueCents += line.SubtotalCents()
}

func sortedSales(m map[string]*ProductSales) []ProductSales {
	out := make([]ProductSales, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RevenueCents != out[j].RevenueCents {
			return out[i].RevenueCents > out[j].RevenueCents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func containsProduct(lines []model.LineItem, id uint) bool {
	for _, l := range lines {
		if l.ID == id {
			return true
		}
	}
	return false
}
