package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pink-basket/internal/apperror"
	"pink-basket/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func image(name string) *ImageFile {
	return &ImageFile{Filename: name, Content: strings.NewReader("png-bytes")}
}

func TestCreateCategory_DefaultsDisplayOrder(t *testing.T) {
	f := newFixture(t)

	c, err := f.catalog.CreateCategory(context.Background(), "Bakery", nil)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultDisplayOrder, c.DisplayOrder)

	_, err = f.catalog.CreateCategory(context.Background(), " ", nil)
	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "name", validation.Field)
}

func TestCreateProduct_PriceRounding(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Bakery", 1)

	tests := []struct {
		price string
		want  int64
	}{
		{"20.00", 2000},
		{"19.999", 2000},
		{"0.015", 2},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			p, err := f.catalog.CreateProduct(context.Background(), ProductInput{
				Name: "Cake", Price: tt.price, CategoryID: cat.ID, StockQuantity: 3, Image: image("cake.png"),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.PriceCents)
			assert.True(t, p.IsActive)
			assert.Equal(t, "https://img.example.com/cake.png", p.ImageURL)
			assert.Equal(t, model.DefaultReorderLevel, p.ReorderLevel)
		})
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Bakery", 1)
	valid := ProductInput{Name: "Cake", Price: "10", CategoryID: cat.ID, StockQuantity: 1, Image: image("a.png")}

	tests := []struct {
		name  string
		edit  func(*ProductInput)
		field string
	}{
		{"name", func(in *ProductInput) { in.Name = "" }, "name"},
		{"price garbage", func(in *ProductInput) { in.Price = "ten" }, "price_cents"},
		{"price negative", func(in *ProductInput) { in.Price = "-1" }, "price_cents"},
		{"category missing", func(in *ProductInput) { in.CategoryID = 0 }, "category_id"},
		{"category unknown", func(in *ProductInput) { in.CategoryID = 999 }, "category_id"},
		{"stock negative", func(in *ProductInput) { in.StockQuantity = -1 }, "stock_quantity"},
		{"image missing", func(in *ProductInput) { in.Image = nil }, "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			_, err := f.catalog.CreateProduct(context.Background(), in)
			var validation *apperror.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestCreateProduct_UploadFailureAborts(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Bakery", 1)
	f.uploader.err = errors.New("host down")

	_, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		Name: "Cake", Price: "10", CategoryID: cat.ID, StockQuantity: 1, Image: image("a.png"),
	})
	var dep *apperror.DependencyError
	require.ErrorAs(t, err, &dep)
	assert.Equal(t, 502, apperror.HTTPStatus(err))

	all, err := f.products.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateProduct_ImageRetention(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Bakery", 1)

	p, err := f.catalog.CreateProduct(ctx, ProductInput{
		Name: "Cake", Price: "10", CategoryID: cat.ID, StockQuantity: 1, Image: image("a.png"),
	})
	require.NoError(t, err)

	updated, err := f.catalog.UpdateProduct(ctx, p.ID, ProductInput{
		Name: "Cake", Price: "12.50", CategoryID: cat.ID, StockQuantity: 9, ExistingImageURL: "https://img.example.com/kept.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/kept.png", updated.ImageURL)
	assert.Equal(t, int64(1250), updated.PriceCents)
	assert.Equal(t, 9, updated.StockQuantity)
	assert.Equal(t, 1, f.uploader.calls)

	updated, err = f.catalog.UpdateProduct(ctx, p.ID, ProductInput{
		Name: "Cake", Price: "12.50", CategoryID: cat.ID, StockQuantity: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/kept.png", updated.ImageURL)

	updated, err = f.catalog.UpdateProduct(ctx, p.ID, ProductInput{
		Name: "Cake", Price: "12.50", CategoryID: cat.ID, StockQuantity: 9, Image: image("b.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/b.png", updated.ImageURL)

	_, err = f.catalog.UpdateProduct(ctx, 999, ProductInput{Name: "x", Price: "1", CategoryID: cat.ID})
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestListProducts_StableAndInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sweets := f.category(t, "Sweets", 2)
	bakery := f.category(t, "Bakery", 1)
	f.product(t, "Muffin", 500, bakery.ID, 3)
	f.product(t, "Bread", 800, bakery.ID, 3)
	candy := f.product(t, "Candy", 100, sweets.ID, 3)

	first, err := f.catalog.ListProducts(ctx, nil)
	require.NoError(t, err)
	second, err := f.catalog.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, productNames(first), productNames(second))
	assert.Equal(t, []string{"Bread", "Muffin", "Candy"}, productNames(first))

	_, err = f.catalog.SetStock(ctx, candy.ID, 42)
	require.NoError(t, err)

	fresh, err := f.catalog.ListProducts(ctx, &sweets.ID)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, 42, fresh[0].StockQuantity)
}

func TestSetStock_RejectsNegative(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Bakery", 1)
	p := f.product(t, "Bread", 800, cat.ID, 3)

	_, err := f.catalog.SetStock(context.Background(), p.ID, -1)
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, 3, f.stock(t, p.ID))
}

func TestDeleteCategory_LeavesProductsUncategorised(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Seasonal", 1)
	p := f.product(t, "Pumpkin", 800, cat.ID, 3)

	require.NoError(t, f.catalog.DeleteCategory(ctx, cat.ID))

	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, f.catalog.DeleteCategory(ctx, cat.ID), &notFound)

	got, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Empty(t, got.CategoryName)
}

func productNames(products []model.Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}
