package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/retail_shop/internal/events"
	"github.com/Skotchmaster/retail_shop/internal/models"
	"github.com/Skotchmaster/retail_shop/internal/repo"
)

func mustCreate(t *testing.T, env *testEnv, name, category string, price float64, inStock bool, tags ...string) *models.Product {
	t.Helper()
	p, err := env.Catalog.CreateProduct(context.Background(), ProductInput{
		ProductName: &name,
		Category:    &category,
		Price:       &price,
		IsInStock:   &inStock,
		Tags:        &tags,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProduct_PublishesAndDefaults(t *testing.T) {
	env := newTestEnv(t)

	p := mustCreate(t, env, "Lamp", "home", 10, true, "red")
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Regexp(t, `^RET-`, p.ProductID)

	msg, ok := env.Events.Last()
	require.True(t, ok)
	assert.Equal(t, events.TopicProducts, msg.Topic)
	ev := msg.Event.(events.ProductEvent)
	assert.Equal(t, events.ProductCreated, ev.Type)
	assert.Equal(t, "Lamp", ev.Name)
}

func TestCreateProduct_ValidationAndConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Catalog.CreateProduct(ctx, ProductInput{ProductName: ptr("x")})
	require.ErrorIs(t, err, ErrValidation)
	assert.Len(t, FieldErrors(err), 2)

	in := ProductInput{ProductID: ptr("SKU-1"), ProductName: ptr("a"), Category: ptr("c"), Price: ptr(1.0)}
	_, err = env.Catalog.CreateProduct(ctx, in)
	require.NoError(t, err)
	_, err = env.Catalog.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := mustCreate(t, env, "Lamp", "home", 10, true, "red")

	got, err := env.Catalog.UpdateProduct(ctx, p.ID, ProductInput{Price: ptr(12.0), IsInStock: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.Price)
	assert.False(t, got.IsInStock)
	assert.Equal(t, "Lamp", got.ProductName)
	assert.Equal(t, []string{"red"}, got.Tags)

	_, err = env.Catalog.UpdateProduct(ctx, uuid.New(), ProductInput{Price: ptr(1.0)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.Catalog.UpdateProduct(ctx, p.ID, ProductInput{Price: ptr(-1.0)})
	assert.ErrorIs(t, err, ErrValidation)

	other := mustCreate(t, env, "Mug", "kitchen", 3, true)
	_, err = env.Catalog.UpdateProduct(ctx, other.ID, ProductInput{ProductID: ptr(p.ProductID)})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := mustCreate(t, env, "Lamp", "home", 10, true)

	require.NoError(t, env.Catalog.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, env.Catalog.DeleteProduct(ctx, p.ID), ErrNotFound)

	msg, _ := env.Events.Last()
	assert.Equal(t, events.ProductDeleted, msg.Event.(events.ProductEvent).Type)
}

func TestShop_FiltersAndUniverses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mustCreate(t, env, "Red Shirt", "apparel", 10, true, "red", "sale")
	mustCreate(t, env, "Red Hat", "apparel", 5, false, "red")
	mustCreate(t, env, "Blue Mug", "kitchen", 7, true, "sale")

	res, err := env.Catalog.Shop(ctx, ShopQuery{Tags: []string{"red", "sale"}, Sort: ShopSort("", "")})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Red Shirt", res.Products[0].ProductName)
	assert.Equal(t, []string{"apparel", "kitchen"}, res.Categories)
	assert.Equal(t, []string{"red", "sale"}, res.Tags)

	res, err = env.Catalog.Shop(ctx, ShopQuery{Search: "RED", InStockOnly: true, Sort: ShopSort("price", "desc")})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Red Shirt", res.Products[0].ProductName)

	res, err = env.Catalog.Shop(ctx, ShopQuery{Sort: ShopSort("price", "asc")})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 10}, []float64{res.Products[0].Price, res.Products[1].Price, res.Products[2].Price})
}

func TestShopSort(t *testing.T) {
	assert.Equal(t, repo.SortPriceAsc, ShopSort("price", ""))
	assert.Equal(t, repo.SortPriceDesc, ShopSort("price", "desc"))
	assert.Equal(t, repo.SortNameAsc, ShopSort("product-name", "asc"))
	assert.Equal(t, repo.SortNameDesc, ShopSort("product-name", "desc"))
	assert.Equal(t, repo.SortNewest, ShopSort("createdAt", "desc"))
}

func TestInventory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mustCreate(t, env, "a", "apparel", 10, true)
	mustCreate(t, env, "b", "apparel", 5, false)
	mustCreate(t, env, "c", "kitchen", 7, false)

	res, err := env.Catalog.Inventory(ctx, InventoryQuery{Category: "all", OutOfStock: true, Sort: repo.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, res.Products, 2)
	assert.Equal(t, "b", res.Products[0].ProductName)
	assert.Equal(t, "c", res.Products[1].ProductName)

	res, err = env.Catalog.Inventory(ctx, InventoryQuery{Category: "apparel"})
	require.NoError(t, err)
	assert.Len(t, res.Products, 2)
	assert.Equal(t, []string{"apparel", "kitchen"}, res.Categories)
}

func TestParsePageQuery(t *testing.T) {
	q, err := ParsePageQuery("", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PerPage)

	tests := []struct {
		page, perPage string
		field         string
	}{
		{page: "0", perPage: "10", field: "page"},
		{page: "1", perPage: "0", field: "perPage"},
		{page: "1", perPage: "101", field: "perPage"},
		{page: "x", perPage: "10", field: "page"},
		{page: "1000001", perPage: "10", field: "page"},
		{page: "1", perPage: "ten", field: "perPage"},
	}
	for _, tt := range tests {
		_, err := ParsePageQuery(tt.page, tt.perPage, "")
		require.ErrorIs(t, err, ErrValidation, "%s/%s", tt.page, tt.perPage)
		fe := FieldErrors(err)
		require.Len(t, fe, 1)
		assert.Equal(t, tt.field, fe[0].Field)
	}
}

func TestListPage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		mustCreate(t, env, "p", "cat", float64(i), true)
	}
	mustCreate(t, env, "other", "misc", 1, true)

	page, err := env.Catalog.ListPage(ctx, PageQuery{Page: 3, PerPage: 10, Category: "cat"})
	require.NoError(t, err)
	assert.EqualValues(t, 25, page.Total)
	assert.EqualValues(t, 3, page.TotalPages)
	assert.Len(t, page.Data, 5)

	_, err = env.Catalog.ListPage(ctx, PageQuery{Page: 0, PerPage: 10})
	assert.ErrorIs(t, err, ErrValidation)
}

type failingIndex struct{ indexed int }

func (f *failingIndex) Index(context.Context, models.Product) error { f.indexed++; return nil }
func (f *failingIndex) Delete(context.Context, uuid.UUID) error     { return nil }
func (f *failingIndex) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	return 0, nil, errors.New("cluster down")
}

func TestSearchProducts_FallsBackToDatabase(t *testing.T) {
	env := newTestEnv(t)
	idx := &failingIndex{}
	env.Catalog.Search = idx
	ctx := context.Background()

	mustCreate(t, env, "Desk Lamp", "home", 10, true)
	mustCreate(t, env, "Mug", "kitchen", 3, true)
	assert.Equal(t, 2, idx.indexed)

	page, err := env.Catalog.SearchProducts(ctx, "lamp", PageQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Desk Lamp", page.Data[0].ProductName)

	_, err = env.Catalog.SearchProducts(ctx, "", PageQuery{Page: 1, PerPage: 10})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d, err := env.Catalog.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, d.TotalProducts)
	assert.Zero(t, d.AvgPrice)

	mustCreate(t, env, "a", "apparel", 10, true)
	mustCreate(t, env, "b", "apparel", 20, false)
	mustCreate(t, env, "c", "kitchen", 30, false)

	d, err = env.Catalog.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, d.TotalProducts)
	assert.Equal(t, 2, d.UniqueCategories)
	assert.EqualValues(t, 2, d.OutOfStock)
	assert.InDelta(t, 20.0, d.AvgPrice, 1e-9)
	assert.Len(t, d.Recent, 3)
}
