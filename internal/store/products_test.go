package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/store"
	"goldrefinery/m/internal/testdb"
)

func TestDecrementStockGuard(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	company := testdb.Company(t, db, "acme")
	product := testdb.Product(t, db, company, "RING-18K", "850.00", 3)

	ok, err := store.DecrementStock(ctx, db, product, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 1, testdb.Stock(t, db, product))

	ok, err = store.DecrementStock(ctx, db, product, 2)
	require.NoError(t, err)
	assert.False(t, ok, "guard must reject a decrement below zero")
	assert.EqualValues(t, 1, testdb.Stock(t, db, product))

	ok, err = store.DecrementStock(ctx, db, product, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 0, testdb.Stock(t, db, product))
}

func TestGetProductTenantScope(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	a := testdb.Company(t, db, "a")
	b := testdb.Company(t, db, "b")
	product := testdb.Product(t, db, a, "BAR-24K", "6500.00", 10)

	p, err := store.GetProduct(ctx, db, &a, product)
	require.NoError(t, err)
	assert.Equal(t, "BAR-24K", p.SKU)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("6500")))

	_, err = store.GetProduct(ctx, db, &b, product)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = store.GetProduct(ctx, db, nil, product)
	assert.NoError(t, err)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	company := testdb.Company(t, db, "acme")

	p := &domain.Product{CompanyID: company, Name: "Necklace", SKU: "NECK-22K", Price: decimal.NewFromInt(3200), Stock: 5, Unit: "piece", IsActive: true}
	require.NoError(t, store.CreateProduct(ctx, db, p))
	assert.NotZero(t, p.ID)

	dup := *p
	dup.ID = 0
	assert.ErrorIs(t, store.CreateProduct(ctx, db, &dup), store.ErrConflict)
}

func TestListProductsFilters(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	a := testdb.Company(t, db, "a")
	b := testdb.Company(t, db, "b")
	testdb.Product(t, db, a, "A-1", "1.00", 1)
	testdb.Product(t, db, a, "A-2", "2.00", 1)
	testdb.Product(t, db, b, "B-1", "3.00", 1)

	products, err := store.ListProducts(ctx, db, store.ProductFilter{CompanyID: &a, ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = store.ListProducts(ctx, db, store.ProductFilter{Query: "b-1"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, b, products[0].CompanyID)
}

func TestLowStockProducts(t *testing.T) {
	db := testdb.New(t)
	company := testdb.Company(t, db, "acme")
	testdb.Product(t, db, company, "LOW", "1.00", 2)
	testdb.Product(t, db, company, "HIGH", "1.00", 50)

	products, err := store.LowStockProducts(context.Background(), db, 5)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "LOW", products[0].SKU)
}
