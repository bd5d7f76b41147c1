package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/store"
	"goldrefinery/m/internal/testdb"
)

func TestSalesListAndSummary(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	company := testdb.Company(t, db, "acme")
	other := testdb.Company(t, db, "other")
	user := testdb.User(t, db, company, "sam", string(domain.RoleSalesman))
	product := testdb.Product(t, db, company, "RING", "100.00", 10)

	day := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{day, day.Add(2 * time.Hour), day.AddDate(0, 0, 1)} {
		sale := domain.Sale{
			CompanyID:     company,
			UserID:        user,
			InvoiceNumber: store.FormatInvoiceNumber("INV", at, int64(i+1)),
			CustomerName:  "Walk-in",
			Subtotal:      decimal.NewFromInt(100),
			Tax:           decimal.NewFromInt(5),
			Total:         decimal.NewFromInt(105),
			PaymentMethod: domain.PaymentCash,
			CreatedAt:     at,
			UpdatedAt:     at,
		}
		require.NoError(t, store.InsertSale(ctx, db, &sale))
		require.NoError(t, store.InsertSaleLine(ctx, db, &domain.SaleLine{
			SaleID: sale.ID, ProductID: product, ProductName: "Ring",
			Price: decimal.NewFromInt(100), Quantity: 1, Total: decimal.NewFromInt(100), CreatedAt: at,
		}))
	}

	sales, total, err := store.ListSales(ctx, db, &company, store.Page{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, sales, 3)
	assert.Equal(t, "INV-20240308-00003", sales[0].InvoiceNumber)
	assert.Len(t, sales[0].Items, 1)

	_, total, err = store.ListSales(ctx, db, &other, store.Page{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Zero(t, total)

	summary, err := store.SummarizeSales(ctx, db, &company, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Count)
	assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(210)), summary.Revenue.String())
	assert.True(t, summary.Tax.Equal(decimal.NewFromInt(10)))

	duplicate := domain.Sale{CompanyID: company, UserID: user, InvoiceNumber: "INV-20240307-00001", CustomerName: "x",
		PaymentMethod: domain.PaymentCash, CreatedAt: day, UpdatedAt: day}
	assert.ErrorIs(t, store.InsertSale(ctx, db, &duplicate), store.ErrConflict)
}
