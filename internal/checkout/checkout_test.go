package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/checkout"
	"goldrefinery/m/internal/metrics"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
	"goldrefinery/m/internal/testdb"
)

type fixture struct {
	db       *sqlx.DB
	svc      *checkout.Service
	metrics  *metrics.Metrics
	company  int64
	salesman policy.Subject
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testdb.New(t)
	company := testdb.Company(t, db, "golden")
	user := testdb.User(t, db, company, "sam", string(domain.RoleSalesman))
	m := metrics.New()
	svc := checkout.NewService(db, checkout.Options{
		TaxRate:       decimal.RequireFromString("0.05"),
		InvoicePrefix: "INV",
		Metrics:       m,
		Now:           func() time.Time { return time.Date(2024, 3, 7, 10, 30, 0, 0, time.UTC) },
	})
	return fixture{
		db:       db,
		svc:      svc,
		metrics:  m,
		company:  company,
		salesman: policy.Subject{UserID: user, Role: domain.RoleSalesman, CompanyID: &company},
	}
}

func cart(lines ...checkout.Line) checkout.Request {
	return checkout.Request{CustomerName: "Walk-in", PaymentMethod: domain.PaymentCash, Items: lines}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCheckoutTotalsAndStock(t *testing.T) {
	f := setup(t)
	a := testdb.Product(t, f.db, f.company, "A", "100.00", 10)
	b := testdb.Product(t, f.db, f.company, "B", "50.00", 1)

	sale, err := f.svc.Checkout(context.Background(), f.salesman, cart(
		checkout.Line{ProductID: a, Quantity: 2},
		checkout.Line{ProductID: b, Quantity: 1},
	))
	require.NoError(t, err)

	assert.True(t, sale.Subtotal.Equal(dec("250")), "subtotal %s", sale.Subtotal)
	assert.True(t, sale.Tax.Equal(dec("12.5")), "tax %s", sale.Tax)
	assert.True(t, sale.Total.Equal(dec("262.5")), "total %s", sale.Total)
	assert.Equal(t, "INV-20240307-00001", sale.InvoiceNumber)
	assert.Equal(t, f.company, sale.CompanyID)
	assert.Equal(t, f.salesman.UserID, sale.UserID)
	require.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].Total.Equal(dec("200")))
	assert.Equal(t, "Product A", sale.Items[0].ProductName)

	assert.EqualValues(t, 8, testdb.Stock(t, f.db, a))
	assert.EqualValues(t, 0, testdb.Stock(t, f.db, b))
	assert.EqualValues(t, 1, testdb.Count(t, f.db, "sales"))
	assert.EqualValues(t, 2, testdb.Count(t, f.db, "sale_items"))
}

func TestCheckoutRejectsOutOfStock(t *testing.T) {
	f := setup(t)
	c := testdb.Product(t, f.db, f.company, "C", "10.00", 0)

	_, err := f.svc.Checkout(context.Background(), f.salesman, cart(checkout.Line{ProductID: c, Quantity: 1}))
	require.ErrorIs(t, err, checkout.ErrInsufficientStock)
	assert.EqualError(t, err, "Insufficient stock for Product C")
	assert.EqualValues(t, 0, testdb.Count(t, f.db, "sales"))
}

func TestCheckoutIsAllOrNothing(t *testing.T) {
	f := setup(t)
	ok := testdb.Product(t, f.db, f.company, "OK", "10.00", 5)
	short := testdb.Product(t, f.db, f.company, "SHORT", "10.00", 1)

	_, err := f.svc.Checkout(context.Background(), f.salesman, cart(
		checkout.Line{ProductID: ok, Quantity: 2},
		checkout.Line{ProductID: short, Quantity: 3},
	))
	var stockErr *checkout.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, short, stockErr.ProductID)

	assert.EqualValues(t, 5, testdb.Stock(t, f.db, ok))
	assert.EqualValues(t, 1, testdb.Stock(t, f.db, short))
	assert.EqualValues(t, 0, testdb.Count(t, f.db, "sales"))
	assert.EqualValues(t, 0, testdb.Count(t, f.db, "sale_items"))
}

// drainingSequence empties a product's stock inside the checkout transaction,
// after the pre-check has passed, then reserves a number as usual.
type drainingSequence struct {
	productID int64
}

func (d drainingSequence) Next(ctx context.Context, e sqlx.ExtContext) (int64, error) {
	if _, err := e.ExecContext(ctx, e.Rebind(`UPDATE products SET stock = 0 WHERE id = ?`), d.productID); err != nil {
		return 0, err
	}
	return store.CounterSequence{}.Next(ctx, e)
}

func TestCheckoutRollsBackWhenStockGuardFails(t *testing.T) {
	f := setup(t)
	a := testdb.Product(t, f.db, f.company, "A", "100.00", 5)
	b := testdb.Product(t, f.db, f.company, "B", "50.00", 5)
	svc := checkout.NewService(f.db, checkout.Options{
		TaxRate:       dec("0.05"),
		InvoicePrefix: "INV",
		Sequence:      drainingSequence{productID: b},
	})

	_, err := svc.Checkout(context.Background(), f.salesman, cart(
		checkout.Line{ProductID: a, Quantity: 2},
		checkout.Line{ProductID: b, Quantity: 1},
	))
	require.ErrorIs(t, err, checkout.ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock for Product B", err.Error())

	assert.EqualValues(t, 0, testdb.Count(t, f.db, "sales"))
	assert.EqualValues(t, 0, testdb.Count(t, f.db, "sale_items"))
	assert.EqualValues(t, 5, testdb.Stock(t, f.db, a))
	assert.EqualValues(t, 5, testdb.Stock(t, f.db, b))

	var counter int64
	require.NoError(t, f.db.Get(&counter, `SELECT value FROM invoice_sequences WHERE name = 'sales'`))
	assert.EqualValues(t, 0, counter)
}

func TestCheckoutSumsRepeatedProduct(t *testing.T) {
	f := setup(t)
	p := testdb.Product(t, f.db, f.company, "P", "10.00", 3)

	_, err := f.svc.Checkout(context.Background(), f.salesman, cart(
		checkout.Line{ProductID: p, Quantity: 2},
		checkout.Line{ProductID: p, Quantity: 2},
	))
	require.ErrorIs(t, err, checkout.ErrInsufficientStock)
	assert.EqualValues(t, 3, testdb.Stock(t, f.db, p))
}

func TestCheckoutUnknownProduct(t *testing.T) {
	f := setup(t)
	p := testdb.Product(t, f.db, f.company, "P", "10.00", 3)

	_, err := f.svc.Checkout(context.Background(), f.salesman, cart(
		checkout.Line{ProductID: p, Quantity: 1},
		checkout.Line{ProductID: 9999, Quantity: 1},
	))
	require.ErrorIs(t, err, checkout.ErrProductNotFound)
	assert.EqualValues(t, 3, testdb.Stock(t, f.db, p))
	assert.EqualValues(t, 0, testdb.Count(t, f.db, "sales"))
}

func TestCheckoutOtherTenantProductIsNotFound(t *testing.T) {
	f := setup(t)
	other := testdb.Company(t, f.db, "rival")
	p := testdb.Product(t, f.db, other, "RIVAL", "10.00", 3)

	_, err := f.svc.Checkout(context.Background(), f.salesman, cart(checkout.Line{ProductID: p, Quantity: 1}))
	require.ErrorIs(t, err, checkout.ErrProductNotFound)
	assert.EqualValues(t, 3, testdb.Stock(t, f.db, p))
}

func TestCheckoutValidation(t *testing.T) {
	f := setup(t)
	p := testdb.Product(t, f.db, f.company, "P", "10.00", 3)

	tests := []struct {
		name  string
		req   checkout.Request
		field string
	}{
		{"empty cart", checkout.Request{CustomerName: "x", PaymentMethod: domain.PaymentCash}, "items"},
		{"missing customer", checkout.Request{PaymentMethod: domain.PaymentCard, Items: []checkout.Line{{ProductID: p, Quantity: 1}}}, "customer_name"},
		{"bad payment method", checkout.Request{CustomerName: "x", PaymentMethod: "cheque", Items: []checkout.Line{{ProductID: p, Quantity: 1}}}, "payment_method"},
		{"zero quantity", checkout.Request{CustomerName: "x", PaymentMethod: domain.PaymentCash, Items: []checkout.Line{{ProductID: p, Quantity: 0}}}, "items[0].quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Checkout(context.Background(), f.salesman, tt.req)
			var verr *checkout.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
	assert.EqualValues(t, 3, testdb.Stock(t, f.db, p))
}

func TestCheckoutAdminMustNameCompany(t *testing.T) {
	f := setup(t)
	p := testdb.Product(t, f.db, f.company, "P", "10.00", 3)
	admin := policy.Subject{UserID: testdb.User(t, f.db, 0, "root", string(domain.RoleAdmin)), Role: domain.RoleAdmin}

	_, err := f.svc.Checkout(context.Background(), admin, cart(checkout.Line{ProductID: p, Quantity: 1}))
	var verr *checkout.ValidationError
	require.True(t, errors.As(err, &verr))

	req := cart(checkout.Line{ProductID: p, Quantity: 1})
	req.CompanyID = &f.company
	sale, err := f.svc.Checkout(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, f.company, sale.CompanyID)
}

func TestCheckoutIgnoresRequestedCompanyForStaff(t *testing.T) {
	f := setup(t)
	other := testdb.Company(t, f.db, "rival")
	p := testdb.Product(t, f.db, f.company, "P", "10.00", 3)

	req := cart(checkout.Line{ProductID: p, Quantity: 1})
	req.CompanyID = &other
	sale, err := f.svc.Checkout(context.Background(), f.salesman, req)
	require.NoError(t, err)
	assert.Equal(t, f.company, sale.CompanyID)
}

func TestLineSnapshotSurvivesPriceChange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := testdb.Product(t, f.db, f.company, "RING", "100.00", 5)

	sale, err := f.svc.Checkout(ctx, f.salesman, cart(checkout.Line{ProductID: id, Quantity: 1}))
	require.NoError(t, err)

	p, err := store.GetProduct(ctx, f.db, nil, id)
	require.NoError(t, err)
	p.Name = "Renamed ring"
	p.Price = dec("999.99")
	require.NoError(t, store.UpdateProduct(ctx, f.db, p))

	stored, err := f.svc.GetSale(ctx, f.salesman, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Product RING", stored.Items[0].ProductName)
	assert.True(t, stored.Items[0].Price.Equal(dec("100")))
	require.NotNil(t, stored.Operator)
	assert.Equal(t, "sam", stored.Operator.Name)
}

func TestConcurrentCheckoutsForLastUnit(t *testing.T) {
	f := setup(t)
	d := testdb.Product(t, f.db, f.company, "D", "10.00", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Checkout(context.Background(), f.salesman, cart(checkout.Line{ProductID: d, Quantity: 1}))
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, checkout.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.EqualValues(t, 0, testdb.Stock(t, f.db, d))
	assert.EqualValues(t, 1, testdb.Count(t, f.db, "sales"))
}

func TestConcurrentCheckoutsGetUniqueInvoices(t *testing.T) {
	f := setup(t)
	p := testdb.Product(t, f.db, f.company, "P", "1.00", 100)

	const n = 20
	var wg sync.WaitGroup
	invoices := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sale, err := f.svc.Checkout(context.Background(), f.salesman, cart(checkout.Line{ProductID: p, Quantity: 1}))
			if assert.NoError(t, err) {
				invoices[i] = sale.InvoiceNumber
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, inv := range invoices {
		assert.False(t, seen[inv], "duplicate invoice %s", inv)
		seen[inv] = true
	}
	assert.EqualValues(t, 100-n, testdb.Stock(t, f.db, p))
}

func TestQuoteUsesCheckoutRate(t *testing.T) {
	f := setup(t)
	a := testdb.Product(t, f.db, f.company, "A", "100.00", 10)
	b := testdb.Product(t, f.db, f.company, "B", "50.00", 0)

	q, err := f.svc.Quote(context.Background(), f.salesman, checkout.QuoteRequest{Items: []checkout.Line{
		{ProductID: a, Quantity: 2},
		{ProductID: b, Quantity: 1},
	}})
	require.NoError(t, err)
	assert.True(t, q.Tax.Equal(dec("12.5")))
	assert.True(t, q.Total.Equal(dec("262.5")))
	assert.True(t, q.TaxRate.Equal(f.svc.TaxRate()))
	assert.False(t, q.Payable)
	assert.True(t, q.Items[0].InStock)
	assert.False(t, q.Items[1].InStock)
	assert.EqualValues(t, 0, testdb.Count(t, f.db, "sales"))
}

func TestListSalesNewestFirstAndScoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := testdb.Product(t, f.db, f.company, "P", "5.00", 10)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Checkout(ctx, f.salesman, cart(checkout.Line{ProductID: p, Quantity: 1}))
		require.NoError(t, err)
	}

	other := testdb.Company(t, f.db, "rival")
	rivalUser := testdb.User(t, f.db, other, "rita", string(domain.RoleSalesman))
	rival := policy.Subject{UserID: rivalUser, Role: domain.RoleSalesman, CompanyID: &other}

	sales, total, err := f.svc.ListSales(ctx, f.salesman, store.Page{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, sales, 2)
	assert.Equal(t, "INV-20240307-00003", sales[0].InvoiceNumber)
	assert.Equal(t, "INV-20240307-00002", sales[1].InvoiceNumber)
	assert.Len(t, sales[0].Items, 1)

	sales, total, err = f.svc.ListSales(ctx, rival, store.Page{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, sales)
}

func TestCheckoutMetrics(t *testing.T) {
	f := setup(t)
	p := testdb.Product(t, f.db, f.company, "P", "5.00", 1)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, f.salesman, cart(checkout.Line{ProductID: p, Quantity: 1}))
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, f.salesman, cart(checkout.Line{ProductID: p, Quantity: 1}))
	require.Error(t, err)

	assert.Equal(t, "insufficient_stock", checkout.Result(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Checkouts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Checkouts.WithLabelValues("insufficient_stock")))
}
