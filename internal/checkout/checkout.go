// Package checkout records point-of-sale transactions: it validates the cart
// against stock, prices it, reserves an invoice number, and writes the sale,
// its lines, and the stock decrements in one database transaction.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/metrics"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

type Line struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int64 `json:"quantity" validate:"required,min=1"`
}

type Request struct {
	CompanyID     *int64               `json:"company_id,omitempty"`
	CustomerName  string               `json:"customer_name" validate:"required,max=255"`
	CustomerPhone *string              `json:"customer_phone,omitempty" validate:"omitempty,max=20"`
	PaymentMethod domain.PaymentMethod `json:"payment_method" validate:"required,oneof=cash card transfer"`
	Items         []Line               `json:"items" validate:"required,min=1,dive"`
}

type Options struct {
	TaxRate       decimal.Decimal
	InvoicePrefix string
	Sequence      store.Sequence
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
	// Now defaults to time.Now; the invoice date is taken from it.
	Now func() time.Time
}

type Service struct {
	db      *sqlx.DB
	taxRate decimal.Decimal
	prefix  string
	seq     store.Sequence
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(db *sqlx.DB, opts Options) *Service {
	s := &Service{
		db:      db,
		taxRate: opts.TaxRate,
		prefix:  opts.InvoicePrefix,
		seq:     opts.Sequence,
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if s.prefix == "" {
		s.prefix = "INV"
	}
	if s.seq == nil {
		s.seq = store.CounterSequence{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) TaxRate() decimal.Decimal { return s.taxRate }

// Checkout records a sale for the caller. Either the sale, every line, and
// every stock decrement are committed together, or nothing is.
func (s *Service) Checkout(ctx context.Context, caller policy.Subject, req Request) (*domain.SaleDetail, error) {
	start := time.Now()
	sale, err := s.checkout(ctx, caller, req)
	s.observe(start, err)
	if err != nil {
		s.log.Warn("checkout rejected",
			zap.Int64("user_id", caller.UserID),
			zap.String("customer", req.CustomerName),
			zap.Error(err))
		return nil, err
	}
	s.log.Info("sale recorded",
		zap.Int64("company_id", sale.CompanyID),
		zap.Int64("user_id", sale.UserID),
		zap.String("invoice", sale.InvoiceNumber),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.Int("lines", len(sale.Items)))
	return sale, nil
}

func (s *Service) checkout(ctx context.Context, caller policy.Subject, req Request) (*domain.SaleDetail, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	companyID, err := s.tenant(caller, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.RecordSale, &companyID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback()

	products, err := loadProducts(ctx, tx, companyID, req.Items)
	if err != nil {
		return nil, err
	}
	if err := checkStock(products, req.Items); err != nil {
		return nil, err
	}

	now := s.now()
	lines, subtotal := price(products, req.Items)
	tax := subtotal.Mul(s.taxRate).Round(2)

	n, err := s.seq.Next(ctx, tx)
	if err != nil {
		return nil, err
	}

	sale := domain.Sale{
		CompanyID:     companyID,
		UserID:        caller.UserID,
		InvoiceNumber: store.FormatInvoiceNumber(s.prefix, now, n),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if err := store.InsertSale(ctx, tx, &sale); err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	for i := range lines {
		lines[i].SaleID = sale.ID
		lines[i].CreatedAt = sale.CreatedAt
		if err := store.InsertSaleLine(ctx, tx, &lines[i]); err != nil {
			return nil, fmt.Errorf("insert sale line: %w", err)
		}
		ok, err := store.DecrementStock(ctx, tx, lines[i].ProductID, lines[i].Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if !ok {
			// Another checkout took the stock after the pre-check.
			p := products[lines[i].ProductID]
			return nil, &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Requested: lines[i].Quantity}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return &domain.SaleDetail{Sale: sale, Items: lines}, nil
}

// tenant resolves which company the sale belongs to. Admins have no company of
// their own and must name one.
func (s *Service) tenant(caller policy.Subject, requested *int64) (int64, error) {
	if caller.IsAdmin() {
		if requested == nil || *requested <= 0 {
			return 0, invalid("company_id", "is required")
		}
		return *requested, nil
	}
	if caller.CompanyID == nil {
		return 0, policy.ErrForbidden
	}
	return *caller.CompanyID, nil
}

// loadProducts fetches every product in submitted order, failing on the first
// one that does not exist in the tenant.
func loadProducts(ctx context.Context, e sqlx.ExtContext, companyID int64, items []Line) (map[int64]*domain.Product, error) {
	products := make(map[int64]*domain.Product, len(items))
	for _, item := range items {
		if _, ok := products[item.ProductID]; ok {
			continue
		}
		p, err := store.GetProduct(ctx, e, &companyID, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, item.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("load product %d: %w", item.ProductID, err)
		}
		products[p.ID] = p
	}
	return products, nil
}

// checkStock compares the total requested per product, so a product listed on
// two lines cannot pass twice against the same stock.
func checkStock(products map[int64]*domain.Product, items []Line) error {
	requested := make(map[int64]int64, len(products))
	for _, item := range items {
		requested[item.ProductID] += item.Quantity
		p := products[item.ProductID]
		if requested[item.ProductID] > p.Stock {
			return &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Requested: requested[item.ProductID], Available: p.Stock}
		}
	}
	return nil
}

// price builds line snapshots from the stored prices and sums the subtotal.
func price(products map[int64]*domain.Product, items []Line) ([]domain.SaleLine, decimal.Decimal) {
	lines := make([]domain.SaleLine, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		p := products[item.ProductID]
		total := p.Price.Mul(decimal.NewFromInt(item.Quantity)).Round(2)
		lines = append(lines, domain.SaleLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    item.Quantity,
			Total:       total,
		})
		subtotal = subtotal.Add(total)
	}
	return lines, subtotal
}

func (s *Service) observe(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveCheckout(Result(err), time.Since(start))
}

// Result labels a checkout outcome for metrics.
func Result(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, policy.ErrForbidden):
		return "forbidden"
	}
	return "error"
}
