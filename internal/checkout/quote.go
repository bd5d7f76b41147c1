package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"goldrefinery/m/internal/policy"
)

type QuoteRequest struct {
	CompanyID *int64 `json:"company_id,omitempty"`
	Items     []Line `json:"items" validate:"required,min=1,dive"`
}

type QuoteLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	Available   int64           `json:"available"`
	InStock     bool            `json:"in_stock"`
}

// Quote is the cart summary shown before checkout. It reads without locking
// or writing anything.
type Quote struct {
	Items    []QuoteLine     `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	// Payable is false when any line exceeds the stock on hand.
	Payable bool `json:"payable"`
}

// Quote prices a cart with the same rate and rounding Checkout uses.
func (s *Service) Quote(ctx context.Context, caller policy.Subject, req QuoteRequest) (*Quote, error) {
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

	products, err := loadProducts(ctx, s.db, companyID, req.Items)
	if err != nil {
		return nil, err
	}

	lines, subtotal := price(products, req.Items)
	requested := make(map[int64]int64, len(products))
	q := &Quote{Items: make([]QuoteLine, len(lines)), Payable: true}
	for i, l := range lines {
		requested[l.ProductID] += l.Quantity
		stock := products[l.ProductID].Stock
		inStock := requested[l.ProductID] <= stock
		q.Items[i] = QuoteLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Price:       l.Price,
			Quantity:    l.Quantity,
			Total:       l.Total,
			Available:   stock,
			InStock:     inStock,
		}
		q.Payable = q.Payable && inStock
	}
	q.Subtotal = subtotal
	q.TaxRate = s.taxRate
	q.Tax = subtotal.Mul(s.taxRate).Round(2)
	q.Total = subtotal.Add(q.Tax)
	return q, nil
}
