package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// Sale is written once by checkout and never updated.
type Sale struct {
	ID            int64           `db:"id" json:"id"`
	CompanyID     int64           `db:"company_id" json:"company_id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerPhone *string         `db:"customer_phone" json:"customer_phone,omitempty"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax           decimal.Decimal `db:"tax" json:"tax"`
	Total         decimal.Decimal `db:"total" json:"total"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"payment_method"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// SaleLine keeps a snapshot of the product name and price at sale time.
type SaleLine struct {
	ID          int64           `db:"id" json:"id"`
	SaleID      int64           `db:"sale_id" json:"sale_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	Total       decimal.Decimal `db:"total" json:"total"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type Operator struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SaleDetail struct {
	Sale
	Items    []SaleLine `json:"items"`
	Operator *Operator  `json:"user,omitempty"`
}
