package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. Stock is never negative; checkout only
// ever decrements it through a conditional update.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	CompanyID   int64           `db:"company_id" json:"company_id"`
	Name        string          `db:"name" json:"name"`
	NameAr      *string         `db:"name_ar" json:"name_ar,omitempty"`
	SKU         string          `db:"sku" json:"sku"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int64           `db:"stock" json:"stock"`
	Unit        string          `db:"unit" json:"unit"`
	Description *string         `db:"description" json:"description,omitempty"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
