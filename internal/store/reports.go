package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type SalesSummary struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Count    int64           `json:"sales_count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// SummarizeSales aggregates sales created in [from, to).
func SummarizeSales(ctx context.Context, e sqlx.ExtContext, companyID *int64, from, to time.Time) (SalesSummary, error) {
	where, args := scope([]string{"created_at >= ?", "created_at < ?"}, []any{from.UTC(), to.UTC()}, "company_id", companyID)
	var row struct {
		Count    int64           `db:"sales_count"`
		Subtotal decimal.Decimal `db:"subtotal"`
		Tax      decimal.Decimal `db:"tax"`
		Revenue  decimal.Decimal `db:"revenue"`
	}
	err := get(ctx, e, &row, `SELECT COUNT(*) AS sales_count,
		COALESCE(SUM(subtotal), 0) AS subtotal,
		COALESCE(SUM(tax), 0) AS tax,
		COALESCE(SUM(total), 0) AS revenue
		FROM sales`+whereClause(where), args...)
	if err != nil {
		return SalesSummary{}, err
	}
	return SalesSummary{
		From:     from,
		To:       to,
		Count:    row.Count,
		Subtotal: row.Subtotal.Round(2),
		Tax:      row.Tax.Round(2),
		Revenue:  row.Revenue.Round(2),
	}, nil
}
