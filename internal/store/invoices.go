package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Sequence hands out the ordinal used in invoice numbers. Next must run inside
// the checkout transaction so the reservation commits or rolls back with the sale.
type Sequence interface {
	Next(ctx context.Context, e sqlx.ExtContext) (int64, error)
}

// CounterSequence reserves numbers from a single row in invoice_sequences.
// The upsert takes a row lock, so concurrent checkouts queue on it and never
// see the same value.
type CounterSequence struct {
	Name string
}

func (s CounterSequence) Next(ctx context.Context, e sqlx.ExtContext) (int64, error) {
	name := s.Name
	if name == "" {
		name = "sales"
	}
	var n int64
	err := e.QueryRowxContext(ctx, e.Rebind(`INSERT INTO invoice_sequences (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = invoice_sequences.value + 1
		RETURNING value`), name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("reserve invoice number: %w", err)
	}
	return n, nil
}

// CountSequence derives the ordinal from the number of existing sales. Two
// checkouts that count before either commits get the same value; the unique
// index on invoice_number then fails the later insert. Kept for installations
// that need numbering to track the sales table exactly.
type CountSequence struct{}

func (CountSequence) Next(ctx context.Context, e sqlx.ExtContext) (int64, error) {
	n, err := CountSales(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n + 1, nil
}

// FormatInvoiceNumber renders PREFIX-YYYYMMDD-NNNNN.
func FormatInvoiceNumber(prefix string, day time.Time, n int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, day.Format("20060102"), n)
}
