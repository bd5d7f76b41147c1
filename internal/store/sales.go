package store

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"goldrefinery/m/domain"
)

const saleColumns = `s.id, s.company_id, s.user_id, s.invoice_number, s.customer_name, s.customer_phone,
	s.subtotal, s.tax, s.total, s.payment_method, s.created_at, s.updated_at`

type saleRow struct {
	domain.Sale
	OperatorName sql.NullString `db:"operator_name"`
}

func InsertSale(ctx context.Context, e sqlx.ExtContext, s *domain.Sale) error {
	id, err := insert(ctx, e, `INSERT INTO sales (company_id, user_id, invoice_number, customer_name, customer_phone, subtotal, tax, total, payment_method, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CompanyID, s.UserID, s.InvoiceNumber, s.CustomerName, s.CustomerPhone, s.Subtotal, s.Tax, s.Total, s.PaymentMethod, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func InsertSaleLine(ctx context.Context, e sqlx.ExtContext, l *domain.SaleLine) error {
	id, err := insert(ctx, e, `INSERT INTO sale_items (sale_id, product_id, product_name, price, quantity, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.SaleID, l.ProductID, l.ProductName, l.Price, l.Quantity, l.Total, l.CreatedAt)
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

// ListSales returns one page of sales, newest first, with their lines and operator.
func ListSales(ctx context.Context, e sqlx.ExtContext, companyID *int64, page Page) ([]domain.SaleDetail, int64, error) {
	where, args := scope(nil, nil, "s.company_id", companyID)

	var total int64
	if err := get(ctx, e, &total, `SELECT COUNT(*) FROM sales s`+whereClause(where), args...); err != nil {
		return nil, 0, err
	}

	var rows []saleRow
	query := `SELECT ` + saleColumns + `, u.name AS operator_name
		FROM sales s
		LEFT JOIN users u ON u.id = s.user_id` + whereClause(where) + `
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT ? OFFSET ?`
	if err := sel(ctx, e, &rows, query, append(args, page.PerPage, page.Offset())...); err != nil {
		return nil, 0, err
	}
	details, err := attachLines(ctx, e, rows)
	return details, total, err
}

func GetSale(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) (*domain.SaleDetail, error) {
	where, args := scope([]string{"s.id = ?"}, []any{id}, "s.company_id", companyID)
	var row saleRow
	if err := get(ctx, e, &row, `SELECT `+saleColumns+`, u.name AS operator_name
		FROM sales s LEFT JOIN users u ON u.id = s.user_id`+whereClause(where), args...); err != nil {
		return nil, err
	}
	details, err := attachLines(ctx, e, []saleRow{row})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func attachLines(ctx context.Context, e sqlx.ExtContext, rows []saleRow) ([]domain.SaleDetail, error) {
	details := make([]domain.SaleDetail, len(rows))
	if len(rows) == 0 {
		return details, nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	query, args, err := sqlx.In(`SELECT id, sale_id, product_id, product_name, price, quantity, total, created_at
		FROM sale_items WHERE sale_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	var lines []domain.SaleLine
	if err := sel(ctx, e, &lines, query, args...); err != nil {
		return nil, err
	}
	bySale := make(map[int64][]domain.SaleLine)
	for _, l := range lines {
		bySale[l.SaleID] = append(bySale[l.SaleID], l)
	}

	for i, row := range rows {
		items := bySale[row.ID]
		if items == nil {
			items = []domain.SaleLine{}
		}
		details[i] = domain.SaleDetail{Sale: row.Sale, Items: items}
		if row.OperatorName.Valid {
			details[i].Operator = &domain.Operator{ID: row.UserID, Name: row.OperatorName.String}
		}
	}
	return details, nil
}

func CountSales(ctx context.Context, e sqlx.ExtContext) (int64, error) {
	var n int64
	err := get(ctx, e, &n, `SELECT COUNT(*) FROM sales`)
	return n, err
}
