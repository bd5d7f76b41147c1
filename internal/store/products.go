package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"goldrefinery/m/domain"
)

const productColumns = `id, company_id, name, name_ar, sku, price, stock, unit, description, is_active, created_at, updated_at`

// GetProduct loads a product inside the given tenant, or any tenant when companyID is nil.
func GetProduct(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) (*domain.Product, error) {
	where, args := scope([]string{"id = ?"}, []any{id}, "company_id", companyID)
	var p domain.Product
	if err := get(ctx, e, &p, `SELECT `+productColumns+` FROM products`+whereClause(where), args...); err != nil {
		return nil, err
	}
	return &p, nil
}

type ProductFilter struct {
	CompanyID  *int64
	ActiveOnly bool
	Query      string
}

func ListProducts(ctx context.Context, e sqlx.ExtContext, f ProductFilter) ([]domain.Product, error) {
	where, args := scope(nil, nil, "company_id", f.CompanyID)
	if f.ActiveOnly {
		where = append(where, "is_active = ?")
		args = append(args, true)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)")
		args = append(args, like, like)
	}
	products := []domain.Product{}
	err := sel(ctx, e, &products, `SELECT `+productColumns+` FROM products`+whereClause(where)+` ORDER BY name`, args...)
	return products, err
}

func CreateProduct(ctx context.Context, e sqlx.ExtContext, p *domain.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	id, err := insert(ctx, e, `INSERT INTO products (company_id, name, name_ar, sku, price, stock, unit, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.CompanyID, p.Name, p.NameAr, p.SKU, p.Price, p.Stock, p.Unit, p.Description, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func UpdateProduct(ctx context.Context, e sqlx.ExtContext, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()
	return mustAffect(exec(ctx, e, `UPDATE products SET name = ?, name_ar = ?, sku = ?, price = ?, stock = ?, unit = ?, description = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.NameAr, p.SKU, p.Price, p.Stock, p.Unit, p.Description, p.IsActive, p.UpdatedAt, p.ID))
}

// DecrementStock removes qty units only when at least qty are on hand. The
// guard lives in the UPDATE itself so the database enforces non-negative stock
// under concurrent checkouts. It reports false when the guard rejected the row.
func DecrementStock(ctx context.Context, e sqlx.ExtContext, productID, qty int64) (bool, error) {
	n, err := exec(ctx, e, `UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`,
		qty, time.Now().UTC(), productID, qty)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// LowStockProducts lists active products at or below the threshold across all tenants.
func LowStockProducts(ctx context.Context, e sqlx.ExtContext, threshold int64) ([]domain.Product, error) {
	products := []domain.Product{}
	err := sel(ctx, e, &products, `SELECT `+productColumns+` FROM products WHERE is_active = ? AND stock <= ? ORDER BY company_id, stock`, true, threshold)
	return products, err
}

// InsertProductIfAbsent creates p unless its SKU already exists, in which
// case it reports false and leaves the stored product untouched.
func InsertProductIfAbsent(ctx context.Context, e sqlx.ExtContext, p *domain.Product) (bool, error) {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	var id int64
	err := get(ctx, e, &id, `INSERT INTO products (company_id, name, name_ar, sku, price, stock, unit, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sku) DO NOTHING
		RETURNING id`,
		p.CompanyID, p.Name, p.NameAr, p.SKU, p.Price, p.Stock, p.Unit, p.Description, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	p.ID = id
	return true, nil
}
