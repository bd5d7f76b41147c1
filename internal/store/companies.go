package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"goldrefinery/m/domain"
)

const companyColumns = `id, name, name_ar, email, phone, address, address_ar, is_active, created_at, updated_at`

func ListCompanies(ctx context.Context, e sqlx.ExtContext, page Page) ([]domain.Company, int64, error) {
	var total int64
	if err := get(ctx, e, &total, `SELECT COUNT(*) FROM companies`); err != nil {
		return nil, 0, err
	}
	companies := []domain.Company{}
	err := sel(ctx, e, &companies, `SELECT `+companyColumns+` FROM companies ORDER BY id LIMIT ? OFFSET ?`, page.PerPage, page.Offset())
	return companies, total, err
}

func GetCompany(ctx context.Context, e sqlx.ExtContext, id int64) (*domain.Company, error) {
	var c domain.Company
	if err := get(ctx, e, &c, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func CreateCompany(ctx context.Context, e sqlx.ExtContext, c *domain.Company) error {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	id, err := insert(ctx, e, `INSERT INTO companies (name, name_ar, email, phone, address, address_ar, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.NameAr, c.Email, c.Phone, c.Address, c.AddressAr, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func UpdateCompany(ctx context.Context, e sqlx.ExtContext, c *domain.Company) error {
	c.UpdatedAt = time.Now().UTC()
	return mustAffect(exec(ctx, e, `UPDATE companies SET name = ?, name_ar = ?, email = ?, phone = ?, address = ?, address_ar = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.NameAr, c.Email, c.Phone, c.Address, c.AddressAr, c.IsActive, c.UpdatedAt, c.ID))
}

func DeleteCompany(ctx context.Context, e sqlx.ExtContext, id int64) error {
	return mustAffect(exec(ctx, e, `DELETE FROM companies WHERE id = ?`, id))
}
