package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"goldrefinery/m/domain"
)

const categoryColumns = `id, company_id, name, name_ar, is_active, created_at, updated_at`

// ListMachineCategories returns active categories only.
func ListMachineCategories(ctx context.Context, e sqlx.ExtContext, companyID *int64) ([]domain.MachineCategory, error) {
	where, args := scope([]string{"is_active = ?"}, []any{true}, "company_id", companyID)
	categories := []domain.MachineCategory{}
	err := sel(ctx, e, &categories, `SELECT `+categoryColumns+` FROM machine_categories`+whereClause(where)+` ORDER BY name`, args...)
	return categories, err
}

func GetMachineCategory(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) (*domain.MachineCategory, error) {
	where, args := scope([]string{"id = ?"}, []any{id}, "company_id", companyID)
	var c domain.MachineCategory
	if err := get(ctx, e, &c, `SELECT `+categoryColumns+` FROM machine_categories`+whereClause(where), args...); err != nil {
		return nil, err
	}
	return &c, nil
}

func CreateMachineCategory(ctx context.Context, e sqlx.ExtContext, c *domain.MachineCategory) error {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	id, err := insert(ctx, e, `INSERT INTO machine_categories (company_id, name, name_ar, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.CompanyID, c.Name, c.NameAr, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func UpdateMachineCategory(ctx context.Context, e sqlx.ExtContext, c *domain.MachineCategory) error {
	c.UpdatedAt = time.Now().UTC()
	return mustAffect(exec(ctx, e, `UPDATE machine_categories SET name = ?, name_ar = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.NameAr, c.IsActive, c.UpdatedAt, c.ID))
}

func DeleteMachineCategory(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) error {
	where, args := scope([]string{"id = ?"}, []any{id}, "company_id", companyID)
	return mustAffect(exec(ctx, e, `DELETE FROM machine_categories`+whereClause(where), args...))
}

const machineColumns = `m.id, m.company_id, m.category_id, c.name AS category_name, m.name, m.name_ar, m.serial_number,
	m.type, m.status, m.cost_per_unit, m.unit, m.description, m.created_at, m.updated_at`

const machineFrom = ` FROM machines m LEFT JOIN machine_categories c ON c.id = m.category_id`

func ListMachines(ctx context.Context, e sqlx.ExtContext, companyID *int64, page Page) ([]domain.Machine, int64, error) {
	where, args := scope(nil, nil, "m.company_id", companyID)
	var total int64
	if err := get(ctx, e, &total, `SELECT COUNT(*) FROM machines m`+whereClause(where), args...); err != nil {
		return nil, 0, err
	}
	machines := []domain.Machine{}
	err := sel(ctx, e, &machines, `SELECT `+machineColumns+machineFrom+whereClause(where)+` ORDER BY m.id LIMIT ? OFFSET ?`,
		append(args, page.PerPage, page.Offset())...)
	return machines, total, err
}

func GetMachine(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) (*domain.Machine, error) {
	where, args := scope([]string{"m.id = ?"}, []any{id}, "m.company_id", companyID)
	var m domain.Machine
	if err := get(ctx, e, &m, `SELECT `+machineColumns+machineFrom+whereClause(where), args...); err != nil {
		return nil, err
	}
	return &m, nil
}

func CreateMachine(ctx context.Context, e sqlx.ExtContext, m *domain.Machine) error {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	id, err := insert(ctx, e, `INSERT INTO machines (company_id, category_id, name, name_ar, serial_number, type, status, cost_per_unit, unit, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.CompanyID, m.CategoryID, m.Name, m.NameAr, m.SerialNumber, m.Type, m.Status, m.CostPerUnit, m.Unit, m.Description, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func UpdateMachine(ctx context.Context, e sqlx.ExtContext, m *domain.Machine) error {
	m.UpdatedAt = time.Now().UTC()
	return mustAffect(exec(ctx, e, `UPDATE machines SET category_id = ?, name = ?, name_ar = ?, serial_number = ?, type = ?, status = ?, cost_per_unit = ?, unit = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		m.CategoryID, m.Name, m.NameAr, m.SerialNumber, m.Type, m.Status, m.CostPerUnit, m.Unit, m.Description, m.UpdatedAt, m.ID))
}

func DeleteMachine(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) error {
	where, args := scope([]string{"id = ?"}, []any{id}, "company_id", companyID)
	return mustAffect(exec(ctx, e, `DELETE FROM machines`+whereClause(where), args...))
}
