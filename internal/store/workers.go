package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"goldrefinery/m/domain"
)

const workerColumns = `id, company_id, name, name_ar, phone, id_number, is_active, created_at, updated_at`

func ListWorkers(ctx context.Context, e sqlx.ExtContext, companyID *int64, page Page) ([]domain.Worker, int64, error) {
	where, args := scope(nil, nil, "company_id", companyID)
	var total int64
	if err := get(ctx, e, &total, `SELECT COUNT(*) FROM workers`+whereClause(where), args...); err != nil {
		return nil, 0, err
	}
	workers := []domain.Worker{}
	err := sel(ctx, e, &workers, `SELECT `+workerColumns+` FROM workers`+whereClause(where)+` ORDER BY id LIMIT ? OFFSET ?`,
		append(args, page.PerPage, page.Offset())...)
	return workers, total, err
}

func GetWorker(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) (*domain.Worker, error) {
	where, args := scope([]string{"id = ?"}, []any{id}, "company_id", companyID)
	var w domain.Worker
	if err := get(ctx, e, &w, `SELECT `+workerColumns+` FROM workers`+whereClause(where), args...); err != nil {
		return nil, err
	}
	return &w, nil
}

func CreateWorker(ctx context.Context, e sqlx.ExtContext, w *domain.Worker) error {
	now := time.Now().UTC()
	w.CreatedAt, w.UpdatedAt = now, now
	id, err := insert(ctx, e, `INSERT INTO workers (company_id, name, name_ar, phone, id_number, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.CompanyID, w.Name, w.NameAr, w.Phone, w.IDNumber, w.IsActive, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return err
	}
	w.ID = id
	return nil
}

func UpdateWorker(ctx context.Context, e sqlx.ExtContext, w *domain.Worker) error {
	w.UpdatedAt = time.Now().UTC()
	return mustAffect(exec(ctx, e, `UPDATE workers SET name = ?, name_ar = ?, phone = ?, id_number = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		w.Name, w.NameAr, w.Phone, w.IDNumber, w.IsActive, w.UpdatedAt, w.ID))
}

func DeleteWorker(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) error {
	where, args := scope([]string{"id = ?"}, []any{id}, "company_id", companyID)
	return mustAffect(exec(ctx, e, `DELETE FROM workers`+whereClause(where), args...))
}
