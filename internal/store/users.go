package store

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"goldrefinery/m/domain"
)

const userColumns = `id, company_id, name, email, password, role, phone, locale, is_active, created_at, updated_at`

func GetUserByEmail(ctx context.Context, e sqlx.ExtContext, email string) (*domain.User, error) {
	var u domain.User
	if err := get(ctx, e, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email)); err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUser(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) (*domain.User, error) {
	where, args := scope([]string{"id = ?"}, []any{id}, "company_id", companyID)
	var u domain.User
	if err := get(ctx, e, &u, `SELECT `+userColumns+` FROM users`+whereClause(where), args...); err != nil {
		return nil, err
	}
	return &u, nil
}

func ListUsers(ctx context.Context, e sqlx.ExtContext, companyID *int64, page Page) ([]domain.User, int64, error) {
	where, args := scope(nil, nil, "company_id", companyID)
	var total int64
	if err := get(ctx, e, &total, `SELECT COUNT(*) FROM users`+whereClause(where), args...); err != nil {
		return nil, 0, err
	}
	users := []domain.User{}
	err := sel(ctx, e, &users, `SELECT `+userColumns+` FROM users`+whereClause(where)+` ORDER BY id LIMIT ? OFFSET ?`,
		append(args, page.PerPage, page.Offset())...)
	return users, total, err
}

func CreateUser(ctx context.Context, e sqlx.ExtContext, u *domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Email = strings.ToLower(u.Email)
	id, err := insert(ctx, e, `INSERT INTO users (company_id, name, email, password, role, phone, locale, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.CompanyID, u.Name, u.Email, u.Password, u.Role, u.Phone, u.Locale, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func UpdateUser(ctx context.Context, e sqlx.ExtContext, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	u.Email = strings.ToLower(u.Email)
	return mustAffect(exec(ctx, e, `UPDATE users SET name = ?, email = ?, password = ?, role = ?, phone = ?, locale = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		u.Name, u.Email, u.Password, u.Role, u.Phone, u.Locale, u.IsActive, u.UpdatedAt, u.ID))
}

func DeleteUser(ctx context.Context, e sqlx.ExtContext, companyID *int64, id int64) error {
	where, args := scope([]string{"id = ?"}, []any{id}, "company_id", companyID)
	return mustAffect(exec(ctx, e, `DELETE FROM users`+whereClause(where), args...))
}
