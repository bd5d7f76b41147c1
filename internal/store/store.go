// Package store holds the sqlx repositories. Every function takes a
// sqlx.ExtContext so it runs the same against *sqlx.DB or *sqlx.Tx.
// Queries are written with ? placeholders and rebound for the driver.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Page is the requested window of a list query.
type Page struct {
	Page    int
	PerPage int
}

func (p Page) Offset() int { return (p.Page - 1) * p.PerPage }

func get(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func sel(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func exec(ctx context.Context, e sqlx.ExtContext, query string, args ...any) (int64, error) {
	res, err := e.ExecContext(ctx, e.Rebind(query), args...)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}

func insert(ctx context.Context, e sqlx.ExtContext, query string, args ...any) (int64, error) {
	var id int64
	if err := e.QueryRowxContext(ctx, e.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

// mustAffect turns a zero-row update or delete into ErrNotFound.
func mustAffect(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrConflict
	}
	return err
}

// scope appends a tenant filter when companyID is set; nil means every tenant.
func scope(where []string, args []any, column string, companyID *int64) ([]string, []any) {
	if companyID == nil {
		return where, args
	}
	return append(where, column+" = ?"), append(args, *companyID)
}

func whereClause(where []string) string {
	if len(where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(where, " AND ")
}
