package testdb

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// Password is the plain-text password of every fixture user.
const Password = "password123"

func Company(t testing.TB, db *sqlx.DB, name string) int64 {
	t.Helper()
	now := time.Now().UTC()
	return insertID(t, db, `INSERT INTO companies (name, email, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, name+"@example.com", true, now, now)
}

// User creates a user; companyID 0 leaves the tenant empty (admins).
func User(t testing.TB, db *sqlx.DB, companyID int64, name, role string) int64 {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	var tenant any
	if companyID != 0 {
		tenant = companyID
	}
	now := time.Now().UTC()
	return insertID(t, db, `INSERT INTO users (company_id, name, email, password, role, locale, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'en', ?, ?, ?)`,
		tenant, name, name+"@example.com", string(hashed), role, true, now, now)
}

func Product(t testing.TB, db *sqlx.DB, companyID int64, sku, price string, stock int64) int64 {
	t.Helper()
	now := time.Now().UTC()
	return insertID(t, db, `INSERT INTO products (company_id, name, sku, price, stock, unit, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'piece', ?, ?, ?)`,
		companyID, "Product "+sku, sku, price, stock, true, now, now)
}

func Stock(t testing.TB, db *sqlx.DB, productID int64) int64 {
	t.Helper()
	var n int64
	if err := db.Get(&n, db.Rebind(`SELECT stock FROM products WHERE id = ?`), productID); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return n
}

func Count(t testing.TB, db *sqlx.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func insertID(t testing.TB, db *sqlx.DB, query string, args ...any) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRowx(db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		t.Fatalf("insert fixture: %v", err)
	}
	return id
}
