package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"goldrefinery/m/internal/database"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		name_ar TEXT,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		address TEXT,
		address_ar TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		company_id BIGINT REFERENCES companies(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'company_manager', 'salesman')),
		phone TEXT,
		locale TEXT NOT NULL DEFAULT 'en',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS workers (
		id BIGSERIAL PRIMARY KEY,
		company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_ar TEXT,
		phone TEXT,
		id_number TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS machine_categories (
		id BIGSERIAL PRIMARY KEY,
		company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_ar TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS machines (
		id BIGSERIAL PRIMARY KEY,
		company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		category_id BIGINT REFERENCES machine_categories(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		name_ar TEXT,
		serial_number TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT 'refining',
		status TEXT NOT NULL DEFAULT 'active',
		cost_per_unit NUMERIC(10,2) NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT 'hour',
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_ar TEXT,
		sku TEXT NOT NULL UNIQUE,
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		stock BIGINT NOT NULL DEFAULT 0 CHECK (stock >= 0),
		unit TEXT NOT NULL DEFAULT 'piece',
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGSERIAL PRIMARY KEY,
		company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		invoice_number TEXT NOT NULL UNIQUE,
		customer_name TEXT NOT NULL,
		customer_phone TEXT,
		subtotal NUMERIC(12,2) NOT NULL,
		tax NUMERIC(12,2) NOT NULL DEFAULT 0,
		total NUMERIC(12,2) NOT NULL,
		payment_method TEXT NOT NULL CHECK (payment_method IN ('cash', 'card', 'transfer')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS sales_company_created_idx ON sales (company_id, created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id BIGSERIAL PRIMARY KEY,
		sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		product_name TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL,
		quantity BIGINT NOT NULL CHECK (quantity > 0),
		total NUMERIC(12,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS sale_items_sale_idx ON sale_items (sale_id);`,
	`CREATE TABLE IF NOT EXISTS invoice_sequences (
		name TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	);`,
	`INSERT INTO invoice_sequences (name, value)
		SELECT 'sales', COUNT(*) FROM sales
		ON CONFLICT (name) DO UPDATE SET value = GREATEST(invoice_sequences.value, EXCLUDED.value);`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		name_ar TEXT,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		address TEXT,
		address_ar TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER REFERENCES companies(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'company_manager', 'salesman')),
		phone TEXT,
		locale TEXT NOT NULL DEFAULT 'en',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS workers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_ar TEXT,
		phone TEXT,
		id_number TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS machine_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_ar TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS machines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		category_id INTEGER REFERENCES machine_categories(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		name_ar TEXT,
		serial_number TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT 'refining',
		status TEXT NOT NULL DEFAULT 'active',
		cost_per_unit NUMERIC NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT 'hour',
		description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_ar TEXT,
		sku TEXT NOT NULL UNIQUE,
		price NUMERIC NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		unit TEXT NOT NULL DEFAULT 'piece',
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		invoice_number TEXT NOT NULL UNIQUE,
		customer_name TEXT NOT NULL,
		customer_phone TEXT,
		subtotal NUMERIC NOT NULL,
		tax NUMERIC NOT NULL DEFAULT 0,
		total NUMERIC NOT NULL,
		payment_method TEXT NOT NULL CHECK (payment_method IN ('cash', 'card', 'transfer')),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS sales_company_created_idx ON sales (company_id, created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		product_name TEXT NOT NULL,
		price NUMERIC NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		total NUMERIC NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS sale_items_sale_idx ON sale_items (sale_id);`,
	`CREATE TABLE IF NOT EXISTS invoice_sequences (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);`,
	`INSERT INTO invoice_sequences (name, value)
		SELECT 'sales', COUNT(*) FROM sales WHERE true
		ON CONFLICT (name) DO UPDATE SET value = MAX(invoice_sequences.value, excluded.value);`,
}

// Run creates the database schema. Every statement is idempotent. The
// invoice counter is raised to the sales count on each run so switching
// from count-based numbering never reissues a number.
func Run(db *sqlx.DB) error {
	schema := postgresSchema
	if database.IsSQLite(db) {
		schema = sqliteSchema
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
