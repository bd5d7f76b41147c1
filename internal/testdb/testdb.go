// Package testdb provides a migrated in-memory sqlite database for tests.
package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"

	"goldrefinery/m/internal/database"
	"goldrefinery/m/internal/migrations"
)

var seq atomic.Int64

// New returns a fresh database closed at the end of the test.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))
	db, err := database.Connect("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
