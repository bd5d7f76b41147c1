package migrations_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/migrations"
	"goldrefinery/m/internal/testdb"
)

func counter(t *testing.T, db *sqlx.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Get(&n, `SELECT value FROM invoice_sequences WHERE name = 'sales'`))
	return n
}

func setCounter(t *testing.T, db *sqlx.DB, n int64) {
	t.Helper()
	_, err := db.Exec(db.Rebind(`UPDATE invoice_sequences SET value = ? WHERE name = 'sales'`), n)
	require.NoError(t, err)
}

func TestRunIsRepeatable(t *testing.T) {
	db := testdb.New(t)
	require.NoError(t, migrations.Run(db))
	assert.Equal(t, int64(0), counter(t, db))
}

func TestRunRaisesCounterToSalesCount(t *testing.T) {
	db := testdb.New(t)
	company := testdb.Company(t, db, "golden")
	user := testdb.User(t, db, company, "sam", string(domain.RoleSalesman))
	for _, number := range []string{"INV-20240307-00001", "INV-20240307-00002", "INV-20240307-00003"} {
		_, err := db.Exec(db.Rebind(`INSERT INTO sales (company_id, user_id, invoice_number, customer_name, subtotal, tax, total, payment_method)
			VALUES (?, ?, ?, 'Walk-in', 10, 0, 10, 'cash')`), company, user, number)
		require.NoError(t, err)
	}

	setCounter(t, db, 1)
	require.NoError(t, migrations.Run(db))
	assert.Equal(t, int64(3), counter(t, db))

	setCounter(t, db, 42)
	require.NoError(t, migrations.Run(db))
	assert.Equal(t, int64(42), counter(t, db), "counter is never lowered")
}
