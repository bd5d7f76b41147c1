package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldrefinery/m/internal/store"
	"goldrefinery/m/internal/testdb"
)

func TestFormatInvoiceNumber(t *testing.T) {
	day := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-20240307-00001", store.FormatInvoiceNumber("INV", day, 1))
	assert.Equal(t, "INV-20240307-00420", store.FormatInvoiceNumber("INV", day, 420))
	assert.Equal(t, "INV-20240307-123456", store.FormatInvoiceNumber("INV", day, 123456))
}

func TestCounterSequenceIncrements(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	seq := store.CounterSequence{}

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCounterSequenceRollsBackWithTransaction(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	seq := store.CounterSequence{}

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	n, err := seq.Next(ctx, tx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, tx.Rollback())

	n, err = seq.Next(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

// Count-based numbering hands out the same ordinal to every checkout that
// counts before the first one commits.
func TestCountSequenceCollidesBeforeCommit(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	seq := store.CountSequence{}

	first, err := seq.Next(ctx, db)
	require.NoError(t, err)
	second, err := seq.Next(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
