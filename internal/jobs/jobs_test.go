package jobs

import (
	"context"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"goldrefinery/m/internal/metrics"
	"goldrefinery/m/internal/testdb"
)

func TestSweepLowStock(t *testing.T) {
	db := testdb.New(t)
	a := testdb.Company(t, db, "a")
	b := testdb.Company(t, db, "b")
	testdb.Product(t, db, a, "A-LOW", "1.00", 0)
	testdb.Product(t, db, a, "A-EDGE", "1.00", 5)
	testdb.Product(t, db, a, "A-OK", "1.00", 6)
	testdb.Product(t, db, b, "B-LOW", "1.00", 2)

	core, logs := observer.New(zap.WarnLevel)
	m := metrics.New()
	s := New(db, m, zap.New(core), 5, nil)

	counts, err := s.SweepLowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{a: 2, b: 1}, counts)
	assert.Equal(t, 3, logs.FilterMessage("low stock").Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LowStock.WithLabelValues(strconv.FormatInt(a, 10))))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(testdb.New(t), nil, zap.NewNop(), 5, nil)
	assert.Error(t, s.Start("not a schedule"))
}

func TestStartAndStop(t *testing.T) {
	s := New(testdb.New(t), nil, zap.NewNop(), 5, nil)
	require.NoError(t, s.Start("@hourly"))
	s.Stop()
}
