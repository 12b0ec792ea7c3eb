package auditlog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

func TestWALStore_RecordAndRead(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ts := time.Date(2024, 3, 12, 14, 0, 0, 0, time.UTC)
	first := domain.AuditRecord{Timestamp: ts, Ticker: "IMNM", Action: domain.ActionBuy, Quantity: 5, Price: decimal.NewFromInt(40), Notes: "order placed"}
	second := domain.AuditRecord{Timestamp: ts.Add(time.Hour), Ticker: "IMNM", Action: domain.ActionSell, Quantity: 5, Price: decimal.NewFromInt(41), Notes: "order failed: rejected"}

	require.NoError(t, store.Record(context.Background(), first))
	require.NoError(t, store.Record(context.Background(), second))
	assert.Equal(t, uint64(2), store.CurrentIndex())

	all, err := store.RecordsAfter(0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint64(1), all[0].Index)
	assert.Equal(t, domain.ActionBuy, all[0].Record.Action)
	assert.True(t, decimal.NewFromInt(40).Equal(all[0].Record.Price))
	assert.True(t, ts.Equal(all[0].Record.Timestamp))

	tail, err := store.RecordsAfter(1)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "order failed: rejected", tail[0].Record.Notes)

	none, err := store.RecordsAfter(2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWALStore_RejectsEmptyTicker(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.Error(t, store.Record(context.Background(), domain.AuditRecord{}))
}

func TestWALStore_Nil(t *testing.T) {
	var store *WALStore
	require.Error(t, store.Record(context.Background(), domain.AuditRecord{Ticker: "IMNM"}))
	_, err := store.RecordsAfter(0)
	require.Error(t, err)
	assert.Zero(t, store.CurrentIndex())
}
