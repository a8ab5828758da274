package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySink_WriteAndRead(t *testing.T) {
	sink := NewMemorySink(0)
	require.NoError(t, sink.Write("sku-1", "gate", map[string]any{"reason": "ok"}, true))
	require.NoError(t, sink.Write("sku-2", "price", nil, false))

	records := sink.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "sku-1", records[0].SKULocal)
	assert.True(t, records[0].OK)
	assert.False(t, records[1].OK)
}

func TestMemorySink_BoundedCapacityDropsOldest(t *testing.T) {
	sink := NewMemorySink(2)
	require.NoError(t, sink.Write("a", "gate", nil, true))
	require.NoError(t, sink.Write("b", "gate", nil, true))
	require.NoError(t, sink.Write("c", "gate", nil, true))

	records := sink.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].SKULocal)
	assert.Equal(t, "c", records[1].SKULocal)
}

func TestSQLiteSink_WriteAndReadBack(t *testing.T) {
	runID := uuid.NewString()
	dbPath := "file::memory:?cache=shared"
	sink, err := NewSQLiteSink(dbPath, runID, zerolog.Nop())
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write("sku-1", "gate", map[string]any{"tags": []string{"a", "b"}}, true))
	require.NoError(t, sink.Write("sku-2", "sell", nil, false))

	records, err := sink.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "sku-1", records[0].SKULocal)
	assert.Equal(t, "gate", records[0].SourceTag)
	assert.True(t, records[0].OK)
	assert.False(t, records[1].OK)
}
