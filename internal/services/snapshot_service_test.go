package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffSnapshotsFindsChangedFields(t *testing.T) {
	from := map[string]interface{}{
		"name":           "Plush Bear",
		"total_quantity": float64(40),
		"category":       "plush",
	}
	to := map[string]interface{}{
		"name":           "Plush Bear",
		"total_quantity": float64(12),
		"category":       "plush",
	}

	diffs := diffSnapshots(from, to)

	require.Len(t, diffs, 1)
	assert.Equal(t, "total_quantity", diffs[0].Field)
	assert.Equal(t, float64(40), diffs[0].OldValue)
	assert.Equal(t, float64(12), diffs[0].NewValue)
}

func TestDiffSnapshotsHandlesAddedAndRemovedFields(t *testing.T) {
	from := map[string]interface{}{"sku": "PLH-001", "notes": "shelf 3"}
	to := map[string]interface{}{"sku": "PLH-001", "supplier": "Acme Prizes"}

	diffs := diffSnapshots(from, to)

	// Sorted by field name
	require.Len(t, diffs, 2)
	assert.Equal(t, "notes", diffs[0].Field)
	assert.Equal(t, "shelf 3", diffs[0].OldValue)
	assert.Nil(t, diffs[0].NewValue)
	assert.Equal(t, "supplier", diffs[1].Field)
	assert.Nil(t, diffs[1].OldValue)
	assert.Equal(t, "Acme Prizes", diffs[1].NewValue)
}

func TestDiffSnapshotsIdentical(t *testing.T) {
	data := map[string]interface{}{"sku": "PLH-001", "slots": []interface{}{"a", "b"}}
	assert.Empty(t, diffSnapshots(data, data))
}
