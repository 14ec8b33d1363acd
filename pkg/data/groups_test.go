package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetGroupCharges(t *testing.T) {
	db := setupTestDB(t)

	rows := testEncounters(10)
	for i := range rows {
		if i < 3 {
			rows[i].Race = "Asian"
			rows[i].TotalCharges = 10000
		} else {
			rows[i].Race = "White"
			rows[i].TotalCharges = 5000
		}
	}
	require.NoError(t, SaveEncounters(db, rows))

	stats, err := GetGroupCharges(db, "race")
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// Ordered by count descending.
	assert.Equal(t, "White", stats[0].Group)
	assert.Equal(t, 7, stats[0].Count)
	assert.InDelta(t, 5000, stats[0].MeanCharges, 1e-9)

	assert.Equal(t, "Asian", stats[1].Group)
	assert.Equal(t, 3, stats[1].Count)
	assert.InDelta(t, 10000, stats[1].MeanCharges, 1e-9)
}

func TestGetGroupCharges_UnsupportedColumn(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetGroupCharges(db, "total_charges; DROP TABLE encounter")
	assert.Error(t, err)

	_, err = GetGroupCharges(db, "age")
	assert.Error(t, err)
}

func TestGetGroupCharges_NilDB(t *testing.T) {
	_, err := GetGroupCharges(nil, "race")
	assert.Error(t, err)
}
