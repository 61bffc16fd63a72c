package players

import (
	"bytes"
	"testing"

	parquet "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/sleeper-sync/internal/sleeper"
)

func TestCoreRows_SortedAndStringified(t *testing.T) {
	core := BuildCore(sleeper.Directory{
		"20": {"full_name": "B", "bye_week": float64(7)},
		"10": {"full_name": "A", "bye_week": "10"},
		"30": {"position": "K"},
	})
	rows := CoreRows(core)
	require.Len(t, rows, 3)
	assert.Equal(t, "10", rows[0].PlayerID)
	assert.Equal(t, "20", rows[1].PlayerID)
	assert.Equal(t, "30", rows[2].PlayerID)
	assert.Equal(t, "10", *rows[0].ByeWeek)
	assert.Equal(t, "7", *rows[1].ByeWeek)
	assert.Nil(t, rows[2].ByeWeek)
	assert.Nil(t, rows[2].FullName)
}

func TestEncodeCoreParquet_RoundTrip(t *testing.T) {
	core := BuildCore(sleeper.Directory{
		"100": {"first_name": "Jane", "last_name": "Doe", "position": "QB", "team": "AAA"},
		"200": {"full_name": "John Smith", "injury_status": "Out"},
	})
	b, err := EncodeCoreParquet(core)
	require.NoError(t, err)

	rows, err := parquet.Read[CoreRow](bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "100", rows[0].PlayerID)
	assert.Equal(t, "Jane Doe", *rows[0].FullName)
	assert.Equal(t, "AAA", *rows[0].Team)
	assert.Nil(t, rows[1].Team)
	assert.Equal(t, "Out", *rows[1].InjuryStatus)
}
