package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forex_pilot/internal/models"
)

func newTestJournal(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestJournal(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestRecordAndReadTrades(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordTrade(models.TradeRecord{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Symbol:    "EUR/USD",
			Action:    models.ActionBuy,
			Units:     1000,
			Price:     1.1000 + float64(i)*0.001,
			Balance:   10000,
		}))
	}

	recs, err := j.RecentTrades(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Latest two, oldest first.
	assert.InDelta(t, 1.1010, recs[0].Price, 1e-9)
	assert.InDelta(t, 1.1020, recs[1].Price, 1e-9)
	assert.Equal(t, models.ActionBuy, recs[0].Action)
	assert.Equal(t, "EUR/USD", recs[0].Symbol)
}

func TestRecordAndReadEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, j.RecordEquity(models.EquityPoint{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Balance:   10000,
			Equity:    10000 + float64(i),
			PnL:       float64(i),
		}))
	}

	points, err := j.RecentEquity(3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 10002.0, points[0].Equity, 1e-9)
	assert.InDelta(t, 10004.0, points[2].Equity, 1e-9)
}

func TestStatsFor(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(models.TradeRecord{Timestamp: base, Symbol: "EUR/USD", Action: models.ActionBuy, Units: 1000, Price: 1.1, Balance: 10000}))
	require.NoError(t, j.RecordTrade(models.TradeRecord{Timestamp: base.Add(time.Hour), Symbol: "EUR/USD", Action: models.ActionSell, Units: 500, Price: 1.2, Balance: 10000}))
	require.NoError(t, j.RecordTrade(models.TradeRecord{Timestamp: base, Symbol: "USD/JPY", Action: models.ActionBuy, Units: 100, Price: 150, Balance: 10000}))

	s, err := j.StatsFor("EUR/USD")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Trades)
	assert.Equal(t, 1, s.Buys)
	assert.Equal(t, 1, s.Sells)

	empty, err := j.StatsFor("GBP/USD")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Trades)
	assert.True(t, empty.FirstSeen.IsZero())
}
