// Package journal is the durable, append-only audit log of executed
// trades and equity snapshots. The in-memory ledger restarts empty; the
// journal is what survives.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"forex_pilot/internal/models"
)

// SQLite is a journal backed by a local sqlite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the journal at path and ensures the
// schema exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// RecordTrade appends one trade record.
func (j *SQLite) RecordTrade(t models.TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades (timestamp, symbol, action, units, price, balance)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.Timestamp, t.Symbol, string(t.Action), t.Units, t.Price, t.Balance,
	)
	return err
}

// RecordEquity appends one equity snapshot.
func (j *SQLite) RecordEquity(e models.EquityPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (timestamp, balance, equity, pnl)
		VALUES (?, ?, ?, ?)`,
		e.Timestamp, e.Balance, e.Equity, e.PnL,
	)
	return err
}

// RecentTrades returns the latest n trades, oldest first.
func (j *SQLite) RecentTrades(n int) ([]models.TradeRecord, error) {
	if n <= 0 {
		n = 50
	}
	rows, err := j.db.Query(`
		SELECT timestamp, symbol, action, units, price, balance
		FROM (
			SELECT rowid, * FROM trades ORDER BY rowid DESC LIMIT ?
		) ORDER BY rowid ASC`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TradeRecord
	for rows.Next() {
		var (
			t      models.TradeRecord
			action string
		)
		if err := rows.Scan(&t.Timestamp, &t.Symbol, &action, &t.Units, &t.Price, &t.Balance); err != nil {
			return nil, err
		}
		t.Action = models.Action(action)
		out = append(out, t)
	}
	return out, rows.Err()
}

// RecentEquity returns the latest n equity snapshots, oldest first.
func (j *SQLite) RecentEquity(n int) ([]models.EquityPoint, error) {
	if n <= 0 {
		n = 50
	}
	rows, err := j.db.Query(`
		SELECT timestamp, balance, equity, pnl
		FROM (
			SELECT rowid, * FROM equity ORDER BY rowid DESC LIMIT ?
		) ORDER BY rowid ASC`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EquityPoint
	for rows.Next() {
		var e models.EquityPoint
		if err := rows.Scan(&e.Timestamp, &e.Balance, &e.Equity, &e.PnL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SymbolStats summarizes journalled activity for one symbol.
type SymbolStats struct {
	Symbol    string
	Trades    int
	Buys      int
	Sells     int
	FirstSeen time.Time
	LastSeen  time.Time
}

// StatsFor aggregates the trade log for a symbol.
func (j *SQLite) StatsFor(symbol string) (SymbolStats, error) {
	s := SymbolStats{Symbol: symbol}
	row := j.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN action = 'BUY' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN action = 'SELL' THEN 1 ELSE 0 END), 0),
		       COALESCE(MIN(timestamp), ''),
		       COALESCE(MAX(timestamp), '')
		FROM trades WHERE symbol = ?`, symbol)

	var first, last string
	if err := row.Scan(&s.Trades, &s.Buys, &s.Sells, &first, &last); err != nil {
		return s, err
	}
	s.FirstSeen = parseJournalTime(first)
	s.LastSeen = parseJournalTime(last)
	return s, nil
}

func parseJournalTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Close releases the database handle.
func (j *SQLite) Close() error {
	return j.db.Close()
}
