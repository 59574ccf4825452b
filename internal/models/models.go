package models

import "time"

// Action is the direction of a trade signal or position.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// PositionStatus tracks the lifecycle of a position. The transition is
// one-way: OPEN -> CLOSED.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "OPEN"
	StatusClosed PositionStatus = "CLOSED"
)

// Position represents a single simulated directional trade.
//
// Direction and size are fixed at open; only PnL (while OPEN) and the
// exit fields (exactly once, at close) change afterwards.
// The struct tags (e.g. `json:"symbol"`) map fields to the keys used by
// the state file and the dashboard API.
type Position struct {
	Symbol     string         `json:"symbol"`
	Action     Action         `json:"action"` // BUY or SELL
	Units      int            `json:"units"`
	EntryPrice float64        `json:"entry_price"`
	EntryTime  time.Time      `json:"entry_time"`
	ExitPrice  *float64       `json:"exit_price,omitempty"`
	ExitTime   *time.Time     `json:"exit_time,omitempty"`
	PnL        float64        `json:"pnl"`
	Status     PositionStatus `json:"status"`
}

// PnLAt computes the directional profit/loss against a reference price.
// BUY profits when the price rises, SELL when it falls.
func (p *Position) PnLAt(price float64) float64 {
	if p.Action == ActionBuy {
		return (price - p.EntryPrice) * float64(p.Units)
	}
	return (p.EntryPrice - price) * float64(p.Units)
}

// MarkToMarket recomputes unrealized PnL for an open position.
// Closed positions keep their frozen PnL.
func (p *Position) MarkToMarket(price float64) {
	if p.Status != StatusOpen {
		return
	}
	p.PnL = p.PnLAt(price)
}

// Close freezes the position at the given exit price. Callers must
// guarantee at-most-once invocation; DemoBroker enforces this when
// closing through the ledger.
func (p *Position) Close(exitPrice float64, at time.Time) {
	p.ExitPrice = &exitPrice
	p.ExitTime = &at
	p.Status = StatusClosed
	p.PnL = p.PnLAt(exitPrice)
}

// TradeRecord is one entry of the append-only audit log. It captures the
// trade fields plus the account balance at execution time and is never
// mutated after append.
type TradeRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Action    Action    `json:"action"`
	Units     int       `json:"units"`
	Price     float64   `json:"price"`
	Balance   float64   `json:"balance"`
}

// EquityPoint is one snapshot of the equity curve, produced once per
// mark-to-market pass.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Balance   float64   `json:"balance"`
	Equity    float64   `json:"equity"`
	PnL       float64   `json:"pnl"`
}

// PortfolioSummary is the read-only view of the account exposed to the
// dashboard and the Telegram commands.
type PortfolioSummary struct {
	Balance       float64 `json:"balance"`
	Equity        float64 `json:"equity"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	OpenPositions int     `json:"open_positions"`
	TotalTrades   int     `json:"total_trades"`
	WinRate       float64 `json:"win_rate"`
}

// LedgerState is the persisted snapshot of the ledger. It matches the
// structure of the JSON state file on disk.
type LedgerState struct {
	Version        string     `json:"version"`
	LastSync       string     `json:"last_sync"`
	Balance        float64    `json:"balance"`
	InitialBalance float64    `json:"initial_balance"`
	Positions      []Position `json:"positions"`
}
