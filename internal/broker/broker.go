// Package broker implements the simulated account ledger. It owns the
// demo balance, the positions (open and closed), the trade history and
// the equity curve. It performs no I/O; all state lives in memory and is
// guarded by a RWMutex so the dashboard and the Telegram listener can
// read while the driver loop writes.
package broker

import (
	"log"
	"sync"
	"time"

	"forex_pilot/internal/models"
)

const DefaultInitialBalance = 10000.0

// DemoBroker is the in-memory account ledger.
//
// Note on the balance: it is never debited or credited when a position
// opens or closes. Equity is always derived as balance plus unrealized
// PnL of the open positions; closing a profitable position freezes its
// PnL but does not bank it into the balance. This mirrors the behavior
// of the system this ledger replaces and is kept deliberately.
type DemoBroker struct {
	mu             sync.RWMutex
	balance        float64
	initialBalance float64
	positions      []*models.Position
	tradeHistory   []models.TradeRecord
	equityCurve    []models.EquityPoint
}

// New creates a ledger with the given starting balance.
func New(initialBalance float64) *DemoBroker {
	if initialBalance <= 0 {
		initialBalance = DefaultInitialBalance
	}
	return &DemoBroker{
		balance:        initialBalance,
		initialBalance: initialBalance,
	}
}

// ExecuteTrade opens a new position and appends the matching audit
// record. Both sequences grow by exactly one per successful call.
//
// Inputs are validated: a non-BUY/SELL action, non-positive units or a
// non-positive price is rejected with a false return and a log line
// rather than an error, so a bad decision never aborts the driver loop.
func (b *DemoBroker) ExecuteTrade(symbol string, action models.Action, units int, currentPrice float64) bool {
	if action != models.ActionBuy && action != models.ActionSell {
		log.Printf("Trade rejected: invalid action %q for %s", action, symbol)
		return false
	}
	if units <= 0 {
		log.Printf("Trade rejected: non-positive units %d for %s", units, symbol)
		return false
	}
	if currentPrice <= 0 {
		log.Printf("Trade rejected: non-positive price %.5f for %s", currentPrice, symbol)
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.positions = append(b.positions, &models.Position{
		Symbol:     symbol,
		Action:     action,
		Units:      units,
		EntryPrice: currentPrice,
		EntryTime:  now,
		Status:     models.StatusOpen,
	})
	b.tradeHistory = append(b.tradeHistory, models.TradeRecord{
		Timestamp: now,
		Symbol:    symbol,
		Action:    action,
		Units:     units,
		Price:     currentPrice,
		Balance:   b.balance,
	})

	log.Printf("Demo trade executed: %s %d %s @ %.5f", action, units, symbol, currentPrice)
	return true
}

// UpdatePositions marks every open position whose symbol appears in the
// price map to market, then appends one snapshot to the equity curve.
// Open positions with no quote in the map keep their last computed PnL.
// Every call appends a snapshot, even with identical prices; the equity
// curve is time-series sampling, not a cache.
func (b *DemoBroker) UpdatePositions(currentPrices map[string]float64) models.EquityPoint {
	b.mu.Lock()
	defer b.mu.Unlock()

	totalPnL := 0.0
	for _, p := range b.positions {
		if p.Status != models.StatusOpen {
			continue
		}
		if price, ok := currentPrices[p.Symbol]; ok {
			p.MarkToMarket(price)
		}
		totalPnL += p.PnL
	}

	point := models.EquityPoint{
		Timestamp: time.Now(),
		Balance:   b.balance,
		Equity:    b.balance + totalPnL,
		PnL:       totalPnL,
	}
	b.equityCurve = append(b.equityCurve, point)
	return point
}

// CloseOpposite closes every open position on symbol whose direction
// opposes the incoming action, freezing each at the given price. It
// returns the realized PnL and the number of positions closed. The
// balance is not credited; see the note on DemoBroker.
func (b *DemoBroker) CloseOpposite(symbol string, incoming models.Action, price float64, at time.Time) (realized float64, closed int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.positions {
		if p.Status != models.StatusOpen || p.Symbol != symbol {
			continue
		}
		if p.Action == incoming {
			continue
		}
		p.Close(price, at)
		realized += p.PnL
		closed++
	}
	if closed > 0 {
		log.Printf("Netted out %d %s position(s) @ %.5f (realized %.2f)", closed, symbol, price, realized)
	}
	return realized, closed
}

// PortfolioSummary is a pure read of the current account state.
func (b *DemoBroker) PortfolioSummary() models.PortfolioSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	openCount := 0
	totalPnL := 0.0
	for _, p := range b.positions {
		if p.Status == models.StatusOpen {
			openCount++
			totalPnL += p.PnL
		}
	}

	return models.PortfolioSummary{
		Balance:       b.balance,
		Equity:        b.balance + totalPnL,
		UnrealizedPnL: totalPnL,
		OpenPositions: openCount,
		TotalTrades:   len(b.tradeHistory),
		WinRate:       b.winRateLocked(),
	}
}

// WinRate is the percentage of closed positions with positive PnL,
// in [0, 100]. It is 0.0 when no position has been closed.
func (b *DemoBroker) WinRate() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.winRateLocked()
}

func (b *DemoBroker) winRateLocked() float64 {
	closed, winners := 0, 0
	for _, p := range b.positions {
		if p.Status != models.StatusClosed {
			continue
		}
		closed++
		if p.PnL > 0 {
			winners++
		}
	}
	if closed == 0 {
		return 0.0
	}
	return float64(winners) / float64(closed) * 100.0
}

// Balance returns the realized cash balance.
func (b *DemoBroker) Balance() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balance
}

// InitialBalance returns the balance the account started with.
func (b *DemoBroker) InitialBalance() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialBalance
}

// OpenPositions returns copies of the currently open positions in
// insertion order.
func (b *DemoBroker) OpenPositions() []models.Position {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []models.Position
	for _, p := range b.positions {
		if p.Status == models.StatusOpen {
			out = append(out, *p)
		}
	}
	return out
}

// LastTrades returns copies of the most recent n trade records, oldest
// first. n <= 0 returns everything.
func (b *DemoBroker) LastTrades(n int) []models.TradeRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return tailCopy(b.tradeHistory, n)
}

// LastEquity returns copies of the most recent n equity-curve points,
// oldest first. n <= 0 returns everything.
func (b *DemoBroker) LastEquity(n int) []models.EquityPoint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return tailCopy(b.equityCurve, n)
}

// Snapshot captures the persistable part of the ledger (balance and
// positions). The audit log and equity curve live in the journal.
func (b *DemoBroker) Snapshot() models.LedgerState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	positions := make([]models.Position, 0, len(b.positions))
	for _, p := range b.positions {
		positions = append(positions, *p)
	}
	return models.LedgerState{
		Balance:        b.balance,
		InitialBalance: b.initialBalance,
		Positions:      positions,
	}
}

// Restore replaces the ledger state with a previously saved snapshot.
// The in-memory trade history restarts empty; the durable audit trail
// is the journal's job.
func (b *DemoBroker) Restore(s models.LedgerState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.Balance > 0 {
		b.balance = s.Balance
	}
	if s.InitialBalance > 0 {
		b.initialBalance = s.InitialBalance
	}
	b.positions = b.positions[:0]
	for i := range s.Positions {
		p := s.Positions[i]
		b.positions = append(b.positions, &p)
	}
}

func tailCopy[T any](s []T, n int) []T {
	if n <= 0 || n > len(s) {
		n = len(s)
	}
	out := make([]T, n)
	copy(out, s[len(s)-n:])
	return out
}
