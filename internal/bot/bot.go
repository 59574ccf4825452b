// Package bot is the driver loop: prices in, features computed,
// decision requested, trade booked in the ledger, alert out. Every
// collaborator failure degrades explicitly (synthetic series, HOLD,
// swallowed notification) so a cycle always completes.
package bot

import (
	"context"
	"log"
	"time"

	"forex_pilot/internal/ai"
	"forex_pilot/internal/broker"
	"forex_pilot/internal/config"
	"forex_pilot/internal/indicators"
	"forex_pilot/internal/market"
	"forex_pilot/internal/models"
)

// Advisor is the decision source seen by the driver.
type Advisor interface {
	Decide(ctx context.Context, f ai.Features) models.Decision
}

// Notifier is the outbound alert channel. Fire-and-forget.
type Notifier interface {
	Notify(text string)
}

// Journal is the durable audit log. Errors are logged, never fatal.
type Journal interface {
	RecordTrade(t models.TradeRecord) error
	RecordEquity(e models.EquityPoint) error
}

// StateStore persists ledger snapshots across restarts.
type StateStore interface {
	Load() (models.LedgerState, error)
	Save(state models.LedgerState) error
}

// Deps bundles the collaborators injected into the bot.
type Deps struct {
	Provider market.PriceProvider
	Advisor  Advisor
	Ledger   *broker.DemoBroker
	Journal  Journal
	Notifier Notifier
	Store    StateStore
}

// Bot runs the trading cycles against one ledger.
type Bot struct {
	cfg        *config.Config
	deps       Deps
	lastPrices map[string]float64
	cycleCount int
	startTime  time.Time
	sleep      func(time.Duration) // swapped out in tests
}

// New assembles the bot and restores any saved ledger state.
func New(cfg *config.Config, deps Deps) *Bot {
	b := &Bot{
		cfg:        cfg,
		deps:       deps,
		lastPrices: make(map[string]float64),
		startTime:  time.Now(),
		sleep:      time.Sleep,
	}

	if deps.Store != nil {
		state, err := deps.Store.Load()
		if err != nil {
			log.Printf("Could not load ledger state, starting fresh: %v", err)
		} else if len(state.Positions) > 0 || state.Balance > 0 {
			deps.Ledger.Restore(state)
			log.Printf("Ledger state restored: balance %.2f, %d position(s)",
				deps.Ledger.Balance(), len(state.Positions))
		}
	}

	return b
}

// Poll runs one full cycle: mark to market, analyze every configured
// symbol, and send the periodic summary.
func (b *Bot) Poll(ctx context.Context) {
	b.markToMarket()

	for _, symbol := range b.cfg.Symbols {
		if ctx.Err() != nil {
			return
		}
		b.analyzeSymbol(ctx, symbol)
		b.sleep(time.Duration(b.cfg.SymbolDelaySec) * time.Second) // rate limiting
	}

	b.cycleCount++
	if b.cfg.SummaryEveryCycles > 0 && b.cycleCount%b.cfg.SummaryEveryCycles == 0 {
		b.sendSummary()
	}

	log.Printf("Cycle %d completed", b.cycleCount)
}

// markToMarket reprices open positions with the last known closes and
// journals the resulting equity snapshot.
func (b *Bot) markToMarket() {
	point := b.deps.Ledger.UpdatePositions(b.lastPrices)
	if b.deps.Journal != nil {
		if err := b.deps.Journal.RecordEquity(point); err != nil {
			log.Printf("Journal equity write failed: %v", err)
		}
	}
	b.saveState()
}

// analyzeSymbol runs the per-symbol pipeline: series, features,
// decision, execution.
func (b *Bot) analyzeSymbol(ctx context.Context, symbol string) {
	res := b.deps.Provider.Series(ctx, symbol, b.cfg.CandleCount)
	if res.Synthetic {
		log.Printf("Price feed degraded for %s: %s", symbol, res.Reason)
	}
	if len(res.Candles) == 0 {
		log.Printf("No candles for %s, skipping", symbol)
		return
	}

	features, ok := buildFeatures(symbol, res)
	if !ok {
		log.Printf("Not enough data to compute features for %s, skipping", symbol)
		return
	}
	b.lastPrices[symbol] = features.Price

	decision := b.deps.Advisor.Decide(ctx, features)
	if decision.IsHold() {
		log.Printf("HOLD %s: %s", symbol, decision.Reason)
		return
	}

	b.executeDecision(symbol, decision, features)
}

// buildFeatures computes the indicator snapshot fed to the advisor.
// The longest indicator decides whether there is enough data.
func buildFeatures(symbol string, res market.SeriesResult) (ai.Features, bool) {
	candles := res.Candles

	sma50, err := indicators.SMA(candles, 50)
	if err != nil {
		return ai.Features{}, false
	}
	rsi, err := indicators.RSI(candles, 14)
	if err != nil {
		return ai.Features{}, false
	}
	ema12, err := indicators.EMA(candles, 12)
	if err != nil {
		return ai.Features{}, false
	}
	ema26, err := indicators.EMA(candles, 26)
	if err != nil {
		return ai.Features{}, false
	}
	bbUpper, bbLower, err := indicators.Bollinger(candles, 20, 2.0)
	if err != nil {
		return ai.Features{}, false
	}

	return ai.Features{
		Symbol:         symbol,
		Price:          candles[len(candles)-1].Close,
		RSI:            rsi,
		EMA12:          ema12,
		EMA26:          ema26,
		SMA50:          sma50,
		BollingerUpper: bbUpper,
		BollingerLower: bbLower,
		TrendPct:       indicators.TrendPct(candles, 4),
		Synthetic:      res.Synthetic,
	}, true
}

// executeDecision books the trade. With netting enabled, an opposite
// signal consumes itself closing the standing positions instead of
// opening a new one.
func (b *Bot) executeDecision(symbol string, decision models.Decision, features ai.Features) {
	price := features.Price

	if b.cfg.CloseOnOppositeSig {
		realized, closed := b.deps.Ledger.CloseOpposite(symbol, decision.Action, price, time.Now())
		if closed > 0 {
			b.saveState()
			b.notify(buildCloseAlert(symbol, decision, price, realized, closed))
			return
		}
	}

	if !b.deps.Ledger.ExecuteTrade(symbol, decision.Action, decision.Units, price) {
		log.Printf("Trade not executed for %s", symbol)
		return
	}

	if b.deps.Journal != nil {
		trades := b.deps.Ledger.LastTrades(1)
		if len(trades) == 1 {
			if err := b.deps.Journal.RecordTrade(trades[0]); err != nil {
				log.Printf("Journal trade write failed: %v", err)
			}
		}
	}
	b.saveState()

	summary := b.deps.Ledger.PortfolioSummary()
	b.notify(buildTradeAlert(symbol, decision, features, summary))
	log.Printf("Trade executed and alert sent for %s", symbol)
}

func (b *Bot) sendSummary() {
	summary := b.deps.Ledger.PortfolioSummary()
	b.notify(buildSummaryMessage(summary, b.deps.Ledger.InitialBalance()))
}

func (b *Bot) saveState() {
	if b.deps.Store == nil {
		return
	}
	if err := b.deps.Store.Save(b.deps.Ledger.Snapshot()); err != nil {
		log.Printf("State save failed: %v", err)
	}
}

func (b *Bot) notify(text string) {
	if b.deps.Notifier == nil {
		return
	}
	b.deps.Notifier.Notify(text)
}

// Shutdown persists the final ledger snapshot. Called once, after the
// poll loop has stopped.
func (b *Bot) Shutdown() {
	b.saveState()
	log.Printf("Final ledger state saved: balance %.2f, %d open position(s)",
		b.deps.Ledger.Balance(), len(b.deps.Ledger.OpenPositions()))
}

// Uptime reports how long the bot has been running.
func (b *Bot) Uptime() time.Duration {
	return time.Since(b.startTime)
}

// Cycles reports how many full poll cycles have completed.
func (b *Bot) Cycles() int {
	return b.cycleCount
}
