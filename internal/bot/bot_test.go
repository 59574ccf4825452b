package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forex_pilot/internal/ai"
	"forex_pilot/internal/broker"
	"forex_pilot/internal/config"
	"forex_pilot/internal/market"
	"forex_pilot/internal/models"
)

type fakeProvider struct {
	series market.SeriesResult
}

func (f *fakeProvider) LatestPrice(_ context.Context, _ string) (float64, error) {
	if len(f.series.Candles) == 0 {
		return 0, context.Canceled
	}
	return f.series.Candles[len(f.series.Candles)-1].Close, nil
}

func (f *fakeProvider) Series(_ context.Context, _ string, _ int) market.SeriesResult {
	return f.series
}

type fakeAdvisor struct {
	decision models.Decision
	features []ai.Features
}

func (f *fakeAdvisor) Decide(_ context.Context, feat ai.Features) models.Decision {
	f.features = append(f.features, feat)
	return f.decision
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(text string) {
	f.messages = append(f.messages, text)
}

type fakeJournal struct {
	trades []models.TradeRecord
	equity []models.EquityPoint
}

func (f *fakeJournal) RecordTrade(t models.TradeRecord) error {
	f.trades = append(f.trades, t)
	return nil
}

func (f *fakeJournal) RecordEquity(e models.EquityPoint) error {
	f.equity = append(f.equity, e)
	return nil
}

type fakeStore struct {
	state models.LedgerState
	saves int
}

func (f *fakeStore) Load() (models.LedgerState, error) { return f.state, nil }

func (f *fakeStore) Save(state models.LedgerState) error {
	f.state = state
	f.saves++
	return nil
}

// trendingCandles returns an up-trending series long enough for every
// indicator the feature builder computes.
func trendingCandles(n int, last float64) []models.Candle {
	candles := make([]models.Candle, n)
	start := last - float64(n-1)*0.0001
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := range candles {
		c := start + float64(i)*0.0001
		candles[i] = models.Candle{
			Time:  t.Add(time.Duration(i) * 5 * time.Minute),
			Open:  c - 0.00005,
			High:  c + 0.0001,
			Low:   c - 0.0001,
			Close: c,
		}
	}
	return candles
}

func testConfig(symbols ...string) *config.Config {
	return &config.Config{
		Symbols:            symbols,
		CandleCount:        100,
		SymbolDelaySec:     0,
		SummaryEveryCycles: 2,
		DefaultUnits:       1000,
		InitialBalance:     10000.0,
	}
}

func newTestBot(cfg *config.Config, provider market.PriceProvider, advisor Advisor) (*Bot, *fakeNotifier, *fakeJournal, *fakeStore) {
	notifier := &fakeNotifier{}
	journal := &fakeJournal{}
	store := &fakeStore{}
	b := New(cfg, Deps{
		Provider: provider,
		Advisor:  advisor,
		Ledger:   broker.New(cfg.InitialBalance),
		Journal:  journal,
		Notifier: notifier,
		Store:    store,
	})
	b.sleep = func(time.Duration) {}
	return b, notifier, journal, store
}

func TestPollExecutesBuyDecision(t *testing.T) {
	provider := &fakeProvider{series: market.SeriesResult{Candles: trendingCandles(100, 1.1000)}}
	advisor := &fakeAdvisor{decision: models.Decision{
		Action:     models.ActionBuy,
		Units:      1000,
		Confidence: 0.8,
		Reason:     "uptrend with RSI headroom",
	}}
	b, notifier, journal, store := newTestBot(testConfig("EUR/USD"), provider, advisor)

	b.Poll(context.Background())

	positions := b.deps.Ledger.OpenPositions()
	require.Len(t, positions, 1)
	assert.Equal(t, models.ActionBuy, positions[0].Action)
	assert.Equal(t, 1000, positions[0].Units)
	assert.InDelta(t, 1.1000, positions[0].EntryPrice, 1e-9)

	require.Len(t, journal.trades, 1)
	assert.Equal(t, "EUR/USD", journal.trades[0].Symbol)
	require.Len(t, journal.equity, 1, "one equity snapshot per cycle")

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "BUY EUR/USD")
	assert.Contains(t, notifier.messages[0], "uptrend")

	assert.Greater(t, store.saves, 0, "state persisted during the cycle")
	assert.Len(t, store.state.Positions, 1)
}

func TestPollHoldOpensNothing(t *testing.T) {
	provider := &fakeProvider{series: market.SeriesResult{Candles: trendingCandles(100, 1.1000)}}
	advisor := &fakeAdvisor{decision: models.Hold("mixed signals")}
	b, notifier, journal, _ := newTestBot(testConfig("EUR/USD"), provider, advisor)

	b.Poll(context.Background())

	assert.Empty(t, b.deps.Ledger.OpenPositions())
	assert.Empty(t, journal.trades)
	assert.Empty(t, notifier.messages)
}

func TestPollFeaturesReflectSyntheticSeries(t *testing.T) {
	provider := &fakeProvider{series: market.SeriesResult{
		Candles:   trendingCandles(100, 1.1000),
		Synthetic: true,
		Reason:    "no api key",
	}}
	advisor := &fakeAdvisor{decision: models.Hold("synthetic data")}
	b, _, _, _ := newTestBot(testConfig("EUR/USD"), provider, advisor)

	b.Poll(context.Background())

	require.Len(t, advisor.features, 1)
	assert.True(t, advisor.features[0].Synthetic)
	assert.Equal(t, "EUR/USD", advisor.features[0].Symbol)
	assert.InDelta(t, 1.1000, advisor.features[0].Price, 1e-9)
	assert.Greater(t, advisor.features[0].RSI, 50.0, "uptrend should push RSI above the midline")
}

func TestPollSkipsShortSeries(t *testing.T) {
	provider := &fakeProvider{series: market.SeriesResult{Candles: trendingCandles(10, 1.1000)}}
	advisor := &fakeAdvisor{decision: models.Decision{Action: models.ActionBuy, Units: 1000}}
	b, _, _, _ := newTestBot(testConfig("EUR/USD"), provider, advisor)

	b.Poll(context.Background())

	assert.Empty(t, advisor.features, "advisor must not see incomplete features")
	assert.Empty(t, b.deps.Ledger.OpenPositions())
}

func TestPollNetsOutOppositePosition(t *testing.T) {
	cfg := testConfig("EUR/USD")
	cfg.CloseOnOppositeSig = true

	provider := &fakeProvider{series: market.SeriesResult{Candles: trendingCandles(100, 1.1010)}}
	advisor := &fakeAdvisor{decision: models.Decision{
		Action:     models.ActionSell,
		Units:      1000,
		Confidence: 0.7,
		Reason:     "reversal",
	}}
	b, notifier, _, _ := newTestBot(cfg, provider, advisor)

	require.True(t, b.deps.Ledger.ExecuteTrade("EUR/USD", models.ActionBuy, 1000, 1.1000))

	b.Poll(context.Background())

	// The opposite signal consumed itself closing the BUY; no new
	// SELL position was opened.
	assert.Empty(t, b.deps.Ledger.OpenPositions())
	summary := b.deps.Ledger.PortfolioSummary()
	assert.Equal(t, 1, summary.TotalTrades)

	var netted bool
	for _, m := range notifier.messages {
		if strings.Contains(m, "Netted out EUR/USD") {
			netted = true
			assert.Contains(t, m, "+1.00")
		}
	}
	assert.True(t, netted, "expected a netting alert")
}

func TestPollSummaryCadence(t *testing.T) {
	provider := &fakeProvider{series: market.SeriesResult{Candles: trendingCandles(100, 1.1000)}}
	advisor := &fakeAdvisor{decision: models.Hold("waiting")}
	b, notifier, _, _ := newTestBot(testConfig("EUR/USD"), provider, advisor)

	b.Poll(context.Background())
	assert.Empty(t, notifier.messages, "no summary after the first cycle")

	b.Poll(context.Background())
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "Portfolio Summary")
	assert.Contains(t, notifier.messages[0], "10000.00")
}

func TestNewRestoresSavedState(t *testing.T) {
	cfg := testConfig("EUR/USD")
	store := &fakeStore{state: models.LedgerState{
		Balance:        10000.0,
		InitialBalance: 10000.0,
		Positions: []models.Position{{
			Symbol:     "EUR/USD",
			Action:     models.ActionBuy,
			Units:      1000,
			EntryPrice: 1.0950,
			EntryTime:  time.Now().Add(-time.Hour),
			Status:     models.StatusOpen,
		}},
	}}

	ledger := broker.New(cfg.InitialBalance)
	New(cfg, Deps{
		Provider: &fakeProvider{},
		Advisor:  &fakeAdvisor{decision: models.Hold("idle")},
		Ledger:   ledger,
		Store:    store,
	})

	positions := ledger.OpenPositions()
	require.Len(t, positions, 1)
	assert.InDelta(t, 1.0950, positions[0].EntryPrice, 1e-9)
}

func TestHandleCommands(t *testing.T) {
	provider := &fakeProvider{series: market.SeriesResult{Candles: trendingCandles(100, 1.1000)}}
	advisor := &fakeAdvisor{decision: models.Hold("idle")}
	b, _, _, _ := newTestBot(testConfig("EUR/USD", "USD/JPY"), provider, advisor)

	assert.Equal(t, "pong \U0001F3D3", b.HandleCommand("/ping"))
	assert.Contains(t, b.HandleCommand("/status"), "EUR/USD, USD/JPY")
	assert.Equal(t, "No open positions", b.HandleCommand("/positions"))
	assert.Equal(t, "No trades yet", b.HandleCommand("/trades"))
	assert.Contains(t, b.HandleCommand("/summary"), "Win rate")
	assert.Contains(t, b.HandleCommand("/help"), "/positions")
	assert.Contains(t, b.HandleCommand("/bogus"), "Unknown command")
	assert.Contains(t, b.HandleCommand("/ping@ForexPilotBot"), "pong")

	require.True(t, b.deps.Ledger.ExecuteTrade("EUR/USD", models.ActionBuy, 1000, 1.1000))
	assert.Contains(t, b.HandleCommand("/positions"), "EUR/USD")
	assert.Contains(t, b.HandleCommand("/trades"), "BUY EUR/USD")
}
