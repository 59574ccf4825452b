package market

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"forex_pilot/internal/models"
)

// Synthetic generates a plausible random-walk candle series. It backs
// the fallback path of the live client and can serve as the sole
// provider in offline demo runs.
type Synthetic struct {
	mu  sync.Mutex
	rng *rand.Rand
	// last close per symbol, so consecutive series stay continuous
	last map[string]float64
}

// NewSynthetic creates a generator seeded from the clock.
func NewSynthetic() *Synthetic {
	return NewSyntheticSeeded(time.Now().UnixNano())
}

// NewSyntheticSeeded creates a deterministic generator. Tests use a
// fixed seed.
func NewSyntheticSeeded(seed int64) *Synthetic {
	return &Synthetic{
		rng:  rand.New(rand.NewSource(seed)),
		last: make(map[string]float64),
	}
}

// Generate produces count 5-minute candles ending now, oldest first.
func (s *Synthetic) Generate(symbol string, count int) []models.Candle {
	if count <= 0 {
		count = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.last[symbol]
	if !ok {
		price = basePrice(symbol)
	}

	start := time.Now().Add(-time.Duration(count) * 5 * time.Minute)
	candles := make([]models.Candle, 0, count)
	for i := 0; i < count; i++ {
		open := price
		// ~0.1% per-bar volatility, same order as real 5min forex bars.
		price = price * (1 + s.rng.NormFloat64()*0.001)
		high := maxf(open, price) * (1 + absf(s.rng.NormFloat64())*0.0005)
		low := minf(open, price) * (1 - absf(s.rng.NormFloat64())*0.0005)

		candles = append(candles, models.Candle{
			Time:   start.Add(time.Duration(i+1) * 5 * time.Minute),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: float64(1000 + s.rng.Intn(9000)),
		})
	}
	s.last[symbol] = price
	return candles
}

// Series implements PriceProvider. A generated series is always marked
// synthetic.
func (s *Synthetic) Series(_ context.Context, symbol string, count int) SeriesResult {
	return SeriesResult{
		Candles:   s.Generate(symbol, count),
		Synthetic: true,
		Reason:    "synthetic provider",
	}
}

// LatestPrice implements PriceProvider.
func (s *Synthetic) LatestPrice(_ context.Context, symbol string) (float64, error) {
	candles := s.Generate(symbol, 1)
	return candles[len(candles)-1].Close, nil
}

func basePrice(symbol string) float64 {
	if strings.Contains(symbol, "JPY") {
		return 150.0
	}
	return 1.1000
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
