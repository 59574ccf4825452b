// Package indicators provides the technical analysis values fed into
// the decision prompt.
package indicators

import (
	"fmt"
	"math"

	"forex_pilot/internal/models"
)

// SMA calculates the Simple Moving Average of the closing prices for
// the given period.
func SMA(candles []models.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period, len(candles))
	}

	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	return sum / float64(period), nil
}

// EMA calculates the Exponential Moving Average of the closing prices
// for the given period, seeded with the SMA of the first period.
func EMA(candles []models.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period, len(candles))
	}

	multiplier := 2.0 / float64(period+1)

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += candles[i].Close
	}
	ema := sma / float64(period)

	for i := period; i < len(candles); i++ {
		ema = (candles[i].Close-ema)*multiplier + ema
	}
	return ema, nil
}

// RSI calculates Wilder's Relative Strength Index over closing prices.
// The result is in [0, 100]; an all-gain window returns 100.
func RSI(candles []models.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period+1 {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period+1, len(candles))
	}

	// Seed averages over the first period of changes.
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remainder.
	for i := period + 1; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}

// Bollinger calculates the upper and lower Bollinger bands: the SMA of
// the period plus/minus stdDevs population standard deviations.
func Bollinger(candles []models.Candle, period int, stdDevs float64) (upper, lower float64, err error) {
	mid, err := SMA(candles, period)
	if err != nil {
		return 0, 0, err
	}

	variance := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		d := candles[i].Close - mid
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	return mid + stdDevs*sd, mid - stdDevs*sd, nil
}

// TrendPct is the mean percentage change over the last n closes, used
// as a short-horizon trend hint in the prompt.
func TrendPct(candles []models.Candle, n int) float64 {
	if n < 2 || len(candles) < n {
		return 0
	}
	sum := 0.0
	count := 0
	for i := len(candles) - n + 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		sum += (candles[i].Close - prev) / prev
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
