package models

import "time"

// Candle represents one OHLCV bar of market data.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Decision is the validated output of the decision source. It is a
// strict result built once at the AI boundary: either a HOLD (with a
// reason) or a fully populated BUY/SELL. Downstream code never needs to
// re-check optional fields.
type Decision struct {
	Action     Action  `json:"action"`
	Units      int     `json:"units"`
	Confidence float64 `json:"confidence"` // in [0, 1]
	Reason     string  `json:"reason"`
}

// Hold builds the degraded decision used whenever the decision source
// fails or returns something malformed.
func Hold(reason string) Decision {
	return Decision{Action: ActionHold, Confidence: 0.0, Reason: reason}
}

// IsHold reports whether the decision carries no trade.
func (d Decision) IsHold() bool {
	return d.Action == ActionHold
}
