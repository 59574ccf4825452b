package ai

// Features is the indicator snapshot sent to the model for one symbol.
type Features struct {
	Symbol         string  `json:"symbol"`
	Price          float64 `json:"price"`
	RSI            float64 `json:"rsi"`
	EMA12          float64 `json:"ema_12"`
	EMA26          float64 `json:"ema_26"`
	SMA50          float64 `json:"sma_50"`
	BollingerUpper float64 `json:"bb_upper"`
	BollingerLower float64 `json:"bb_lower"`
	TrendPct       float64 `json:"trend_pct"`
	Synthetic      bool    `json:"synthetic_data"`
}

// rawDecision is the loosely-shaped JSON the model returns. It is
// validated once, at this boundary, into a models.Decision.
type rawDecision struct {
	Action     string  `json:"action"`
	Units      int     `json:"units"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}
