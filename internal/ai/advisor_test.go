package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"forex_pilot/internal/models"
)

func testAdvisor() *Advisor {
	return NewAdvisor("", "", 1000)
}

func TestParseDecisionValid(t *testing.T) {
	t.Parallel()

	d := testAdvisor().parseDecision(`{"action": "BUY", "units": 500, "confidence": 0.8, "reason": "oversold"}`)
	assert.Equal(t, models.ActionBuy, d.Action)
	assert.Equal(t, 500, d.Units)
	assert.InDelta(t, 0.8, d.Confidence, 1e-9)
	assert.Equal(t, "oversold", d.Reason)
	assert.False(t, d.IsHold())
}

func TestParseDecisionStripsCodeFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"plain_fence", "```\n{\"action\": \"SELL\", \"units\": 100, \"confidence\": 0.6, \"reason\": \"overbought\"}\n```"},
		{"json_fence", "```json\n{\"action\": \"SELL\", \"units\": 100, \"confidence\": 0.6, \"reason\": \"overbought\"}\n```"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := testAdvisor().parseDecision(tt.content)
			assert.Equal(t, models.ActionSell, d.Action)
			assert.Equal(t, 100, d.Units)
		})
	}
}

func TestParseDecisionDegradesToHold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"not_json", "I think you should buy EUR/USD because..."},
		{"empty", ""},
		{"unknown_action", `{"action": "SHORT", "units": 100, "confidence": 0.5, "reason": "x"}`},
		{"confidence_too_high", `{"action": "BUY", "units": 100, "confidence": 1.5, "reason": "x"}`},
		{"confidence_negative", `{"action": "BUY", "units": 100, "confidence": -0.1, "reason": "x"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := testAdvisor().parseDecision(tt.content)
			assert.True(t, d.IsHold())
			assert.Equal(t, 0.0, d.Confidence)
		})
	}
}

func TestParseDecisionDefaultsUnits(t *testing.T) {
	t.Parallel()

	d := testAdvisor().parseDecision(`{"action": "BUY", "confidence": 0.7, "reason": "trend up"}`)
	assert.Equal(t, models.ActionBuy, d.Action)
	assert.Equal(t, 1000, d.Units) // missing units fall back to the configured default
}

func TestParseDecisionLowercaseAction(t *testing.T) {
	t.Parallel()

	d := testAdvisor().parseDecision(`{"action": "hold", "reason": "choppy market"}`)
	assert.True(t, d.IsHold())
	assert.Equal(t, "choppy market", d.Reason)
}

func TestDecideWithoutKeyHolds(t *testing.T) {
	t.Parallel()

	d := testAdvisor().Decide(context.Background(), Features{Symbol: "EUR/USD", Price: 1.1})
	assert.True(t, d.IsHold())
}
