// Package ai turns an indicator snapshot into a validated trade
// decision via an OpenAI chat completion. Every failure mode (missing
// key, API error, malformed output) degrades to HOLD so the driver loop
// keeps running.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"forex_pilot/internal/models"
)

const systemPrompt = `You are an expert forex trading assistant.
Trading rules:
- RSI > 70: overbought (consider SELL)
- RSI < 30: oversold (consider BUY)
- EMA12 > EMA26: bullish trend
- Price near a Bollinger band: potential reversal

Respond ONLY with JSON in this exact shape:
{"action": "BUY|SELL|HOLD", "units": 1000, "confidence": 0.75, "reason": "short explanation"}`

// Advisor is the decision source.
type Advisor struct {
	client       *openai.Client
	model        string
	defaultUnits int
}

// NewAdvisor creates an advisor. With an empty API key decisions are
// disabled and every call returns HOLD.
func NewAdvisor(apiKey, model string, defaultUnits int) *Advisor {
	if model == "" {
		model = openai.GPT4
	}
	if defaultUnits <= 0 {
		defaultUnits = 1000
	}

	a := &Advisor{model: model, defaultUnits: defaultUnits}
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, decision source disabled (always HOLD)")
		return a
	}
	a.client = openai.NewClient(apiKey)
	return a
}

// Decide asks the model for a BUY/SELL/HOLD call on the given features.
// It never returns an error: malformed or failed responses degrade to a
// HOLD with zero confidence and the reason recorded.
func (a *Advisor) Decide(ctx context.Context, f Features) models.Decision {
	if a.client == nil {
		return models.Hold("decision source disabled")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(f)},
		},
	})
	if err != nil {
		log.Printf("Decision failed for %s: %v", f.Symbol, err)
		return models.Hold("analysis error")
	}
	if len(resp.Choices) == 0 {
		log.Printf("Decision failed for %s: empty completion", f.Symbol)
		return models.Hold("analysis error")
	}

	return a.parseDecision(resp.Choices[0].Message.Content)
}

func buildPrompt(f Features) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze this market data:\n\n")
	fmt.Fprintf(&sb, "Pair: %s\n", f.Symbol)
	fmt.Fprintf(&sb, "Current Price: %.5f\n", f.Price)
	fmt.Fprintf(&sb, "RSI (14): %.2f\n", f.RSI)
	fmt.Fprintf(&sb, "EMA 12: %.5f\n", f.EMA12)
	fmt.Fprintf(&sb, "EMA 26: %.5f\n", f.EMA26)
	fmt.Fprintf(&sb, "SMA 50: %.5f\n", f.SMA50)
	fmt.Fprintf(&sb, "Bollinger Upper: %.5f\n", f.BollingerUpper)
	fmt.Fprintf(&sb, "Bollinger Lower: %.5f\n", f.BollingerLower)
	fmt.Fprintf(&sb, "Recent trend (mean pct change): %.4f\n", f.TrendPct)
	if f.Synthetic {
		fmt.Fprintf(&sb, "\nNote: price feed is degraded; this data is synthetic. Be conservative.\n")
	}
	return sb.String()
}

// parseDecision validates the model output into a strict Decision.
// Anything out of shape degrades to HOLD.
func (a *Advisor) parseDecision(content string) models.Decision {
	content = stripFences(strings.TrimSpace(content))

	var raw rawDecision
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		log.Printf("Unparseable decision %q: %v", truncate(content, 120), err)
		return models.Hold("malformed decision payload")
	}

	action := models.Action(strings.ToUpper(strings.TrimSpace(raw.Action)))
	switch action {
	case models.ActionHold:
		return models.Hold(orDefault(raw.Reason, "model chose to hold"))
	case models.ActionBuy, models.ActionSell:
	default:
		log.Printf("Unknown decision action %q", raw.Action)
		return models.Hold("unknown action")
	}

	units := raw.Units
	if units <= 0 {
		units = a.defaultUnits
	}
	confidence := raw.Confidence
	if confidence < 0 || confidence > 1 {
		log.Printf("Decision confidence %.3f out of range, holding", raw.Confidence)
		return models.Hold("confidence out of range")
	}

	return models.Decision{
		Action:     action,
		Units:      units,
		Confidence: confidence,
		Reason:     orDefault(raw.Reason, "no reason given"),
	}
}

// stripFences removes a surrounding markdown code block, with or
// without a "json" language tag.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
