package bot

import (
	"fmt"
	"strings"

	"forex_pilot/internal/ai"
	"forex_pilot/internal/models"
)

// Telegram message builders. All output is Markdown.

func actionEmoji(a models.Action) string {
	switch a {
	case models.ActionBuy:
		return "\U0001F7E2" // green circle
	case models.ActionSell:
		return "\U0001F534" // red circle
	default:
		return "⏸"
	}
}

func pnlEmoji(pnl float64) string {
	if pnl >= 0 {
		return "\U0001F4C8"
	}
	return "\U0001F4C9"
}

func buildTradeAlert(symbol string, d models.Decision, f ai.Features, s models.PortfolioSummary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s *%s %s*\n", actionEmoji(d.Action), d.Action, symbol))
	sb.WriteString(fmt.Sprintf("Price: `%.5f`\n", f.Price))
	sb.WriteString(fmt.Sprintf("Units: `%d`\n", d.Units))
	sb.WriteString(fmt.Sprintf("Confidence: `%.0f%%`\n", d.Confidence*100))
	if d.Reason != "" {
		sb.WriteString(fmt.Sprintf("Reason: _%s_\n", d.Reason))
	}

	sb.WriteString(fmt.Sprintf("\nRSI(14): `%.1f`  Trend: `%+.2f%%`\n", f.RSI, f.TrendPct*100))
	if f.Synthetic {
		sb.WriteString("⚠ _Simulated price data_\n")
	}

	sb.WriteString(fmt.Sprintf("\nBalance: `%.2f`  Equity: `%.2f`\n", s.Balance, s.Equity))
	sb.WriteString(fmt.Sprintf("Open positions: `%d`", s.OpenPositions))

	return sb.String()
}

func buildCloseAlert(symbol string, d models.Decision, price, realized float64, closed int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s *Netted out %s*\n", pnlEmoji(realized), symbol))
	sb.WriteString(fmt.Sprintf("Opposite signal: `%s` @ `%.5f`\n", d.Action, price))
	sb.WriteString(fmt.Sprintf("Closed: `%d` position(s)\n", closed))
	sb.WriteString(fmt.Sprintf("Realized PnL: `%+.2f`", realized))

	return sb.String()
}

func buildSummaryMessage(s models.PortfolioSummary, initialBalance float64) string {
	var sb strings.Builder

	returnPct := 0.0
	if initialBalance > 0 {
		returnPct = (s.Equity - initialBalance) / initialBalance * 100
	}

	sb.WriteString("\U0001F4CA *Portfolio Summary*\n\n")
	sb.WriteString(fmt.Sprintf("Balance: `%.2f`\n", s.Balance))
	sb.WriteString(fmt.Sprintf("Equity: `%.2f` (`%+.2f%%`)\n", s.Equity, returnPct))
	sb.WriteString(fmt.Sprintf("Unrealized PnL: `%+.2f`\n", s.UnrealizedPnL))
	sb.WriteString(fmt.Sprintf("Open positions: `%d`\n", s.OpenPositions))
	sb.WriteString(fmt.Sprintf("Total trades: `%d`\n", s.TotalTrades))
	sb.WriteString(fmt.Sprintf("Win rate: `%.1f%%`", s.WinRate))

	return sb.String()
}
