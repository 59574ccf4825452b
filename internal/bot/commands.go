package bot

import (
	"fmt"
	"strings"
	"time"
)

const helpText = `*Commands*
/ping - liveness check
/status - uptime and cycle count
/positions - open positions
/trades - recent trades
/summary - portfolio summary
/help - this message`

// HandleCommand serves the Telegram command interface. Every command is
// a pure read of the ledger; nothing here mutates trading state.
func (b *Bot) HandleCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return helpText
	}
	cmd := strings.ToLower(fields[0])
	// Strip the @BotName suffix of group-chat commands.
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/ping":
		return "pong \U0001F3D3"

	case "/status":
		return fmt.Sprintf("Running for `%s`, `%d` cycle(s) completed, watching %s",
			b.Uptime().Round(time.Second), b.Cycles(), strings.Join(b.cfg.Symbols, ", "))

	case "/positions":
		positions := b.deps.Ledger.OpenPositions()
		if len(positions) == 0 {
			return "No open positions"
		}
		var sb strings.Builder
		sb.WriteString("*Open positions*\n")
		for _, p := range positions {
			sb.WriteString(fmt.Sprintf("%s %s `%d` @ `%.5f` PnL `%+.2f`\n",
				actionEmoji(p.Action), p.Symbol, p.Units, p.EntryPrice, p.PnL))
		}
		return strings.TrimRight(sb.String(), "\n")

	case "/trades":
		trades := b.deps.Ledger.LastTrades(10)
		if len(trades) == 0 {
			return "No trades yet"
		}
		var sb strings.Builder
		sb.WriteString("*Recent trades*\n")
		for _, t := range trades {
			sb.WriteString(fmt.Sprintf("`%s` %s %s `%d` @ `%.5f`\n",
				t.Timestamp.Format("01-02 15:04"), t.Action, t.Symbol, t.Units, t.Price))
		}
		return strings.TrimRight(sb.String(), "\n")

	case "/summary":
		return buildSummaryMessage(b.deps.Ledger.PortfolioSummary(), b.deps.Ledger.InitialBalance())

	case "/help", "/start":
		return helpText

	default:
		return "Unknown command, try /help"
	}
}
