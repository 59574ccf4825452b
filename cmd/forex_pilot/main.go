package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"forex_pilot/internal/ai"
	"forex_pilot/internal/bot"
	"forex_pilot/internal/broker"
	"forex_pilot/internal/config"
	"forex_pilot/internal/dashboard"
	"forex_pilot/internal/journal"
	"forex_pilot/internal/logger"
	"forex_pilot/internal/market"
	"forex_pilot/internal/storage"
	"forex_pilot/internal/telegram"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	cfg.Version = version

	logger.Setup(cfg.LogFile, cfg.MaxLogSizeMB, cfg.MaxLogBackups)
	log.Printf("Starting forex_pilot v%s", version)
	log.Printf("Watching symbols: %v (every %ds)", cfg.Symbols, cfg.PollIntervalSec)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Price source: Twelve Data when a key is configured, otherwise a
	// deterministic random walk so the rest of the pipeline stays live.
	var provider market.PriceProvider
	if cfg.TwelveDataKey != "" {
		provider = market.NewTwelveDataClient(cfg.TwelveDataKey, cfg.CandleInterval)
	} else {
		provider = market.NewSynthetic()
	}

	jnl, err := journal.NewSQLite(cfg.JournalPath)
	if err != nil {
		log.Fatalf("Could not open journal %s: %v", cfg.JournalPath, err)
	}
	defer jnl.Close()

	ledger := broker.New(cfg.InitialBalance)
	notifier := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID)

	b := bot.New(cfg, bot.Deps{
		Provider: provider,
		Advisor:  ai.NewAdvisor(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.DefaultUnits),
		Ledger:   ledger,
		Journal:  jnl,
		Notifier: notifier,
		Store:    storage.NewStore(cfg.StateFile),
	})

	server := dashboard.NewServer(ledger)
	go func() {
		if err := server.Run(ctx, cfg.DashboardAddr); err != nil {
			log.Printf("Dashboard server stopped: %v", err)
		}
	}()

	if notifier.Enabled() {
		go notifier.Listen(ctx, b.HandleCommand)
		notifier.Notify("\U0001F916 forex_pilot v" + version + " started")
	}

	cooldown := time.Duration(cfg.ErrorCooldownSec) * time.Second
	runCycle(ctx, b, cooldown)

	ticker := time.NewTicker(time.Duration(cfg.PollIntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutdown signal received")
			shutdown(b, notifier)
			return
		case <-ticker.C:
			runCycle(ctx, b, cooldown)
		}
	}
}

// runCycle contains a cycle failure: a panic anywhere in the pipeline
// is logged and the loop resumes after the cooldown instead of taking
// the process down.
func runCycle(ctx context.Context, b *bot.Bot, cooldown time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Cycle failed: %v, cooling down for %s", r, cooldown)
			select {
			case <-ctx.Done():
			case <-time.After(cooldown):
			}
		}
	}()
	b.Poll(ctx)
}

func shutdown(b *bot.Bot, notifier *telegram.Client) {
	b.Shutdown()
	if notifier.Enabled() {
		notifier.Notify("\U0001F6D1 forex_pilot stopped after " + b.Uptime().Round(time.Second).String())
	}
	log.Printf("Stopped after %s, %d cycle(s)", b.Uptime().Round(time.Second), b.Cycles())
}
