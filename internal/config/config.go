// Package config builds the process configuration exactly once at
// startup. The resulting struct is handed to each collaborator's
// constructor; nothing reads the environment after Load returns.
package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the bot needs to run. Every credential is
// optional: a missing key degrades the matching collaborator (synthetic
// prices, permanent HOLD, silent notifier) instead of aborting.
type Config struct {
	// Credentials
	OpenAIAPIKey   string
	OpenAIModel    string
	TelegramToken  string
	TelegramChatID string
	TwelveDataKey  string

	// Trading parameters
	Symbols             []string
	PollIntervalSec     int     // seconds between cycles
	SymbolDelaySec      int     // pause between per-symbol analyses
	SummaryEveryCycles  int     // portfolio summary cadence
	CandleCount         int     // series length per analysis
	CandleInterval      string  // Twelve Data interval, e.g. "5min"
	DefaultUnits        int     // trade size when the model omits units
	InitialBalance      float64 // demo account starting balance
	CloseOnOppositeSig  bool    // net out open positions on an opposite signal
	ErrorCooldownSec    int     // pause after a failed cycle

	// Surfaces and files
	DashboardAddr string
	StateFile     string
	JournalPath   string

	// Logging
	LogFile       string
	MaxLogSizeMB  int
	MaxLogBackups int

	Version string
}

// secretVars are echoed masked at startup so a misconfigured deployment
// is visible without leaking keys into the log.
var secretVars = map[string]bool{
	"OPENAI_API_KEY":     true,
	"TELEGRAM_BOT_TOKEN": true,
	"TELEGRAM_CHAT_ID":   true,
	"TWELVEDATA_API_KEY": true,
}

// Load reads .env (if present) and the environment, applies defaults
// and returns the assembled configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file found, using system environment variables")
	}

	cfg := &Config{
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
		TwelveDataKey:  os.Getenv("TWELVEDATA_API_KEY"),

		Symbols:            splitList(getEnv("SYMBOLS", "EUR/USD,USD/JPY")),
		PollIntervalSec:    getEnvAsInt("POLL_INTERVAL_SEC", 300),
		SymbolDelaySec:     getEnvAsInt("SYMBOL_DELAY_SEC", 2),
		SummaryEveryCycles: getEnvAsInt("SUMMARY_EVERY_CYCLES", 12),
		CandleCount:        getEnvAsInt("CANDLE_COUNT", 100),
		CandleInterval:     getEnv("CANDLE_INTERVAL", "5min"),
		DefaultUnits:       getEnvAsInt("DEFAULT_UNITS", 1000),
		InitialBalance:     getEnvAsFloat64("INITIAL_BALANCE", 10000.0),
		CloseOnOppositeSig: getEnvAsBool("CLOSE_ON_OPPOSITE_SIGNAL", false),
		ErrorCooldownSec:   getEnvAsInt("ERROR_COOLDOWN_SEC", 60),

		DashboardAddr: getEnv("DASHBOARD_ADDR", "localhost:5000"),
		StateFile:     getEnv("STATE_FILE", "ledger_state.json"),
		JournalPath:   getEnv("JOURNAL_DB", "forex_pilot.sqlite"),

		LogFile:       getEnv("LOG_FILE", "forex_pilot.log"),
		MaxLogSizeMB:  getEnvAsInt("MAX_LOG_SIZE_MB", 10),
		MaxLogBackups: getEnvAsInt("MAX_LOG_BACKUPS", 3),
	}

	warnMissing(cfg)
	echoEnvFile()

	return cfg
}

func warnMissing(cfg *Config) {
	if cfg.TwelveDataKey == "" {
		log.Println("Warning: TWELVEDATA_API_KEY missing, price feed will be synthetic")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY missing, decisions disabled (always HOLD)")
	}
	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		log.Println("Warning: Telegram credentials missing, notifications disabled")
	}
}

// echoEnvFile prints the variables defined in .env, masking secrets to
// their last 4 characters.
func echoEnvFile() {
	envMap, err := godotenv.Read()
	if err != nil {
		return
	}
	log.Println("--- .env file variables ---")
	for key, val := range envMap {
		if secretVars[key] {
			masked := "***"
			if len(val) > 4 {
				masked = "***" + val[len(val)-4:]
			}
			log.Printf("%s=%s", key, masked)
		} else {
			log.Printf("%s=%s", key, val)
		}
	}
	log.Println("---------------------------")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
