package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Local stores
	AdvisorDBPath  string
	CooldownDBPath string
	ReportsDir     string

	// Risk profiles
	ProfilesPath    string
	DefaultBankroll float64

	// Notification sinks
	DiscordWebhookURL string
	TelegramToken     string
	TelegramChatID    int64
	FanoutPort        int
	SinkTimeout       time.Duration

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AdvisorDBPath:  envStr("ADVISOR_DB_PATH", "data/advisor.db"),
		CooldownDBPath: envStr("COOLDOWN_DB_PATH", "data/cooldowns.db"),
		ReportsDir:     envStr("REPORTS_DIR", "reports"),

		ProfilesPath:    envStr("RISK_PROFILES_PATH", "internal/config/risk_profiles.yaml"),
		DefaultBankroll: envFloat("DEFAULT_BANKROLL", 1000),

		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),
		TelegramToken:     envStr("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    int64(envInt("TELEGRAM_CHAT_ID", 0)),
		// 0 disables the fanout WebSocket server.
		FanoutPort:  envInt("FANOUT_PORT", 0),
		SinkTimeout: time.Duration(envInt("SINK_TIMEOUT_SEC", 10)) * time.Second,

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
