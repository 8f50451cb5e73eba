package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"whackamole/internal/game"
)

type Config struct {
	Port          string
	DatabaseURL   string
	RoundDuration int // seconds
	TickInterval  time.Duration
	StartLives    int
	GridSize      int
	LegacyQuirks  bool
	LogLevel      string
	SessionTTL    time.Duration
}

// Load reads the environment, after merging in a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()

	def := game.DefaultConfig()
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RoundDuration: getEnvInt("ROUND_DURATION", def.RoundSeconds),
		TickInterval:  time.Duration(getEnvInt("TICK_INTERVAL_MS", int(def.TickInterval/time.Millisecond))) * time.Millisecond,
		StartLives:    getEnvInt("START_LIVES", def.StartLives),
		GridSize:      getEnvInt("GRID_SIZE", def.Cells),
		LegacyQuirks:  getEnvBool("LEGACY_QUIRKS", false),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
	}
	return cfg
}

// Game derives the controller settings.
func (c Config) Game() game.Config {
	return game.Config{
		Cells:        c.GridSize,
		StartLives:   c.StartLives,
		RoundSeconds: c.RoundDuration,
		TickInterval: c.TickInterval,
		LegacyQuirks: c.LegacyQuirks,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
