package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	RedisURL    string
	DataDir     string

	// Energy gate settings.
	EnergyMax          int
	EnergyCostPerLevel int
	EnergyRegenMinutes int
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:           getEnv("REDIS_URL", "localhost:6379"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		EnergyMax:          getEnvInt("ENERGY_MAX", 6),
		EnergyCostPerLevel: getEnvInt("ENERGY_COST_PER_LEVEL", 3),
		EnergyRegenMinutes: getEnvInt("ENERGY_REGEN_MINUTES", 3),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
