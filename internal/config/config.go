package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config carries tunables for the workbench. Matching thresholds default to
// the values the matcher was calibrated with; overriding them is an
// operational escape hatch, not something the core depends on.
type Config struct {
	WorkerCount    int
	FuzzyThreshold float64
	MaxMatches     int
	PrettyLog      bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		WorkerCount:    getEnvInt("MXWB_WORKER_COUNT", 4),
		FuzzyThreshold: getEnvFloat("MXWB_FUZZY_THRESHOLD", 0.8),
		MaxMatches:     getEnvInt("MXWB_MAX_MATCHES", 500),
		PrettyLog:      getEnvBool("MXWB_PRETTY_LOG", true),
	}
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
