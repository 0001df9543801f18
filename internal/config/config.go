package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server configures cmd/server.
type Server struct {
	Port           int           `env:"PORT" envDefault:"8080"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	DBMaxConns     int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	RedisURL       string        `env:"REDIS_URL"`
	AdminSecret    string        `env:"ADMIN_SECRET"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL" envDefault:"https://agentpages.dev"`
	StatsTTL       time.Duration `env:"STATS_TTL" envDefault:"30s"`
	CardTimeout    time.Duration `env:"CARD_FETCH_TIMEOUT" envDefault:"8s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	Migrate        bool          `env:"MIGRATE" envDefault:"true"`
	OTelEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Version        string        `env:"APP_VERSION" envDefault:"1.0.0"`
}

// Crawler configures cmd/crawler. Flags override these values.
type Crawler struct {
	DatabaseURL string        `env:"DATABASE_URL"`
	RedisURL    string        `env:"REDIS_URL"`
	SeedsPath   string        `env:"CRAWL_SEEDS"`
	StatePath   string        `env:"CRAWL_STATE" envDefault:"crawl-state.json"`
	Workers     int           `env:"CRAWL_WORKERS" envDefault:"20"`
	Timeout     time.Duration `env:"CRAWL_TIMEOUT" envDefault:"6s"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	Migrate     bool          `env:"MIGRATE" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return cfg, nil
}

func LoadCrawler() (Crawler, error) {
	var cfg Crawler
	if err := ParseEnv(&cfg); err != nil {
		return Crawler{}, err
	}
	return cfg, nil
}

// ParseLevel maps debug/info/warn/error to a slog level; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
