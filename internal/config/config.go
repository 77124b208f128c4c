package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR"`

	CatalogPath string `env:"CATALOG_PATH"`
	CatalogDB   string `env:"CATALOG_DB"`
	RedisURL    string `env:"REDIS_URL"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	TurnSeconds  int           `env:"TURN_SECONDS" envDefault:"20"`
	MatchIdleTTL time.Duration `env:"MATCH_IDLE_TTL" envDefault:"6h"`
	TokenFloor   *int          `env:"TOKEN_FLOOR"`
	RNGSeed      int64         `env:"RNG_SEED"`
}

// TurnDeadline is the time a team has to answer. Zero disables the deadline.
func (c *Config) TurnDeadline() time.Duration {
	return time.Duration(c.TurnSeconds) * time.Second
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.TurnSeconds < 0 {
		return nil, fmt.Errorf("TURN_SECONDS must not be negative, got %d", cfg.TurnSeconds)
	}
	if cfg.MatchIdleTTL < 0 {
		return nil, fmt.Errorf("MATCH_IDLE_TTL must not be negative, got %s", cfg.MatchIdleTTL)
	}
	return &cfg, nil
}
