// Package config loads server configuration from the environment, with an
// optional .env file for development setups.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings of the server binary. Empty DSNs select the
// in-memory stores; an empty feed URL disables the live feed.
type Config struct {
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"`
	PostgresDSN   string        `envconfig:"POSTGRES_DSN"`
	ClickhouseDSN string        `envconfig:"CLICKHOUSE_DSN"`
	FeedURL       string        `envconfig:"FEED_URL"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5s"`
	PassBudget    time.Duration `envconfig:"PASS_BUDGET" default:"50ms"`
	Workers       int           `envconfig:"WORKERS" default:"1"`
	WindowSize    int           `envconfig:"WINDOW_SIZE" default:"24"`
}

// Load reads the environment into a Config. A .env file in the working
// directory is applied first when present; its absence is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FXLAB", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
