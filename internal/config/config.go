package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

const (
	CatalogSourceEmbedded = "embedded"
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	ResultStrategy string `env:"RESULT_STRATEGY" envDefault:"weighted"`

	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"embedded"`
	CatalogPath   string `env:"CATALOG_PATH"`
	DatabaseURL   string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SessionTTLMinutes       int `env:"SESSION_TTL_MINUTES" envDefault:"120"`
	SubmitRateWindowSeconds int `env:"SUBMIT_RATE_WINDOW_SECONDS" envDefault:"60"`
	SubmitRateMax           int `env:"SUBMIT_RATE_MAX" envDefault:"30"`
	SessionRateMax          int `env:"SESSION_RATE_MAX" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	c.CatalogSource = strings.ToLower(strings.TrimSpace(c.CatalogSource))
	switch c.CatalogSource {
	case "", CatalogSourceEmbedded:
		c.CatalogSource = CatalogSourceEmbedded
	case CatalogSourceFile:
		if strings.TrimSpace(c.CatalogPath) == "" {
			return fmt.Errorf("CATALOG_PATH is required when CATALOG_SOURCE=%s", CatalogSourceFile)
		}
	case CatalogSourcePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when CATALOG_SOURCE=%s", CatalogSourcePostgres)
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	if c.SubmitRateWindowSeconds < 0 || c.SubmitRateMax < 0 || c.SessionRateMax < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}
