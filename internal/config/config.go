// Package config loads service configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

// Config holds everything the serve command needs. Constructed once at
// process start and passed down; nothing reads the environment after Load.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// DatabasePath is the SQLite database file path.
	DatabasePath string `yaml:"database_path"`

	// Currency is the ISO 4217 code payment intents are created in.
	Currency string `yaml:"currency"`

	Stripe StripeConfig `yaml:"stripe"`
}

// StripeConfig holds the Stripe credentials. The webhook secret is the
// shared secret webhook signatures are verified against.
type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// Default returns the built-in defaults. Secrets have no default.
func Default() Config {
	return Config{
		ListenAddr:   ":8080",
		DatabasePath: "settle.db",
		Currency:     "inr",
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped if path is empty), then environment overrides:
//
//	SETTLE_LISTEN_ADDR, SETTLE_DB_PATH, SETTLE_CURRENCY,
//	STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ListenAddr = getEnv("SETTLE_LISTEN_ADDR", cfg.ListenAddr)
	cfg.DatabasePath = getEnv("SETTLE_DB_PATH", cfg.DatabasePath)
	cfg.Currency = getEnv("SETTLE_CURRENCY", cfg.Currency)
	cfg.Stripe.SecretKey = getEnv("STRIPE_SECRET_KEY", cfg.Stripe.SecretKey)
	cfg.Stripe.WebhookSecret = getEnv("STRIPE_WEBHOOK_SECRET", cfg.Stripe.WebhookSecret)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required fields are present and well-formed.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("config: listen_addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("config: database_path is required")
	}
	if _, err := currency.ParseISO(c.Currency); err != nil {
		return fmt.Errorf("config: invalid currency %q: %w", c.Currency, err)
	}
	if c.Stripe.SecretKey == "" {
		return errors.New("config: stripe secret_key is required (STRIPE_SECRET_KEY)")
	}
	if c.Stripe.WebhookSecret == "" {
		return errors.New("config: stripe webhook_secret is required (STRIPE_WEBHOOK_SECRET)")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
