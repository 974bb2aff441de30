package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type StorageKind string

const (
	StorageFile     StorageKind = "file"
	StorageMemory   StorageKind = "memory"
	StorageRedis    StorageKind = "redis"
	StoragePostgres StorageKind = "postgres"
)

// Config holds all configuration for the storefront.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Shopify storefront API
	StoreDomain        string        `env:"SHOPIFY_STORE_DOMAIN"`
	AccessToken        string        `env:"SHOPIFY_PUBLIC_ACCESS_TOKEN"`
	Country            string        `env:"SHOPIFY_COUNTRY" envDefault:"US"`
	Language           string        `env:"SHOPIFY_LANGUAGE" envDefault:"en"`
	APIVersion         string        `env:"SHOPIFY_API_VERSION" envDefault:"2024-01"`
	UseShopifyCheckout bool          `env:"USE_SHOPIFY_CHECKOUT" envDefault:"false"`
	CatalogPageSize    int           `env:"CATALOG_PAGE_SIZE" envDefault:"25"`
	CatalogTimeout     time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`

	// Cart storage
	Storage    StorageKind   `env:"CART_STORAGE" envDefault:"file"`
	StorageKey string        `env:"CART_STORAGE_KEY" envDefault:"shinybae-cart"`
	CartDir    string        `env:"CART_DIR"`
	RedisAddr  string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass  string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB    int           `env:"REDIS_DB" envDefault:"0"`
	CartTTL    time.Duration `env:"CART_TTL" envDefault:"168h"`

	DatabaseURL string `env:"DATABASE_URL"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Pricing shown at checkout
	Currency              string          `env:"CURRENCY" envDefault:"USD"`
	FreeShippingThreshold decimal.Decimal `env:"FREE_SHIPPING_THRESHOLD" envDefault:"35"`
	ShippingFee           decimal.Decimal `env:"SHIPPING_FEE" envDefault:"5.99"`
	TaxRate               decimal.Decimal `env:"TAX_RATE" envDefault:"0.08"`

	currency currency.Unit
}

// Load reads configuration from environment variables. Variables from the
// given .env files (default ".env", optional) are applied first without
// overriding the process environment.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.CartDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("os.UserHomeDir: %w", err)
		}
		cfg.CartDir = filepath.Join(home, ".storefront")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("godotenv.Load: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("godotenv.Load: %w", err)
	}
	return nil
}

// validate rejects configurations the process cannot start with.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.Storage {
	case StorageFile, StorageMemory, StorageRedis:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s storage", c.Storage)
		}
	default:
		return fmt.Errorf("unknown cart storage: %q", c.Storage)
	}

	if c.StorageKey == "" {
		return fmt.Errorf("cart storage key is empty")
	}
	if c.CatalogPageSize < 1 {
		return fmt.Errorf("invalid catalog page size: %d", c.CatalogPageSize)
	}
	if c.TaxRate.IsNegative() {
		return fmt.Errorf("invalid tax rate: %s", c.TaxRate)
	}
	if c.ShippingFee.IsNegative() {
		return fmt.Errorf("invalid shipping fee: %s", c.ShippingFee)
	}

	cur, err := currency.ParseISO(c.Currency)
	if err != nil {
		return fmt.Errorf("currency.ParseISO: %w", err)
	}
	c.currency = cur

	return nil
}

func (c *Config) CurrencyUnit() currency.Unit {
	return c.currency
}

// Validation is the result of checking the Shopify settings. Errors
// prevent catalog access; warnings are advisory.
type Validation struct {
	Errors   []string
	Warnings []string
}

func (v Validation) OK() bool {
	return len(v.Errors) == 0
}

var (
	supportedCountries = []string{"US", "CA", "GB", "AU", "DE", "FR", "ES", "IT", "JP", "NL", "SE", "DK", "NO", "FI"}
	supportedLanguages = []string{"en", "fr", "de", "es", "it", "ja", "nl", "sv", "da", "no", "fi"}
)

// Check validates the Shopify settings. The store domain is expected as a
// full https URL.
func (c *Config) Check() Validation {
	var v Validation

	switch {
	case c.StoreDomain == "":
		v.Errors = append(v.Errors, "SHOPIFY_STORE_DOMAIN is required")
	default:
		if !strings.Contains(c.StoreDomain, ".myshopify.com") {
			v.Errors = append(v.Errors, "SHOPIFY_STORE_DOMAIN must be a .myshopify.com domain")
		}
		if !strings.HasPrefix(c.StoreDomain, "https://") {
			v.Errors = append(v.Errors, "SHOPIFY_STORE_DOMAIN must start with https://")
		}
	}

	switch {
	case c.AccessToken == "":
		v.Warnings = append(v.Warnings, "SHOPIFY_PUBLIC_ACCESS_TOKEN is not set, catalog requests will be rejected")
	case !strings.HasPrefix(c.AccessToken, "shpat_"):
		v.Warnings = append(v.Warnings, "SHOPIFY_PUBLIC_ACCESS_TOKEN does not look like a storefront token (expected shpat_ prefix)")
	}

	if !slices.Contains(supportedCountries, c.Country) {
		v.Warnings = append(v.Warnings, fmt.Sprintf("SHOPIFY_COUNTRY %q is not a commonly supported country", c.Country))
	}
	if !slices.Contains(supportedLanguages, c.Language) {
		v.Warnings = append(v.Warnings, fmt.Sprintf("SHOPIFY_LANGUAGE %q is not a commonly supported language", c.Language))
	}

	return v
}
