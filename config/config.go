package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/currexhq/ledger/internal/domain"
)

type Config struct {
	Addr         string
	Postgres     Postgres
	Redis        Redis
	Binance      Binance
	Pairs        []domain.Pair
	QuoteTTL     time.Duration
	SpreadMarkup decimal.Decimal
	PriceTTL     time.Duration
	RateLimit    time.Duration
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Redis struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Binance struct {
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"secret_key"`
}

type rawConfig struct {
	Addr         string   `yaml:"addr"`
	Postgres     Postgres `yaml:"postgres"`
	Redis        Redis    `yaml:"redis"`
	Binance      Binance  `yaml:"binance"`
	Pairs        []string `yaml:"pairs"`
	QuoteTTL     string   `yaml:"quote_ttl"`
	SpreadMarkup string   `yaml:"spread_markup"`
	PriceTTL     string   `yaml:"price_ttl"`
	RateLimit    string   `yaml:"rate_limit"`
}

// Load reads the yaml config at path. Quote TTL, spread markup and rate
// limit default to 30s, 0.25% and 100ms when omitted. Durations are yaml
// strings in time.ParseDuration syntax.
func Load(path string) (*Config, error) {
	raw := rawConfig{
		Addr:         ":8080",
		QuoteTTL:     "30s",
		SpreadMarkup: "0.0025",
		PriceTTL:     "2s",
		RateLimit:    "100ms",
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	markup, err := decimal.NewFromString(raw.SpreadMarkup)
	if err != nil {
		return nil, fmt.Errorf("invalid spread_markup %q: %w", raw.SpreadMarkup, err)
	}

	quoteTTL, err := parseDuration("quote_ttl", raw.QuoteTTL)
	if err != nil {
		return nil, err
	}
	priceTTL, err := parseDuration("price_ttl", raw.PriceTTL)
	if err != nil {
		return nil, err
	}
	rateLimit, err := parseDuration("rate_limit", raw.RateLimit)
	if err != nil {
		return nil, err
	}

	pairs, err := parsePairs(raw.Pairs)
	if err != nil {
		return nil, err
	}

	return &Config{
		Addr:         raw.Addr,
		Postgres:     raw.Postgres,
		Redis:        raw.Redis,
		Binance:      raw.Binance,
		Pairs:        pairs,
		QuoteTTL:     quoteTTL,
		SpreadMarkup: markup,
		PriceTTL:     priceTTL,
		RateLimit:    rateLimit,
	}, nil
}

func parseDuration(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

func parsePairs(raw []string) ([]domain.Pair, error) {
	pairs := make([]domain.Pair, 0, len(raw))
	for _, s := range raw {
		parts := strings.Split(s, "_")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid pair %q, want BASE_QUOTE", s)
		}
		pairs = append(pairs, domain.Pair{
			Base:  strings.ToUpper(parts[0]),
			Quote: strings.ToUpper(parts[1]),
		})
	}
	return pairs, nil
}
