// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/observability"
)

const (
	KeyExchangeRate = "USD_TO_KRW"
	KeyMargin       = "API_MARGIN"
	KeyLogLevel     = "LOG_LEVEL"
	KeyLogFormat    = "LOG_FORMAT"
)

// ProviderKey binds a provider name to the variable holding its API key.
type ProviderKey struct {
	Provider string
	EnvVar   string
}

// ProviderKeys lists the API key of every adapter, in registration order.
var ProviderKeys = []ProviderKey{
	{Provider: "openai", EnvVar: "OPENAI_API_KEY"},
	{Provider: "anthropic", EnvVar: "ANTHROPIC_API_KEY"},
	{Provider: "gemini", EnvVar: "GEMINI_API_KEY"},
	{Provider: "stability", EnvVar: "STABILITY_API_KEY"},
	{Provider: "runway", EnvVar: "RUNWAY_API_KEY"},
	{Provider: "elevenlabs", EnvVar: "ELEVENLABS_API_KEY"},
}

// Config is the resolved configuration. Values come from the process
// environment, which .env files only fill in, never override.
type Config struct {
	v *viper.Viper
}

// Load reads the given .env files (".env" when none is given) into the
// environment and returns a Config backed by it. A missing file is not an
// error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}
	return FromViper(viper.New()), nil
}

// FromViper returns a Config reading v, after registering the defaults and
// binding v to the environment.
func FromViper(v *viper.Viper) *Config {
	v.SetDefault(KeyExchangeRate, cost.DefaultExchangeRate)
	v.SetDefault(KeyMargin, cost.DefaultMargin)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.AutomaticEnv()
	return &Config{v: v}
}

// ExchangeRate is the USD to KRW rate used for cost records.
func (c *Config) ExchangeRate() float64 {
	return c.v.GetFloat64(KeyExchangeRate)
}

// Margin is the configured API margin. It is carried but not applied to
// any cost.
func (c *Config) Margin() float64 {
	return c.v.GetFloat64(KeyMargin)
}

func (c *Config) LogLevel() string {
	return strings.ToLower(c.v.GetString(KeyLogLevel))
}

func (c *Config) LogFormat() string {
	return strings.ToLower(c.v.GetString(KeyLogFormat))
}

// Calculator returns a cost calculator using the configured rate and margin.
func (c *Config) Calculator() *cost.Calculator {
	return cost.NewCalculator(c.ExchangeRate(), c.Margin())
}

// APIKey returns the API key of provider, or "" when it is unknown or unset.
func (c *Config) APIKey(provider string) string {
	for _, k := range ProviderKeys {
		if k.Provider == provider {
			return strings.TrimSpace(c.v.GetString(k.EnvVar))
		}
	}
	return ""
}

// KeyStatus reports whether a provider's API key is configured.
type KeyStatus struct {
	Provider string `json:"provider"`
	EnvVar   string `json:"env_var"`
	Present  bool   `json:"present"`
}

// CheckAPIKeys returns the key status of every provider in ProviderKeys.
func (c *Config) CheckAPIKeys() []KeyStatus {
	statuses := make([]KeyStatus, 0, len(ProviderKeys))
	for _, k := range ProviderKeys {
		statuses = append(statuses, KeyStatus{
			Provider: k.Provider,
			EnvVar:   k.EnvVar,
			Present:  c.APIKey(k.Provider) != "",
		})
	}
	return statuses
}

// MissingKeys joins one ai.ErrMissingAPIKey error per unset key, or returns
// nil when every key is present.
func MissingKeys(statuses []KeyStatus) error {
	var errs []error
	for _, s := range statuses {
		if !s.Present {
			errs = append(errs, fmt.Errorf("%w for %s (%s)", ai.ErrMissingAPIKey, s.Provider, s.EnvVar))
		}
	}
	return errors.Join(errs...)
}

// LogKeyStatus logs a warning per missing key. The check is advisory: a
// provider without a key still fails each call with ai.ErrMissingAPIKey.
func LogKeyStatus(ctx context.Context, statuses []KeyStatus) {
	observer := observability.ObserverFromContext(ctx)
	missing := 0
	for _, s := range statuses {
		if s.Present {
			continue
		}
		missing++
		observer.Warn(ctx, "API key not set",
			observability.String(observability.AttrProvider, s.Provider),
			observability.String("env_var", s.EnvVar),
		)
	}
	if missing == 0 {
		observer.Info(ctx, "all API keys set", observability.Int("providers", len(statuses)))
	}
}
