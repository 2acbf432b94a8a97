package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/leofalp/aimux/providers/ai"
)

// unsetEnv clears key for the duration of the test and restores it after.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
}

func clearProviderKeys(t *testing.T) {
	t.Helper()
	for _, k := range ProviderKeys {
		unsetEnv(t, k.EnvVar)
	}
}

func TestDefaults(t *testing.T) {
	unsetEnv(t, KeyExchangeRate)
	unsetEnv(t, KeyMargin)
	unsetEnv(t, KeyLogLevel)

	cfg := FromViper(viper.New())
	if cfg.ExchangeRate() != 1500 {
		t.Errorf("expected default exchange rate 1500, got %v", cfg.ExchangeRate())
	}
	if cfg.Margin() != 1.2 {
		t.Errorf("expected default margin 1.2, got %v", cfg.Margin())
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel())
	}
	if calc := cfg.Calculator(); calc.ExchangeRate() != 1500 || calc.Margin() != 1.2 {
		t.Errorf("calculator does not use configured values: %v %v", calc.ExchangeRate(), calc.Margin())
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(KeyExchangeRate, "1380.5")
	t.Setenv(KeyLogLevel, "DEBUG")
	t.Setenv("GEMINI_API_KEY", "  g-key  ")

	cfg := FromViper(viper.New())
	if cfg.ExchangeRate() != 1380.5 {
		t.Errorf("expected 1380.5, got %v", cfg.ExchangeRate())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("expected lower-cased level, got %s", cfg.LogLevel())
	}
	if cfg.APIKey("gemini") != "g-key" {
		t.Errorf("expected trimmed key, got %q", cfg.APIKey("gemini"))
	}
	if cfg.APIKey("unknown") != "" {
		t.Error("unknown provider must have no key")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearProviderKeys(t)
	unsetEnv(t, KeyExchangeRate)

	path := filepath.Join(t.TempDir(), "test.env")
	content := "OPENAI_API_KEY=sk-test\nUSD_TO_KRW=1400\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey("openai") != "sk-test" {
		t.Errorf("expected key from env file, got %q", cfg.APIKey("openai"))
	}
	if cfg.ExchangeRate() != 1400 {
		t.Errorf("expected rate from env file, got %v", cfg.ExchangeRate())
	}
}

func TestLoad_MissingFileTolerated(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing env file must be tolerated, got %v", err)
	}
}

func TestCheckAPIKeys(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("OPENAI_API_KEY", "sk")
	t.Setenv("ELEVENLABS_API_KEY", "xi")

	statuses := FromViper(viper.New()).CheckAPIKeys()
	if len(statuses) != len(ProviderKeys) {
		t.Fatalf("expected %d statuses, got %d", len(ProviderKeys), len(statuses))
	}

	present := map[string]bool{}
	for _, s := range statuses {
		present[s.Provider] = s.Present
	}
	want := map[string]bool{
		"openai": true, "anthropic": false, "gemini": false,
		"stability": false, "runway": false, "elevenlabs": true,
	}
	for provider, ok := range want {
		if present[provider] != ok {
			t.Errorf("%s: expected present=%v", provider, ok)
		}
	}

	err := MissingKeys(statuses)
	if !errors.Is(err, ai.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}

	LogKeyStatus(context.Background(), statuses)
}

func TestMissingKeys_AllPresent(t *testing.T) {
	statuses := []KeyStatus{{Provider: "openai", EnvVar: "OPENAI_API_KEY", Present: true}}
	if err := MissingKeys(statuses); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
