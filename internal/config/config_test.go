package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearKeyEnv blanks every env var that feeds the provider API key.
func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CRYPTODETAILS_PROVIDER_API_KEY", "")
	t.Setenv("CMC_API_KEY", "")
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Provider defaults
	if cfg.Provider.Name != "coinmarketcap" {
		t.Errorf("Provider.Name: got %q, want %q", cfg.Provider.Name, "coinmarketcap")
	}
	if cfg.Provider.BaseURL != "https://pro-api.coinmarketcap.com" {
		t.Errorf("Provider.BaseURL: got %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.APIKey != "" {
		t.Errorf("Provider.APIKey: expected no default, got %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.Convert != "USD" {
		t.Errorf("Provider.Convert: got %q, want USD", cfg.Provider.Convert)
	}
	if cfg.Provider.Timeout() != 10*time.Second {
		t.Errorf("Provider.Timeout: got %v, want 10s", cfg.Provider.Timeout())
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.API.Addr() != "0.0.0.0:8080" {
		t.Errorf("API.Addr: got %q", cfg.API.Addr())
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("CRYPTODETAILS_API_PORT", "9191")
	t.Setenv("CRYPTODETAILS_PROVIDER_CONVERT", "EUR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port: got %d, want 9191", cfg.API.Port)
	}
	if cfg.Provider.Convert != "EUR" {
		t.Errorf("Provider.Convert: got %q, want EUR", cfg.Provider.Convert)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	clearKeyEnv(t)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
provider:
  base_url: "https://sandbox-api.coinmarketcap.com"
  api_key: "file-key-1234567890"
  timeout_sec: 3
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Provider.BaseURL != "https://sandbox-api.coinmarketcap.com" {
		t.Errorf("Provider.BaseURL: got %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.APIKey != "file-key-1234567890" {
		t.Errorf("Provider.APIKey: got %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.Timeout() != 3*time.Second {
		t.Errorf("Provider.Timeout: got %v, want 3s", cfg.Provider.Timeout())
	}
	// Unset keys keep their defaults.
	if cfg.Provider.Convert != "USD" {
		t.Errorf("Provider.Convert: got %q, want USD", cfg.Provider.Convert)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		primary  string
		fallback string
		fromFile string
		wantKey  string
	}{
		{"primary env wins", "env-primary", "env-cmc", "from-file", "env-primary"},
		{"cmc env fills empty", "", "env-cmc", "", "env-cmc"},
		{"cmc env does not override file", "", "env-cmc", "from-file", "from-file"},
		{"nothing set keeps file", "", "", "from-file", "from-file"},
		{"nothing set at all", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CRYPTODETAILS_PROVIDER_API_KEY", tt.primary)
			t.Setenv("CMC_API_KEY", tt.fallback)

			cfg := &Config{Provider: ProviderConfig{APIKey: tt.fromFile}}
			overrideFromEnv(cfg)

			if cfg.Provider.APIKey != tt.wantKey {
				t.Errorf("APIKey: got %q, want %q", cfg.Provider.APIKey, tt.wantKey)
			}
		})
	}
}

// ── maskKey ──

func TestMaskKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"0f3a9c2e-7b41-4d8e-a1c5-9e2b6d4f8a10", "0f3...a10"},
	}
	for _, tc := range tests {
		if got := maskKey(tc.input); got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── CheckAPIKeys / checkKey ──

func TestCheckAPIKeysEmpty(t *testing.T) {
	clearKeyEnv(t)

	statuses := CheckAPIKeys(&Config{})
	if len(statuses) != 1 {
		t.Fatalf("CheckAPIKeys: got %d statuses, want 1", len(statuses))
	}
	s := statuses[0]
	if s.IsSet {
		t.Errorf("Key %q should not be set", s.Name)
	}
	if s.Source != KeySourceNone {
		t.Errorf("Source: got %q, want %q", s.Source, KeySourceNone)
	}
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	clearKeyEnv(t)

	cfg := &Config{Provider: ProviderConfig{APIKey: "cfg-very-long-key-value"}}
	s := CheckAPIKeys(cfg)[0]
	if !s.IsSet {
		t.Error("key should be set")
	}
	if s.Source != KeySourceConfig {
		t.Errorf("Source: got %q, want %q", s.Source, KeySourceConfig)
	}
	if s.Masked != "cfg...lue" {
		t.Errorf("Masked: got %q, want %q", s.Masked, "cfg...lue")
	}
}

func TestCheckAPIKeysFromEnv(t *testing.T) {
	t.Setenv("CRYPTODETAILS_PROVIDER_API_KEY", "")
	t.Setenv("CMC_API_KEY", "cmc-env-key-for-testing")

	cfg := &Config{Provider: ProviderConfig{APIKey: "cmc-env-key-for-testing"}}
	s := CheckAPIKeys(cfg)[0]
	if s.Source != KeySourceEnv {
		t.Errorf("Source: got %q, want %q", s.Source, KeySourceEnv)
	}
}
