package providers

import (
	"testing"

	"github.com/seenimoa/cryptodetails/internal/config"
	"github.com/seenimoa/cryptodetails/internal/provider"
	"github.com/seenimoa/cryptodetails/internal/providers/coinmarketcap"
)

func testConfig(apiKey string) *config.Config {
	return &config.Config{Provider: config.ProviderConfig{
		Name:       "coinmarketcap",
		BaseURL:    "https://sandbox-api.coinmarketcap.com/",
		APIKey:     apiKey,
		Convert:    "USD",
		TimeoutSec: 5,
	}}
}

func TestRegisterAllTo(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, testConfig("k-123")); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	p, err := reg.Get("coinmarketcap")
	if err != nil {
		t.Fatalf("coinmarketcap not registered: %v", err)
	}
	cmc, ok := p.(*coinmarketcap.Provider)
	if !ok {
		t.Fatalf("unexpected provider type %T", p)
	}
	if cmc.APIKey() != "k-123" {
		t.Errorf("APIKey: got %q", cmc.APIKey())
	}
	if cmc.BaseURL() != "https://sandbox-api.coinmarketcap.com" {
		t.Errorf("BaseURL: got %q", cmc.BaseURL())
	}
}

func TestRegisterAllToWithoutKey(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, testConfig("")); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}
	if n := len(reg.List()); n != 0 {
		t.Errorf("expected no providers without a key, got %d", n)
	}
}

func TestRegisterAllToWithModelCoverage(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, testConfig("k")); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	coverage := reg.ModelCoverage()
	for _, m := range []provider.ModelType{provider.ModelCryptoMap, provider.ModelCryptoQuote} {
		if provs := coverage[m]; len(provs) == 0 {
			t.Errorf("no providers for model %s", m)
		}
		if def, ok := reg.DefaultProvider(m); !ok || def != "coinmarketcap" {
			t.Errorf("default for %s: got %q", m, def)
		}
	}
}

func TestRegisterAllToUnknownProvider(t *testing.T) {
	cfg := testConfig("k")
	cfg.Provider.Name = "coingecko"
	if err := RegisterAllTo(provider.NewRegistry(), cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegisterAllIdempotent(t *testing.T) {
	reg := provider.NewRegistry()
	cfg := testConfig("k")
	if err := RegisterAllTo(reg, cfg); err != nil {
		t.Fatalf("first RegisterAllTo: %v", err)
	}
	if err := RegisterAllTo(reg, cfg); err != nil {
		t.Fatalf("second RegisterAllTo: %v", err)
	}
	if n := len(reg.List()); n != 1 {
		t.Errorf("expected 1 provider, got %d", n)
	}
}
