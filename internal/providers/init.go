// Package providers initializes and registers all concrete data providers
// with a provider registry.
package providers

import (
	"fmt"

	"github.com/seenimoa/cryptodetails/internal/config"
	"github.com/seenimoa/cryptodetails/internal/infra"
	"github.com/seenimoa/cryptodetails/internal/provider"
	"github.com/seenimoa/cryptodetails/internal/providers/coinmarketcap"
)

// RegisterAllTo creates every provider the configuration enables and
// registers it with reg. Providers that require an API key are skipped when
// the key is missing, so reg may end up empty.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config) error {
	pc := cfg.Provider

	switch pc.Name {
	case "", "coinmarketcap":
	default:
		return fmt.Errorf("unknown provider %q", pc.Name)
	}

	// --- CoinMarketCap (requires API key) ---
	if pc.APIKey != "" {
		cmc := coinmarketcap.New(
			coinmarketcap.WithBaseURL(pc.BaseURL),
			coinmarketcap.WithHTTPClient(infra.NewClient(pc.Timeout())),
		)
		if err := cmc.Init(map[string]string{"api_key": pc.APIKey}); err != nil {
			return err
		}
		if err := reg.Register(cmc); err != nil {
			return err
		}
	}

	return nil
}
