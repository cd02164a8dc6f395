package api

import (
	"net/http"

	"github.com/seenimoa/cryptodetails/internal/config"
)

// ConfigView is the running configuration with credentials masked.
type ConfigView struct {
	Provider ProviderConfigView   `json:"provider"`
	API      config.APIConfig     `json:"api"`
	Logging  config.LoggingConfig `json:"logging"`
}

// ProviderConfigView mirrors config.ProviderConfig without the raw key.
type ProviderConfigView struct {
	Name       string `json:"name"`
	BaseURL    string `json:"base_url"`
	Convert    string `json:"convert"`
	TimeoutSec int    `json:"timeout_sec"`
	APIKeySet  bool   `json:"api_key_set"`
}

func newConfigView(cfg *config.Config) ConfigView {
	return ConfigView{
		Provider: ProviderConfigView{
			Name:       cfg.Provider.Name,
			BaseURL:    cfg.Provider.BaseURL,
			Convert:    cfg.Provider.Convert,
			TimeoutSec: cfg.Provider.TimeoutSec,
			APIKeySet:  cfg.Provider.APIKey != "",
		},
		API:     cfg.API,
		Logging: cfg.Logging,
	}
}

// handleGetConfig returns the running configuration. The API key is never
// echoed back.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    newConfigView(s.cfg),
	})
}

// handleGetConfigKeys returns the status of all sensitive API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
