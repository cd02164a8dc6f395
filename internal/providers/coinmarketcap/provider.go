// Package coinmarketcap implements the CoinMarketCap Pro API provider.
// It resolves ticker symbols to CoinMarketCap identifiers and fetches
// latest quotes for those identifiers.
//
// Requires an API key from https://pro.coinmarketcap.com/signup
// Docs: https://coinmarketcap.com/api/documentation/v1/
package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/cryptodetails/internal/infra"
	"github.com/seenimoa/cryptodetails/internal/provider"
)

const (
	providerName   = "coinmarketcap"
	DefaultBaseURL = "https://pro-api.coinmarketcap.com"
	credAPIKey     = "api_key"
	apiKeyHeader   = "X-CMC_PRO_API_KEY"
	defaultConvert = "USD"
)

// APIError is returned when CoinMarketCap answers 2xx but reports a
// non-zero error_code in its status block.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coinmarketcap error %d: %s", e.Code, e.Message)
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at a different API host (sandbox, test server).
func WithBaseURL(base string) Option {
	return func(p *Provider) {
		if base != "" {
			p.api.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient replaces the outbound HTTP client.
func WithHTTPClient(c *infra.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.api.http = c
		}
	}
}

// Provider implements provider.Provider for CoinMarketCap.
type Provider struct {
	provider.BaseProvider
	api *apiClient
}

// New creates a new CoinMarketCap provider and registers all fetchers.
func New(opts ...Option) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"CoinMarketCap - cryptocurrency identifiers and latest market quotes",
			"https://coinmarketcap.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "CoinMarketCap Pro API key",
					Required:    true,
					EnvVar:      "CMC_API_KEY",
				},
			},
		),
		api: &apiClient{
			baseURL: DefaultBaseURL,
			http:    infra.NewClient(infra.DefaultTimeout),
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	p.RegisterFetcher(newMapFetcher(p.api))
	p.RegisterFetcher(newQuoteFetcher(p.api))

	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.api.apiKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity and key validity against the key info endpoint.
func (p *Provider) Ping(ctx context.Context) error {
	var resp cmcKeyInfoResponse
	if err := p.api.getJSON(ctx, "/v1/key/info", nil, &resp); err != nil {
		return fmt.Errorf("coinmarketcap ping: %w", err)
	}
	return nil
}

// APIKey returns the stored API key.
func (p *Provider) APIKey() string {
	return p.api.apiKey
}

// BaseURL returns the API host requests are sent to.
func (p *Provider) BaseURL() string {
	return p.api.baseURL
}

// --- Shared helpers ---

// apiClient is shared by the provider and its fetchers so that credentials
// set by Init are visible to fetchers registered in New.
type apiClient struct {
	baseURL string
	apiKey  string
	http    *infra.Client
}

type statusCarrier interface {
	apiStatus() cmcStatus
}

func (r *cmcMapResponse) apiStatus() cmcStatus     { return r.Status }
func (r *cmcQuotesResponse) apiStatus() cmcStatus  { return r.Status }
func (r *cmcKeyInfoResponse) apiStatus() cmcStatus { return r.Status }

func (c *apiClient) headers() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		apiKeyHeader: c.apiKey,
	}
}

// getJSON performs a GET request to the CMC API and decodes the JSON envelope.
func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, dest statusCarrier) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	body, _, err := c.http.DoGet(ctx, endpoint, c.headers())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read CoinMarketCap response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return &provider.ErrMalformedResponse{Provider: providerName, Detail: "decode " + path, Err: err}
	}

	if st := dest.apiStatus(); st.ErrorCode != 0 {
		return &APIError{Code: st.ErrorCode, Message: st.ErrorMessage}
	}
	return nil
}

func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
