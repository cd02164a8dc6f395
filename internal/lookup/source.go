package lookup

import (
	"context"
	"fmt"
	"strconv"

	"github.com/seenimoa/cryptodetails/internal/provider"
	"github.com/seenimoa/cryptodetails/pkg/models"
)

// RegistrySource adapts a provider registry to Source.
type RegistrySource struct {
	reg      *provider.Registry
	provider string // empty means the registry default per model
	convert  string
}

// SourceOption configures a RegistrySource.
type SourceOption func(*RegistrySource)

// WithProvider pins both calls to a named provider.
func WithProvider(name string) SourceOption {
	return func(s *RegistrySource) { s.provider = name }
}

// WithConvert sets the quote reference currency.
func WithConvert(currency string) SourceOption {
	return func(s *RegistrySource) { s.convert = currency }
}

// NewRegistrySource returns a Source that routes through reg.
func NewRegistrySource(reg *provider.Registry, opts ...SourceOption) *RegistrySource {
	s := &RegistrySource{reg: reg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RegistrySource) params() provider.QueryParams {
	p := provider.QueryParams{}
	if s.provider != "" {
		p[provider.ParamProvider] = s.provider
	}
	return p
}

func (s *RegistrySource) ResolveIdentifier(ctx context.Context, symbol string) ([]models.CryptoAsset, error) {
	params := s.params()
	params[provider.ParamSymbol] = symbol

	res, err := s.reg.Fetch(ctx, provider.ModelCryptoMap, params)
	if err != nil {
		return nil, err
	}
	assets, ok := res.Data.([]models.CryptoAsset)
	if !ok {
		return nil, &provider.ErrMalformedResponse{
			Provider: res.Provider,
			Detail:   fmt.Sprintf("unexpected %s payload %T", provider.ModelCryptoMap, res.Data),
		}
	}
	return assets, nil
}

func (s *RegistrySource) FetchQuote(ctx context.Context, id int) (*models.CryptoQuote, error) {
	params := s.params()
	params[provider.ParamID] = strconv.Itoa(id)
	if s.convert != "" {
		params[provider.ParamConvert] = s.convert
	}

	res, err := s.reg.Fetch(ctx, provider.ModelCryptoQuote, params)
	if err != nil {
		return nil, err
	}
	quote, ok := res.Data.(*models.CryptoQuote)
	if !ok || quote == nil {
		return nil, &provider.ErrMalformedResponse{
			Provider: res.Provider,
			Detail:   fmt.Sprintf("unexpected %s payload %T", provider.ModelCryptoQuote, res.Data),
		}
	}
	return quote, nil
}
