package coinmarketcap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/seenimoa/cryptodetails/internal/provider"
	"github.com/seenimoa/cryptodetails/pkg/models"
)

// --- CryptoMap fetcher ---

type mapFetcher struct {
	provider.BaseFetcher
	api *apiClient
}

func newMapFetcher(api *apiClient) *mapFetcher {
	return &mapFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCryptoMap,
			"Symbol to CoinMarketCap ID map",
			[]string{provider.ParamSymbol},
			nil,
		),
		api: api,
	}
}

func (f *mapFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToLower(strings.TrimSpace(params[provider.ParamSymbol]))

	q := url.Values{}
	q.Set("symbol", symbol)

	var resp cmcMapResponse
	if err := f.api.getJSON(ctx, "/v1/cryptocurrency/map", q, &resp); err != nil {
		return nil, fmt.Errorf("coinmarketcap map %s: %w", symbol, err)
	}

	assets := make([]models.CryptoAsset, 0, len(resp.Data))
	for _, e := range resp.Data {
		assets = append(assets, models.CryptoAsset{
			ID:       e.ID,
			Name:     e.Name,
			Symbol:   e.Symbol,
			Slug:     e.Slug,
			Rank:     e.Rank,
			IsActive: e.IsActive == 1,
		})
	}

	return newResult(assets), nil
}

// --- CryptoQuote fetcher ---

type quoteFetcher struct {
	provider.BaseFetcher
	api *apiClient
}

func newQuoteFetcher(api *apiClient) *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCryptoQuote,
			"Latest market quote by CoinMarketCap ID",
			[]string{provider.ParamID},
			[]string{provider.ParamConvert},
		),
		api: api,
	}
}

func (f *quoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	id := strings.TrimSpace(params[provider.ParamID])
	if _, err := strconv.Atoi(id); err != nil {
		return nil, fmt.Errorf("coinmarketcap quote: invalid id %q", id)
	}
	convert := strings.ToUpper(params[provider.ParamConvert])
	if convert == "" {
		convert = defaultConvert
	}

	q := url.Values{}
	q.Set("id", id)
	if convert != defaultConvert {
		q.Set("convert", convert)
	}

	var resp cmcQuotesResponse
	if err := f.api.getJSON(ctx, "/v1/cryptocurrency/quotes/latest", q, &resp); err != nil {
		return nil, fmt.Errorf("coinmarketcap quote %s: %w", id, err)
	}

	d, ok := resp.Data[id]
	if !ok {
		return nil, &provider.ErrMalformedResponse{Provider: providerName, Detail: "no data for id " + id}
	}
	entry, ok := d.Quote[convert]
	if !ok {
		return nil, &provider.ErrMalformedResponse{Provider: providerName, Detail: "no " + convert + " quote for id " + id}
	}

	quote := &models.CryptoQuote{
		ID:                d.ID,
		Name:              d.Name,
		Symbol:            d.Symbol,
		Rank:              d.CMCRank,
		Price:             entry.Price,
		MarketCap:         entry.MarketCap,
		Volume24h:         entry.Volume24h,
		PercentChange24h:  entry.PercentChange24h,
		CirculatingSupply: d.CirculatingSupply,
		Currency:          convert,
		LastUpdated:       parseTime(d.LastUpdated),
	}

	return newResult(quote), nil
}
