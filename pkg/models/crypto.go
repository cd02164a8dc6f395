package models

import "time"

// CryptoAsset is one entry of a provider's symbol-to-identifier map.
// Several assets may share a symbol; providers return them in their own order.
type CryptoAsset struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Slug     string `json:"slug,omitempty"`
	Rank     int    `json:"rank,omitempty"`
	IsActive bool   `json:"is_active"`
}

// CryptoQuote is a point-in-time price/market snapshot for one asset,
// denominated in a single reference currency.
type CryptoQuote struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Symbol            string    `json:"symbol"`
	Rank              int       `json:"rank"`
	Price             float64   `json:"price"`
	MarketCap         float64   `json:"market_cap"`
	Volume24h         float64   `json:"volume_24h"`
	PercentChange24h  float64   `json:"percent_change_24h"`
	CirculatingSupply float64   `json:"circulating_supply"`
	Currency          string    `json:"currency"`
	LastUpdated       time.Time `json:"last_updated,omitempty"`
}
