package coinmarketcap

// --- Shared ---

// cmcStatus is the status block every CoinMarketCap response carries.
type cmcStatus struct {
	Timestamp    string `json:"timestamp"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Elapsed      int    `json:"elapsed"`
	CreditCount  int    `json:"credit_count"`
	Notice       string `json:"notice"`
}

// --- /v1/cryptocurrency/map ---

type cmcMapResponse struct {
	Data   []cmcMapEntry `json:"data"`
	Status cmcStatus     `json:"status"`
}

type cmcMapEntry struct {
	ID                  int          `json:"id"`
	Rank                int          `json:"rank"`
	Name                string       `json:"name"`
	Symbol              string       `json:"symbol"`
	Slug                string       `json:"slug"`
	IsActive            int          `json:"is_active"`
	FirstHistoricalData string       `json:"first_historical_data"`
	LastHistoricalData  string       `json:"last_historical_data"`
	Platform            *cmcPlatform `json:"platform"`
}

type cmcPlatform struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Slug         string `json:"slug"`
	TokenAddress string `json:"token_address"`
}

// --- /v1/cryptocurrency/quotes/latest ---

type cmcQuotesResponse struct {
	Data   map[string]cmcQuoteData `json:"data"`
	Status cmcStatus               `json:"status"`
}

type cmcQuoteData struct {
	ID                int                      `json:"id"`
	Name              string                   `json:"name"`
	Symbol            string                   `json:"symbol"`
	Slug              string                   `json:"slug"`
	CMCRank           int                      `json:"cmc_rank"`
	NumMarketPairs    int                      `json:"num_market_pairs"`
	CirculatingSupply float64                  `json:"circulating_supply"`
	TotalSupply       float64                  `json:"total_supply"`
	MaxSupply         *float64                 `json:"max_supply"`
	DateAdded         string                   `json:"date_added"`
	LastUpdated       string                   `json:"last_updated"`
	Quote             map[string]cmcQuoteEntry `json:"quote"`
}

type cmcQuoteEntry struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	VolumeChange24h  float64 `json:"volume_change_24h"`
	PercentChange1h  float64 `json:"percent_change_1h"`
	PercentChange24h float64 `json:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d"`
	MarketCap        float64 `json:"market_cap"`
	LastUpdated      string  `json:"last_updated"`
}

// --- /v1/key/info ---

type cmcKeyInfoResponse struct {
	Status cmcStatus `json:"status"`
}
