package provider

// ModelType names a standard data model a Fetcher produces.
// Each ModelType maps to a specific data structure in pkg/models/.
type ModelType string

// --- Crypto ---
const (
	// ModelCryptoMap resolves a ticker symbol to provider identifiers.
	// Data: []models.CryptoAsset, in provider response order.
	ModelCryptoMap ModelType = "CryptoMap"

	// ModelCryptoQuote returns the latest quote for one identifier.
	// Data: *models.CryptoQuote.
	ModelCryptoQuote ModelType = "CryptoQuote"
)

// AllModels lists every model type known to the registry.
func AllModels() []ModelType {
	return []ModelType{
		ModelCryptoMap,
		ModelCryptoQuote,
	}
}
