package api

// MarketsResponse from GET /markets.
type MarketsResponse struct {
	Markets []APIMarket `json:"markets"`
	Total   int         `json:"total"`
}

// APIMarket represents a market from the opinion.trade API.
type APIMarket struct {
	ID          int64  `json:"id"`
	Question    string `json:"question"`
	Description string `json:"description"`
	EndDate     string `json:"endDate"`     // ISO 8601
	OutcomeType string `json:"outcomeType"` // binary, scalar, categorical

	// Decimal-valued strings, preserved verbatim.
	Volume    string `json:"volume"`
	LastPrice string `json:"lastPrice"`
	YesPrice  string `json:"yesPrice"`
	NoPrice   string `json:"noPrice"`
	Liquidity string `json:"liquidity"`

	CreatedAt  string   `json:"createdAt"` // ISO 8601
	Categories []string `json:"categories"`
	Slug       string   `json:"slug"`
}

// GetMarketsOptions configures a GetMarkets request.
type GetMarketsOptions struct {
	Limit  int
	Offset int
	Active bool
}
