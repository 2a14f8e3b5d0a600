package router

// Inbound message discriminator values.
const (
	MsgTypeDepthDiff = "market.depth.diff"
	MsgTypeLastPrice = "market.last.price"
	MsgTypeLastTrade = "market.last.trade"
	MsgTypePong      = "PONG"
)

// messageEnvelope extracts the discriminator field only.
type messageEnvelope struct {
	MsgType string `json:"msgType"`
}

// depthDiffWire is a market.depth.diff frame.
type depthDiffWire struct {
	MarketID    int64  `json:"marketId"`
	TokenID     string `json:"tokenId"`
	OutcomeSide int    `json:"outcomeSide"`
	Side        string `json:"side"` // "bids" or "asks"
	Price       string `json:"price"`
	Size        string `json:"size"`
}

// lastPriceWire is a market.last.price frame.
type lastPriceWire struct {
	MarketID    int64  `json:"marketId"`
	TokenID     string `json:"tokenId"`
	OutcomeSide int    `json:"outcomeSide"`
	Price       string `json:"price"`
}

// lastTradeWire is a market.last.trade frame.
type lastTradeWire struct {
	MarketID    int64  `json:"marketId"`
	TokenID     string `json:"tokenId"`
	OutcomeSide int    `json:"outcomeSide"`
	Side        string `json:"side"` // "Buy" or "Sell"
	Price       string `json:"price"`
	Shares      string `json:"shares"`
	Amount      string `json:"amount"`
}

// Stats contains router runtime counters.
type Stats struct {
	Received        int64 // Frames consumed from the connection
	Applied         int64 // Frames that mutated or reached the store
	ParseErrors     int64 // Malformed or invalid frames dropped
	UnknownMessages int64 // Unrecognized discriminators dropped
	Heartbeats      int64 // PONG acknowledgments seen
}
