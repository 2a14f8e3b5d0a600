package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutcomeType classifies how a market resolves.
type OutcomeType string

const (
	OutcomeBinary      OutcomeType = "binary"
	OutcomeScalar      OutcomeType = "scalar"
	OutcomeCategorical OutcomeType = "categorical"
)

// Outcome sides used by price and trade updates.
const (
	SideYes = 1
	SideNo  = 2
)

// Topic is one cached prediction market and its current pricing.
type Topic struct {
	ID          string      `json:"id"`        // External/display identifier
	MarketID    int64       `json:"market_id"` // Stream subscription key
	Question    string      `json:"question"`
	Description string      `json:"description,omitempty"`
	EndDate     time.Time   `json:"end_date,omitzero"`
	OutcomeType OutcomeType `json:"outcome_type"`

	// Volume is the total traded volume. Zero means not reported.
	Volume decimal.Decimal `json:"volume"`

	// Prices are kept as strings to preserve exchange precision.
	LastPrice string `json:"last_price,omitempty"`
	YesPrice  string `json:"yes_price,omitempty"`
	NoPrice   string `json:"no_price,omitempty"`
	Liquidity string `json:"liquidity,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`

	Categories []string `json:"categories"`
	Slug       string   `json:"slug,omitempty"`
}

// Clone returns a copy of the topic that shares no mutable state
// with the original.
func (t Topic) Clone() Topic {
	c := t
	if t.Categories != nil {
		c.Categories = make([]string, len(t.Categories))
		copy(c.Categories, t.Categories)
	}
	return c
}

// RecordKind distinguishes price-history rows by originating message.
type RecordKind string

const (
	RecordPrice RecordKind = "price"
	RecordTrade RecordKind = "trade"
)

// PriceRecord is one routed price or trade update, as persisted by the
// optional history writer.
type PriceRecord struct {
	ID          uuid.UUID  // Primary key, assigned at routing time
	MarketID    int64      // Market the update applies to
	Kind        RecordKind // "price" or "trade"
	OutcomeSide int        // 1 = Yes, 2 = No
	Price       string     // Decimal-valued price string
	Shares      string     // Trade only, empty otherwise
	Amount      string     // Trade only, empty otherwise
	ReceivedAt  time.Time  // Local receive timestamp
}
