package api

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jlin/opinion-data/internal/model"
)

// ParseTimestamp parses an ISO 8601 timestamp. Returns the zero time
// for empty or invalid input.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}

	return t.UTC()
}

// ParseDecimal parses a decimal-valued string. Returns decimal zero for
// empty or invalid input.
func ParseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Decimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}
	}
	return d
}

// ToTopic converts an APIMarket to a model.Topic. Unknown outcome types
// default to binary, matching the feed's own default.
func (m *APIMarket) ToTopic() model.Topic {
	outcomeType := model.OutcomeType(m.OutcomeType)
	switch outcomeType {
	case model.OutcomeBinary, model.OutcomeScalar, model.OutcomeCategorical:
	default:
		outcomeType = model.OutcomeBinary
	}

	return model.Topic{
		ID:          strconv.FormatInt(m.ID, 10),
		MarketID:    m.ID,
		Question:    m.Question,
		Description: m.Description,
		EndDate:     ParseTimestamp(m.EndDate),
		OutcomeType: outcomeType,
		Volume:      ParseDecimal(m.Volume),
		LastPrice:   m.LastPrice,
		YesPrice:    m.YesPrice,
		NoPrice:     m.NoPrice,
		Liquidity:   m.Liquidity,
		CreatedAt:   ParseTimestamp(m.CreatedAt),
		UpdatedAt:   time.Now().UTC(),
		Categories:  m.Categories,
		Slug:        m.Slug,
	}
}
