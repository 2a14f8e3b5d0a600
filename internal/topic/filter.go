package topic

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jlin/opinion-data/internal/model"
)

// DateRange bounds a time field. Zero bounds are open.
type DateRange struct {
	Start time.Time `json:"start,omitzero"`
	End   time.Time `json:"end,omitzero"`
}

// PriceRange bounds the last traded price. Empty bounds are open,
// values are decimal strings as served by the feed.
type PriceRange struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// Filters narrows a topic listing. All set conditions must match.
type Filters struct {
	EndDateRange    *DateRange  `json:"end_date_range,omitempty"`
	OutcomeTypes    []string    `json:"outcome_types,omitempty"`
	Categories      []string    `json:"categories,omitempty"`
	Keywords        []string    `json:"keywords,omitempty"`
	ExcludeKeywords []string    `json:"exclude_keywords,omitempty"`
	PriceRange      *PriceRange `json:"price_range,omitempty"`
	MinVolume       *float64    `json:"min_volume,omitempty"`
	MaxVolume       *float64    `json:"max_volume,omitempty"`
	CreatedAfter    time.Time   `json:"created_after,omitzero"`
}

// SortOption orders a topic listing.
type SortOption struct {
	Field string `json:"field,omitempty"` // end_date, created_at, volume, last_price
	Order string `json:"order,omitempty"` // asc or desc
}

// Pagination windows a topic listing.
type Pagination struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// FilterRequest is the body of an advanced filter query.
type FilterRequest struct {
	Filters    *Filters    `json:"filters,omitempty"`
	Sort       *SortOption `json:"sort,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Match reports whether the topic passes every set condition.
func (f *Filters) Match(t model.Topic) bool {
	if f == nil {
		return true
	}

	if r := f.EndDateRange; r != nil {
		if !r.Start.IsZero() && (t.EndDate.IsZero() || t.EndDate.Before(r.Start)) {
			return false
		}
		if !r.End.IsZero() && (t.EndDate.IsZero() || t.EndDate.After(r.End)) {
			return false
		}
	}

	if len(f.OutcomeTypes) > 0 && !slices.Contains(f.OutcomeTypes, string(t.OutcomeType)) {
		return false
	}

	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if slices.Contains(t.Categories, c) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	question := strings.ToLower(t.Question)

	if len(f.Keywords) > 0 {
		found := false
		for _, k := range f.Keywords {
			if strings.Contains(question, strings.ToLower(k)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, k := range f.ExcludeKeywords {
		if strings.Contains(question, strings.ToLower(k)) {
			return false
		}
	}

	if r := f.PriceRange; r != nil {
		price, ok := parsePrice(t.LastPrice)
		if r.Min != "" {
			min, minOK := parsePrice(r.Min)
			if !ok || !minOK || price.LessThan(min) {
				return false
			}
		}
		if r.Max != "" {
			max, maxOK := parsePrice(r.Max)
			if !ok || !maxOK || price.GreaterThan(max) {
				return false
			}
		}
	}

	if f.MinVolume != nil {
		if t.Volume.IsZero() || t.Volume.LessThan(decimal.NewFromFloat(*f.MinVolume)) {
			return false
		}
	}
	if f.MaxVolume != nil {
		if t.Volume.IsZero() || t.Volume.GreaterThan(decimal.NewFromFloat(*f.MaxVolume)) {
			return false
		}
	}

	if !f.CreatedAfter.IsZero() {
		if t.CreatedAt.IsZero() || t.CreatedAt.Before(f.CreatedAfter) {
			return false
		}
	}

	return true
}

func parsePrice(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
