package subscription

import (
	"github.com/jlin/opinion-data/internal/model"
)

// Realtime feed channels.
const (
	ChannelLastPrice = "market.last.price"
	ChannelDepthDiff = "market.depth.diff"
	ChannelLastTrade = "market.last.trade"
)

// ActionSubscribe is the action field of every subscribe frame.
const ActionSubscribe = "SUBSCRIBE"

// Frame is one outbound subscribe message. Exactly one of MarketID or
// RootMarketID is set: categorical markets subscribe by root market ID,
// everything else by its own market ID.
type Frame struct {
	Action       string `json:"action"`
	Channel      string `json:"channel"`
	MarketID     int64  `json:"marketId,omitempty"`
	RootMarketID int64  `json:"rootMarketId,omitempty"`
}

// FramesFor returns the subscribe frames for the given topics, in input
// order. Categorical topics get a single last-price subscription keyed
// by root market ID; all other outcome types get last-price, depth-diff,
// and last-trade subscriptions keyed by market ID.
func FramesFor(topics []model.Topic) []Frame {
	frames := make([]Frame, 0, len(topics)*3)

	for _, t := range topics {
		if t.OutcomeType == model.OutcomeCategorical {
			frames = append(frames, Frame{
				Action:       ActionSubscribe,
				Channel:      ChannelLastPrice,
				RootMarketID: t.MarketID,
			})
			continue
		}

		for _, channel := range []string{ChannelLastPrice, ChannelDepthDiff, ChannelLastTrade} {
			frames = append(frames, Frame{
				Action:   ActionSubscribe,
				Channel:  channel,
				MarketID: t.MarketID,
			})
		}
	}

	return frames
}
