package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jlin/opinion-data/internal/connection"
	"github.com/jlin/opinion-data/internal/model"
)

// TopicStore is the subset of the Topic Store the router mutates.
type TopicStore interface {
	ApplyPriceUpdate(marketID int64, outcomeSide int, price string)
	ApplyTradeUpdate(marketID int64, outcomeSide int, price string)
}

// Router decodes raw inbound frames and applies them to the Topic Store.
type Router interface {
	// Start begins routing frames from the input channel.
	Start(ctx context.Context) error

	// Stop drains the routing goroutine and returns once it has finished.
	Stop(ctx context.Context) error

	// Stats returns current routing counters.
	Stats() Stats
}

// router is the internal implementation.
type router struct {
	logger *slog.Logger

	input <-chan connection.RawMessage
	store TopicStore

	// history, when non-nil, receives a record for every applied
	// price and trade update. Sends never block routing.
	history chan<- model.PriceRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	stats Stats
}

// New creates a Message Router. history may be nil when price history
// recording is disabled.
func New(input <-chan connection.RawMessage, store TopicStore, history chan<- model.PriceRecord, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &router{
		logger:  logger,
		input:   input,
		store:   store,
		history: history,
	}
}

// Start begins routing frames.
func (r *router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("message router started")
	return nil
}

// Stop shuts down the router.
func (r *router) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("message router stopped")
	case <-ctx.Done():
		r.logger.Warn("message router stop timed out")
	}
	return nil
}

// Stats returns current counters.
func (r *router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// routeLoop is the single consumer of the frame channel.
func (r *router) routeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case raw, ok := <-r.input:
			if !ok {
				r.logger.Info("frame channel closed")
				return
			}
			r.route(raw)
		}
	}
}

// route decodes and applies a single frame. Failures are contained:
// the frame is dropped and counted, never propagated.
func (r *router) route(raw connection.RawMessage) {
	r.count(func(s *Stats) { s.Received++ })

	var envelope messageEnvelope
	if err := json.Unmarshal(raw.Data, &envelope); err != nil {
		r.logger.Warn("failed to decode frame", "error", err)
		r.count(func(s *Stats) { s.ParseErrors++ })
		return
	}

	switch envelope.MsgType {
	case MsgTypeLastPrice:
		r.routeLastPrice(raw)

	case MsgTypeLastTrade:
		r.routeLastTrade(raw)

	case MsgTypeDepthDiff:
		// Depth is validated and accepted, but order-book state is not
		// part of the topic price view.
		if err := r.validateDepthDiff(raw.Data); err != nil {
			r.logger.Warn("invalid depth diff frame", "error", err)
			r.count(func(s *Stats) { s.ParseErrors++ })
			return
		}
		r.count(func(s *Stats) { s.Applied++ })

	case MsgTypePong:
		r.logger.Debug("heartbeat acknowledged")
		r.count(func(s *Stats) { s.Heartbeats++ })

	default:
		r.logger.Debug("skipping message type", "type", envelope.MsgType)
		r.count(func(s *Stats) { s.UnknownMessages++ })
	}
}

func (r *router) routeLastPrice(raw connection.RawMessage) {
	var wire lastPriceWire
	if err := json.Unmarshal(raw.Data, &wire); err != nil {
		r.logger.Warn("failed to parse last price", "error", err)
		r.count(func(s *Stats) { s.ParseErrors++ })
		return
	}
	if err := validatePriceFields(wire.MarketID, wire.TokenID, wire.OutcomeSide, wire.Price); err != nil {
		r.logger.Warn("invalid last price frame", "error", err, "market_id", wire.MarketID)
		r.count(func(s *Stats) { s.ParseErrors++ })
		return
	}

	r.store.ApplyPriceUpdate(wire.MarketID, wire.OutcomeSide, wire.Price)
	r.count(func(s *Stats) { s.Applied++ })

	r.record(model.PriceRecord{
		ID:          uuid.New(),
		MarketID:    wire.MarketID,
		Kind:        model.RecordPrice,
		OutcomeSide: wire.OutcomeSide,
		Price:       wire.Price,
		ReceivedAt:  raw.ReceivedAt,
	})
}

func (r *router) routeLastTrade(raw connection.RawMessage) {
	var wire lastTradeWire
	if err := json.Unmarshal(raw.Data, &wire); err != nil {
		r.logger.Warn("failed to parse last trade", "error", err)
		r.count(func(s *Stats) { s.ParseErrors++ })
		return
	}
	if err := validateTradeFields(wire); err != nil {
		r.logger.Warn("invalid last trade frame", "error", err, "market_id", wire.MarketID)
		r.count(func(s *Stats) { s.ParseErrors++ })
		return
	}

	r.store.ApplyTradeUpdate(wire.MarketID, wire.OutcomeSide, wire.Price)
	r.count(func(s *Stats) { s.Applied++ })

	r.record(model.PriceRecord{
		ID:          uuid.New(),
		MarketID:    wire.MarketID,
		Kind:        model.RecordTrade,
		OutcomeSide: wire.OutcomeSide,
		Price:       wire.Price,
		Shares:      wire.Shares,
		Amount:      wire.Amount,
		ReceivedAt:  raw.ReceivedAt,
	})
}

// record hands an applied update to the history sink without blocking.
func (r *router) record(rec model.PriceRecord) {
	if r.history == nil {
		return
	}
	select {
	case r.history <- rec:
	default:
		r.logger.Warn("history buffer full, dropping record", "market_id", rec.MarketID)
	}
}

func (r *router) validateDepthDiff(data []byte) error {
	var wire depthDiffWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if err := validatePriceFields(wire.MarketID, wire.TokenID, wire.OutcomeSide, wire.Price); err != nil {
		return err
	}
	if wire.Side == "" {
		return errors.New("missing side")
	}
	if wire.Size == "" {
		return errors.New("missing size")
	}
	return nil
}

func validatePriceFields(marketID int64, tokenID string, outcomeSide int, price string) error {
	if marketID <= 0 {
		return fmt.Errorf("missing or invalid marketId %d", marketID)
	}
	if tokenID == "" {
		return errors.New("missing tokenId")
	}
	if outcomeSide <= 0 {
		return fmt.Errorf("missing or invalid outcomeSide %d", outcomeSide)
	}
	if price == "" {
		return errors.New("missing price")
	}
	return nil
}

func validateTradeFields(wire lastTradeWire) error {
	if err := validatePriceFields(wire.MarketID, wire.TokenID, wire.OutcomeSide, wire.Price); err != nil {
		return err
	}
	if wire.Side == "" {
		return errors.New("missing side")
	}
	if wire.Shares == "" {
		return errors.New("missing shares")
	}
	if wire.Amount == "" {
		return errors.New("missing amount")
	}
	return nil
}

func (r *router) count(fn func(*Stats)) {
	r.mu.Lock()
	fn(&r.stats)
	r.mu.Unlock()
}
