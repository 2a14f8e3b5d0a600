package router

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jlin/opinion-data/internal/connection"
	"github.com/jlin/opinion-data/internal/model"
)

// recordingStore captures store mutations for assertions.
type recordingStore struct {
	mu     sync.Mutex
	prices []appliedUpdate
	trades []appliedUpdate
}

type appliedUpdate struct {
	marketID int64
	side     int
	price    string
}

func (s *recordingStore) ApplyPriceUpdate(marketID int64, side int, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = append(s.prices, appliedUpdate{marketID, side, price})
}

func (s *recordingStore) ApplyTradeUpdate(marketID int64, side int, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, appliedUpdate{marketID, side, price})
}

func (s *recordingStore) snapshot() ([]appliedUpdate, []appliedUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appliedUpdate(nil), s.prices...), append([]appliedUpdate(nil), s.trades...)
}

// runRouter feeds frames through a router and returns the store and
// final stats.
func runRouter(t *testing.T, frames []string, history chan<- model.PriceRecord) (*recordingStore, Stats) {
	t.Helper()

	input := make(chan connection.RawMessage, len(frames))
	for _, f := range frames {
		input <- connection.RawMessage{Data: []byte(f), ReceivedAt: time.Now()}
	}
	close(input)

	store := &recordingStore{}
	r := New(input, store, history, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The route loop exits once the closed channel drains.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := r.Stats()
		if s.Received == int64(len(frames)) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	return store, r.Stats()
}

func TestRouter_LastPrice(t *testing.T) {
	store, stats := runRouter(t, []string{
		`{"msgType":"market.last.price","marketId":42,"tokenId":"tok-1","outcomeSide":1,"price":"0.55"}`,
	}, nil)

	prices, trades := store.snapshot()
	if len(prices) != 1 {
		t.Fatalf("len(prices) = %d, want 1", len(prices))
	}
	want := appliedUpdate{42, 1, "0.55"}
	if prices[0] != want {
		t.Errorf("price update = %+v, want %+v", prices[0], want)
	}
	if len(trades) != 0 {
		t.Errorf("len(trades) = %d, want 0", len(trades))
	}
	if stats.Applied != 1 {
		t.Errorf("Applied = %d, want 1", stats.Applied)
	}
}

func TestRouter_LastTrade(t *testing.T) {
	store, _ := runRouter(t, []string{
		`{"msgType":"market.last.trade","marketId":9,"tokenId":"tok-9","outcomeSide":2,"side":"Buy","price":"0.40","shares":"100","amount":"40.00"}`,
	}, nil)

	_, trades := store.snapshot()
	if len(trades) != 1 {
		t.Fatalf("len(trades) = %d, want 1", len(trades))
	}
	want := appliedUpdate{9, 2, "0.40"}
	if trades[0] != want {
		t.Errorf("trade update = %+v, want %+v", trades[0], want)
	}
}

func TestRouter_DepthDiff_NoPriceMutation(t *testing.T) {
	store, stats := runRouter(t, []string{
		`{"msgType":"market.depth.diff","marketId":5,"tokenId":"tok-5","outcomeSide":1,"side":"bids","price":"0.50","size":"200"}`,
	}, nil)

	prices, trades := store.snapshot()
	if len(prices) != 0 || len(trades) != 0 {
		t.Errorf("depth diff mutated the store: prices=%v trades=%v", prices, trades)
	}
	if stats.Applied != 1 {
		t.Errorf("Applied = %d, want 1", stats.Applied)
	}
	if stats.ParseErrors != 0 {
		t.Errorf("ParseErrors = %d, want 0", stats.ParseErrors)
	}
}

func TestRouter_Pong(t *testing.T) {
	store, stats := runRouter(t, []string{`{"msgType":"PONG"}`}, nil)

	prices, trades := store.snapshot()
	if len(prices) != 0 || len(trades) != 0 {
		t.Error("PONG should not mutate the store")
	}
	if stats.Heartbeats != 1 {
		t.Errorf("Heartbeats = %d, want 1", stats.Heartbeats)
	}
}

func TestRouter_UnknownKindDropped(t *testing.T) {
	store, stats := runRouter(t, []string{`{"msgType":"market.candles","marketId":1}`}, nil)

	prices, trades := store.snapshot()
	if len(prices) != 0 || len(trades) != 0 {
		t.Error("unknown kind should not mutate the store")
	}
	if stats.UnknownMessages != 1 {
		t.Errorf("UnknownMessages = %d, want 1", stats.UnknownMessages)
	}
}

func TestRouter_MalformedFramesDropped(t *testing.T) {
	frames := []string{
		`not json at all`,
		`{"msgType":"market.last.price","marketId":0,"tokenId":"t","outcomeSide":1,"price":"0.5"}`, // missing marketId
		`{"msgType":"market.last.price","marketId":3,"outcomeSide":1,"price":"0.5"}`,               // missing tokenId
		`{"msgType":"market.last.price","marketId":3,"tokenId":"t","outcomeSide":1}`,               // missing price
		`{"msgType":"market.last.trade","marketId":3,"tokenId":"t","outcomeSide":1,"price":"0.5","side":"Buy","amount":"1"}`, // missing shares
		`{"msgType":"market.depth.diff","marketId":3,"tokenId":"t","outcomeSide":1,"price":"0.5","size":"10"}`,               // missing side
	}

	store, stats := runRouter(t, frames, nil)

	prices, trades := store.snapshot()
	if len(prices) != 0 || len(trades) != 0 {
		t.Errorf("malformed frames mutated the store: prices=%v trades=%v", prices, trades)
	}
	if stats.ParseErrors != int64(len(frames)) {
		t.Errorf("ParseErrors = %d, want %d", stats.ParseErrors, len(frames))
	}
	if stats.Received != int64(len(frames)) {
		t.Errorf("Received = %d, want %d", stats.Received, len(frames))
	}
}

func TestRouter_MalformedFrameDoesNotStopRouting(t *testing.T) {
	store, _ := runRouter(t, []string{
		`garbage`,
		`{"msgType":"market.last.price","marketId":42,"tokenId":"tok","outcomeSide":1,"price":"0.55"}`,
	}, nil)

	prices, _ := store.snapshot()
	if len(prices) != 1 {
		t.Errorf("len(prices) = %d, want 1 (routing must survive bad frames)", len(prices))
	}
}

func TestRouter_HistoryRecords(t *testing.T) {
	history := make(chan model.PriceRecord, 8)
	runRouter(t, []string{
		`{"msgType":"market.last.price","marketId":42,"tokenId":"tok","outcomeSide":1,"price":"0.55"}`,
		`{"msgType":"market.last.trade","marketId":42,"tokenId":"tok","outcomeSide":2,"side":"Sell","price":"0.44","shares":"10","amount":"4.40"}`,
	}, history)

	close(history)
	var records []model.PriceRecord
	for rec := range history {
		records = append(records, rec)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Kind != model.RecordPrice || records[0].Price != "0.55" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Kind != model.RecordTrade || records[1].Shares != "10" || records[1].Amount != "4.40" {
		t.Errorf("records[1] = %+v", records[1])
	}
	for _, rec := range records {
		if rec.ID == uuid.Nil {
			t.Error("record ID should be assigned")
		}
	}
}

func TestRouter_HistoryFullDoesNotBlock(t *testing.T) {
	history := make(chan model.PriceRecord) // unbuffered, nobody reading
	store, _ := runRouter(t, []string{
		`{"msgType":"market.last.price","marketId":1,"tokenId":"t","outcomeSide":1,"price":"0.50"}`,
		`{"msgType":"market.last.price","marketId":2,"tokenId":"t","outcomeSide":1,"price":"0.51"}`,
	}, history)

	prices, _ := store.snapshot()
	if len(prices) != 2 {
		t.Errorf("len(prices) = %d, want 2 (full history sink must not block routing)", len(prices))
	}
}
