package topic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jlin/opinion-data/internal/api"
	"github.com/jlin/opinion-data/internal/model"
	"github.com/jlin/opinion-data/internal/store"
)

func seedStore(t *testing.T, topics ...model.Topic) *store.Store {
	t.Helper()
	st := store.New(100)
	st.Initialize(topics)
	return st
}

func topicN(id int64, question string) model.Topic {
	return model.Topic{
		ID:          intID(id),
		MarketID:    id,
		Question:    question,
		OutcomeType: model.OutcomeBinary,
		EndDate:     time.Date(2026, 1, int(id), 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2025, 1, int(id), 0, 0, 0, 0, time.UTC),
		Volume:      decimal.NewFromInt(id * 100),
	}
}

func intID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newTestService(st *store.Store) *Service {
	return NewService(DefaultConfig(), nil, st, nil)
}

func TestService_List_SortAndPaginate(t *testing.T) {
	st := seedStore(t, topicN(3, "c"), topicN(1, "a"), topicN(2, "b"))
	svc := newTestService(st)

	page, total := svc.List(ListOptions{OrderBy: "end_date", Order: "asc", Limit: 2})
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if len(page) != 2 || page[0].MarketID != 1 || page[1].MarketID != 2 {
		t.Errorf("unexpected page: %+v", page)
	}

	page, _ = svc.List(ListOptions{OrderBy: "end_date", Order: "desc", Limit: 1})
	if page[0].MarketID != 3 {
		t.Errorf("desc first = %d, want 3", page[0].MarketID)
	}

	page, _ = svc.List(ListOptions{OrderBy: "end_date", Limit: 2, Offset: 2})
	if len(page) != 1 || page[0].MarketID != 3 {
		t.Errorf("offset page: %+v", page)
	}
}

func TestService_List_EndDateWindow(t *testing.T) {
	st := seedStore(t, topicN(1, "a"), topicN(2, "b"), topicN(3, "c"))
	svc := newTestService(st)

	_, total := svc.List(ListOptions{
		EndDateBefore: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
	})
	if total != 2 {
		t.Errorf("end_date_before total = %d, want 2", total)
	}

	_, total = svc.List(ListOptions{
		EndDateAfter: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
	})
	if total != 1 {
		t.Errorf("end_date_after total = %d, want 1", total)
	}
}

func TestService_List_SortByVolume(t *testing.T) {
	st := seedStore(t, topicN(1, "a"), topicN(3, "c"), topicN(2, "b"))
	svc := newTestService(st)

	page, _ := svc.List(ListOptions{OrderBy: "volume", Order: "desc", Limit: 3})
	if page[0].MarketID != 3 || page[2].MarketID != 1 {
		t.Errorf("volume desc order: %d, %d, %d",
			page[0].MarketID, page[1].MarketID, page[2].MarketID)
	}
}

func TestService_GetByID(t *testing.T) {
	st := seedStore(t, topicN(1, "a"), topicN(2, "b"))
	svc := newTestService(st)

	got, ok := svc.GetByID(intID(2))
	if !ok || got.MarketID != 2 {
		t.Errorf("GetByID(2) = %+v, %v", got, ok)
	}

	if _, ok := svc.GetByID("missing"); ok {
		t.Error("GetByID should miss unknown id")
	}
}

func TestService_Search(t *testing.T) {
	a := topicN(1, "Will Bitcoin reach 100k?")
	a.Description = "crypto milestone"
	b := topicN(2, "Will it rain in Seattle?")
	b.Categories = []string{"bitcoin"}
	st := seedStore(t, a, b)
	svc := newTestService(st)

	// Fuzzy search also matches description and categories.
	fuzzy := svc.Search("bitcoin", 10, true)
	if len(fuzzy) != 2 {
		t.Errorf("fuzzy results = %d, want 2", len(fuzzy))
	}

	// Exact search matches the question only.
	exact := svc.Search("bitcoin", 10, false)
	if len(exact) != 1 || exact[0].MarketID != 1 {
		t.Errorf("exact results: %+v", exact)
	}
}

func TestService_Search_LimitClamped(t *testing.T) {
	topics := make([]model.Topic, 0, 10)
	for i := int64(1); i <= 9; i++ {
		topics = append(topics, topicN(i, "common question"))
	}
	st := seedStore(t, topics...)

	cfg := DefaultConfig()
	cfg.MaxLimit = 5
	svc := NewService(cfg, nil, st, nil)

	if got := svc.Search("common", 100, false); len(got) != 5 {
		t.Errorf("results = %d, want clamp to 5", len(got))
	}
}

func TestService_Filter(t *testing.T) {
	a := topicN(1, "Will Bitcoin reach 100k?")
	b := topicN(2, "Will Ethereum flip Bitcoin?")
	c := topicN(3, "Will it rain in Seattle?")
	st := seedStore(t, a, b, c)
	svc := newTestService(st)

	page, total := svc.Filter(FilterRequest{
		Filters: &Filters{Keywords: []string{"bitcoin"}},
		Sort:    &SortOption{Field: "end_date", Order: "desc"},
	})
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if page[0].MarketID != 2 || page[1].MarketID != 1 {
		t.Errorf("order: %d, %d", page[0].MarketID, page[1].MarketID)
	}
}

func TestService_Filter_EmptyRequestReturnsAll(t *testing.T) {
	st := seedStore(t, topicN(1, "a"), topicN(2, "b"))
	svc := newTestService(st)

	page, total := svc.Filter(FilterRequest{})
	if total != 2 || len(page) != 2 {
		t.Errorf("got %d/%d, want 2/2", len(page), total)
	}
}

func marketServer(t *testing.T, markets []api.APIMarket, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		json.NewEncoder(w).Encode(api.MarketsResponse{
			Markets: markets,
			Total:   len(markets),
		})
	}))
}

func TestService_StartLoadsInitialTopics(t *testing.T) {
	srv := marketServer(t, []api.APIMarket{
		{ID: 1, Question: "one", OutcomeType: "binary"},
		{ID: 2, Question: "two", OutcomeType: "categorical"},
	}, nil)
	defer srv.Close()

	st := store.New(100)
	cfg := DefaultConfig()
	cfg.ReconcileInterval = 0 // no background loop in this test
	svc := NewService(cfg, api.NewClient(srv.URL, ""), st, nil)

	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Stop(context.Background())

	if st.Count() != 2 {
		t.Errorf("store count = %d, want 2", st.Count())
	}
	if _, ok := st.Get(2); !ok {
		t.Error("market 2 missing after initial load")
	}
	if svc.LastSyncAt().IsZero() {
		t.Error("LastSyncAt should be set after load")
	}
}

func TestService_StartFailsWhenAPIDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	st := store.New(100)
	client := api.NewClient(srv.URL, "", api.WithRetries(0, time.Millisecond))
	svc := NewService(DefaultConfig(), client, st, nil)

	if err := svc.Start(context.Background()); err == nil {
		t.Fatal("Start should fail when the API is unreachable")
	}
}

func TestService_ReconcileUpsertsNewMarkets(t *testing.T) {
	var hits int32
	srv := marketServer(t, []api.APIMarket{
		{ID: 1, Question: "one"},
		{ID: 2, Question: "two"},
	}, &hits)
	defer srv.Close()

	st := store.New(100)
	st.Initialize([]model.Topic{topicN(1, "one")})

	cfg := DefaultConfig()
	svc := NewService(cfg, api.NewClient(srv.URL, ""), st, nil)

	svc.reconcile(context.Background())

	if st.Count() != 2 {
		t.Errorf("store count = %d, want 2", st.Count())
	}
	if atomic.LoadInt32(&hits) == 0 {
		t.Error("reconcile should hit the API")
	}
}
