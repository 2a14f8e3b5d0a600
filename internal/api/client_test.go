package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func marketsHandler(t *testing.T, markets []APIMarket) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(MarketsResponse{
			Markets: markets,
			Total:   len(markets),
		})
	}
}

func TestClient_GetMarkets(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		marketsHandler(t, []APIMarket{
			{ID: 1, Question: "one", OutcomeType: "binary"},
			{ID: 2, Question: "two", OutcomeType: "categorical"},
		})(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")

	resp, err := client.GetMarkets(context.Background(), GetMarketsOptions{
		Limit:  50,
		Offset: 100,
		Active: true,
	})
	if err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}

	if len(resp.Markets) != 2 {
		t.Fatalf("got %d markets, want 2", len(resp.Markets))
	}
	if resp.Markets[0].ID != 1 || resp.Markets[1].Question != "two" {
		t.Errorf("unexpected markets: %+v", resp.Markets)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	for _, want := range []string{"limit=50", "offset=100", "active=true"} {
		if !slices.Contains(strings.Split(gotQuery, "&"), want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestClient_GetAllMarkets_Pagination(t *testing.T) {
	// Three markets served in pages of two.
	all := []APIMarket{
		{ID: 1, Question: "a"},
		{ID: 2, Question: "b"},
		{ID: 3, Question: "c"},
	}

	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		page := []APIMarket{}
		if offset < len(all) {
			page = all[offset:end]
		}
		json.NewEncoder(w).Encode(MarketsResponse{Markets: page, Total: len(all)})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	got, err := client.GetAllMarkets(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetAllMarkets: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d markets, want 3", len(got))
	}
	if got[2].ID != 3 {
		t.Errorf("last market ID = %d, want 3", got[2].ID)
	}
	if n := atomic.LoadInt32(&requests); n != 2 {
		t.Errorf("made %d requests, want 2", n)
	}
}

func TestClient_GetMarket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/42" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(APIMarket{ID: 42, Question: "answer"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	m, err := client.GetMarket(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}
	if m.ID != 42 || m.Question != "answer" {
		t.Errorf("unexpected market: %+v", m)
	}
}

func TestClient_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(MarketsResponse{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", WithRetries(3, time.Millisecond))

	_, err := client.GetMarkets(context.Background(), GetMarketsOptions{})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("made %d calls, want 3", n)
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", WithRetries(3, time.Millisecond))

	_, err := client.GetMarkets(context.Background(), GetMarketsOptions{})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("made %d calls, want 1", n)
	}
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", WithRetries(2, time.Millisecond))

	_, err := client.GetMarkets(context.Background(), GetMarketsOptions{})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
	}
}
