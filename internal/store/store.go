package store

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/jlin/opinion-data/internal/model"
)

// DefaultMaxSize bounds the store when no size is configured.
const DefaultMaxSize = 10000

// Store is a bounded, concurrently-safe topic cache.
type Store struct {
	mu      sync.Mutex
	maxSize int

	// order holds *entry values, least recently upserted at the front.
	order *list.List
	items map[int64]*list.Element

	// index maps lowercased words to the market IDs that contained them
	// at upsert time. It is additive: evictions do not prune it, so it
	// over-approximates current content. Search does not consult it.
	index map[string]map[int64]struct{}
}

type entry struct {
	topic model.Topic
}

// Stats is a point-in-time snapshot of store internals.
type Stats struct {
	Size       int // Topics currently cached
	MaxSize    int // Configured bound
	IndexWords int // Distinct words in the keyword index
}

// New creates a store bounded at maxSize topics.
func New(maxSize int) *Store {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	return &Store{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[int64]*list.Element),
		index:   make(map[string]map[int64]struct{}),
	}
}

// Get returns the topic for marketID. Lookups do not affect eviction order.
func (s *Store) Get(marketID int64) (model.Topic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[marketID]
	if !ok {
		return model.Topic{}, false
	}
	return el.Value.(*entry).topic.Clone(), true
}

// Upsert inserts or replaces the topic keyed by its MarketID, marks it
// most recently used, and evicts the least recently upserted entry if
// the store would exceed its bound.
func (s *Store) Upsert(topic model.Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(topic)
}

// Initialize bulk-loads a starting snapshot. Each topic goes through the
// same insert path as a live upsert, so the size bound holds even when
// the snapshot is larger than max_size.
func (s *Store) Initialize(topics []model.Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range topics {
		s.upsertLocked(t)
	}
}

func (s *Store) upsertLocked(topic model.Topic) {
	if el, ok := s.items[topic.MarketID]; ok {
		el.Value.(*entry).topic = topic
		s.order.MoveToBack(el)
	} else {
		s.items[topic.MarketID] = s.order.PushBack(&entry{topic: topic})
	}

	s.indexLocked(topic)

	for s.order.Len() > s.maxSize {
		oldest := s.order.Front()
		delete(s.items, oldest.Value.(*entry).topic.MarketID)
		s.order.Remove(oldest)
	}
}

// All returns a snapshot copy of every topic in store order (least
// recently upserted first). The slice and its topics do not reflect
// later mutations.
func (s *Store) All() []model.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics := make([]model.Topic, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		topics = append(topics, el.Value.(*entry).topic.Clone())
	}
	return topics
}

// Count returns the number of cached topics.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// ApplyPriceUpdate sets the price for one outcome side of a cached
// topic. Unknown market IDs and sides other than Yes/No are ignored.
// Price updates do not refresh eviction recency.
func (s *Store) ApplyPriceUpdate(marketID int64, outcomeSide int, price string) {
	s.applyLocked(marketID, outcomeSide, price)
}

// ApplyTradeUpdate applies the price moved by a trade. Field semantics
// are identical to ApplyPriceUpdate; trade volume is not accumulated.
func (s *Store) ApplyTradeUpdate(marketID int64, outcomeSide int, price string) {
	s.applyLocked(marketID, outcomeSide, price)
}

func (s *Store) applyLocked(marketID int64, outcomeSide int, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[marketID]
	if !ok {
		return
	}
	topic := &el.Value.(*entry).topic

	switch outcomeSide {
	case model.SideYes:
		topic.YesPrice = price
		topic.LastPrice = price
	case model.SideNo:
		topic.NoPrice = price
	default:
		return
	}
	topic.UpdatedAt = time.Now().UTC()
}

// Search returns at most limit topics whose question, description, or
// any category contains keyword case-insensitively, in store order.
func (s *Store) Search(keyword string, limit int) []model.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(keyword)
	var results []model.Topic

	for el := s.order.Front(); el != nil; el = el.Next() {
		t := el.Value.(*entry).topic
		if matches(t, needle) {
			results = append(results, t.Clone())
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results
}

// Stats returns current store statistics.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Size:       s.order.Len(),
		MaxSize:    s.maxSize,
		IndexWords: len(s.index),
	}
}

func matches(t model.Topic, needle string) bool {
	if strings.Contains(strings.ToLower(t.Question), needle) {
		return true
	}
	if t.Description != "" && strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	for _, cat := range t.Categories {
		if strings.Contains(strings.ToLower(cat), needle) {
			return true
		}
	}
	return false
}

// indexLocked adds the topic's words to the keyword index.
func (s *Store) indexLocked(t model.Topic) {
	words := strings.Fields(strings.ToLower(t.Question))
	if t.Description != "" {
		words = append(words, strings.Fields(strings.ToLower(t.Description))...)
	}
	for _, cat := range t.Categories {
		words = append(words, strings.Fields(strings.ToLower(cat))...)
	}

	for _, w := range words {
		ids, ok := s.index[w]
		if !ok {
			ids = make(map[int64]struct{})
			s.index[w] = ids
		}
		ids[t.MarketID] = struct{}{}
	}
}
