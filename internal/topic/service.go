package topic

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jlin/opinion-data/internal/api"
	"github.com/jlin/opinion-data/internal/model"
	"github.com/jlin/opinion-data/internal/store"
)

// Config holds topic service configuration.
type Config struct {
	ReconcileInterval  time.Duration
	PageSize           int
	InitialLoadTimeout time.Duration
	DefaultLimit       int
	MaxLimit           int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconcileInterval:  5 * time.Minute,
		PageSize:           200,
		InitialLoadTimeout: 2 * time.Minute,
		DefaultLimit:       50,
		MaxLimit:           200,
	}
}

// ListOptions parameterize a topic listing.
type ListOptions struct {
	Limit         int
	Offset        int
	EndDateBefore time.Time
	EndDateAfter  time.Time
	OrderBy       string
	Order         string
}

// Service serves topic queries from the cache and keeps it synced
// with the REST API.
type Service struct {
	cfg    Config
	rest   *api.Client
	store  *store.Store
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	lastSyncAt time.Time
}

// NewService creates a topic service backed by the given store.
func NewService(cfg Config, rest *api.Client, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 200
	}

	return &Service{
		cfg:    cfg,
		rest:   rest,
		store:  st,
		logger: logger,
	}
}

// Start performs the initial bulk load, then begins background
// reconciliation. The initial load is blocking.
func (s *Service) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	loadCtx := s.ctx
	if s.cfg.InitialLoadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(s.ctx, s.cfg.InitialLoadTimeout)
		defer cancel()
	}

	if err := s.loadInitial(loadCtx); err != nil {
		s.cancel()
		return fmt.Errorf("initial topic load: %w", err)
	}

	if s.cfg.ReconcileInterval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.reconcileLoop(s.ctx)
		}()
	}

	s.logger.Info("topic service started", "topics", s.store.Count())

	return nil
}

// Stop cancels background reconciliation and waits for it to finish.
func (s *Service) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("topic service stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loadInitial fetches every active market and seeds the store.
func (s *Service) loadInitial(ctx context.Context) error {
	start := time.Now()
	s.logger.Info("loading initial topics")

	markets, err := s.rest.GetAllMarkets(ctx, s.cfg.PageSize)
	if err != nil {
		return err
	}

	topics := make([]model.Topic, 0, len(markets))
	for i := range markets {
		topics = append(topics, markets[i].ToTopic())
	}
	s.store.Initialize(topics)

	s.mu.Lock()
	s.lastSyncAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("initial topic load complete",
		"fetched", len(markets),
		"cached", s.store.Count(),
		"duration", time.Since(start),
	)

	return nil
}

// reconcileLoop periodically re-fetches markets and upserts them.
func (s *Service) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

// reconcile fetches markets and folds them into the store. Failures
// are logged and retried on the next tick.
func (s *Service) reconcile(ctx context.Context) {
	start := time.Now()

	markets, err := s.rest.GetAllMarkets(ctx, s.cfg.PageSize)
	if err != nil {
		s.logger.Error("topic reconcile failed", "err", err)
		return
	}

	var created int
	for i := range markets {
		t := markets[i].ToTopic()
		if _, ok := s.store.Get(t.MarketID); !ok {
			created++
		}
		s.store.Upsert(t)
	}

	s.mu.Lock()
	s.lastSyncAt = time.Now()
	s.mu.Unlock()

	if created > 0 {
		s.logger.Info("topic reconcile found new markets",
			"created", created,
			"total", s.store.Count(),
			"duration", time.Since(start),
		)
	} else {
		s.logger.Debug("topic reconcile complete",
			"total", s.store.Count(),
			"duration", time.Since(start),
		)
	}
}

// LastSyncAt returns when the store was last synced with the API.
func (s *Service) LastSyncAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSyncAt
}

// List returns a filtered, sorted page of topics plus the total
// count before pagination.
func (s *Service) List(opts ListOptions) ([]model.Topic, int) {
	topics := s.store.All()

	filtered := topics[:0:0]
	for _, t := range topics {
		if !opts.EndDateBefore.IsZero() && (t.EndDate.IsZero() || t.EndDate.After(opts.EndDateBefore)) {
			continue
		}
		if !opts.EndDateAfter.IsZero() && (t.EndDate.IsZero() || t.EndDate.Before(opts.EndDateAfter)) {
			continue
		}
		filtered = append(filtered, t)
	}

	sortTopics(filtered, opts.OrderBy, opts.Order)
	total := len(filtered)

	return s.paginate(filtered, opts.Limit, opts.Offset), total
}

// GetByID returns a topic by its external identifier.
func (s *Service) GetByID(id string) (model.Topic, bool) {
	for _, t := range s.store.All() {
		if t.ID == id {
			return t, true
		}
	}
	return model.Topic{}, false
}

// Search returns topics matching the query. Fuzzy search matches
// question, description, and categories; exact search matches the
// question only.
func (s *Service) Search(query string, limit int, fuzzy bool) []model.Topic {
	limit = s.clampLimit(limit)

	if fuzzy {
		return s.store.Search(query, limit)
	}

	needle := strings.ToLower(query)
	var results []model.Topic
	for _, t := range s.store.All() {
		if strings.Contains(strings.ToLower(t.Question), needle) {
			results = append(results, t)
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}

// Filter applies an advanced filter request and returns the page plus
// the total match count.
func (s *Service) Filter(req FilterRequest) ([]model.Topic, int) {
	sortOpt := SortOption{Field: "end_date", Order: "asc"}
	if req.Sort != nil {
		sortOpt = *req.Sort
	}
	page := Pagination{Limit: s.cfg.DefaultLimit}
	if req.Pagination != nil {
		page = *req.Pagination
	}

	var filtered []model.Topic
	for _, t := range s.store.All() {
		if req.Filters.Match(t) {
			filtered = append(filtered, t)
		}
	}

	sortTopics(filtered, sortOpt.Field, sortOpt.Order)
	total := len(filtered)

	return s.paginate(filtered, page.Limit, page.Offset), total
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

func (s *Service) paginate(topics []model.Topic, limit, offset int) []model.Topic {
	limit = s.clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(topics) {
		return []model.Topic{}
	}
	end := offset + limit
	if end > len(topics) {
		end = len(topics)
	}
	return topics[offset:end]
}

// sortTopics orders topics in place. Unknown fields leave the input
// order untouched. Zero times sort first ascending.
func sortTopics(topics []model.Topic, field, order string) {
	desc := strings.EqualFold(order, "desc")

	var less func(a, b model.Topic) bool
	switch field {
	case "", "end_date":
		less = func(a, b model.Topic) bool { return a.EndDate.Before(b.EndDate) }
	case "created_at":
		less = func(a, b model.Topic) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "volume":
		less = func(a, b model.Topic) bool { return a.Volume.LessThan(b.Volume) }
	case "last_price":
		less = func(a, b model.Topic) bool {
			pa, _ := parsePrice(a.LastPrice)
			pb, _ := parsePrice(b.LastPrice)
			return pa.LessThan(pb)
		}
	default:
		return
	}

	sort.SliceStable(topics, func(i, j int) bool {
		if desc {
			return less(topics[j], topics[i])
		}
		return less(topics[i], topics[j])
	})
}
