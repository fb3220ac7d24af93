package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tokenpulse/tokenpulse/internal/cache"
	"github.com/tokenpulse/tokenpulse/internal/model"
)

// ErrCatalogUnavailable indicates the token catalog has not been
// populated yet. Callers should retry after the next aggregation run.
var ErrCatalogUnavailable = errors.New("token catalog unavailable")

// Params describes one query shape. Every distinct combination maps to
// its own cached view.
type Params struct {
	Limit      int
	SortBy     string
	FilterBy   string
	NextCursor string
}

// Service answers catalog queries, materializing and caching a view per
// query shape.
type Service struct {
	store  cache.Store
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a query service backed by the given store.
func New(store cache.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// GetView returns the view for the given query shape, serving from the
// view cache when a fresh copy exists. A cache miss recomputes the view
// from the catalog and stores it with the default view TTL.
func (s *Service) GetView(ctx context.Context, p Params) (model.QueryResultView, error) {
	key := cache.ViewKey(p.Limit, p.SortBy, p.FilterBy, p.NextCursor)

	var view model.QueryResultView
	found, err := s.store.GetJSON(ctx, key, &view)
	if err != nil {
		return model.QueryResultView{}, fmt.Errorf("read view cache: %w", err)
	}
	if found {
		view.Cached = true
		return view, nil
	}

	var catalog []model.TokenRecord
	found, err = s.store.GetJSON(ctx, cache.CatalogKey, &catalog)
	if err != nil {
		return model.QueryResultView{}, fmt.Errorf("read catalog: %w", err)
	}
	if !found || len(catalog) == 0 {
		return model.QueryResultView{}, ErrCatalogUnavailable
	}

	view = s.buildView(catalog, p)

	if err := s.store.SetJSON(ctx, key, view, cache.DefaultTTL); err != nil {
		// A failed view write degrades freshness, not correctness.
		s.logger.Warn("store view cache", "key", key, "error", err)
	}
	return view, nil
}

// buildView filters, sorts, and paginates the catalog for one shape.
func (s *Service) buildView(catalog []model.TokenRecord, p Params) model.QueryResultView {
	rows := filterRecords(catalog, p.FilterBy)
	sortRecords(rows, p.SortBy)

	offset := parseCursor(p.NextCursor)
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + p.Limit
	if end > len(rows) {
		end = len(rows)
	}

	page := model.Pagination{Limit: p.Limit}
	if end < len(rows) {
		page.NextCursor = strconv.Itoa(end)
	}

	return model.QueryResultView{
		Data:       rows[offset:end],
		Pagination: page,
		Cached:     false,
		CacheTime:  s.now().UTC(),
	}
}

// filterRecords keeps records whose ID contains the filter term,
// case-insensitively. An empty filter keeps everything. The input is
// never mutated.
func filterRecords(catalog []model.TokenRecord, filterBy string) []model.TokenRecord {
	out := make([]model.TokenRecord, 0, len(catalog))
	if filterBy == "" {
		return append(out, catalog...)
	}
	term := strings.ToLower(filterBy)
	for _, r := range catalog {
		if strings.Contains(strings.ToLower(r.ID), term) {
			out = append(out, r)
		}
	}
	return out
}

// sortRecords orders descending by the named numeric field. An unknown
// field yields zeros for every record, so the stable sort preserves the
// catalog's own order.
func sortRecords(rows []model.TokenRecord, sortBy string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return fieldValue(rows[i], sortBy) > fieldValue(rows[j], sortBy)
	})
}

func fieldValue(r model.TokenRecord, field string) float64 {
	switch field {
	case "price":
		return r.Price
	case "volume24h":
		return r.Volume24h
	case "priceChange1h":
		return r.PriceChange1h
	case "priceChange24h":
		return r.PriceChange24h
	default:
		return 0
	}
}

// parseCursor decodes the string offset cursor. Anything unparseable or
// negative means the first page.
func parseCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
