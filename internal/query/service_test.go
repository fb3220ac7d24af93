package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tokenpulse/tokenpulse/internal/cache"
	"github.com/tokenpulse/tokenpulse/internal/model"
)

func seedCatalog(t *testing.T, store cache.Store, records []model.TokenRecord) {
	t.Helper()
	if err := store.SetJSON(context.Background(), cache.CatalogKey, records, cache.NoExpiry); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func testCatalog() []model.TokenRecord {
	return []model.TokenRecord{
		{ID: "SOL", Price: 100, Volume24h: 9000, PriceChange1h: 0.5, PriceChange24h: -2},
		{ID: "JUP", Price: 0.8, Volume24h: 7000, PriceChange1h: 1.2, PriceChange24h: 4},
		{ID: "BONK", Price: 0.00002, Volume24h: 5000, PriceChange1h: -0.1, PriceChange24h: 11},
		{ID: "WEN", Price: 0.0001, Volume24h: 3000, PriceChange1h: 0, PriceChange24h: 0.5},
		{ID: "WSOL", Price: 100.1, Volume24h: 1000, PriceChange1h: 0.4, PriceChange24h: -2.1},
	}
}

func ids(records []model.TokenRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestGetView_EmptyCatalog(t *testing.T) {
	svc := New(cache.NewMemory(), nil)

	_, err := svc.GetView(context.Background(), Params{Limit: 10})
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("err = %v, want ErrCatalogUnavailable", err)
	}
}

func TestGetView_DefaultOrder(t *testing.T) {
	store := cache.NewMemory()
	seedCatalog(t, store, testCatalog())
	svc := New(store, nil)

	view, err := svc.GetView(context.Background(), Params{Limit: 10})
	if err != nil {
		t.Fatalf("GetView failed: %v", err)
	}
	if view.Cached {
		t.Error("first call reported Cached=true")
	}
	// No sort field: the catalog's own order survives the stable sort.
	want := []string{"SOL", "JUP", "BONK", "WEN", "WSOL"}
	got := ids(view.Data)
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %s, want %s", i, got[i], want[i])
		}
	}
	if view.Pagination.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty on final page", view.Pagination.NextCursor)
	}
}

func TestGetView_SortAndFilter(t *testing.T) {
	store := cache.NewMemory()
	seedCatalog(t, store, testCatalog())
	svc := New(store, nil)

	view, err := svc.GetView(context.Background(), Params{
		Limit:    10,
		SortBy:   "price",
		FilterBy: "sol",
	})
	if err != nil {
		t.Fatalf("GetView failed: %v", err)
	}
	want := []string{"WSOL", "SOL"}
	got := ids(view.Data)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("filtered view = %v, want %v", got, want)
	}
}

func TestGetView_PagesAreDisjointAndOrdered(t *testing.T) {
	store := cache.NewMemory()
	seedCatalog(t, store, testCatalog())
	svc := New(store, nil)
	ctx := context.Background()

	page1, err := svc.GetView(ctx, Params{Limit: 2, SortBy: "volume24h"})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if page1.Pagination.NextCursor != "2" {
		t.Fatalf("page 1 NextCursor = %q, want 2", page1.Pagination.NextCursor)
	}

	page2, err := svc.GetView(ctx, Params{Limit: 2, SortBy: "volume24h", NextCursor: page1.Pagination.NextCursor})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if page2.Cached {
		t.Error("page 2 served from page 1's cache entry")
	}

	combined := append(ids(page1.Data), ids(page2.Data)...)
	want := []string{"SOL", "JUP", "BONK", "WEN"}
	for i := range want {
		if combined[i] != want[i] {
			t.Errorf("combined[%d] = %s, want %s", i, combined[i], want[i])
		}
	}
}

func TestGetView_SecondIdenticalCallIsCached(t *testing.T) {
	store := cache.NewMemory()
	seedCatalog(t, store, testCatalog())
	svc := New(store, nil)
	ctx := context.Background()

	p := Params{Limit: 3, SortBy: "volume24h"}

	first, err := svc.GetView(ctx, p)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.GetView(ctx, p)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !second.Cached {
		t.Error("second identical call not served from cache")
	}
	if !second.CacheTime.Equal(first.CacheTime) {
		t.Errorf("CacheTime changed on cached read: %v vs %v", second.CacheTime, first.CacheTime)
	}
	if len(second.Data) != len(first.Data) {
		t.Fatalf("cached view has %d records, want %d", len(second.Data), len(first.Data))
	}
}

func TestGetView_CachedViewExpires(t *testing.T) {
	store := cache.NewMemory()
	seedCatalog(t, store, testCatalog())
	svc := New(store, nil)
	ctx := context.Background()

	p := Params{Limit: 3}
	if _, err := svc.GetView(ctx, p); err != nil {
		t.Fatalf("first call: %v", err)
	}

	store.AdvanceTime(cache.DefaultTTL + time.Second)

	view, err := svc.GetView(ctx, p)
	if err != nil {
		t.Fatalf("post-expiry call: %v", err)
	}
	if view.Cached {
		t.Error("view served from cache after its TTL elapsed")
	}
}

func TestGetView_InvalidCursorMeansFirstPage(t *testing.T) {
	store := cache.NewMemory()
	seedCatalog(t, store, testCatalog())
	svc := New(store, nil)

	view, err := svc.GetView(context.Background(), Params{Limit: 2, NextCursor: "banana"})
	if err != nil {
		t.Fatalf("GetView failed: %v", err)
	}
	if got := ids(view.Data); got[0] != "SOL" {
		t.Errorf("first row = %s, want SOL", got[0])
	}
}

func TestFieldValue_UnknownField(t *testing.T) {
	r := model.TokenRecord{ID: "SOL", Price: 100}
	if v := fieldValue(r, "marketCap"); v != 0 {
		t.Errorf("fieldValue(unknown) = %v, want 0", v)
	}
}
