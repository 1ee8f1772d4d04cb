package store

import (
	"context"
	"testing"
	"time"

	"github.com/rebelcode/iris/internal/engine"
)

func openTestCache(t *testing.T, ttl time.Duration) *CacheStore {
	t.Helper()
	cache, err := OpenCache(":memory:", ttl)
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func cacheSource() engine.Source {
	return engine.AutoSource("PERSONAL_ACCOUNT", map[string]any{"name": "abc"})
}

func cacheItems(source engine.Source, ids ...string) []*engine.Item {
	items := make([]*engine.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, engine.NewItem(id, source, map[string]any{"caption": "c" + id}))
	}
	return items
}

func TestCacheStoreRoundtrip(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	source := cacheSource()
	ctx := context.Background()

	stored := cache.StoreItems(ctx, cacheItems(source, "1", "2", "3"))
	if !stored.Success || len(stored.Items) != 3 {
		t.Fatalf("unexpected store result: %+v", stored)
	}

	result := cache.GetItems(ctx, source, 0, 0)
	if !result.Success || len(result.Items) != 3 {
		t.Fatalf("unexpected read result: %+v", result)
	}
	for i, want := range []string{"1", "2", "3"} {
		if result.Items[i].ID != want {
			t.Errorf("item %d: got id %q, want %q", i, result.Items[i].ID, want)
		}
	}
	if result.Items[0].Data["caption"] != "c1" {
		t.Errorf("item data not preserved: %+v", result.Items[0].Data)
	}
	if result.Items[0].Source.Type != source.Type {
		t.Errorf("source type not preserved: %q", result.Items[0].Source.Type)
	}
}

func TestCacheStoreUpsertsByItemID(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	source := cacheSource()
	ctx := context.Background()

	cache.StoreItems(ctx, cacheItems(source, "1"))
	cache.StoreItems(ctx, []*engine.Item{
		engine.NewItem("1", source, map[string]any{"caption": "updated"}),
	})

	result := cache.GetItems(ctx, source, 0, 0)
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item after upsert, got %d", len(result.Items))
	}
	if result.Items[0].Data["caption"] != "updated" {
		t.Errorf("expected updated data, got %+v", result.Items[0].Data)
	}
}

func TestCacheStoreLimitOffset(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	source := cacheSource()
	ctx := context.Background()

	cache.StoreItems(ctx, cacheItems(source, "1", "2", "3", "4"))

	result := cache.GetItems(ctx, source, 2, 1)
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0].ID != "2" || result.Items[1].ID != "3" {
		t.Errorf("unexpected page: %q, %q", result.Items[0].ID, result.Items[1].ID)
	}

	offsetOnly := cache.GetItems(ctx, source, 0, 3)
	if len(offsetOnly.Items) != 1 || offsetOnly.Items[0].ID != "4" {
		t.Errorf("offset without limit should skip rows: %+v", offsetOnly.Items)
	}
}

func TestCacheStoreExpiry(t *testing.T) {
	cache := openTestCache(t, time.Minute)
	source := cacheSource()
	ctx := context.Background()

	cache.StoreItems(ctx, cacheItems(source, "1"))

	cache.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	result := cache.GetItems(ctx, source, 0, 0)
	if !result.Success {
		t.Fatalf("an empty cache read is still a successful read: %+v", result)
	}
	if len(result.Items) != 0 {
		t.Errorf("expected expired items to be hidden, got %d", len(result.Items))
	}

	if err := cache.Prune(ctx); err != nil {
		t.Fatalf("pruning: %v", err)
	}
}

func TestCacheStoreAsFallback(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	source := cacheSource()
	ctx := context.Background()

	cache.StoreItems(ctx, cacheItems(source, "1", "2"))

	broken := engine.ProviderFunc(func(ctx context.Context, s engine.Source, limit, offset int) *engine.Result {
		return engine.Fail("remote down", "api_request_failed")
	})

	fallback := engine.NewFallbackProvider(broken, cache)
	result := fallback.GetItems(ctx, source, 0, 0)

	if !result.Success || len(result.Items) != 2 {
		t.Fatalf("expected the cache to serve when the remote fails, got %+v", result)
	}
}
