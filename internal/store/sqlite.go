package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rebelcode/iris/internal/engine"
)

// ErrCodeCache identifies cache read and write failures.
const ErrCodeCache = "cache_failed"

// CacheStore is a sqlite-backed response cache. Items expire after a TTL,
// so a FallbackProvider can serve recent fetches when the remote is down
// without serving stale content forever.
//
// Use ":memory:" as the path for an ephemeral cache.
type CacheStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenCache opens (and initializes) a cache database at the given path.
func OpenCache(path string, ttl time.Duration) (*CacheStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db %s: %w", path, err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cached_items (
			source_key  TEXT NOT NULL,
			item_id     TEXT NOT NULL,
			source_type TEXT NOT NULL,
			source_data TEXT NOT NULL,
			data        TEXT NOT NULL,
			position    INTEGER NOT NULL,
			cached_at   INTEGER NOT NULL,
			PRIMARY KEY (source_key, item_id)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache db: %w", err)
	}

	return &CacheStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (c *CacheStore) Close() error {
	return c.db.Close()
}

// StoreItems caches the items, replacing any existing entry per item. The
// position column preserves the order items arrived in.
func (c *CacheStore) StoreItems(ctx context.Context, items []*engine.Item) *engine.Result {
	result := engine.Empty()
	result.Success = len(items) == 0

	now := c.now().Unix()
	for i, item := range items {
		dataJSON, err := json.Marshal(item.Data)
		if err != nil {
			result.Errors = append(result.Errors, engine.Error{
				Message: fmt.Sprintf("encoding item %s: %v", item.ID, err),
				Code:    ErrCodeCache,
			})
			continue
		}
		sourceJSON, _ := json.Marshal(item.Source.Data)

		_, err = c.db.ExecContext(ctx, `
			INSERT INTO cached_items (source_key, item_id, source_type, source_data, data, position, cached_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (source_key, item_id) DO UPDATE SET
				data = excluded.data,
				source_data = excluded.source_data,
				position = excluded.position,
				cached_at = excluded.cached_at
		`, item.Source.Key, item.ID, item.Source.Type, string(sourceJSON), string(dataJSON), i, now)
		if err != nil {
			result.Errors = append(result.Errors, engine.Error{
				Message: fmt.Sprintf("caching item %s: %v", item.ID, err),
				Code:    ErrCodeCache,
			})
			continue
		}

		result.Items = append(result.Items, item)
		result.Success = true
	}

	return result
}

// GetItems serves unexpired cached items for the source in arrival order.
func (c *CacheStore) GetItems(ctx context.Context, source engine.Source, limit, offset int) *engine.Result {
	cutoff := c.now().Add(-c.ttl).Unix()

	query := `
		SELECT item_id, source_type, source_data, data
		FROM cached_items
		WHERE source_key = ? AND cached_at > ?
		ORDER BY position
	`
	args := []any{source.Key, cutoff}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	} else if offset > 0 {
		// sqlite requires a LIMIT clause before OFFSET
		query += " LIMIT -1"
	}
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return engine.Fail(fmt.Sprintf("querying cache for %s: %v", source.Key, err), ErrCodeCache)
	}
	defer rows.Close()

	var items []*engine.Item
	for rows.Next() {
		var itemID, sourceType, sourceJSON, dataJSON string
		if err := rows.Scan(&itemID, &sourceType, &sourceJSON, &dataJSON); err != nil {
			return engine.Fail(fmt.Sprintf("scanning cached item: %v", err), ErrCodeCache)
		}

		var data, sourceData map[string]any
		_ = json.Unmarshal([]byte(dataJSON), &data)
		_ = json.Unmarshal([]byte(sourceJSON), &sourceData)

		items = append(items, engine.NewItem(itemID, engine.Source{
			Key:  source.Key,
			Type: sourceType,
			Data: sourceData,
		}, data))
	}
	if err := rows.Err(); err != nil {
		return engine.Fail(fmt.Sprintf("reading cached items: %v", err), ErrCodeCache)
	}

	return engine.Succeed(items)
}

// CachedProvider layers the cache over a live provider. Successful fetches
// refresh the cache; when the remote fails or comes up empty, unexpired
// cached items are served instead.
func CachedProvider(cache *CacheStore, live engine.Provider) engine.Provider {
	writeThrough := engine.ProviderFunc(func(ctx context.Context, source engine.Source, limit, offset int) *engine.Result {
		result := live.GetItems(ctx, source, limit, offset)
		if result.Success && len(result.Items) > 0 {
			cache.StoreItems(ctx, result.Items)
		}
		return result
	})
	return engine.NewFallbackProvider(writeThrough, cache)
}

// Prune removes expired entries.
func (c *CacheStore) Prune(ctx context.Context) error {
	cutoff := c.now().Add(-c.ttl).Unix()
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cached_items WHERE cached_at <= ?`, cutoff); err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}
	return nil
}
