package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rebelcode/iris/internal/engine"
	"github.com/rebelcode/iris/internal/media"
	"github.com/rebelcode/iris/internal/registry"
	"github.com/rebelcode/iris/internal/store"
)

func main() {
	feedID := flag.String("feed", "", "Feed ID to aggregate (e.g. main)")
	configPath := flag.String("config", "", "Path to a feeds.yaml overriding the embedded config")
	limit := flag.Int("limit", 0, "Max items to return (0 = feed's numPosts option, or all)")
	offset := flag.Int("offset", 0, "Items to skip")
	from := flag.String("from", "live", "Where to read items from: live or store")
	flag.Parse()

	if *feedID == "" {
		log.Fatal("Please provide a feed ID using -feed flag")
	}

	reg, err := registry.LoadRegistry(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	feed, err := reg.Feed(*feedID)
	if err != nil {
		log.Fatalf("Failed to resolve feed: %v", err)
	}

	ctx := context.Background()

	var provider engine.Provider
	switch *from {
	case "live":
		cache, err := store.OpenCache(reg.CachePath(), reg.CacheTTL())
		if err != nil {
			log.Fatalf("Failed to open cache: %v", err)
		}
		defer cache.Close()
		provider = store.CachedProvider(cache, reg.BuildProvider())
	case "store":
		pool, err := store.Connect(ctx)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		provider = store.NewPostgresStore(pool)
	default:
		log.Fatalf("Unknown -from value %q (want live or store)", *from)
	}

	aggregator := engine.NewAggregator(
		provider,
		[]engine.Processor{
			media.NewSanitizeProcessor(),
			engine.NewSortProcessor(media.FieldTimestamp, media.FieldLikesCount, media.FieldCommentsCount),
		},
		media.StorySegregator{},
		media.Transformer{},
	)

	if *limit <= 0 {
		if n, ok := feed.Option("numPosts", 0).(int); ok {
			*limit = n
		}
	}

	result := aggregator.Aggregate(ctx, feed, *limit, *offset)

	for _, e := range result.Errors {
		log.Printf("Error: %s (%s)", e.Message, e.Code)
	}

	total, _ := result.Data[engine.DataTotal].(int)
	log.Printf("Aggregated %d of %d items for feed %s", len(result.Items), total, *feedID)

	renderCollection(engine.DefaultCollection, engine.Collection(result, engine.DefaultCollection))
	if stories := engine.Collection(result, media.StoriesCollection); len(stories) > 0 {
		renderCollection(media.StoriesCollection, stories)
	}
}

func renderCollection(name string, entries []any) {
	fmt.Printf("\n%s (%d)\n", name, len(entries))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Username", "Type", "Caption", "Timestamp", "Likes", "Comments"})

	for _, entry := range entries {
		post, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		t.AppendRow(table.Row{
			post["id"],
			post["username"],
			post["type"],
			truncate(fmt.Sprint(post["caption"]), 40),
			post["timestamp"],
			post["likesCount"],
			post["commentsCount"],
		})
	}
	t.Render()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
