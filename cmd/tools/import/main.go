package main

import (
	"context"
	"flag"
	"log"

	"github.com/rebelcode/iris/internal/engine"
	"github.com/rebelcode/iris/internal/registry"
	"github.com/rebelcode/iris/internal/store"
)

func main() {
	feedID := flag.String("feed", "", "Feed ID to import (e.g. main)")
	configPath := flag.String("config", "", "Path to a feeds.yaml overriding the embedded config")
	batchSize := flag.Int("batch", 50, "Items stored per batch")
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
	pool, err := store.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := store.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	pg := store.NewPostgresStore(pool)
	importer := engine.NewImporter(pg, reg.BuildProvider(), *batchSize)

	log.Printf("Starting import for feed %s (%d sources)", *feedID, len(feed.Sources))

	var totalItems, totalErrors int
	for _, source := range feed.Sources {
		runID, err := pg.BeginImportRun(ctx, source)
		if err != nil {
			log.Fatalf("Failed to record import run: %v", err)
		}

		result := importer.Import(ctx, source)
		totalItems += len(result.Items)
		totalErrors += len(result.Errors)

		for _, e := range result.Errors {
			log.Printf("Source %s: %s (%s)", source.Key, e.Message, e.Code)
		}
		log.Printf("Source %s (%s): stored %d items, %d errors", source.Key, source.Type, len(result.Items), len(result.Errors))

		if err := pg.FinishImportRun(ctx, runID, len(result.Items), len(result.Errors)); err != nil {
			log.Printf("Failed to finish import run %s: %v", runID, err)
		}
	}

	log.Printf("Import finished for %s. Stored: %d, Errors: %d", *feedID, totalItems, totalErrors)
}
