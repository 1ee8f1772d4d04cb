// Package engine is a generic pipeline for fetching paginated items from
// pluggable sources, importing them into durable storage in batches, and
// aggregating them into client-ready collections.
//
// The engine is synchronous: every call blocks until its Result is ready,
// and cancellation or deadlines are imposed by the caller through the
// context. The Store is the only component that writes durable state;
// providers and the aggregator are read-only.
package engine

import "context"

// Engine is the single point of entry over the provider, store, importer
// and aggregator.
type Engine struct {
	Provider   Provider
	Store      Store
	Importer   *Importer
	Aggregator *Aggregator
}

// New creates an engine facade from its four collaborators.
func New(provider Provider, importer *Importer, store Store, aggregator *Aggregator) *Engine {
	return &Engine{
		Provider:   provider,
		Store:      store,
		Importer:   importer,
		Aggregator: aggregator,
	}
}

// GetItems retrieves items for a source through the configured provider.
func (e *Engine) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	return e.Provider.GetItems(ctx, source, limit, offset)
}

// Import drains a source into the store.
func (e *Engine) Import(ctx context.Context, source Source) *Result {
	return e.Importer.Import(ctx, source)
}

// Aggregate combines the items of every source in a feed.
func (e *Engine) Aggregate(ctx context.Context, feed *Feed, limit, offset int) *Result {
	return e.Aggregator.Aggregate(ctx, feed, limit, offset)
}
