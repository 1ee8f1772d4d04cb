package engine

import "context"

// Importer drains a provider into a store, one batch at a time.
//
// Each fetched batch is handed to the store before the next one is
// requested, so peak memory is bounded by one batch and earlier batches stay
// persisted even when a later one fails. Do not construct an Importer with a
// BatchingProvider: the importer batches on its own, and wrapping one in the
// other double-batches.
type Importer struct {
	store     Store
	provider  Provider
	batchSize int
}

// NewImporter creates an importer that stores items in batches of batchSize.
func NewImporter(store Store, provider Provider, batchSize int) *Importer {
	return &Importer{store: store, provider: provider, batchSize: batchSize}
}

// Import fetches every item the provider has for the source, storing each
// batch as it arrives. The whole source is drained: no limit or offset is
// applied.
func (im *Importer) Import(ctx context.Context, source Source) *Result {
	batching := NewBatchingProvider(im.provider, im.batchSize, im.store.StoreItems)
	return batching.GetItems(ctx, source, 0, 0)
}
