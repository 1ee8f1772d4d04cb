package engine

import "context"

// Store is durable storage for fetched items. Stored items are re-exposed
// through the embedded Provider side, which is what lets a store sit in
// front of a live provider in a fallback chain.
//
// StoreItems persists a list of items. The returned result's Items must
// contain only the items that were actually persisted, including any
// mutations made while storing them (enrichment, normalization). Item-level
// failures are reported through Errors. The result must not set a Next
// continuation. Whether partial persistence counts as success is the store's
// call; the convention here is "at least one item persisted".
type Store interface {
	Provider
	StoreItems(ctx context.Context, items []*Item) *Result
}
