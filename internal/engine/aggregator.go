package engine

import "context"

// Processor manipulates the aggregated item list before it is served.
// Processors run in the order they are configured, each receiving the
// previous one's output. A processor may reorder, drop or add items, or
// mutate item data in place, as long as it returns a list of items.
type Processor interface {
	Process(items []*Item, feed *Feed) []*Item
}

// Segregator decides which named collection an item belongs to. Returning
// ok = false places the item in the default collection. Segregate must be a
// pure function of its arguments.
type Segregator interface {
	Segregate(item *Item, feed *Feed) (collection string, ok bool)
}

// Transformer maps an item to the shape consumed outside the engine.
// Transform must be a pure function of its arguments.
type Transformer interface {
	Transform(item *Item, feed *Feed) any
}

// Keys under which the aggregator records side-channel data on its result.
const (
	DataChildren    = "children"
	DataTotal       = "total"
	DataCollections = "collections"

	// DefaultCollection is the collection items land in when no segregator
	// is configured or the segregator declines an item.
	DefaultCollection = "items"
)

// SourceResult pairs a feed source with the result of fetching it, recorded
// under DataChildren in feed-source order.
type SourceResult struct {
	Source Source
	Result *Result
}

// Aggregator collects items for every source in a feed and shapes them into
// client-ready collections.
//
// The pipeline is fixed: fetch per source, deduplicate by item ID, run the
// processors, record the total, apply limit/offset, then segregate and
// transform into named collections. A failing source never prevents its
// siblings from contributing items; its errors are carried on the result.
type Aggregator struct {
	provider    Provider
	processors  []Processor
	segregator  Segregator
	transformer Transformer
}

// NewAggregator creates an aggregator. processors may be empty; segregator
// and transformer may be nil, in which case all items land untransformed in
// the default collection.
func NewAggregator(provider Provider, processors []Processor, segregator Segregator, transformer Transformer) *Aggregator {
	return &Aggregator{
		provider:    provider,
		processors:  processors,
		segregator:  segregator,
		transformer: transformer,
	}
}

// Aggregate fetches, combines and shapes the items of every source in the
// feed. limit <= 0 means no cap; offset skips items after processing. The
// recorded total always reflects the post-dedup, pre-slice count.
func (a *Aggregator) Aggregate(ctx context.Context, feed *Feed, limit, offset int) *Result {
	result := Empty()

	children := make([]SourceResult, 0, len(feed.Sources))
	for _, source := range feed.Sources {
		srcResult := a.provider.GetItems(ctx, source, 0, 0)
		children = append(children, SourceResult{Source: source, Result: srcResult})
		result.Errors = append(result.Errors, srcResult.Errors...)
		result.Items = append(result.Items, srcResult.Items...)
	}
	result.Data[DataChildren] = children

	// NOTE: carried over from the engine this replaces. The flag is raised
	// only when every source errored and nothing was fetched; consumers of
	// aggregation results read Items and Errors rather than Success.
	result.Success = result.HasErrors() && len(result.Items) == 0

	result.Items = uniqueByID(result.Items)

	for _, processor := range a.processors {
		result.Items = processor.Process(result.Items, feed)
	}

	result.Data[DataTotal] = len(result.Items)

	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	if limit > 0 || offset > 0 {
		result.Items = sliceItems(result.Items, offset, limit)
	}

	if a.segregator == nil && a.transformer == nil {
		result.Data[DataCollections] = map[string][]any{
			DefaultCollection: itemsAsAny(result.Items),
		}
		return result
	}

	collections := map[string][]any{}
	for _, item := range result.Items {
		key := DefaultCollection
		if a.segregator != nil {
			if k, ok := a.segregator.Segregate(item, feed); ok {
				key = k
			}
		}

		if a.transformer != nil {
			collections[key] = append(collections[key], a.transformer.Transform(item, feed))
		} else {
			collections[key] = append(collections[key], item)
		}
	}
	result.Data[DataCollections] = collections

	return result
}

// Collection extracts a named collection from an aggregation result. For the
// default collection key the result's own items are returned when no
// collections were recorded; unknown keys yield nil.
func Collection(result *Result, key string) []any {
	if collections, ok := result.Data[DataCollections].(map[string][]any); ok {
		if items, ok := collections[key]; ok {
			return items
		}
	}
	if key == DefaultCollection {
		return itemsAsAny(result.Items)
	}
	return nil
}

// uniqueByID removes duplicate items, keeping the first occurrence of each
// ID. Order is otherwise preserved.
func uniqueByID(items []*Item) []*Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]*Item, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

func sliceItems(items []*Item, offset, limit int) []*Item {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func itemsAsAny(items []*Item) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
