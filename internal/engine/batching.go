package engine

import "context"

// BatchCallback receives each fetched batch of items and returns a result of
// its own. The callback's items take the place of the raw batch items in the
// final result, which lets a callback report what it actually did with the
// batch (for example, which items a store managed to persist). Its errors
// are recorded alongside the batch's.
type BatchCallback func(ctx context.Context, items []*Item) *Result

// BatchingProvider pages through another provider in fixed-size batches.
//
// The wrapped provider is asked for batchSize items at a time and its Next
// continuations are followed until the limit is reached, a batch comes back
// empty, or a batch fails. The returned result never carries a continuation
// of its own; one call drains as much as the limit allows.
type BatchingProvider struct {
	provider  Provider
	batchSize int
	callback  BatchCallback
}

// NewBatchingProvider wraps a provider. batchSize is clamped to at least 1.
// callback may be nil, in which case raw batch items are accumulated.
func NewBatchingProvider(provider Provider, batchSize int, callback BatchCallback) *BatchingProvider {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchingProvider{provider: provider, batchSize: batchSize, callback: callback}
}

func (p *BatchingProvider) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	result := Empty()

	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasLimit := limit > 0

	// Sentinel first batch; its continuation issues the initial fetch.
	batch := Empty()
	batch.Next = func(ctx context.Context) *Result {
		return p.provider.GetItems(ctx, source, p.batchSize, offset)
	}

	count := 0
	for batch.Next != nil && (!hasLimit || count < limit) {
		batch = batch.NextResult(ctx)
		result.Errors = append(result.Errors, batch.Errors...)

		// A failed batch stops pagination for this call; everything
		// accumulated so far is kept.
		if !batch.Success {
			break
		}

		count += len(batch.Items)
		if hasLimit && count > limit {
			keep := len(batch.Items) - (count - limit)
			batch.Items = batch.Items[:keep]
			count = limit
		}

		// An empty batch means the provider is exhausted or the limit
		// landed exactly on a batch boundary.
		if len(batch.Items) == 0 {
			break
		}

		if p.callback != nil {
			sub := p.callback(ctx, batch.Items)
			result.Items = append(result.Items, sub.Items...)
			result.Errors = append(result.Errors, sub.Errors...)
		} else {
			result.Items = append(result.Items, batch.Items...)
		}
	}

	return result
}
