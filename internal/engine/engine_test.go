package engine

import (
	"context"
	"strconv"
)

// testSource is the source used by most tests; the key/type values mirror a
// typical account source.
func testSource() Source {
	return NewSource("u1", "USER", map[string]any{"name": "abc"})
}

// makeItems builds n items with ids "1".."n".
func makeItems(src Source, n int) []*Item {
	items := make([]*Item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, NewItem(strconv.Itoa(i), src, map[string]any{}))
	}
	return items
}

func itemIDs(items []*Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// stubProvider returns a fixed result and counts calls.
type stubProvider struct {
	result    *Result
	calls     int
	lastLimit int
}

func (s *stubProvider) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	s.calls++
	s.lastLimit = limit
	return s.result
}

// pagedProvider serves its items page by page, setting a Next continuation
// while more pages remain, the way a remote API provider does.
type pagedProvider struct {
	items   []*Item
	fetches int
}

func (p *pagedProvider) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	return p.page(source, limit, offset)
}

func (p *pagedProvider) page(source Source, limit, offset int) *Result {
	p.fetches++

	if offset >= len(p.items) {
		return Empty()
	}

	end := len(p.items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	result := Succeed(p.items[offset:end])
	if end < len(p.items) {
		result.Next = func(ctx context.Context) *Result {
			return p.page(source, limit, end)
		}
	}
	return result
}

// recordingStore keeps everything it is given and records batch sizes.
type recordingStore struct {
	stored  []*Item
	batches []int
}

func (s *recordingStore) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	return Succeed(s.stored)
}

func (s *recordingStore) StoreItems(ctx context.Context, items []*Item) *Result {
	s.stored = append(s.stored, items...)
	s.batches = append(s.batches, len(items))
	return Succeed(items)
}
