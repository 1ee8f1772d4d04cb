package engine

import (
	"context"
	"strings"
	"testing"
)

// feedProvider maps source keys to canned results.
type feedProvider struct {
	results map[string]*Result
}

func (p *feedProvider) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	if result, ok := p.results[source.Key]; ok {
		return result
	}
	return Empty()
}

func twoSourceFeed() (*Feed, Source, Source) {
	s1 := NewSource("s1", "USER", map[string]any{"name": "one"})
	s2 := NewSource("s2", "USER", map[string]any{"name": "two"})
	return NewFeed([]Source{s1, s2}, nil), s1, s2
}

func TestAggregateDeduplicatesFirstWins(t *testing.T) {
	feed, s1, s2 := twoSourceFeed()

	provider := &feedProvider{results: map[string]*Result{
		"s1": Succeed([]*Item{
			NewItem("a", s1, map[string]any{"from": "s1"}),
			NewItem("b", s1, nil),
		}),
		"s2": Succeed([]*Item{
			NewItem("a", s2, map[string]any{"from": "s2"}),
			NewItem("c", s2, nil),
		}),
	}}

	result := NewAggregator(provider, nil, nil, nil).Aggregate(context.Background(), feed, 0, 0)

	ids := itemIDs(result.Items)
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("expected deduplicated ids [a b c], got %v", ids)
	}
	if result.Items[0].Data["from"] != "s1" {
		t.Errorf("expected the first occurrence of a duplicate id to win")
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	feed, s1, s2 := twoSourceFeed()
	provider := &feedProvider{results: map[string]*Result{
		"s1": Succeed([]*Item{NewItem("a", s1, nil), NewItem("b", s1, nil)}),
		"s2": Succeed([]*Item{NewItem("b", s2, nil), NewItem("a", s2, nil)}),
	}}
	aggregator := NewAggregator(provider, nil, nil, nil)

	first := aggregator.Aggregate(context.Background(), feed, 0, 0)
	second := aggregator.Aggregate(context.Background(), feed, 0, 0)

	if strings.Join(itemIDs(first.Items), ",") != strings.Join(itemIDs(second.Items), ",") {
		t.Errorf("aggregating the same feed twice must yield identical item sets: %v vs %v",
			itemIDs(first.Items), itemIDs(second.Items))
	}
}

func TestAggregateRecordsChildrenInSourceOrder(t *testing.T) {
	feed, s1, _ := twoSourceFeed()
	provider := &feedProvider{results: map[string]*Result{
		"s1": Succeed([]*Item{NewItem("a", s1, nil)}),
		"s2": Fail("remote down", "http_500"),
	}}

	result := NewAggregator(provider, nil, nil, nil).Aggregate(context.Background(), feed, 0, 0)

	children, ok := result.Data[DataChildren].([]SourceResult)
	if !ok {
		t.Fatalf("expected children recorded as []SourceResult, got %T", result.Data[DataChildren])
	}
	if len(children) != 2 || children[0].Source.Key != "s1" || children[1].Source.Key != "s2" {
		t.Errorf("expected children in feed source order, got %+v", children)
	}
}

func TestAggregateIsolatesSourceFailures(t *testing.T) {
	feed, s1, _ := twoSourceFeed()
	provider := &feedProvider{results: map[string]*Result{
		"s1": Succeed([]*Item{NewItem("a", s1, nil)}),
		"s2": Fail("remote down", "http_500"),
	}}

	result := NewAggregator(provider, nil, nil, nil).Aggregate(context.Background(), feed, 0, 0)

	if len(result.Items) != 1 {
		t.Errorf("a failing source must not prevent siblings from contributing, got %d items", len(result.Items))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected the failing source's error to be carried, got %+v", result.Errors)
	}
}

// The flag matches the engine this replaces: raised only when every source
// errored and nothing was fetched. Consumers read Items and Errors instead.
func TestAggregateSuccessFlag(t *testing.T) {
	feed, s1, _ := twoSourceFeed()

	tests := []struct {
		name    string
		results map[string]*Result
		want    bool
	}{
		{
			name: "errors and no items",
			results: map[string]*Result{
				"s1": Fail("down", "x"),
				"s2": Fail("down", "y"),
			},
			want: true,
		},
		{
			name: "errors with items",
			results: map[string]*Result{
				"s1": Succeed([]*Item{NewItem("a", s1, nil)}),
				"s2": Fail("down", "y"),
			},
			want: false,
		},
		{
			name:    "no errors and no items",
			results: map[string]*Result{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &feedProvider{results: tt.results}
			result := NewAggregator(provider, nil, nil, nil).Aggregate(context.Background(), feed, 0, 0)
			if result.Success != tt.want {
				t.Errorf("Success = %v, want %v", result.Success, tt.want)
			}
		})
	}
}

func TestAggregateTotalReflectsPreSliceCount(t *testing.T) {
	feed, s1, _ := twoSourceFeed()
	provider := &feedProvider{results: map[string]*Result{
		"s1": Succeed(makeItems(s1, 10)),
	}}

	result := NewAggregator(provider, nil, nil, nil).Aggregate(context.Background(), feed, 3, 2)

	if total := result.Data[DataTotal]; total != 10 {
		t.Errorf("total must reflect the pre-slice count, got %v", total)
	}
	ids := itemIDs(result.Items)
	if len(ids) != 3 || ids[0] != "3" || ids[1] != "4" || ids[2] != "5" {
		t.Errorf("expected items 3..5 after slicing, got %v", ids)
	}
}

func TestAggregateDefaultCollectionMatchesItems(t *testing.T) {
	feed, s1, _ := twoSourceFeed()
	provider := &feedProvider{results: map[string]*Result{
		"s1": Succeed(makeItems(s1, 4)),
	}}

	result := NewAggregator(provider, nil, nil, nil).Aggregate(context.Background(), feed, 2, 1)

	collection := Collection(result, DefaultCollection)
	if len(collection) != len(result.Items) {
		t.Fatalf("default collection size %d != items %d", len(collection), len(result.Items))
	}
	for i := range collection {
		if collection[i] != result.Items[i] {
			t.Errorf("default collection must equal the sliced item list exactly")
		}
	}
}

type suffixSegregator struct{}

func (suffixSegregator) Segregate(item *Item, feed *Feed) (string, bool) {
	if flagged, _ := item.Data["flagged"].(bool); flagged {
		return "flagged", true
	}
	return "", false
}

type idTransformer struct{}

func (idTransformer) Transform(item *Item, feed *Feed) any {
	return "item-" + item.ID
}

func TestAggregateSegregatesAndTransforms(t *testing.T) {
	feed, s1, _ := twoSourceFeed()
	provider := &feedProvider{results: map[string]*Result{
		"s1": Succeed([]*Item{
			NewItem("a", s1, map[string]any{"flagged": true}),
			NewItem("b", s1, nil),
			NewItem("c", s1, map[string]any{"flagged": true}),
		}),
	}}

	aggregator := NewAggregator(provider, nil, suffixSegregator{}, idTransformer{})
	result := aggregator.Aggregate(context.Background(), feed, 0, 0)

	flagged := Collection(result, "flagged")
	if len(flagged) != 2 || flagged[0] != "item-a" || flagged[1] != "item-c" {
		t.Errorf("expected transformed flagged collection in item order, got %v", flagged)
	}

	def := Collection(result, DefaultCollection)
	if len(def) != 1 || def[0] != "item-b" {
		t.Errorf("expected declined items in the default collection, got %v", def)
	}

	if Collection(result, "missing") != nil {
		t.Errorf("unknown collections must be nil")
	}
}

type dropProcessor struct{ drop string }

func (p dropProcessor) Process(items []*Item, feed *Feed) []*Item {
	out := items[:0]
	for _, item := range items {
		if item.ID != p.drop {
			out = append(out, item)
		}
	}
	return out
}

func TestAggregateRunsProcessorsInOrder(t *testing.T) {
	feed, s1, _ := twoSourceFeed()
	provider := &feedProvider{results: map[string]*Result{
		"s1": Succeed(makeItems(s1, 3)),
	}}

	aggregator := NewAggregator(provider, []Processor{
		dropProcessor{drop: "2"},
		dropProcessor{drop: "3"},
	}, nil, nil)

	result := aggregator.Aggregate(context.Background(), feed, 0, 0)

	ids := itemIDs(result.Items)
	if len(ids) != 1 || ids[0] != "1" {
		t.Errorf("expected processors chained in order, got %v", ids)
	}
	if result.Data[DataTotal] != 1 {
		t.Errorf("total must count post-processor items, got %v", result.Data[DataTotal])
	}
}
