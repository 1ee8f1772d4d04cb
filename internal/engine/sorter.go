package engine

import (
	"math/rand"
	"sort"
	"time"
)

// Feed option consulted by SortProcessor, and its recognized values.
const (
	OptionPostOrder = "postOrder"

	OrderDateAsc        = "date_asc"
	OrderDateDesc       = "date_desc"
	OrderPopularityAsc  = "popularity_asc"
	OrderPopularityDesc = "popularity_desc"
	OrderRandom         = "random"
)

// SortProcessor orders items according to the feed's postOrder option.
//
// Date orders compare the item data field named by TimestampKey. An item
// without a timestamp always compares as more recent than any dated item,
// whichever direction is requested. Popularity is the sum of the LikesKey
// and CommentsKey counts, missing counts scoring zero. Both sorts are
// stable. The random order is an unbiased Fisher-Yates shuffle.
type SortProcessor struct {
	TimestampKey string
	LikesKey     string
	CommentsKey  string

	// Intn supplies randomness for the random order; tests override it.
	// Defaults to a time-seeded source.
	Intn func(n int) int
}

// NewSortProcessor creates a sort processor reading the given item data
// keys.
func NewSortProcessor(timestampKey, likesKey, commentsKey string) *SortProcessor {
	return &SortProcessor{
		TimestampKey: timestampKey,
		LikesKey:     likesKey,
		CommentsKey:  commentsKey,
		Intn:         rand.New(rand.NewSource(time.Now().UnixNano())).Intn,
	}
}

func (p *SortProcessor) Process(items []*Item, feed *Feed) []*Item {
	order, _ := feed.Option(OptionPostOrder, "").(string)

	switch order {
	case OrderDateAsc, OrderDateDesc:
		mult := 1
		if order == OrderDateDesc {
			mult = -1
		}
		sort.SliceStable(items, func(i, j int) bool {
			return p.compareDates(items[i], items[j])*mult < 0
		})

	case OrderPopularityAsc, OrderPopularityDesc:
		mult := 1
		if order == OrderPopularityDesc {
			mult = -1
		}
		sort.SliceStable(items, func(i, j int) bool {
			return (p.score(items[i])-p.score(items[j]))*mult < 0
		})

	case OrderRandom:
		p.shuffle(items)
	}

	return items
}

// compareDates orders items by timestamp, with undated items comparing as
// greater (newer) than any dated item.
func (p *SortProcessor) compareDates(a, b *Item) int {
	ta, aok := timeValue(a.Data[p.TimestampKey])
	tb, bok := timeValue(b.Data[p.TimestampKey])

	switch {
	case aok && bok:
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		default:
			return 0
		}
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}

func (p *SortProcessor) score(item *Item) int {
	return intValue(item.Data[p.LikesKey]) + intValue(item.Data[p.CommentsKey])
}

func (p *SortProcessor) shuffle(items []*Item) {
	intn := p.Intn
	if intn == nil {
		intn = rand.Intn
	}
	for i := len(items) - 1; i > 0; i-- {
		j := intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// timeValue extracts a timestamp from the payload shapes providers produce:
// native times, RFC 3339 strings, or unix seconds.
func timeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		if t == "" {
			return time.Time{}, false
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		return time.Time{}, false
	case int:
		return time.Unix(int64(t), 0), true
	case int64:
		return time.Unix(t, 0), true
	case float64:
		return time.Unix(int64(t), 0), true
	default:
		return time.Time{}, false
	}
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
