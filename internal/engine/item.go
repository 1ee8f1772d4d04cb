package engine

import (
	"fmt"
	"math"
	"strconv"
)

// Item is a single record fetched from a source. The ID is the external
// identifier assigned by the remote and is unique within one fetch batch;
// the aggregator deduplicates by ID across sources and batches. Data is an
// opaque payload owned by the item. Processors may mutate Data in place,
// transformers and stores read it only.
type Item struct {
	ID     string
	Source Source
	Data   map[string]any
}

// NewItem creates an item, coercing the external id to a string. Remote APIs
// are inconsistent about id types (JSON numbers decode as float64), so any
// integral value is rendered without a fraction.
func NewItem(id any, source Source, data map[string]any) *Item {
	if data == nil {
		data = map[string]any{}
	}
	return &Item{ID: coerceID(id), Source: source, Data: data}
}

func coerceID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
