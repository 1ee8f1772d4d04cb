package engine

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"
)

// Source describes where items come from. The Type selects the fetch
// mechanism (see DelegateProvider) while Data carries whatever the matching
// provider needs to resolve the remote location: account names, hashtags,
// URLs and so on.
//
// Sources are compared by Key. Two sources built from the same type and data
// must produce the same key, so prefer AutoSource over hand-picked keys when
// the source is derived from configuration. Sources are never mutated after
// construction.
type Source struct {
	Key  string
	Type string
	Data map[string]any
}

// NewSource creates a source with an explicit key.
func NewSource(key, sourceType string, data map[string]any) Source {
	return Source{Key: key, Type: sourceType, Data: data}
}

// AutoSource creates a source whose key is a stable hash of the type and
// data. Data values are encoded as JSON in sorted key order, so equal
// (type, data) pairs always hash to the same key. Nested maps are safe;
// nested slices must keep a consistent element order for keys to match.
func AutoSource(sourceType string, data map[string]any) Source {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha1.New()
	h.Write([]byte(sourceType))
	for _, k := range keys {
		v, err := json.Marshal(data[k])
		if err != nil {
			v = []byte(fmt.Sprint(data[k]))
		}
		fmt.Fprintf(h, "|%s=%s", k, v)
	}

	return Source{
		Key:  fmt.Sprintf("%x", h.Sum(nil)),
		Type: sourceType,
		Data: data,
	}
}
