package media

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rebelcode/iris/internal/engine"
)

// SanitizeProcessor strips markup and invalid UTF-8 from text fields of
// aggregated items. Remote captions occasionally carry HTML fragments and
// broken byte sequences that break persistence and rendering downstream.
type SanitizeProcessor struct {
	policy *bluemonday.Policy
	fields []string
}

// NewSanitizeProcessor creates a processor that cleans the given item data
// fields. With no fields, captions and usernames are cleaned.
func NewSanitizeProcessor(fields ...string) *SanitizeProcessor {
	if len(fields) == 0 {
		fields = []string{FieldCaption, FieldUsername}
	}
	return &SanitizeProcessor{policy: bluemonday.StrictPolicy(), fields: fields}
}

func (p *SanitizeProcessor) Process(items []*engine.Item, feed *engine.Feed) []*engine.Item {
	for _, item := range items {
		for _, field := range p.fields {
			if s, ok := item.Data[field].(string); ok {
				item.Data[field] = sanitizeUTF8(p.policy.Sanitize(s))
			}
		}
	}
	return items
}

// sanitizeUTF8 removes invalid UTF-8 byte sequences that upset the database
// and JSON encoding.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}
