package engine

// Feed is the configuration for one aggregation: the sources whose items are
// combined, plus free-form options consumed by processors, segregators and
// transformers. Feeds are immutable once built.
type Feed struct {
	Sources []Source
	Options map[string]any
}

// NewFeed creates a feed over the given sources.
func NewFeed(sources []Source, options map[string]any) *Feed {
	if options == nil {
		options = map[string]any{}
	}
	return &Feed{Sources: sources, Options: options}
}

// Option returns the value for a feed option, or def when the option is not
// set.
func (f *Feed) Option(key string, def any) any {
	if v, ok := f.Options[key]; ok {
		return v
	}
	return def
}
