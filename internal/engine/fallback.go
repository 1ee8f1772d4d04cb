package engine

import "context"

// ErrCodeNoProviders identifies the error returned when every provider in a
// fallback chain was exhausted.
const ErrCodeNoProviders = "fallback_no_providers"

// FallbackProvider tries an ordered list of providers until one yields a
// successful result with at least one item, which is returned verbatim.
// Errors from bypassed providers are discarded once a satisfying provider is
// found. When every provider fails the test, an erroneous result is
// returned.
//
// The typical use is layering a cache in front of a live remote: the first
// provider reads from the cache and the second fetches from the remote when
// the cache comes up empty.
type FallbackProvider struct {
	providers []Provider
}

// NewFallbackProvider creates a fallback chain over the given providers, in
// order of preference.
func NewFallbackProvider(providers ...Provider) *FallbackProvider {
	return &FallbackProvider{providers: providers}
}

func (p *FallbackProvider) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	for _, provider := range p.providers {
		result := provider.GetItems(ctx, source, limit, offset)
		if result.Success && len(result.Items) > 0 {
			return result
		}
	}
	return Fail("No item providers are available", ErrCodeNoProviders)
}
