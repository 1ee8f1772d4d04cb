package engine

import "context"

// Provider is any resource that can retrieve items for a source.
//
// A provider does not need to represent a single discrete endpoint. It may
// represent a whole family of remotes, picking the concrete one from the
// source's type and data. Given the same source, a provider should return
// the list of items that corresponds to it.
//
// Ordinary "no data" conditions return an empty successful result, never an
// error. Hard failures (network, auth, malformed responses) return a result
// with Success set to false and Errors populated; providers do not panic for
// operational failures.
//
// limit <= 0 means the caller imposes no cap; the provider may still cap
// internally. offset is the number of items to skip and is normalized to be
// non-negative. Further pages can be retrieved through the returned result's
// Next continuation when the provider sets one.
type Provider interface {
	GetItems(ctx context.Context, source Source, limit, offset int) *Result
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, source Source, limit, offset int) *Result

func (f ProviderFunc) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	return f(ctx, source, limit, offset)
}

// DelegateProvider dispatches to a child provider based on the source type.
// Unknown types are silently unsupported and yield an empty successful
// result. No fallback chaining is performed.
type DelegateProvider struct {
	providers map[string]Provider
}

// NewDelegateProvider creates a delegate over a map of source types to
// providers.
func NewDelegateProvider(providers map[string]Provider) *DelegateProvider {
	return &DelegateProvider{providers: providers}
}

func (p *DelegateProvider) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	child, ok := p.providers[source.Type]
	if !ok {
		return Empty()
	}
	return child.GetItems(ctx, source, limit, offset)
}
