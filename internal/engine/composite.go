package engine

import "context"

// CompositeProvider queries every held provider with the same arguments and
// folds all results together: success is OR'd, items and errors concatenate
// in provider order, data keys from later providers win. Used when multiple
// independent backends must all contribute to one logical source.
type CompositeProvider struct {
	providers []Provider
}

// NewCompositeProvider creates a composite over the given providers.
func NewCompositeProvider(providers ...Provider) *CompositeProvider {
	return &CompositeProvider{providers: providers}
}

func (p *CompositeProvider) GetItems(ctx context.Context, source Source, limit, offset int) *Result {
	if len(p.providers) == 0 {
		return Empty()
	}

	result := p.providers[0].GetItems(ctx, source, limit, offset)
	for _, provider := range p.providers[1:] {
		result = result.Merge(provider.GetItems(ctx, source, limit, offset), true)
	}
	return result
}
