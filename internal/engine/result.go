package engine

import "context"

// Error describes a failed retrieval. It is purely descriptive; retry policy
// belongs to the caller.
type Error struct {
	Message string
	Code    string
}

func (e Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Result is the outcome of any item-producing operation.
//
// A Result can be successful, erroneous, or a mix of both. When Success is
// true the operation produced a usable outcome, possibly with some errors
// recorded along the way (partial success). When Success is false the
// operation failed entirely and Errors holds at least one entry.
//
// Data carries operation-specific side-channel values, such as upstream
// paging info from an HTTP provider or the aggregator's collections.
//
// Next, when non-nil, resumes the operation to produce the following batch
// of items. Invoking it does not mutate the current result, but it may
// perform I/O, so it should not be assumed cheap to call repeatedly.
type Result struct {
	Success bool
	Errors  []Error
	Items   []*Item
	Data    map[string]any
	Next    func(ctx context.Context) *Result
}

// Empty creates a successful result with no items.
func Empty() *Result {
	return &Result{Success: true, Data: map[string]any{}}
}

// Succeed creates a successful result carrying the given items.
func Succeed(items []*Item) *Result {
	r := Empty()
	r.Items = items
	return r
}

// Fail creates an erroneous result with a single error.
func Fail(message, code string) *Result {
	r := Empty()
	r.Success = false
	r.Errors = []Error{{Message: message, Code: code}}
	return r
}

// HasErrors reports whether any errors were recorded, regardless of the
// success flag.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// NextResult invokes the continuation. An empty successful result is
// returned when no continuation is set.
func (r *Result) NextResult(ctx context.Context) *Result {
	if r.Next == nil {
		return Empty()
	}
	return r.Next(ctx)
}

// Merge combines this result with another into a new result. Success is
// OR'd, items and errors are concatenated in order, and data keys from the
// other result overwrite this one's. When mergeNext is true and either side
// has a continuation, the merged result's continuation resolves both sides
// and merges them recursively.
func (r *Result) Merge(other *Result, mergeNext bool) *Result {
	merged := Empty()
	merged.Success = r.Success || other.Success

	merged.Items = make([]*Item, 0, len(r.Items)+len(other.Items))
	merged.Items = append(merged.Items, r.Items...)
	merged.Items = append(merged.Items, other.Items...)

	merged.Errors = make([]Error, 0, len(r.Errors)+len(other.Errors))
	merged.Errors = append(merged.Errors, r.Errors...)
	merged.Errors = append(merged.Errors, other.Errors...)

	for k, v := range r.Data {
		merged.Data[k] = v
	}
	for k, v := range other.Data {
		merged.Data[k] = v
	}

	if mergeNext && (r.Next != nil || other.Next != nil) {
		left, right := r, other
		merged.Next = func(ctx context.Context) *Result {
			return left.NextResult(ctx).Merge(right.NextResult(ctx), true)
		}
	}

	return merged
}
