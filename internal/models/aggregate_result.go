package models

// AggregateResult merges the per-section outcomes of one aggregation.
type AggregateResult struct {
	Pool     SelectionPool
	Sections []SectionFetchResult
}

// Empty reports whether no item is available to draw from.
func (r *AggregateResult) Empty() bool {
	return r.Pool.Empty()
}

// AnySucceeded reports whether at least one section was fetched successfully, which
// separates "nothing to pick" from "catalog unreachable".
func (r *AggregateResult) AnySucceeded() bool {
	for _, s := range r.Sections {
		if s.OK() {
			return true
		}
	}
	return false
}

// FailedSections lists the sections whose fetch failed.
func (r *AggregateResult) FailedSections() []SectionFetchResult {
	var failed []SectionFetchResult
	for _, s := range r.Sections {
		if !s.OK() {
			failed = append(failed, s)
		}
	}
	return failed
}
