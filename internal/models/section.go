package models

// Section is a sub-library of the upstream catalog (Movies, TV Shows, ...).
type Section struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type,omitempty"`
}

// SectionCount reports how many items a section holds. Err is set when the section
// could not be fetched, in which case Count is zero.
type SectionCount struct {
	SectionID int    `json:"sectionId"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Error     string `json:"error,omitempty"`
}

// SectionFetchResult is the outcome of fetching a single section.
type SectionFetchResult struct {
	SectionID int
	Items     []CatalogItem
	Err       error
}

// OK reports whether the section was fetched and parsed.
func (r SectionFetchResult) OK() bool {
	return r.Err == nil
}
