package models

// SelectionPool is the ordered candidate set for one spin. The order is the order
// in which the belt renders items, so it must not be changed after construction.
type SelectionPool struct {
	items []CatalogItem
}

// NewSelectionPool copies items into a new pool.
func NewSelectionPool(items []CatalogItem) SelectionPool {
	cp := make([]CatalogItem, len(items))
	copy(cp, items)
	return SelectionPool{items: cp}
}

func (p SelectionPool) Len() int {
	return len(p.items)
}

func (p SelectionPool) Empty() bool {
	return len(p.items) == 0
}

// At returns the item at index i. It panics when i is out of range, like a slice.
func (p SelectionPool) At(i int) CatalogItem {
	return p.items[i]
}

// Items returns a copy of the pool contents.
func (p SelectionPool) Items() []CatalogItem {
	cp := make([]CatalogItem, len(p.items))
	copy(cp, p.items)
	return cp
}
