// Package pagination computes the page links shown under the rate table.
package pagination

// Item is one entry of the window: a page link or an ellipsis marker.
type Item struct {
	Page     int
	Current  bool
	Ellipsis bool
}

// Control is a previous/next link.
type Control struct {
	Page     int
	Disabled bool
}

// Window is the full pagination control set.
type Window struct {
	Items []Item
	Prev  Control
	Next  Control
}

// Empty reports whether no pagination controls should be shown.
func (w Window) Empty() bool {
	return len(w.Items) == 0
}

// Pages returns the page numbers in the window, with 0 standing for an
// ellipsis. Useful for compact assertions and plain-text rendering.
func (w Window) Pages() []int {
	out := make([]int, len(w.Items))
	for i, it := range w.Items {
		if !it.Ellipsis {
			out[i] = it.Page
		}
	}
	return out
}

// Compute builds the window for current of total pages.
//
// Pages 1, 2, total-1 and total are always shown, as are the pages within
// one of current. Each run of hidden pages collapses to a single ellipsis,
// which can only sit right after the leading pair or right before the
// trailing pair.
func Compute(current, total int) Window {
	if total <= 1 {
		return Window{}
	}

	items := make([]Item, 0, 9)
	prev := 0
	for page := 1; page <= total; page++ {
		if !visible(page, current, total) {
			continue
		}
		if page-prev > 1 {
			items = append(items, Item{Ellipsis: true})
		}
		items = append(items, Item{Page: page, Current: page == current})
		prev = page
	}

	return Window{
		Items: items,
		Prev:  Control{Page: current - 1, Disabled: current <= 1},
		Next:  Control{Page: current + 1, Disabled: current >= total},
	}
}

func visible(page, current, total int) bool {
	return page <= 2 || page >= total-1 || (page >= current-1 && page <= current+1)
}
