// Package query owns the filter/sort/page state of the rate table and derives
// the remote query parameters from it.
package query

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Veraticus/tarifa/internal/model"
	"github.com/gorilla/schema"
)

// Query parameter names that are always sent.
const (
	ParamSkip      = "skip"
	ParamLimit     = "limit"
	ParamSortBy    = "sort_by"
	ParamSortOrder = "sort_order"
)

var encoder = schema.NewEncoder()

// State is the query state: filters, the active sort and the current page.
// The zero value is not ready for use; call New.
type State struct {
	Filter model.FilterCriteria
	Sort   model.SortSpec
	Page   int
}

// New returns the startup state: no filters, bank ascending, page 1.
func New() *State {
	return &State{
		Sort: model.DefaultSort(),
		Page: 1,
	}
}

// SetFilter replaces every filter field and goes back to page 1.
func (s *State) SetFilter(criteria model.FilterCriteria) {
	s.Filter = criteria
	s.Page = 1
}

// ResetFilters clears every filter field and goes back to page 1. The sort is
// kept.
func (s *State) ResetFilters() {
	s.SetFilter(model.FilterCriteria{})
}

// SetSort toggles the direction when column is already active, otherwise
// switches to column ascending. The current page is kept. Columns outside the
// sortable set are ignored and false is returned.
func (s *State) SetSort(column model.SortColumn) bool {
	if !column.IsSortable() {
		return false
	}
	if s.Sort.Column == column {
		s.Sort.Direction = s.Sort.Direction.Flip()
		return true
	}
	s.Sort = model.SortSpec{Column: column, Direction: model.Ascending}
	return true
}

// SetPage moves to page n when 1 <= n <= totalPages and reports whether it did.
func (s *State) SetPage(n, totalPages int) bool {
	if n < 1 || n > totalPages {
		return false
	}
	s.Page = n
	return true
}

// SetCurrentPage records the page the server says it returned.
func (s *State) SetCurrentPage(n int) {
	if n < 1 {
		n = 1
	}
	s.Page = n
}

// Snapshot returns a copy of the state.
func (s *State) Snapshot() State {
	return *s
}

// Skip is the number of records before the current page.
func (s *State) Skip() int {
	return (s.Page - 1) * model.PageSize
}

// BuildQueryParams maps the state to the dataset query. skip, limit, sort_by
// and sort_order are always present; filter fields only when non-empty.
func (s *State) BuildQueryParams() (url.Values, error) {
	params, err := s.BuildExportQuery()
	if err != nil {
		return nil, err
	}
	params.Set(ParamSkip, strconv.Itoa(s.Skip()))
	params.Set(ParamLimit, strconv.Itoa(model.PageSize))
	return params, nil
}

// BuildExportQuery is BuildQueryParams without pagination, so an export
// covers the whole filtered and sorted result set.
func (s *State) BuildExportQuery() (url.Values, error) {
	params := url.Values{}
	if err := encoder.Encode(s.Filter, params); err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}
	params.Set(ParamSortBy, string(s.Sort.Column))
	params.Set(ParamSortOrder, string(s.Sort.Direction))
	return params, nil
}
