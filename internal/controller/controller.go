// Package controller keeps the rate table in sync with the remote dataset.
//
// A Controller owns the query state, the current page of results, the
// metadata used by filter controls and the comparison set. Every user action
// goes through it; dataset-affecting actions trigger a fetch whose result
// replaces the current page. Fetches may overlap; only the most recently
// issued one is applied.
package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"

	"github.com/Veraticus/tarifa/internal/common"
	"github.com/Veraticus/tarifa/internal/compare"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/Veraticus/tarifa/internal/pagination"
	"github.com/Veraticus/tarifa/internal/query"
	"golang.org/x/sync/errgroup"
)

// API is the remote dataset as seen by the controller.
type API interface {
	ListTarifarios(ctx context.Context, params url.Values) (*model.Page, error)
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
	Stats(ctx context.Context) (*model.Stats, error)
	ExportCSV(ctx context.Context, params url.Values, w io.Writer) (int64, error)
	ExportURL(params url.Values) string
}

// Metadata is the data loaded once at startup. Either field is nil when its
// request failed.
type Metadata struct {
	Options *model.FilterOptions
	Stats   *model.Stats
}

// View is an immutable snapshot of everything a renderer needs.
type View struct {
	Metadata   Metadata
	Err        error
	Items      []model.RateRecord
	Compared   []model.RateRecord
	Window     pagination.Window
	Action     compare.Action
	Query      query.State
	TotalItems int
	TotalPages int
	Loading    bool
}

// Controller orchestrates fetches. It is safe for concurrent use.
type Controller struct {
	api        API
	lastErr    error
	state      *query.State
	compared   *compare.Set
	meta       Metadata
	items      []model.RateRecord
	totalItems int
	totalPages int
	seq        uint64
	inFlight   int
	mu         sync.Mutex
}

// New returns a controller in the startup state: no filters, sorted by bank,
// page 1, nothing loaded.
func New(api API) *Controller {
	return &Controller{
		api:      api,
		state:    query.New(),
		compared: compare.NewSet(),
	}
}

// Init performs the initial load: page 1 with defaults, filter options and
// stats, all at once. Only a failure of the page fetch is returned.
func (c *Controller) Init(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return c.FetchPage(ctx)
	})
	g.Go(func() error {
		c.LoadInitialMetadata(ctx)
		return nil
	})
	return g.Wait()
}

// LoadInitialMetadata fetches filter options and stats concurrently. Each may
// fail on its own; a failure is logged and leaves its field nil.
func (c *Controller) LoadInitialMetadata(ctx context.Context) Metadata {
	var (
		g    errgroup.Group
		meta Metadata
	)
	g.Go(func() error {
		opts, err := c.api.FilterOptions(ctx)
		if err != nil {
			fetchFailures.WithLabelValues("filters").Inc()
			slog.Warn("Failed to load filter options", "error", err)
			return nil
		}
		meta.Options = opts
		return nil
	})
	g.Go(func() error {
		stats, err := c.api.Stats(ctx)
		if err != nil {
			fetchFailures.WithLabelValues("stats").Inc()
			slog.Warn("Failed to load stats", "error", err)
			return nil
		}
		meta.Stats = stats
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if meta.Options != nil {
		c.meta.Options = meta.Options
	}
	if meta.Stats != nil {
		c.meta.Stats = meta.Stats
	}
	return c.meta
}

// FetchPage requests the page described by the current query state.
//
// On failure the previous results stay in place and the error wraps
// common.ErrFetchFailed. A response that arrives after a newer fetch was
// issued is dropped and common.ErrStaleResponse is returned. Otherwise the
// response replaces items and totals, and the server's current_page becomes
// the current page.
func (c *Controller) FetchPage(ctx context.Context) error {
	c.mu.Lock()
	params, err := c.state.BuildQueryParams()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to build query: %w", err)
	}
	c.seq++
	seq := c.seq
	c.inFlight++
	c.mu.Unlock()

	page, err := c.api.ListTarifarios(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	if seq != c.seq {
		staleResponses.Inc()
		slog.Debug("Discarding superseded page response",
			"seq", seq,
			"latest", c.seq,
			"url_params", params.Encode())
		return common.ErrStaleResponse
	}

	if err != nil {
		fetchFailures.WithLabelValues("page").Inc()
		slog.Error("Failed to fetch tarifarios",
			"error", err,
			"url_params", params.Encode())
		c.lastErr = fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
		return c.lastErr
	}

	c.items = page.Items
	c.totalItems = page.TotalItems
	c.totalPages = page.TotalPages
	c.state.SetCurrentPage(page.CurrentPage)
	c.lastErr = nil
	return nil
}

// ApplyFilter replaces the filters, goes back to page 1 and fetches.
func (c *Controller) ApplyFilter(ctx context.Context, criteria model.FilterCriteria) error {
	c.mu.Lock()
	c.state.SetFilter(criteria)
	c.mu.Unlock()
	return c.FetchPage(ctx)
}

// ResetFilters clears the filters, goes back to page 1 and fetches.
func (c *Controller) ResetFilters(ctx context.Context) error {
	c.mu.Lock()
	c.state.ResetFilters()
	c.mu.Unlock()
	return c.FetchPage(ctx)
}

// ToggleSort sorts by column, flipping the direction when it is already the
// active column, and fetches. Unsortable columns are ignored.
func (c *Controller) ToggleSort(ctx context.Context, column model.SortColumn) error {
	c.mu.Lock()
	ok := c.state.SetSort(column)
	c.mu.Unlock()
	if !ok {
		slog.Debug("Ignoring sort on unsortable column", "column", column)
		return nil
	}
	return c.FetchPage(ctx)
}

// GoToPage moves to page n and fetches. Pages outside 1..TotalPages are
// rejected with common.ErrPageOutOfRange.
func (c *Controller) GoToPage(ctx context.Context, n int) error {
	c.mu.Lock()
	ok := c.state.SetPage(n, c.totalPages)
	total := c.totalPages
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: page %d of %d", common.ErrPageOutOfRange, n, total)
	}
	return c.FetchPage(ctx)
}

// NextPage moves one page forward.
func (c *Controller) NextPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.currentPage()+1)
}

// PrevPage moves one page back.
func (c *Controller) PrevPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.currentPage()-1)
}

func (c *Controller) currentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Page
}

// ToggleCompare adds record to the comparison set or removes it, and reports
// whether it is selected afterwards.
func (c *Controller) ToggleCompare(record model.RateRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compared.Toggle(record)
}

// IsCompared reports whether record is in the comparison set.
func (c *Controller) IsCompared(record model.RateRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compared.Contains(record)
}

// ClearCompare empties the comparison set.
func (c *Controller) ClearCompare() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compared.Clear()
}

// OnCompareChange registers l for comparison set changes. l runs with the
// controller locked and must not call back into it.
func (c *Controller) OnCompareChange(l compare.Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compared.OnChange(l)
}

// ComparisonTable lays the selected records side by side.
func (c *Controller) ComparisonTable() (compare.Table, error) {
	c.mu.Lock()
	records := c.compared.Records()
	c.mu.Unlock()
	return compare.BuildTable(records)
}

// BuildExportQuery returns the current filters and sort without pagination.
func (c *Controller) BuildExportQuery() (url.Values, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.BuildExportQuery()
}

// ExportURL is where the CSV export of the current view can be downloaded.
func (c *Controller) ExportURL() (string, error) {
	params, err := c.BuildExportQuery()
	if err != nil {
		return "", err
	}
	return c.api.ExportURL(params), nil
}

// Export streams the CSV export of the current view into w.
func (c *Controller) Export(ctx context.Context, w io.Writer) (int64, error) {
	params, err := c.BuildExportQuery()
	if err != nil {
		return 0, err
	}
	n, err := c.api.ExportCSV(ctx, params, w)
	if err != nil {
		slog.Error("Failed to export tarifarios", "error", err, "url_params", params.Encode())
		return n, fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
	}
	slog.Info("Exported tarifarios", "bytes", n)
	return n, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]model.RateRecord, len(c.items))
	copy(items, c.items)

	return View{
		Query:      c.state.Snapshot(),
		Items:      items,
		TotalItems: c.totalItems,
		TotalPages: c.totalPages,
		Metadata:   c.meta,
		Compared:   c.compared.Records(),
		Action:     c.compared.Action(),
		Window:     pagination.Compute(c.state.Page, c.totalPages),
		Loading:    c.inFlight > 0,
		Err:        c.lastErr,
	}
}
