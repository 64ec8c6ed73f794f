package controller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/tarifa/internal/common"
	"github.com/Veraticus/tarifa/internal/compare"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI records calls and answers from its function fields.
type stubAPI struct {
	listFn    func(ctx context.Context, params url.Values) (*model.Page, error)
	filtersFn func(ctx context.Context) (*model.FilterOptions, error)
	statsFn   func(ctx context.Context) (*model.Stats, error)
	exportFn  func(ctx context.Context, params url.Values, w io.Writer) (int64, error)
	params    []url.Values
	calls     map[string]int
	mu        sync.Mutex
}

func newStub() *stubAPI {
	return &stubAPI{calls: make(map[string]int)}
}

func (s *stubAPI) record(name string, params url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	if params != nil {
		s.params = append(s.params, params)
	}
}

func (s *stubAPI) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubAPI) lastParams() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.params) == 0 {
		return nil
	}
	return s.params[len(s.params)-1]
}

func (s *stubAPI) ListTarifarios(ctx context.Context, params url.Values) (*model.Page, error) {
	s.record("list", params)
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &model.Page{CurrentPage: 1}, nil
}

func (s *stubAPI) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	s.record("filters", nil)
	if s.filtersFn != nil {
		return s.filtersFn(ctx)
	}
	return &model.FilterOptions{Bancos: []string{"BCP"}}, nil
}

func (s *stubAPI) Stats(ctx context.Context) (*model.Stats, error) {
	s.record("stats", nil)
	if s.statsFn != nil {
		return s.statsFn(ctx)
	}
	return &model.Stats{TotalRegistros: 1}, nil
}

func (s *stubAPI) ExportCSV(ctx context.Context, params url.Values, w io.Writer) (int64, error) {
	s.record("export", params)
	if s.exportFn != nil {
		return s.exportFn(ctx, params, w)
	}
	n, err := io.WriteString(w, "Banco\n")
	return int64(n), err
}

func (s *stubAPI) ExportURL(params url.Values) string {
	return "http://localhost:8000/api/v1/export/csv?" + params.Encode()
}

func rec(banco, concepto string) model.RateRecord {
	return model.RateRecord{Banco: model.Str(banco), Concepto: model.Str(concepto)}
}

func pageOf(current, totalPages, totalItems int, items ...model.RateRecord) *model.Page {
	return &model.Page{Items: items, CurrentPage: current, TotalPages: totalPages, TotalItems: totalItems}
}

func TestNew_StartupState(t *testing.T) {
	view := New(newStub()).Snapshot()

	assert.True(t, view.Query.Filter.IsZero())
	assert.Equal(t, model.DefaultSort(), view.Query.Sort)
	assert.Equal(t, 1, view.Query.Page)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.TotalPages)
	assert.Empty(t, view.Window.Items)
	assert.False(t, view.Action.Enabled)
	assert.False(t, view.Loading)
}

func TestInit_IssuesThreeCallsWithDefaults(t *testing.T) {
	stub := newStub()
	stub.listFn = func(_ context.Context, _ url.Values) (*model.Page, error) {
		return pageOf(1, 2, 25, rec("BCP", "TEA")), nil
	}
	c := New(stub)

	require.NoError(t, c.Init(context.Background()))

	assert.Equal(t, 1, stub.count("list"))
	assert.Equal(t, 1, stub.count("filters"))
	assert.Equal(t, 1, stub.count("stats"))
	assert.Equal(t, url.Values{
		"skip":       {"0"},
		"limit":      {"20"},
		"sort_by":    {"Banco"},
		"sort_order": {"asc"},
	}, stub.lastParams())

	view := c.Snapshot()
	assert.Equal(t, 1, view.Query.Page)
	assert.Equal(t, model.DefaultSort(), view.Query.Sort)
	assert.True(t, view.Query.Filter.IsZero())
	assert.Equal(t, 25, view.TotalItems)
	assert.Equal(t, 2, view.TotalPages)
	require.NotNil(t, view.Metadata.Options)
	require.NotNil(t, view.Metadata.Stats)
	assert.Equal(t, []string{"BCP"}, view.Metadata.Options.Bancos)
}

func TestInit_MetadataFailuresAreIndependent(t *testing.T) {
	tests := []struct {
		name        string
		failFilters bool
		failStats   bool
	}{
		{name: "filters fail", failFilters: true},
		{name: "stats fail", failStats: true},
		{name: "both fail", failFilters: true, failStats: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub()
			if tt.failFilters {
				stub.filtersFn = func(context.Context) (*model.FilterOptions, error) {
					return nil, errors.New("boom")
				}
			}
			if tt.failStats {
				stub.statsFn = func(context.Context) (*model.Stats, error) {
					return nil, errors.New("boom")
				}
			}
			c := New(stub)

			require.NoError(t, c.Init(context.Background()), "metadata errors are not returned")

			meta := c.Snapshot().Metadata
			assert.Equal(t, tt.failFilters, meta.Options == nil)
			assert.Equal(t, tt.failStats, meta.Stats == nil)
		})
	}
}

func TestInit_PageFailure(t *testing.T) {
	stub := newStub()
	stub.listFn = func(context.Context, url.Values) (*model.Page, error) {
		return nil, errors.New("connection refused")
	}
	c := New(stub)

	err := c.Init(context.Background())
	require.ErrorIs(t, err, common.ErrFetchFailed)
	assert.Contains(t, err.Error(), "connection refused")

	view := c.Snapshot()
	assert.NotNil(t, view.Metadata.Options, "metadata still loads")
	assert.ErrorIs(t, view.Err, common.ErrFetchFailed)
}

func TestFetchPage_ErrorPreservesState(t *testing.T) {
	stub := newStub()
	items := []model.RateRecord{rec("BCP", "TEA"), rec("BBVA", "TEA")}
	stub.listFn = func(context.Context, url.Values) (*model.Page, error) {
		return pageOf(1, 3, 41, items...), nil
	}
	c := New(stub)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx))
	before := c.Snapshot()

	stub.listFn = func(context.Context, url.Values) (*model.Page, error) {
		return nil, errors.New("503 Service Unavailable")
	}
	err := c.GoToPage(ctx, 2)
	require.ErrorIs(t, err, common.ErrFetchFailed)

	after := c.Snapshot()
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.TotalItems, after.TotalItems)
	assert.Equal(t, before.TotalPages, after.TotalPages)
	assert.Equal(t, 2, stub.count("list"), "no retry")
}

func TestFetchPage_ServerPageIsAuthoritative(t *testing.T) {
	stub := newStub()
	stub.listFn = func(context.Context, url.Values) (*model.Page, error) {
		return pageOf(3, 5, 90, rec("BCP", "TEA")), nil
	}
	c := New(stub)

	require.NoError(t, c.FetchPage(context.Background()))

	view := c.Snapshot()
	assert.Equal(t, 3, view.Query.Page)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, view.Window.Pages())
}

func TestFetchPage_EmptyResult(t *testing.T) {
	stub := newStub()
	stub.listFn = func(context.Context, url.Values) (*model.Page, error) {
		return &model.Page{Items: []model.RateRecord{}, CurrentPage: 1}, nil
	}
	c := New(stub)

	require.NoError(t, c.ApplyFilter(context.Background(), model.FilterCriteria{Banco: "Nadie"}))

	view := c.Snapshot()
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.TotalItems)
	assert.Equal(t, 0, view.TotalPages)
	assert.Empty(t, view.Window.Items)
	assert.NoError(t, view.Err)
}

func TestFetchPage_DiscardsStaleResponse(t *testing.T) {
	stub := newStub()
	release := make(chan struct{})
	started := make(chan struct{})
	stub.listFn = func(_ context.Context, params url.Values) (*model.Page, error) {
		if params.Get("banco") == "Lento" {
			close(started)
			<-release
			return pageOf(1, 1, 1, rec("Lento", "old")), nil
		}
		return pageOf(1, 1, 1, rec("Rapido", "new")), nil
	}
	c := New(stub)
	ctx := context.Background()
	staleBefore := testutil.ToFloat64(staleResponses)

	slowErr := make(chan error, 1)
	go func() {
		slowErr <- c.ApplyFilter(ctx, model.FilterCriteria{Banco: "Lento"})
	}()
	<-started

	require.NoError(t, c.ApplyFilter(ctx, model.FilterCriteria{Banco: "Rapido"}))
	close(release)

	require.ErrorIs(t, <-slowErr, common.ErrStaleResponse)
	assert.True(t, common.IsStale(common.ErrStaleResponse))

	view := c.Snapshot()
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Rapido", model.Text(view.Items[0].Banco))
	assert.Equal(t, "Rapido", view.Query.Filter.Banco)
	assert.InDelta(t, staleBefore+1, testutil.ToFloat64(staleResponses), 0.001)
}

func TestGoToPage(t *testing.T) {
	stub := newStub()
	stub.listFn = func(_ context.Context, params url.Values) (*model.Page, error) {
		skip := params.Get("skip")
		current := map[string]int{"0": 1, "20": 2, "40": 3}[skip]
		return pageOf(current, 3, 50), nil
	}
	c := New(stub)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx))

	for _, n := range []int{0, 4, -1} {
		err := c.GoToPage(ctx, n)
		require.ErrorIs(t, err, common.ErrPageOutOfRange, n)
	}
	assert.Equal(t, 1, stub.count("list"), "rejected pages do not fetch")

	require.NoError(t, c.GoToPage(ctx, 3))
	assert.Equal(t, "40", stub.lastParams().Get("skip"))
	assert.Equal(t, 3, c.Snapshot().Query.Page)

	require.NoError(t, c.PrevPage(ctx))
	assert.Equal(t, 2, c.Snapshot().Query.Page)
	require.NoError(t, c.NextPage(ctx))
	require.ErrorIs(t, c.NextPage(ctx), common.ErrPageOutOfRange)
}

func TestApplyFilter_ResetsPageAndSendsFilters(t *testing.T) {
	stub := newStub()
	stub.listFn = func(_ context.Context, params url.Values) (*model.Page, error) {
		if params.Get("skip") == "20" {
			return pageOf(2, 4, 70), nil
		}
		return pageOf(1, 4, 70), nil
	}
	c := New(stub)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx))
	require.NoError(t, c.GoToPage(ctx, 2))

	require.NoError(t, c.ApplyFilter(ctx, model.FilterCriteria{Tipo: "COMISION", TasaMNGte: "5"}))

	params := stub.lastParams()
	assert.Equal(t, "0", params.Get("skip"))
	assert.Equal(t, "COMISION", params.Get("tipo"))
	assert.Equal(t, "5", params.Get("tasa_mn_gte"))
	assert.NotContains(t, params, "banco")

	require.NoError(t, c.ResetFilters(ctx))
	assert.NotContains(t, stub.lastParams(), "tipo")
	assert.True(t, c.Snapshot().Query.Filter.IsZero())
}

func TestToggleSort(t *testing.T) {
	stub := newStub()
	stub.listFn = func(_ context.Context, params url.Values) (*model.Page, error) {
		if params.Get("skip") == "20" {
			return pageOf(2, 3, 50), nil
		}
		return pageOf(1, 3, 50), nil
	}
	c := New(stub)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx))
	require.NoError(t, c.GoToPage(ctx, 2))

	require.NoError(t, c.ToggleSort(ctx, model.SortValorMN))
	params := stub.lastParams()
	assert.Equal(t, "Tasa_Porcentaje_MN", params.Get("sort_by"))
	assert.Equal(t, "asc", params.Get("sort_order"))
	assert.Equal(t, "20", params.Get("skip"), "sorting keeps the page")

	require.NoError(t, c.ToggleSort(ctx, model.SortValorMN))
	assert.Equal(t, "desc", stub.lastParams().Get("sort_order"))

	calls := stub.count("list")
	require.NoError(t, c.ToggleSort(ctx, "Monto_Fijo_MN"))
	assert.Equal(t, calls, stub.count("list"), "unsortable column does not fetch")
}

func TestCompare(t *testing.T) {
	c := New(newStub())
	var actions []string
	c.OnCompareChange(func(a compare.Action) { actions = append(actions, a.Label) })

	a := rec("BCP", "TEA")
	b := rec("BBVA", "TEA")

	_, err := c.ComparisonTable()
	require.ErrorIs(t, err, common.ErrNotEnoughRecords)

	assert.True(t, c.ToggleCompare(a))
	assert.False(t, c.Snapshot().Action.Enabled)
	assert.True(t, c.ToggleCompare(b))
	assert.True(t, c.IsCompared(rec("BCP", "TEA")), "structurally equal copy")

	view := c.Snapshot()
	assert.True(t, view.Action.Enabled)
	assert.Equal(t, "Compare (2)", view.Action.Label)
	assert.Len(t, view.Compared, 2)

	table, err := c.ComparisonTable()
	require.NoError(t, err)
	assert.Len(t, table.Headers, 2)

	c.ClearCompare()
	assert.Empty(t, c.Snapshot().Compared)
	assert.Equal(t, []string{"Compare (0)", "Compare (2)", "Compare (0)"}, actions)
}

func TestExport(t *testing.T) {
	stub := newStub()
	c := New(stub)
	ctx := context.Background()
	require.NoError(t, c.ApplyFilter(ctx, model.FilterCriteria{Moneda: "ME"}))
	require.NoError(t, c.ToggleSort(ctx, model.SortConcepto))

	var buf bytes.Buffer
	n, err := c.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("Banco\n")), n)

	params := stub.lastParams()
	assert.Equal(t, url.Values{
		"moneda":     {"ME"},
		"sort_by":    {"Concepto"},
		"sort_order": {"asc"},
	}, params)

	exportURL, err := c.ExportURL()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(exportURL, "?moneda=ME&sort_by=Concepto&sort_order=asc"))
}

func TestExport_Failure(t *testing.T) {
	stub := newStub()
	stub.exportFn = func(context.Context, url.Values, io.Writer) (int64, error) {
		return 0, errors.New("timeout")
	}
	c := New(stub)

	_, err := c.Export(context.Background(), io.Discard)
	require.ErrorIs(t, err, common.ErrFetchFailed)
}
