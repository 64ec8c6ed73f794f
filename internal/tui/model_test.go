package tui

import (
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/Veraticus/tarifa/internal/api"
	"github.com/Veraticus/tarifa/internal/apitest"
	"github.com/Veraticus/tarifa/internal/controller"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/Veraticus/tarifa/internal/query"
	"github.com/Veraticus/tarifa/internal/tui/components"
	tuitest "github.com/Veraticus/tarifa/internal/tui/testing"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, n int, opts ...Option) (Model, *apitest.API) {
	t.Helper()

	srv, fake := apitest.NewServer(t, apitest.Records(n)...)
	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(controller.New(client), cfg), fake
}

func run(_ *testing.T, m Model, cmd tea.Cmd) Model {
	return tuitest.Run(m, cmd).(Model)
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func keys(s string) tea.KeyMsg {
	return tuitest.KeyPress(s)
}

func loaded(t *testing.T, n int, opts ...Option) (Model, *apitest.API) {
	t.Helper()
	m, fake := newTestModel(t, n, opts...)
	return run(t, m, m.Init()), fake
}

func TestModel_Init(t *testing.T) {
	m, fake := newTestModel(t, 45)
	assert.False(t, m.ready)
	assert.Contains(t, m.View(), "Loading rates...")

	m = run(t, m, m.Init())

	assert.True(t, m.ready)
	assert.Equal(t, 1, fake.Calls(api.PathTarifarios))
	assert.Equal(t, 1, fake.Calls(api.PathFilters))
	assert.Equal(t, 1, fake.Calls(api.PathStats))
	assert.Len(t, m.view.Items, model.PageSize)
	assert.Len(t, m.table.Rows(), model.PageSize)
	assert.NotNil(t, m.view.Metadata.Stats)

	view := tuitest.StripANSI(m.View())
	assert.True(t, tuitest.ContainsInOrder(view,
		"Tarifarios", "Registros", "1 Banco ▲", "Page 1 of 3 (45 records)", "Compare (0)"))
}

func TestModel_Paging(t *testing.T) {
	m, fake := loaded(t, 45)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Nil(t, cmd, "no previous page on page 1")

	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	m = run(t, m, cmd)

	assert.Equal(t, 2, m.view.Query.Page)
	queries := fake.Queries(api.PathTarifarios)
	assert.Equal(t, "20", queries[len(queries)-1].Get(query.ParamSkip))

	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m = run(t, m, cmd)
	assert.Equal(t, 3, m.view.Query.Page)
	assert.Len(t, m.view.Items, 5)

	_, cmd = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Nil(t, cmd, "no next page on the last page")
}

func TestModel_Sort(t *testing.T) {
	m, fake := loaded(t, 10)

	m, cmd := press(m, keys("1"))
	m = run(t, m, cmd)

	queries := fake.Queries(api.PathTarifarios)
	last := queries[len(queries)-1]
	assert.Equal(t, string(model.SortBanco), last.Get(query.ParamSortBy))
	assert.Equal(t, string(model.Descending), last.Get(query.ParamSortOrder))
	assert.Contains(t, m.View(), "1 Banco ▼")

	m, cmd = press(m, keys("4"))
	m = run(t, m, cmd)
	assert.Equal(t, model.SortTipo, m.view.Query.Sort.Column)
	assert.Equal(t, model.Ascending, m.view.Query.Sort.Direction)
}

func TestModel_FilterFlow(t *testing.T) {
	m, _ := loaded(t, 45)

	m, _ = press(m, keys("f"))
	assert.Equal(t, StateFilter, m.state)
	assert.Contains(t, m.View(), "Filters")

	m = tuitest.Type(m, "BCP").(Model)
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	submitted, ok := cmd().(components.FilterSubmittedMsg)
	require.True(t, ok)

	updated, cmd := m.Update(submitted)
	m = run(t, updated.(Model), cmd)

	assert.Equal(t, StateBrowse, m.state)
	assert.Equal(t, 9, m.view.TotalItems)
	for _, r := range m.view.Items {
		assert.Equal(t, "BCP", model.Text(r.Banco))
	}
	assert.Contains(t, m.View(), "banco=BCP")

	m, cmd = press(m, keys("r"))
	m = run(t, m, cmd)
	assert.Equal(t, 45, m.view.TotalItems)
	assert.True(t, m.view.Query.Filter.IsZero())
}

func TestModel_FilterCancel(t *testing.T) {
	m, fake := loaded(t, 5)

	m, _ = press(m, keys("f"))
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	updated, cmd := m.Update(cmd())
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, StateBrowse, m.state)
	assert.Equal(t, 1, fake.Calls(api.PathTarifarios))
}

func TestModel_Compare(t *testing.T) {
	m, _ := loaded(t, 10)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Len(t, m.view.Compared, 1)
	assert.Equal(t, "●", m.table.Rows()[0][0])
	assert.Equal(t, "Compare (0)", m.view.Action.Label)

	m, _ = press(m, keys("c"))
	assert.Equal(t, StateBrowse, m.state)
	assert.Contains(t, m.View(), "Select at least two records")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, "Compare (2)", m.view.Action.Label)
	assert.True(t, m.view.Action.Enabled)

	m, _ = press(m, keys("c"))
	require.Equal(t, StateCompare, m.state)
	assert.Len(t, m.comparison.Headers, 2)
	view := m.View()
	assert.Contains(t, view, "Comparison (2)")
	assert.Contains(t, view, m.comparison.Headers[0])
	assert.NotContains(t, view, "Producto Codigo")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateBrowse, m.state)

	m, _ = press(m, keys("C"))
	assert.Empty(t, m.view.Compared)
	assert.Equal(t, "", m.table.Rows()[0][0])
}

func TestModel_Detail(t *testing.T) {
	m, _ := loaded(t, 3)
	first := m.view.Items[0]

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateDetail, m.state)
	assert.Equal(t, model.Text(first.Concepto), m.detail.Title)

	view := m.View()
	assert.Contains(t, view, model.Text(first.Concepto))
	assert.Contains(t, view, "Producto Codigo")

	m, _ = press(m, keys("q"))
	assert.Equal(t, StateBrowse, m.state, "q closes the overlay")
	assert.False(t, m.quitting)
}

func TestModel_Export(t *testing.T) {
	dir := t.TempDir()
	m, fake := loaded(t, 6, WithExportDir(dir))

	m, cmd := press(m, keys("e"))
	assert.Contains(t, m.View(), "Exporting...")
	m = run(t, m, cmd)

	assert.Equal(t, 1, fake.Calls(api.PathExportCSV))
	require.True(t, strings.HasPrefix(m.status, "Exported "), m.status)

	data, err := os.ReadFile(strings.TrimPrefix(m.status, "Exported "))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Banco,"))
}

func TestModel_ExportFailure(t *testing.T) {
	dir := t.TempDir()
	m, fake := loaded(t, 6, WithExportDir(dir))
	fake.Fail(api.PathExportCSV, http.StatusInternalServerError)

	m, cmd := press(m, keys("e"))
	m = run(t, m, cmd)

	require.Error(t, m.lastError)
	assert.Contains(t, m.View(), "Error:")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial export removed")
}

func TestModel_FetchErrorKeepsTable(t *testing.T) {
	m, fake := loaded(t, 45)
	before := m.view.Items

	fake.Fail(api.PathTarifarios, http.StatusInternalServerError)
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyRight})
	m = run(t, m, cmd)

	assert.Equal(t, before, m.view.Items)
	assert.Error(t, m.view.Err)
	assert.Contains(t, m.View(), "Error:")
}

func TestModel_Empty(t *testing.T) {
	m, _ := loaded(t, 0)

	assert.Empty(t, m.table.Rows())
	view := m.View()
	assert.Contains(t, view, emptyText)
	assert.Contains(t, view, "Page 1 of 1 (0 records)")
}

func TestModel_HelpAndQuit(t *testing.T) {
	m, _ := loaded(t, 3)

	m, _ = press(m, keys("?"))
	assert.Equal(t, StateHelp, m.state)
	assert.Contains(t, m.View(), "Tarifarios - Help")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateBrowse, m.state)

	m, cmd := press(m, keys("q"))
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_WindowResize(t *testing.T) {
	m, _ := loaded(t, 3)

	updated, _ := m.Update(tuitest.WindowSize(80, 30))
	m = updated.(Model)

	assert.Equal(t, 80, m.width)
	assert.Equal(t, 30, m.height)
	assert.Equal(t, 80, m.help.Width)
	assert.True(t, m.statsPanel.View() != "")
}

func TestDescribeFilter(t *testing.T) {
	assert.Equal(t, "", describeFilter(model.FilterCriteria{}))
	assert.Equal(t, "banco=BCP tasa_mn≥5",
		describeFilter(model.FilterCriteria{Banco: "BCP", TasaMNGte: "5"}))
	assert.Equal(t, "concepto=retiro tasa_me≥1 tasa_me≤9",
		describeFilter(model.FilterCriteria{Concepto: "retiro", TasaMEGte: "1", TasaMELte: "9"}))
}
