package tui

import (
	"errors"

	"github.com/Veraticus/tarifa/internal/common"
	"github.com/Veraticus/tarifa/internal/compare"
	"github.com/Veraticus/tarifa/internal/controller"
	"github.com/Veraticus/tarifa/internal/format"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/Veraticus/tarifa/internal/tui/components"
	"github.com/Veraticus/tarifa/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// State represents the current state of the TUI.
type State int

const (
	StateBrowse State = iota
	StateFilter
	StateDetail
	StateCompare
	StateHelp
)

// column is one table column and the sort it maps to.
type column struct {
	sort  model.SortColumn
	title string
	width int
}

var columns = []column{
	{title: "", width: 2},
	{title: "Banco", width: 16, sort: model.SortBanco},
	{title: "Producto", width: 22, sort: model.SortProductoNombre},
	{title: "Concepto", width: 30, sort: model.SortConcepto},
	{title: "Tipo", width: 10, sort: model.SortTipo},
	{title: "Moneda", width: 8, sort: model.SortMoneda},
	{title: "Valor MN", width: 12, sort: model.SortValorMN},
	{title: "Valor ME", width: 12, sort: model.SortValorME},
}

// Model holds the main TUI state.
type Model struct {
	theme      themes.Theme
	lastError  error
	ctrl       *controller.Controller
	status     string
	detail     compare.Detail
	comparison compare.Table
	view       controller.View
	help       help.Model
	filter     components.FilterFormModel
	statsPanel components.StatsPanelModel
	table      table.Model
	config     Config
	keymap     KeyMap
	height     int
	width      int
	state      State
	quitting   bool
	ready      bool
}

// newModel creates a new model over ctrl.
func newModel(ctrl *controller.Controller, cfg Config) Model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(model.PageSize),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(cfg.Theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = cfg.Theme.Selected
	t.SetStyles(s)

	m := Model{
		ctrl:   ctrl,
		config: cfg,
		theme:  cfg.Theme,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		table:  t,
		width:  cfg.Width,
		height: cfg.Height,
		state:  StateBrowse,

		statsPanel: components.NewStatsPanelModel(cfg.Theme),
	}
	m.handleResize()
	m.refresh()
	return m
}

// Init issues the initial load: the first page, filter options and stats.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadPage(), m.loadMetadata())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case pageLoadedMsg:
		m.handlePageLoaded(msg.err)
		return m, nil

	case metadataLoadedMsg:
		m.refresh()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.lastError = msg.err
			m.status = ""
		} else {
			m.status = "Exported " + msg.path
		}
		return m, nil

	case components.FilterSubmittedMsg:
		m.state = StateBrowse
		m.status = ""
		return m, m.applyFilter(msg.Criteria)

	case components.FilterCancelledMsg:
		m.state = StateBrowse
		return m, nil
	}

	if m.state == StateFilter {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}

	switch m.state {
	case StateFilter:
		return m.filter.View()
	case StateDetail:
		return m.renderDetail()
	case StateCompare:
		return m.renderCompare()
	case StateHelp:
		return m.renderHelp()
	default:
		return m.renderBrowse()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateFilter:
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd

	case StateDetail, StateCompare, StateHelp:
		if key.Matches(msg, m.keymap.Back, m.keymap.Quit, m.keymap.Help) {
			m.state = StateBrowse
		}
		return m, nil
	}

	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.state = StateHelp
		return m, nil

	case key.Matches(msg, m.keymap.PrevPage):
		if m.view.Window.Prev.Disabled || m.view.Window.Empty() {
			return m, nil
		}
		return m, m.fetch(m.ctrl.PrevPage)

	case key.Matches(msg, m.keymap.NextPage):
		if m.view.Window.Next.Disabled || m.view.Window.Empty() {
			return m, nil
		}
		return m, m.fetch(m.ctrl.NextPage)

	case key.Matches(msg, m.keymap.Sort):
		idx := int(msg.String()[0] - '1')
		if idx < 0 || idx >= len(model.SortColumns) {
			return m, nil
		}
		return m, m.toggleSort(model.SortColumns[idx])

	case key.Matches(msg, m.keymap.Filter):
		m.filter = components.NewFilterForm(m.view.Query.Filter, m.view.Metadata.Options, m.theme)
		m.filter.Resize(min(m.width, 80))
		m.state = StateFilter
		return m, textinput.Blink

	case key.Matches(msg, m.keymap.Reset):
		m.status = ""
		return m, m.fetch(m.ctrl.ResetFilters)

	case key.Matches(msg, m.keymap.ToggleCompare):
		if rec, ok := m.selected(); ok {
			m.ctrl.ToggleCompare(rec)
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keymap.ClearCompare):
		m.ctrl.ClearCompare()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keymap.Compare):
		t, err := m.ctrl.ComparisonTable()
		if errors.Is(err, common.ErrNotEnoughRecords) {
			m.status = "Select at least two records to compare"
			return m, nil
		}
		m.comparison = t
		m.state = StateCompare
		return m, nil

	case key.Matches(msg, m.keymap.Detail):
		if rec, ok := m.selected(); ok {
			m.detail = compare.Details(rec)
			m.state = StateDetail
		}
		return m, nil

	case key.Matches(msg, m.keymap.Export):
		m.status = "Exporting..."
		return m, m.export()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handlePageLoaded refreshes the view after a fetch. Fetch failures are
// kept by the controller and rendered from the snapshot; stale and
// out-of-range results leave the screen as it is.
func (m *Model) handlePageLoaded(err error) {
	if err == nil {
		m.lastError = nil
	}
	m.ready = true
	m.refresh()
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	// Header, pagination, action and status lines plus help.
	m.table.SetHeight(max(m.height-10, 5))
	m.table.SetWidth(m.width)
	m.help.Width = m.width
	m.filter.Resize(min(m.width, 80))
	m.statsPanel.Resize(m.width)
	m.statsPanel.SetCompact(m.width < 100)
}

// refresh copies the controller state into the table.
func (m *Model) refresh() {
	m.view = m.ctrl.Snapshot()
	m.statsPanel.SetStats(m.view.Metadata.Stats)

	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: m.columnTitle(i, c), Width: c.width}
	}

	compared := make(map[string]bool, len(m.view.Compared))
	for _, r := range m.view.Compared {
		compared[r.Key()] = true
	}

	rows := make([]table.Row, len(m.view.Items))
	for i, r := range m.view.Items {
		marker := ""
		if compared[r.Key()] {
			marker = "●"
		}
		rows[i] = table.Row{
			marker,
			model.Text(r.Banco),
			model.Text(r.ProductoNombre),
			model.Text(r.Concepto),
			model.Text(r.Tipo),
			model.Text(r.Moneda),
			format.MN(r),
			format.ME(r),
		}
	}

	cursor := m.table.Cursor()
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(min(max(cursor, 0), len(rows)-1))
	}
}

func (m Model) columnTitle(i int, c column) string {
	if c.sort == "" {
		return c.title
	}
	title := string(rune('0'+i)) + " " + c.title
	if m.view.Query.Sort.Column == c.sort {
		if m.view.Query.Sort.Direction == model.Descending {
			return title + " ▼"
		}
		return title + " ▲"
	}
	return title
}

// selected returns the record under the cursor.
func (m Model) selected() (model.RateRecord, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.view.Items) {
		return model.RateRecord{}, false
	}
	return m.view.Items[i], true
}
