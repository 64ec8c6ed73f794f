package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/tarifa/internal/format"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

const emptyText = "No data found."

// renderLoading renders the loading screen.
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render("Tarifarios"),
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Loading rates..."),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderBrowse renders the main table screen.
func (m Model) renderBrowse() string {
	sections := []string{
		m.renderHeader(),
		m.statsPanel.View(),
	}

	if len(m.view.Items) == 0 {
		sections = append(sections,
			m.theme.Box.Foreground(m.theme.Muted).Render(emptyText))
	} else {
		sections = append(sections, m.table.View())
	}

	sections = append(sections,
		m.renderPagination(),
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.MarginBottom(0).Render("Tarifarios")
	if f := m.view.Query.Filter; !f.IsZero() {
		title += "  " + m.theme.Subtitle.Render(describeFilter(f))
	}
	return title
}

// describeFilter summarizes the active filters on one line.
func describeFilter(f model.FilterCriteria) string {
	pairs := []struct{ label, value string }{
		{"banco=", f.Banco},
		{"tipo=", f.Tipo},
		{"moneda=", f.Moneda},
		{"producto=", f.Producto},
		{"concepto=", f.Concepto},
		{"tasa_mn≥", f.TasaMNGte},
		{"tasa_mn≤", f.TasaMNLte},
		{"tasa_me≥", f.TasaMEGte},
		{"tasa_me≤", f.TasaMELte},
	}
	var parts []string
	for _, p := range pairs {
		if p.value != "" {
			parts = append(parts, p.label+p.value)
		}
	}
	return strings.Join(parts, " ")
}

// renderPagination renders the page summary and the page links.
func (m Model) renderPagination() string {
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)
	summary := muted.Render(fmt.Sprintf("Page %d of %d (%d records)",
		m.view.Query.Page, max(m.view.TotalPages, 1), m.view.TotalItems))

	w := m.view.Window
	if w.Empty() {
		return summary
	}

	control := func(label string, disabled bool) string {
		if disabled {
			return muted.Render(label)
		}
		return lipgloss.NewStyle().Foreground(m.theme.Primary).Render(label)
	}

	parts := []string{control("‹ Prev", w.Prev.Disabled)}
	for _, it := range w.Items {
		switch {
		case it.Ellipsis:
			parts = append(parts, muted.Render("…"))
		case it.Current:
			parts = append(parts, m.theme.Selected.Render(fmt.Sprintf(" %d ", it.Page)))
		default:
			parts = append(parts, fmt.Sprintf("%d", it.Page))
		}
	}
	parts = append(parts, control("Next ›", w.Next.Disabled))

	return summary + "   " + strings.Join(parts, " ")
}

// renderStatusBar renders the compare action, status and errors.
func (m Model) renderStatusBar() string {
	action := m.view.Action
	actionStyle := lipgloss.NewStyle().Foreground(m.theme.Muted)
	if action.Enabled {
		actionStyle = m.theme.StatusSuccess
	}
	parts := []string{actionStyle.Render(action.Label)}

	if m.view.Loading {
		parts = append(parts, m.theme.StatusInfo.Render("Loading..."))
	}
	if err := m.currentError(); err != nil {
		parts = append(parts, m.theme.StatusError.Render("Error: "+err.Error()))
	} else if m.status != "" {
		parts = append(parts, m.theme.Normal.Render(m.status))
	}

	return strings.Join(parts, "  │  ")
}

// currentError returns the error to show, if any.
func (m Model) currentError() error {
	if m.lastError != nil {
		return m.lastError
	}
	return m.view.Err
}

// renderCompare renders the side-by-side comparison.
func (m Model) renderCompare() string {
	headers := append([]string{"Atributo"}, m.comparison.Headers...)

	rows := make([][]string, len(m.comparison.Rows))
	for i, r := range m.comparison.Rows {
		rows[i] = append([]string{r.Label}, r.Values...)
	}

	grid := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(m.theme.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return m.theme.Bold.Padding(0, 1)
			case col == 0:
				return lipgloss.NewStyle().Foreground(m.theme.Secondary).Padding(0, 1)
			default:
				return m.theme.Normal.Padding(0, 1)
			}
		})

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render(fmt.Sprintf("Comparison (%d)", len(m.comparison.Headers))),
		grid.Render(),
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Esc to close"),
	)
}

// renderDetail renders every attribute of one record.
func (m Model) renderDetail() string {
	label := lipgloss.NewStyle().Width(24).Foreground(m.theme.Muted)

	lines := []string{m.theme.Title.Render(m.detail.Title)}
	for _, e := range m.detail.Entries {
		lines = append(lines, label.Render(e.Label)+" "+m.detailValue(e.Label, e.Value))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Esc to close"))

	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) detailValue(label, value string) string {
	switch label {
	case format.AttributeLabel(model.KeyTipo):
		return m.theme.Badge(value, format.TipoBadge(value))
	case format.AttributeLabel(model.KeyMoneda):
		return m.theme.Badge(value, format.MonedaBadge(value))
	default:
		return m.theme.Normal.Render(value)
	}
}

// renderHelp renders the help screen.
func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		m.theme.BorderedBox.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.theme.Title.Render("Tarifarios - Help"),
			h.View(m.keymap),
			"",
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press ? or Esc to close help"),
		)),
	)
}
