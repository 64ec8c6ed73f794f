package components

import (
	"strings"

	"github.com/Veraticus/tarifa/internal/model"
	"github.com/Veraticus/tarifa/internal/tui/themes"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FilterSubmittedMsg carries the criteria entered in the form.
type FilterSubmittedMsg struct {
	Criteria model.FilterCriteria
}

// FilterCancelledMsg is sent when the form is dismissed without applying.
type FilterCancelledMsg struct{}

type filterField struct {
	get   func(model.FilterCriteria) string
	set   func(*model.FilterCriteria, string)
	label string
	hint  string
}

var filterFields = []filterField{
	{label: "Banco", hint: "exact bank name",
		get: func(c model.FilterCriteria) string { return c.Banco },
		set: func(c *model.FilterCriteria, v string) { c.Banco = v }},
	{label: "Tipo", hint: "TASA, COMISION, GASTO, SEGURO",
		get: func(c model.FilterCriteria) string { return c.Tipo },
		set: func(c *model.FilterCriteria, v string) { c.Tipo = v }},
	{label: "Moneda", hint: "MN, ME, AMBAS",
		get: func(c model.FilterCriteria) string { return c.Moneda },
		set: func(c *model.FilterCriteria, v string) { c.Moneda = v }},
	{label: "Producto", hint: "text in product name",
		get: func(c model.FilterCriteria) string { return c.Producto },
		set: func(c *model.FilterCriteria, v string) { c.Producto = v }},
	{label: "Concepto", hint: "text in concept",
		get: func(c model.FilterCriteria) string { return c.Concepto },
		set: func(c *model.FilterCriteria, v string) { c.Concepto = v }},
	{label: "Tasa MN ≥", hint: "number",
		get: func(c model.FilterCriteria) string { return c.TasaMNGte },
		set: func(c *model.FilterCriteria, v string) { c.TasaMNGte = v }},
	{label: "Tasa MN ≤", hint: "number",
		get: func(c model.FilterCriteria) string { return c.TasaMNLte },
		set: func(c *model.FilterCriteria, v string) { c.TasaMNLte = v }},
	{label: "Tasa ME ≥", hint: "number",
		get: func(c model.FilterCriteria) string { return c.TasaMEGte },
		set: func(c *model.FilterCriteria, v string) { c.TasaMEGte = v }},
	{label: "Tasa ME ≤", hint: "number",
		get: func(c model.FilterCriteria) string { return c.TasaMELte },
		set: func(c *model.FilterCriteria, v string) { c.TasaMELte = v }},
}

// FilterFormModel edits every filter field at once.
type FilterFormModel struct {
	theme   themes.Theme
	options model.FilterOptions
	inputs  []textinput.Model
	focus   int
	width   int
}

// NewFilterForm creates a form pre-filled with current.
func NewFilterForm(current model.FilterCriteria, options *model.FilterOptions, theme themes.Theme) FilterFormModel {
	inputs := make([]textinput.Model, len(filterFields))
	for i, f := range filterFields {
		in := textinput.New()
		in.Placeholder = f.hint
		in.CharLimit = 80
		in.Width = 40
		in.SetValue(f.get(current))
		inputs[i] = in
	}
	inputs[0].Focus()

	m := FilterFormModel{
		theme:  theme,
		inputs: inputs,
		width:  60,
	}
	if options != nil {
		m.options = *options
	}
	return m
}

// Criteria returns the values currently typed, verbatim.
func (m FilterFormModel) Criteria() model.FilterCriteria {
	var c model.FilterCriteria
	for i, f := range filterFields {
		f.set(&c, m.inputs[i].Value())
	}
	return c
}

// Focused returns the index of the focused field.
func (m FilterFormModel) Focused() int {
	return m.focus
}

// Update handles messages.
func (m FilterFormModel) Update(msg tea.Msg) (FilterFormModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			criteria := m.Criteria()
			return m, func() tea.Msg { return FilterSubmittedMsg{Criteria: criteria} }
		case "esc":
			return m, func() tea.Msg { return FilterCancelledMsg{} }
		case "tab", "down":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus - 1 + len(m.inputs)) % len(m.inputs))
			return m, nil
		case "ctrl+u":
			for i := range m.inputs {
				m.inputs[i].SetValue("")
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *FilterFormModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// Resize sets the available width.
func (m *FilterFormModel) Resize(width int) {
	m.width = width
	for i := range m.inputs {
		m.inputs[i].Width = max(width-20, 10)
	}
}

// View renders the form.
func (m FilterFormModel) View() string {
	labelStyle := lipgloss.NewStyle().Width(12).Foreground(m.theme.Muted)
	focusedLabel := labelStyle.Foreground(m.theme.Primary).Bold(true)

	lines := []string{m.theme.Title.Render("Filters")}
	for i, f := range filterFields {
		style := labelStyle
		if i == m.focus {
			style = focusedLabel
		}
		lines = append(lines, style.Render(f.label)+" "+m.inputs[i].View())
	}

	if hints := m.optionHints(); hints != "" {
		lines = append(lines, "", hints)
	}
	lines = append(lines, "",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Tab next • Enter apply • Ctrl+U clear • Esc cancel"))

	return m.theme.RoundedBox.Width(m.width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m FilterFormModel) optionHints() string {
	var parts []string
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)
	if len(m.options.Bancos) > 0 {
		parts = append(parts, muted.Render("Bancos: "+strings.Join(m.options.Bancos, ", ")))
	}
	if len(m.options.Tipos) > 0 {
		parts = append(parts, muted.Render("Tipos: "+strings.Join(m.options.Tipos, ", ")))
	}
	if len(m.options.Monedas) > 0 {
		parts = append(parts, muted.Render("Monedas: "+strings.Join(m.options.Monedas, ", ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
