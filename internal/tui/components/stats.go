package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/tarifa/internal/format"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/Veraticus/tarifa/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StatsPanelModel displays the dataset statistics.
type StatsPanelModel struct {
	theme       themes.Theme
	stats       *model.Stats
	progressBar progress.Model
	width       int
	compact     bool
}

// NewStatsPanelModel creates a new stats panel.
func NewStatsPanelModel(theme themes.Theme) StatsPanelModel {
	prog := progress.New(progress.WithSolidFill(string(theme.Primary)))
	prog.ShowPercentage = false
	prog.Width = 20

	return StatsPanelModel{
		progressBar: prog,
		theme:       theme,
	}
}

// SetStats replaces the statistics shown. nil means unavailable.
func (m *StatsPanelModel) SetStats(stats *model.Stats) {
	m.stats = stats
}

// SetCompact sets compact mode.
func (m *StatsPanelModel) SetCompact(compact bool) {
	m.compact = compact
}

// Resize updates the component size.
func (m *StatsPanelModel) Resize(width int) {
	m.width = width
	m.progressBar.Width = max(min(width-30, 30), 5)
}

// View renders the stats panel.
func (m StatsPanelModel) View() string {
	if m.stats == nil {
		return lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Statistics unavailable")
	}
	if m.compact {
		return m.renderCompact()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderCards(), m.renderTipos())
}

// Cards returns the summary figures, or nil when statistics are unavailable.
func (m StatsPanelModel) Cards() []format.Card {
	if m.stats == nil {
		return nil
	}
	return format.StatCards(*m.stats)
}

func (m StatsPanelModel) renderCompact() string {
	parts := make([]string, 0, 4)
	for _, c := range m.Cards() {
		parts = append(parts, c.Label+": "+m.theme.Bold.Render(c.Value))
	}
	return m.theme.Box.Render(strings.Join(parts, " • "))
}

func (m StatsPanelModel) renderCards() string {
	cards := make([]string, 0, 4)
	for _, c := range m.Cards() {
		cards = append(cards, m.theme.RoundedBox.
			Width(18).
			Render(lipgloss.JoinVertical(lipgloss.Left,
				m.theme.Subtitle.Render(c.Label),
				m.theme.Bold.Render(c.Value),
			)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderTipos renders the record count per Tipo.
func (m StatsPanelModel) renderTipos() string {
	if len(m.stats.TiposCount) == 0 || m.stats.TotalRegistros == 0 {
		return ""
	}

	tipos := format.TiposByCount(m.stats.TiposCount)

	lines := []string{m.theme.Subtitle.Render("Registros por tipo")}
	for _, tipo := range tipos {
		count := m.stats.TiposCount[tipo]
		share := float64(count) / float64(m.stats.TotalRegistros)
		lines = append(lines, fmt.Sprintf("%-10s %s %d",
			truncate(tipo, 10),
			m.progressBar.ViewAs(share),
			count,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
