package components

import (
	"strings"
	"testing"

	"github.com/Veraticus/tarifa/internal/format"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/Veraticus/tarifa/internal/tui/themes"
	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestNewStatsPanelModel(t *testing.T) {
	m := NewStatsPanelModel(themes.Default)

	assert.Equal(t, themes.Default, m.theme)
	assert.Nil(t, m.stats)
	assert.False(t, m.progressBar.ShowPercentage)
	assert.False(t, m.compact)
	assert.Contains(t, m.View(), "Statistics unavailable")
	assert.Nil(t, m.Cards())
}

func TestStatsPanelModel_Cards(t *testing.T) {
	tests := []struct {
		stats *model.Stats
		name  string
		want  []format.Card
	}{
		{
			name: "with averages",
			stats: &model.Stats{
				TotalRegistros: 42,
				BancosCount:    5,
				TasaPromedioMN: ptr(12.5),
				TasaPromedioME: ptr(7.25),
			},
			want: []format.Card{
				{Label: "Registros", Value: "42"},
				{Label: "Bancos", Value: "5"},
				{Label: "Tasa prom. MN", Value: "12.5%"},
				{Label: "Tasa prom. ME", Value: "7.25%"},
			},
		},
		{
			name:  "without averages",
			stats: &model.Stats{},
			want: []format.Card{
				{Label: "Registros", Value: "0"},
				{Label: "Bancos", Value: "0"},
				{Label: "Tasa prom. MN", Value: format.NotAvailable},
				{Label: "Tasa prom. ME", Value: format.NotAvailable},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStatsPanelModel(themes.Default)
			m.SetStats(tt.stats)
			assert.Equal(t, tt.want, m.Cards())
		})
	}
}

func TestStatsPanelModel_View(t *testing.T) {
	m := NewStatsPanelModel(themes.Default)
	m.Resize(100)
	m.SetStats(&model.Stats{
		TotalRegistros: 10,
		BancosCount:    2,
		TiposCount:     map[string]int{"TASA": 6, "COMISION": 4},
	})

	view := m.View()
	assert.Contains(t, view, "Registros por tipo")
	assert.Less(t, strings.Index(view, "TASA"), strings.Index(view, "COMISION"), "largest count first")

	m.SetCompact(true)
	compact := m.View()
	assert.Contains(t, compact, "Registros")
	assert.Contains(t, compact, "•")
	assert.NotContains(t, compact, "Registros por tipo")
}

func TestStatsPanelModel_Resize(t *testing.T) {
	m := NewStatsPanelModel(themes.Default)

	m.Resize(100)
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 30, m.progressBar.Width)

	m.Resize(20)
	assert.Equal(t, 5, m.progressBar.Width)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "COMIS…", truncate("COMISIONES", 6))
}
