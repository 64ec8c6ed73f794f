package format

import (
	"sort"
	"strconv"

	"github.com/Veraticus/tarifa/internal/model"
)

// Card is one headline figure of the statistics header.
type Card struct {
	Label string
	Value string
}

// StatCards lists the headline figures of s in display order.
func StatCards(s model.Stats) []Card {
	return []Card{
		{Label: "Registros", Value: strconv.Itoa(s.TotalRegistros)},
		{Label: "Bancos", Value: strconv.Itoa(s.BancosCount)},
		{Label: "Tasa prom. MN", Value: Average(s.TasaPromedioMN)},
		{Label: "Tasa prom. ME", Value: Average(s.TasaPromedioME)},
	}
}

// TiposByCount returns the Tipo names of counts, largest count first and
// ties by name.
func TiposByCount(counts map[string]int) []string {
	tipos := make([]string, 0, len(counts))
	for tipo := range counts {
		tipos = append(tipos, tipo)
	}
	sort.Slice(tipos, func(i, j int) bool {
		ci, cj := counts[tipos[i]], counts[tipos[j]]
		if ci != cj {
			return ci > cj
		}
		return tipos[i] < tipos[j]
	})
	return tipos
}
