package compare

import (
	"github.com/Veraticus/tarifa/internal/format"
	"github.com/Veraticus/tarifa/internal/model"
)

// Entry is one labeled value of the detail view.
type Entry struct {
	Label string
	Value string
}

// Detail is everything the detail view shows for a single record.
type Detail struct {
	Title   string
	Entries []Entry
}

// Details lists every attribute of record that has a non-empty value.
func Details(record model.RateRecord) Detail {
	title := model.Text(record.Concepto)
	if title == "" {
		title = model.Text(record.ProductoNombre)
	}

	d := Detail{Title: title}
	for _, a := range record.Attributes() {
		if a.Value == nil {
			continue
		}
		if s, ok := a.Value.(string); ok && s == "" {
			continue
		}
		d.Entries = append(d.Entries, Entry{
			Label: format.AttributeLabel(a.Key),
			Value: format.Raw(a.Value),
		})
	}
	return d
}
