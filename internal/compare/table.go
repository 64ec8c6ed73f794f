package compare

import (
	"github.com/Veraticus/tarifa/internal/common"
	"github.com/Veraticus/tarifa/internal/format"
	"github.com/Veraticus/tarifa/internal/model"
)

// Placeholder stands in for null or absent values.
const Placeholder = "-"

// Row is one attribute across all compared records.
type Row struct {
	Key    string
	Label  string
	Values []string
}

// Table is an attribute-per-row, record-per-column matrix.
type Table struct {
	Headers []string
	Rows    []Row
}

// BuildTable lays records side by side. Rows follow the attribute order of
// the first record, minus the internal product code.
func BuildTable(records []model.RateRecord) (Table, error) {
	if len(records) < MinRecords {
		return Table{}, common.ErrNotEnoughRecords
	}

	t := Table{Headers: make([]string, len(records))}
	for i, r := range records {
		t.Headers[i] = r.Label()
	}

	for _, key := range records[0].Keys() {
		if key == model.KeyProductoCodigo {
			continue
		}
		row := Row{
			Key:    key,
			Label:  format.AttributeLabel(key),
			Values: make([]string, len(records)),
		}
		for i, r := range records {
			v, ok := r.Get(key)
			if !ok || v == nil {
				row.Values[i] = Placeholder
				continue
			}
			row.Values[i] = format.Raw(v)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}
