package model

// PageSize is the fixed number of records requested per page.
const PageSize = 20

// FilterCriteria holds the raw filter inputs. Empty means "no constraint".
// Numeric bounds are kept as typed so the server sees exactly what the user
// entered.
type FilterCriteria struct {
	Banco     string `schema:"banco,omitempty"`
	Tipo      string `schema:"tipo,omitempty"`
	Moneda    string `schema:"moneda,omitempty"`
	Producto  string `schema:"producto,omitempty"`
	Concepto  string `schema:"concepto,omitempty"`
	TasaMNGte string `schema:"tasa_mn_gte,omitempty"`
	TasaMNLte string `schema:"tasa_mn_lte,omitempty"`
	TasaMEGte string `schema:"tasa_me_gte,omitempty"`
	TasaMELte string `schema:"tasa_me_lte,omitempty"`
}

// IsZero reports whether no filter field is set.
func (f FilterCriteria) IsZero() bool {
	return f == FilterCriteria{}
}

// SortColumn is a column the remote dataset can be ordered by.
type SortColumn string

// Sortable columns.
const (
	SortBanco          SortColumn = KeyBanco
	SortProductoNombre SortColumn = KeyProductoNombre
	SortConcepto       SortColumn = KeyConcepto
	SortTipo           SortColumn = KeyTipo
	SortMoneda         SortColumn = KeyMoneda
	SortValorMN        SortColumn = KeyTasaPorcentajeMN
	SortValorME        SortColumn = KeyTasaPorcentajeME
)

// SortColumns lists the sortable columns in table order.
var SortColumns = []SortColumn{
	SortBanco,
	SortProductoNombre,
	SortConcepto,
	SortTipo,
	SortMoneda,
	SortValorMN,
	SortValorME,
}

// IsSortable reports whether c belongs to the fixed sortable set.
func (c SortColumn) IsSortable() bool {
	for _, col := range SortColumns {
		if col == c {
			return true
		}
	}
	return false
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// SortSpec is the single active sort.
type SortSpec struct {
	Column    SortColumn
	Direction Direction
}

// DefaultSort orders by bank, ascending.
func DefaultSort() SortSpec {
	return SortSpec{Column: SortBanco, Direction: Ascending}
}
