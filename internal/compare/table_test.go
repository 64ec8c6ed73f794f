package compare

import (
	"encoding/json"
	"testing"

	"github.com/Veraticus/tarifa/internal/common"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload string) model.RateRecord {
	t.Helper()
	var r model.RateRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &r))
	return r
}

func TestBuildTable_NotEnoughRecords(t *testing.T) {
	_, err := BuildTable(nil)
	require.ErrorIs(t, err, common.ErrNotEnoughRecords)

	_, err = BuildTable([]model.RateRecord{record("BCP", "Clasica", "TEA", 45)})
	require.ErrorIs(t, err, common.ErrNotEnoughRecords)
}

func TestBuildTable(t *testing.T) {
	first := decode(t, `{"Banco":"BCP","Producto_Codigo":"TC-1","Producto_Nombre":"Clasica","Concepto":"TEA","Tasa_Porcentaje_MN":45.5,"Observaciones":"anual"}`)
	second := decode(t, `{"Banco":"BBVA","Producto_Nombre":null,"Concepto":"Retiro","Tasa_Porcentaje_MN":null}`)

	table, err := BuildTable([]model.RateRecord{first, second})
	require.NoError(t, err)

	assert.Equal(t, []string{"Clasica", "Retiro"}, table.Headers)

	labels := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		labels = append(labels, row.Label)
		assert.NotEqual(t, model.KeyProductoCodigo, row.Key)
	}
	assert.Equal(t, []string{
		"Banco", "Producto Nombre", "Concepto", "Tasa Porcentaje MN", "Observaciones",
		"Tipo", "Moneda", "Monto Fijo MN", "Tasa Porcentaje ME", "Monto Fijo ME",
	}, labels)

	byKey := make(map[string][]string)
	for _, row := range table.Rows {
		byKey[row.Key] = row.Values
	}
	assert.Equal(t, []string{"BCP", "BBVA"}, byKey[model.KeyBanco])
	assert.Equal(t, []string{"Clasica", "-"}, byKey[model.KeyProductoNombre])
	assert.Equal(t, []string{"45.5", "-"}, byKey[model.KeyTasaPorcentajeMN])
	assert.Equal(t, []string{"anual", "-"}, byKey["Observaciones"], "absent extra uses the placeholder")
	assert.Equal(t, []string{"-", "-"}, byKey[model.KeyTipo])
}

func TestBuildTable_FirstRecordDrivesRows(t *testing.T) {
	first := decode(t, `{"Concepto":"TEA","Banco":"BCP"}`)
	second := decode(t, `{"Banco":"BBVA","Concepto":"TEA","Comision_Extra":"10"}`)

	table, err := BuildTable([]model.RateRecord{first, second})
	require.NoError(t, err)

	require.NotEmpty(t, table.Rows)
	assert.Equal(t, model.KeyConcepto, table.Rows[0].Key)
	assert.Equal(t, model.KeyBanco, table.Rows[1].Key)
	for _, row := range table.Rows {
		assert.NotEqual(t, "Comision_Extra", row.Key)
	}
}

func TestDetails(t *testing.T) {
	r := decode(t, `{"Banco":"BCP","Producto_Nombre":"Clasica","Concepto":"","Tipo":"TASA","Tasa_Porcentaje_MN":12,"Observaciones":null,"Fecha_Vigencia":"2024-01-01"}`)

	d := Details(r)

	assert.Equal(t, "Clasica", d.Title, "empty concept falls back to product name")
	assert.Equal(t, []Entry{
		{Label: "Banco", Value: "BCP"},
		{Label: "Producto Nombre", Value: "Clasica"},
		{Label: "Tipo", Value: "TASA"},
		{Label: "Tasa Porcentaje MN", Value: "12"},
		{Label: "Fecha Vigencia", Value: "2024-01-01"},
	}, d.Entries)
}

func TestDetails_TitlePrefersConcept(t *testing.T) {
	d := Details(record("BCP", "Clasica", "Membresia", 0))
	assert.Equal(t, "Membresia", d.Title)
}
