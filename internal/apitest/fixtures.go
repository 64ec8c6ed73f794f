package apitest

import (
	"fmt"

	"github.com/Veraticus/tarifa/internal/model"
)

var (
	fixtureBanks    = []string{"BBVA", "BCP", "Banco de la Nacion", "Interbank", "Scotiabank"}
	fixtureTipos    = []string{"TASA", "COMISION", "GASTO", "SEGURO"}
	fixtureMonedas  = []string{"MN", "ME", "AMBAS"}
	fixtureProducts = []string{"Tarjeta Clasica", "Tarjeta Oro", "Cuenta Sueldo", "Prestamo Personal"}
)

// Records returns n deterministic records cycling through banks, types and
// currencies. TASA rows carry rates, the rest fixed amounts. Keys are set in
// the column order of the published CSV.
func Records(n int) []model.RateRecord {
	out := make([]model.RateRecord, 0, n)
	for i := range n {
		tipo := fixtureTipos[i%len(fixtureTipos)]

		var tasaMN, montoMN, tasaME any
		if tipo == "TASA" {
			tasaMN = float64(10 + i)
			if i%2 == 0 {
				tasaME = float64(5+i) + 0.5
			}
		} else {
			montoMN = float64(i) * 2.5
		}

		var rec model.RateRecord
		for _, a := range []model.Attribute{
			{Key: model.KeyBanco, Value: fixtureBanks[i%len(fixtureBanks)]},
			{Key: model.KeyProductoCodigo, Value: fmt.Sprintf("P-%03d", i+1)},
			{Key: model.KeyProductoNombre, Value: fixtureProducts[i%len(fixtureProducts)]},
			{Key: model.KeyConcepto, Value: fmt.Sprintf("Concepto %02d", i+1)},
			{Key: model.KeyTipo, Value: tipo},
			{Key: model.KeyTasaPorcentajeMN, Value: tasaMN},
			{Key: model.KeyMontoFijoMN, Value: montoMN},
			{Key: model.KeyTasaPorcentajeME, Value: tasaME},
			{Key: model.KeyMontoFijoME, Value: nil},
			{Key: model.KeyMoneda, Value: fixtureMonedas[i%len(fixtureMonedas)]},
		} {
			// Values above are all of the declared field types.
			_ = rec.Set(a.Key, a.Value)
		}
		out = append(out, rec)
	}
	return out
}
