// Package format turns record values into display strings.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/tarifa/internal/model"
	"github.com/shopspring/decimal"
)

// Display units.
const (
	UnitPercent = "%"
	UnitSoles   = "S/"
	UnitDollars = "$"
)

// NotAvailable is shown for absent aggregate values.
const NotAvailable = "N/A"

// Value formats v for display. A nil value yields "". Percentages keep the
// raw number; currency amounts get the unit prefix and exactly two decimals.
func Value(v *float64, unit string) string {
	if v == nil {
		return ""
	}
	if unit == UnitPercent {
		return Number(*v) + UnitPercent
	}
	return unit + " " + fixed2(*v)
}

// fixed2 rounds the exact binary value of f, so 1.005 (stored as
// 1.00499...) gives "1.00" and exact ties like 0.125 round up.
func fixed2(f float64) string {
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'f', 30, 64))
	if err != nil {
		return decimal.NewFromFloat(f).StringFixed(2)
	}
	return d.StringFixed(2)
}

// Number renders f in its shortest form, e.g. 12.5 or 3.
func Number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MN returns the local-currency cell: the rate when present, else the fixed
// amount in soles, else "".
func MN(r model.RateRecord) string {
	if s := Value(r.TasaPorcentajeMN, UnitPercent); s != "" {
		return s
	}
	return Value(r.MontoFijoMN, UnitSoles)
}

// ME returns the foreign-currency cell, preferring the rate over the dollar
// amount.
func ME(r model.RateRecord) string {
	if s := Value(r.TasaPorcentajeME, UnitPercent); s != "" {
		return s
	}
	return Value(r.MontoFijoME, UnitDollars)
}

// Average renders an aggregate rate like "4.25%", or "N/A" when the server
// could not compute it.
func Average(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return Number(*v) + UnitPercent
}

// Raw renders an attribute value verbatim: strings as-is, numbers in
// shortest form, nil as "".
func Raw(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return Number(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// AttributeLabel turns a wire key like "Producto_Nombre" into "Producto Nombre".
func AttributeLabel(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
