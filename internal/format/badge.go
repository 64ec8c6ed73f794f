package format

// Tone is the color family a badge is drawn with.
type Tone int

// Badge tones.
const (
	ToneLight Tone = iota
	TonePrimary
	ToneWarning
	ToneSecondary
	ToneInfo
	ToneSuccess
	ToneDanger
	ToneDark
)

var tipoTones = map[string]Tone{
	"TASA":     TonePrimary,
	"COMISION": ToneWarning,
	"GASTO":    ToneSecondary,
	"SEGURO":   ToneInfo,
}

var monedaTones = map[string]Tone{
	"MN":    ToneSuccess,
	"ME":    ToneDanger,
	"AMBAS": ToneDark,
}

// TipoBadge returns the tone for a type category. Unknown values are light.
func TipoBadge(tipo string) Tone {
	return tipoTones[tipo]
}

// MonedaBadge returns the tone for a currency category.
func MonedaBadge(moneda string) Tone {
	return monedaTones[moneda]
}
