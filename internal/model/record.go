package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// Wire keys of the declared record fields.
const (
	KeyBanco            = "Banco"
	KeyProductoNombre   = "Producto_Nombre"
	KeyConcepto         = "Concepto"
	KeyTipo             = "Tipo"
	KeyMoneda           = "Moneda"
	KeyTasaPorcentajeMN = "Tasa_Porcentaje_MN"
	KeyMontoFijoMN      = "Monto_Fijo_MN"
	KeyTasaPorcentajeME = "Tasa_Porcentaje_ME"
	KeyMontoFijoME      = "Monto_Fijo_ME"

	// KeyProductoCodigo is an internal code column that views leave out.
	KeyProductoCodigo = "Producto_Codigo"
)

// Attribute is one named value of a record. Value is nil, a string, a float64,
// a bool, or a nested value decoded from JSON.
type Attribute struct {
	Value any
	Key   string
}

// RateRecord is a single row of a fee/rate schedule (tarifario).
//
// The declared fields are the ones the controller reads; everything else the
// server sends is kept verbatim in Extra. Order keeps the key order of the
// server payload so detail and comparison views list attributes the way the
// server emitted them.
type RateRecord struct {
	Banco            *string
	ProductoNombre   *string
	Concepto         *string
	Tipo             *string
	Moneda           *string
	TasaPorcentajeMN *float64
	MontoFijoMN      *float64
	TasaPorcentajeME *float64
	MontoFijoME      *float64
	Extra            []Attribute
	order            []string
}

var declaredKeys = []string{
	KeyBanco,
	KeyProductoNombre,
	KeyConcepto,
	KeyTipo,
	KeyMoneda,
	KeyTasaPorcentajeMN,
	KeyMontoFijoMN,
	KeyTasaPorcentajeME,
	KeyMontoFijoME,
}

// Str returns a pointer to s. Handy for building records in code.
func Str(s string) *string { return &s }

// Num returns a pointer to f.
func Num(f float64) *float64 { return &f }

// Text returns the string value of a nullable text field, or "" when absent.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Get returns the value stored under key and whether the key is present.
func (r RateRecord) Get(key string) (any, bool) {
	switch key {
	case KeyBanco:
		return strValue(r.Banco), true
	case KeyProductoNombre:
		return strValue(r.ProductoNombre), true
	case KeyConcepto:
		return strValue(r.Concepto), true
	case KeyTipo:
		return strValue(r.Tipo), true
	case KeyMoneda:
		return strValue(r.Moneda), true
	case KeyTasaPorcentajeMN:
		return numValue(r.TasaPorcentajeMN), true
	case KeyMontoFijoMN:
		return numValue(r.MontoFijoMN), true
	case KeyTasaPorcentajeME:
		return numValue(r.TasaPorcentajeME), true
	case KeyMontoFijoME:
		return numValue(r.MontoFijoME), true
	}
	for _, a := range r.Extra {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// Set stores value under key. Declared fields accept nil, string or float64
// values; anything else goes to Extra.
func (r *RateRecord) Set(key string, value any) error {
	switch key {
	case KeyBanco, KeyProductoNombre, KeyConcepto, KeyTipo, KeyMoneda:
		s, err := toStr(key, value)
		if err != nil {
			return err
		}
		*r.textField(key) = s
	case KeyTasaPorcentajeMN, KeyMontoFijoMN, KeyTasaPorcentajeME, KeyMontoFijoME:
		f, err := toNum(key, value)
		if err != nil {
			return err
		}
		*r.numField(key) = f
	default:
		replaced := false
		for i := range r.Extra {
			if r.Extra[i].Key == key {
				r.Extra[i].Value = value
				replaced = true
				break
			}
		}
		if !replaced {
			r.Extra = append(r.Extra, Attribute{Key: key, Value: value})
		}
	}
	r.remember(key)
	return nil
}

// Attributes enumerates declared and extension fields as ordered key/value
// pairs. Keys seen in the decoded payload come first in payload order, then
// any declared key that was never present, then remaining extras.
func (r RateRecord) Attributes() []Attribute {
	seen := make(map[string]bool, len(r.order)+len(declaredKeys))
	out := make([]Attribute, 0, len(declaredKeys)+len(r.Extra))

	add := func(key string) {
		if seen[key] {
			return
		}
		v, ok := r.Get(key)
		if !ok {
			return
		}
		seen[key] = true
		out = append(out, Attribute{Key: key, Value: v})
	}

	for _, key := range r.order {
		add(key)
	}
	for _, key := range declaredKeys {
		add(key)
	}
	for _, a := range r.Extra {
		add(a.Key)
	}
	return out
}

// Keys returns the attribute keys in enumeration order.
func (r RateRecord) Keys() []string {
	attrs := r.Attributes()
	keys := make([]string, len(attrs))
	for i, a := range attrs {
		keys[i] = a.Key
	}
	return keys
}

// Canonical returns an order-independent encoding of every attribute. Two
// records are structurally equal exactly when their canonical forms match.
// A declared field counts only when it was set or holds a value, so an
// absent key and an explicit null stay distinct.
func (r RateRecord) Canonical() string {
	attrs := r.Attributes()
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })

	var b strings.Builder
	for _, a := range attrs {
		if a.Value == nil && isDeclared(a.Key) && !r.has(a.Key) {
			continue
		}
		b.WriteString(strconv.Quote(a.Key))
		b.WriteByte('=')
		writeCanonical(&b, a.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// Equal reports full structural equality.
func (r RateRecord) Equal(other RateRecord) bool {
	return r.Canonical() == other.Canonical()
}

// Key returns a stable synthetic identifier derived from every field.
func (r RateRecord) Key() string {
	sum := blake3.Sum256([]byte(r.Canonical()))
	return fmt.Sprintf("%x", sum[:16])
}

// Label is the short name used for column headers.
func (r RateRecord) Label() string {
	if s := Text(r.ProductoNombre); s != "" {
		return s
	}
	return Text(r.Concepto)
}

// UnmarshalJSON decodes an object while keeping its key order.
func (r *RateRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	*r = RateRecord{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read record key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected record key %v", tok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		if err := r.Set(key, value); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return fmt.Errorf("failed to close record: %w", err)
	}
	return nil
}

// MarshalJSON encodes the record with its attributes in enumeration order.
func (r RateRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range r.Attributes() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(a.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", a.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r RateRecord) has(key string) bool {
	for _, k := range r.order {
		if k == key {
			return true
		}
	}
	return false
}

func isDeclared(key string) bool {
	for _, k := range declaredKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (r *RateRecord) remember(key string) {
	for _, k := range r.order {
		if k == key {
			return
		}
	}
	r.order = append(r.order, key)
}

func (r *RateRecord) textField(key string) **string {
	switch key {
	case KeyBanco:
		return &r.Banco
	case KeyProductoNombre:
		return &r.ProductoNombre
	case KeyConcepto:
		return &r.Concepto
	case KeyTipo:
		return &r.Tipo
	default:
		return &r.Moneda
	}
}

func (r *RateRecord) numField(key string) **float64 {
	switch key {
	case KeyTasaPorcentajeMN:
		return &r.TasaPorcentajeMN
	case KeyMontoFijoMN:
		return &r.MontoFijoMN
	case KeyTasaPorcentajeME:
		return &r.TasaPorcentajeME
	default:
		return &r.MontoFijoME
	}
}

func strValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func numValue(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func toStr(key string, value any) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	default:
		return nil, fmt.Errorf("field %s: unexpected type %T", key, value)
	}
}

func toNum(key string, value any) (*float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case string:
		// Blank cells come through as empty strings in some CSV-backed exports.
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("field %s: unexpected type %T", key, value)
	}
}

func writeCanonical(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		b.WriteString(strconv.Quote(val))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case bool:
		b.WriteString(strconv.FormatBool(val))
	default:
		// Nested values: encoding/json sorts map keys, which keeps this stable.
		raw, err := json.Marshal(val)
		if err != nil {
			fmt.Fprintf(b, "%v", val)
			return
		}
		b.Write(raw)
	}
}
