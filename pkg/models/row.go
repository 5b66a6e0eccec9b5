package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueKind tells which variant a Value holds
type ValueKind int

const (
	Empty ValueKind = iota
	Text
	Number
)

// Value is a single spreadsheet cell: text, number or empty
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
}

// TextValue wraps a string. The empty string yields an empty value.
func TextValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: Text, Str: s}
}

// NumberValue wraps a float
func NumberValue(f float64) Value {
	return Value{Kind: Number, Num: f}
}

// ParseValue infers a cell value from its text. Text only becomes a number
// when its shortest decimal form is the same text, so codes like "001" stay text.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		if strconv.FormatFloat(f, 'f', -1, 64) == s {
			return NumberValue(f)
		}
	}
	return TextValue(s)
}

// IsEmpty reports whether the value holds nothing
func (v Value) IsEmpty() bool {
	return v.Kind == Empty
}

// Truthy reports whether the value counts as "set" for alias lookups:
// non-empty text or a non-zero number.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Text:
		return v.Str != ""
	case Number:
		return v.Num != 0 && !math.IsNaN(v.Num)
	}
	return false
}

// String renders the value as text
func (v Value) String() string {
	switch v.Kind {
	case Text:
		return v.Str
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return ""
}

// Interface returns the value as string, float64 or nil
func (v Value) Interface() any {
	switch v.Kind {
	case Text:
		return v.Str
	case Number:
		return v.Num
	}
	return nil
}

// MarshalJSON encodes the value as a JSON string, number or null
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Row maps column names to values and remembers insertion order.
// Rows returned by readers are treated as immutable; call Clone before Set.
type Row struct {
	keys   []string
	values map[string]Value
}

// NewRow creates an empty row
func NewRow() Row {
	return Row{values: make(map[string]Value)}
}

// Set stores a value. An existing key keeps its position.
func (r *Row) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// SetText is shorthand for Set(key, TextValue(s))
func (r *Row) SetText(key, s string) {
	r.Set(key, TextValue(s))
}

// Get returns the value stored under key
func (r Row) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Text returns the value under key as text, or "" when absent
func (r Row) Text(key string) string {
	return r.values[key].String()
}

// First returns the first alias holding a truthy value
func (r Row) First(aliases ...string) (Value, bool) {
	for _, a := range aliases {
		if v, ok := r.values[a]; ok && v.Truthy() {
			return v, true
		}
	}
	return Value{}, false
}

// Keys returns the column names in insertion order
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns
func (r Row) Len() int {
	return len(r.keys)
}

// Clone returns an independent copy of the row
func (r Row) Clone() Row {
	out := Row{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// Overlay returns a copy of r with every column of other written over it.
// Values from other win on key collision; new keys are appended in other's order.
func (r Row) Overlay(other Row) Row {
	out := r.Clone()
	for _, k := range other.keys {
		out.Set(k, other.values[k])
	}
	return out
}

// MarshalJSON encodes the row as a JSON object in column order
func (r Row) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
