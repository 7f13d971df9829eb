package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ValueKind tags the scalar type held by a Value.
type ValueKind int

const (
	// KindString holds a string.
	KindString ValueKind = iota
	// KindInt holds a signed integer.
	KindInt
	// KindFloat holds a float64.
	KindFloat
	// KindBool holds a boolean.
	KindBool
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return unknownDescription
	}
}

// Value is a scalar metadata value: string, integer, float or boolean.
// The zero value is the empty string.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	b    bool
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// IntValue returns an integer Value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue returns a float Value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the tag of the held value.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Int returns the integer payload and whether the value is an integer.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the float payload and whether the value is a float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Bool returns the boolean payload and whether the value is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Any returns the payload as a plain Go value.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return v.s
	}
}

// String renders the value as text.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// MarshalJSON encodes the value as its plain JSON scalar. Floats always
// carry a fraction or exponent so they decode back as floats.
func (v Value) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(v.Any())
	if err != nil || v.kind != KindFloat {
		return data, err
	}
	if !strings.ContainsAny(string(data), ".eE") {
		data = append(data, ".0"...)
	}
	return data, nil
}

// UnmarshalJSON decodes a JSON scalar. Numbers without a fraction or
// exponent decode as integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = StringValue(t)
	case bool:
		*v = BoolValue(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			*v = IntValue(i)
			return nil
		}
		f, err := t.Float64()
		if err != nil {
			return err
		}
		*v = FloatValue(f)
	default:
		return fmt.Errorf("%w: metadata value must be scalar", ErrInvalidInput)
	}
	return nil
}

// Metadata is a string-keyed map of scalar values.
type Metadata map[string]Value

// Get returns the value for key.
func (m Metadata) Get(key string) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

// String returns the text form of key, or "" if absent.
func (m Metadata) String(key string) string {
	if v, ok := m[key]; ok {
		return v.String()
	}
	return ""
}

// Clone returns a shallow copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToScalar converts a loosely-typed value into a Value. Named scalar types
// convert by kind. Sequences of scalars are joined with a comma. Anything else
// (maps, structs, nested sequences, nil) is rejected.
func ToScalar(raw any) (Value, bool) {
	switch t := raw.(type) {
	case Value:
		return t, true
	case string:
		return StringValue(t), true
	case bool:
		return BoolValue(t), true
	case int:
		return IntValue(int64(t)), true
	case int8:
		return IntValue(int64(t)), true
	case int16:
		return IntValue(int64(t)), true
	case int32:
		return IntValue(int64(t)), true
	case int64:
		return IntValue(t), true
	case uint:
		return IntValue(int64(t)), true
	case uint8:
		return IntValue(int64(t)), true
	case uint16:
		return IntValue(int64(t)), true
	case uint32:
		return IntValue(int64(t)), true
	case uint64:
		return IntValue(int64(t)), true
	case float32:
		return FloatValue(float64(t)), true
	case float64:
		return FloatValue(t), true
	case []string:
		return StringValue(strings.Join(t, ",")), true
	case []byte, nil:
		return Value{}, false
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.String:
		return StringValue(rv.String()), true
	case reflect.Bool:
		return BoolValue(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntValue(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return IntValue(int64(rv.Uint())), true
	case reflect.Float32, reflect.Float64:
		return FloatValue(rv.Float()), true
	case reflect.Slice, reflect.Array:
	default:
		return Value{}, false
	}

	parts := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if isSequence(elem) {
			return Value{}, false
		}
		v, ok := ToScalar(elem)
		if !ok {
			return Value{}, false
		}
		parts = append(parts, v.String())
	}
	return StringValue(strings.Join(parts, ",")), true
}

func isSequence(raw any) bool {
	if raw == nil {
		return false
	}
	if _, ok := raw.([]byte); ok {
		return true
	}
	k := reflect.TypeOf(raw).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// Sanitize converts loose metadata into scalar-only Metadata.
// It returns the keys that were dropped, sorted.
func Sanitize(raw map[string]any) (Metadata, []string) {
	out := make(Metadata, len(raw))
	var dropped []string
	for k, v := range raw {
		if sv, ok := ToScalar(v); ok {
			out[k] = sv
			continue
		}
		dropped = append(dropped, k)
	}
	sort.Strings(dropped)
	return out, dropped
}
