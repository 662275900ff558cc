package normalize

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
)

type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
)

// Value is one loosely-typed inbound field: absent, a string, or a number.
type Value struct {
	kind Kind
	str  string
	num  float64
}

var Absent = Value{}

func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f, str: strconv.FormatFloat(f, 'f', -1, 64)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// String coerces the value to text. Absent becomes "", numbers keep their literal form.
func (v Value) String() string {
	return v.str
}

// Finite reports false only for numbers that are NaN or infinite.
func (v Value) Finite() bool {
	return v.kind != KindNumber || !(math.IsNaN(v.num) || math.IsInf(v.num, 0))
}

// FromAny converts a decoded JSON value. Sequences are reduced to their first element;
// objects and other shapes are treated as absent.
func FromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Absent
	case string:
		return StringValue(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return StringValue(t.String())
		}
		return Value{kind: KindNumber, num: f, str: t.String()}
	case float64:
		return NumberValue(t)
	case float32:
		return NumberValue(float64(t))
	case int:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case bool:
		return StringValue(strconv.FormatBool(t))
	case []any:
		if len(t) == 0 {
			return Absent
		}
		return FromAny(t[0])
	case []string:
		if len(t) == 0 {
			return Absent
		}
		return StringValue(t[0])
	default:
		return Absent
	}
}

// Payload maps wire field names to raw values.
type Payload map[string]Value

// Get returns Absent for missing keys.
func (p Payload) Get(key string) Value {
	if p == nil {
		return Absent
	}
	return p[key]
}

func PayloadFromJSON(m map[string]any) Payload {
	p := make(Payload, len(m))
	for k, v := range m {
		p[k] = FromAny(v)
	}
	return p
}

func PayloadFromValues(values url.Values) Payload {
	p := make(Payload, len(values))
	for k, v := range values {
		p[k] = FromAny(v)
	}
	return p
}
