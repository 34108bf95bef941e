package domain

import (
	"strconv"
	"time"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindTime
	KindUnparseable
)

// Value is a raw cell tagged with its primitive kind. Readers produce it,
// normalizers pattern-match on it; Raw keeps the original token for
// diagnostics when a value could not be typed.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
	Raw  string
}

func NullValue() Value { return Value{Kind: KindNull} }

func StringValue(s string) Value { return Value{Kind: KindString, Str: s, Raw: s} }

func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func TimeValue(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

func UnparseableValue(raw string) Value {
	return Value{Kind: KindUnparseable, Raw: raw}
}

func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Text renders the value as a plain string so normalizers that accept any
// primitive kind have a single entry point.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindTime:
		return v.Time.Format(time.RFC3339)
	case KindUnparseable:
		return v.Raw
	default:
		return ""
	}
}

// RawRecord is one input row: source column names (snake_cased by the
// reader) mapped to raw values. It lives only for a single pipeline run.
type RawRecord struct {
	Index  int
	Fields map[string]Value
}

func (r RawRecord) Field(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}
