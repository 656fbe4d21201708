package dom

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tags a Value.
type ValueKind uint8

const (
	KindUndefined ValueKind = iota
	KindNumber
	KindString
	KindBool
)

// Value is a property value: a number, a string or a boolean.
type Value struct {
	kind ValueKind
	num  float64
	str  string
}

func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func BoolValue(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Kind returns the value's tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsUndefined reports whether the value was never set.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// Float converts the value to a number. Strings are parsed after trimming
// white space; the empty string is 0 and anything unparsable is NaN.
func (v Value) Float() float64 {
	switch v.kind {
	case KindNumber, KindBool:
		return v.num
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// String converts the value to text.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		if v.num != 0 {
			return "true"
		}
		return "false"
	}
	return ""
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if a := math.Abs(f); a != 0 && (a >= 1e21 || a < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
