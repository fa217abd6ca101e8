package store

import "strconv"

// Kind is the expected semantic type of a config key.
type Kind int

const (
	// KindString holds a URL or other free-form string; empty means absent.
	KindString Kind = iota
	// KindNumber holds a non-negative number of seconds.
	KindNumber
)

// Value is a tagged config value: a string, a number, or absent. Absent
// string values serialize as null in the snapshot document.
type Value struct {
	kind    Kind
	present bool
	str     string
	num     float64
}

// StringValue creates a string Value; the empty string is absent.
func StringValue(s string) Value {
	return Value{kind: KindString, present: s != "", str: s}
}

// NumberValue creates a numeric Value.
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, present: true, num: f}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value is absent.
func (v Value) IsAbsent() bool { return !v.present }

// Str returns the string payload; empty when absent or numeric.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload; zero when absent or a string.
func (v Value) Num() float64 { return v.num }

// Interface returns the value as nil, float64 or string, for JSON encoding.
func (v Value) Interface() any {
	if !v.present {
		return nil
	}
	if v.kind == KindNumber {
		return v.num
	}
	return v.str
}

// String renders the value the way the control API echoes it.
func (v Value) String() string {
	if !v.present {
		return ""
	}
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}
