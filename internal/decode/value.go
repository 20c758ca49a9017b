package decode

import "strconv"

// Kind discriminates the value variants a decoded field can hold.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInt
)

// Value is a decoded field value: null, text, or integer.
// Dates are carried as text in YYYY-MM-DD form (empty text for the all-zero
// date sentinel).
type Value struct {
	Kind Kind
	Text string
	Int  int64
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// TextValue returns a text value.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// IntValue returns an integer value.
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// String renders the value for output: "" for null, the text itself, or the
// decimal form of the integer.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	default:
		return ""
	}
}
