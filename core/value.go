package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindFloat
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a tagged result cell. The zero value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	date time.Time
}

func NullValue() Value { return Value{} }

func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func FloatValue(f float64) Value { return Value{kind: KindFloat, num: f} }

// DateValue stores t in UTC.
func DateValue(t time.Time) Value { return Value{kind: KindDate, date: t.UTC()} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) AsFloat() (float64, bool) {
	return v.num, v.kind == KindFloat
}

func (v Value) AsDate() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// Text returns the canonical textual form of the value and false for null.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindFloat:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case KindDate:
		if v.date.Hour() == 0 && v.date.Minute() == 0 && v.date.Second() == 0 && v.date.Nanosecond() == 0 {
			return v.date.Format(time.DateOnly), true
		}
		return v.date.Format("2006-01-02 15:04:05.000"), true
	default:
		return "", false
	}
}

func (v Value) String() string {
	s, ok := v.Text()
	if !ok {
		return "NULL"
	}
	return s
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindFloat:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	default:
		s, _ := v.Text()
		return json.Marshal(s)
	}
}

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02 15:04:05.000",
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000 MST",
	"2006-01-02 15:04:05 -0700",
	"2006/01/02",
	"01/02/2006",
}

// ParseDate parses the date and timestamp layouts the query services emit.
// The result is in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseFloat parses a numeric cell. NaN is not a number here.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func declaredKind(typ string) ValueKind {
	t := strings.ToLower(strings.TrimSpace(typ))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	switch t {
	case "double", "double precision", "float", "float4", "float8", "real",
		"decimal", "numeric", "integer", "int", "int2", "int4", "int8",
		"bigint", "smallint", "tinyint":
		return KindFloat
	case "date", "timestamp", "timestamptz", "datetime",
		"timestamp with time zone", "timestamp without time zone":
		return KindDate
	default:
		return KindString
	}
}

// decodeCell converts a raw nullable cell according to the declared column type.
// Cells that don't parse as their declared type stay tagged as strings.
func decodeCell(typ string, cell *string) Value {
	if cell == nil {
		return NullValue()
	}

	switch declaredKind(typ) {
	case KindFloat:
		if f, ok := ParseFloat(*cell); ok {
			return FloatValue(f)
		}
	case KindDate:
		if t, ok := ParseDate(*cell); ok {
			return DateValue(t)
		}
	}

	return StringValue(*cell)
}
