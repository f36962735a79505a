package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies the runtime type of a cell value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindTime
)

// dateLayouts are tried in order when coercing cell text to a timestamp.
// The short layouts cover excelize's default date formatting.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01-02-06",
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
}

// Value is a typed scalar cell: number, string, timestamp, or null.
// The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
	ts   time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// Number wraps a float64 as a cell value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String wraps a string as a cell value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Time wraps a timestamp as a cell value.
func Time(t time.Time) Value { return Value{kind: KindTime, ts: t} }

// ParseCell coerces raw cell text into a typed Value. Empty text becomes
// null; numeric text becomes a number; recognized date formats become
// timestamps; everything else stays a string.
func ParseCell(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time(t)
		}
	}
	return String(s)
}

// Kind returns the value's runtime type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Number returns the numeric content. ok is false for non-numbers.
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Time returns the value as a timestamp, coercing string content through
// the known date layouts. ok is false when no coercion succeeds, so
// unparseable cells behave as null under range comparisons.
func (v Value) Time() (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.ts, true
	case KindString:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v.str); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Display returns the value formatted for tables, chart labels, and
// filter option lists.
func (v Value) Display() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return v.ts.Format("2006-01-02")
	default:
		return v.str
	}
}

// Native returns the value as a plain Go scalar for JSON encoding:
// float64, string, RFC 3339 date string, or nil.
func (v Value) Native() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindTime:
		return v.ts.Format("2006-01-02")
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindTime:
		return v.ts.Equal(o.ts)
	default:
		return true
	}
}

// Less orders values for deterministic output: nulls first, then by kind
// (numbers, timestamps, strings), then by content within a kind.
func (v Value) Less(o Value) bool {
	if v.kind != o.kind {
		return kindRank(v.kind) < kindRank(o.kind)
	}
	switch v.kind {
	case KindNumber:
		return v.num < o.num
	case KindTime:
		return v.ts.Before(o.ts)
	case KindString:
		return v.str < o.str
	default:
		return false
	}
}

func kindRank(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindNumber:
		return 1
	case KindTime:
		return 2
	default:
		return 3
	}
}
