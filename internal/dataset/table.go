package dataset

import (
	"sort"
	"time"
)

// ColType classifies a column for feature gating: numeric columns are
// aggregable and plottable, datetime columns are range-filterable.
type ColType int

const (
	ColText ColType = iota
	ColNumeric
	ColDatetime
)

// Row maps column names to cell values. Every row in a Table covers the
// table's full column set.
type Row map[string]Value

// Table is an immutable in-memory dataset: an ordered column list and a
// sequence of uniformly shaped rows. Derived tables (filtered, projected,
// pivoted) are always fresh values; a Table is never mutated after
// construction.
type Table struct {
	Columns []string
	Rows    []Row
}

// New builds a Table from a column list and rows. Rows are normalized to
// the column set: missing cells become null, extra keys are dropped.
func New(columns []string, rows []Row) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.Rows = make([]Row, 0, len(rows))
	for _, src := range rows {
		row := make(Row, len(columns))
		for _, col := range columns {
			if v, ok := src[col]; ok {
				row[col] = v
			} else {
				row[col] = Null()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Empty returns a table with zero rows and zero columns, the loader's
// substitute on read failure.
func Empty() *Table {
	return &Table{}
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return len(t.Rows) == 0 }

// Len returns the row count.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnType classifies a column by scanning its non-null cells: all
// numbers is numeric, all timestamps is datetime, anything else is text.
// A column with only nulls (or an absent column) is text.
func (t *Table) ColumnType(name string) ColType {
	seen := false
	allNum, allTime := true, true
	for _, row := range t.Rows {
		v := row[name]
		if v.IsNull() {
			continue
		}
		seen = true
		if v.Kind() != KindNumber {
			allNum = false
		}
		if v.Kind() != KindTime {
			allTime = false
		}
	}
	switch {
	case seen && allNum:
		return ColNumeric
	case seen && allTime:
		return ColDatetime
	default:
		return ColText
	}
}

// NumericColumns returns the columns classified as numeric, in declared
// order.
func (t *Table) NumericColumns() []string {
	var cols []string
	for _, c := range t.Columns {
		if t.ColumnType(c) == ColNumeric {
			cols = append(cols, c)
		}
	}
	return cols
}

// DistinctSorted returns the distinct non-null values of a column sorted
// ascending. It backs filter option lists and pivot axes. An absent
// column yields nil.
func (t *Table) DistinctSorted(name string) []Value {
	if !t.HasColumn(name) {
		return nil
	}
	seen := make(map[string]bool)
	var out []Value
	for _, row := range t.Rows {
		v := row[name]
		if v.IsNull() {
			continue
		}
		key := v.Display()
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// DistinctStrings is DistinctSorted rendered through Display, for widget
// option lists.
func (t *Table) DistinctStrings(name string) []string {
	vals := t.DistinctSorted(name)
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.Display())
	}
	return out
}

// Select projects the table onto a column subset, preserving row order.
// Absent columns are skipped rather than erroring.
func (t *Table) Select(columns ...string) *Table {
	var kept []string
	for _, c := range columns {
		if t.HasColumn(c) {
			kept = append(kept, c)
		}
	}
	rows := make([]Row, 0, len(t.Rows))
	for _, src := range t.Rows {
		row := make(Row, len(kept))
		for _, c := range kept {
			row[c] = src[c]
		}
		rows = append(rows, row)
	}
	return &Table{Columns: kept, Rows: rows}
}

// TimeBounds returns the earliest and latest coercible timestamps in a
// column. ok is false when the column is absent or holds no coercible
// values.
func (t *Table) TimeBounds(name string) (min, max time.Time, ok bool) {
	if !t.HasColumn(name) {
		return
	}
	for _, row := range t.Rows {
		ts, tok := row[name].Time()
		if !tok {
			continue
		}
		if !ok {
			min, max, ok = ts, ts, true
			continue
		}
		if ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}
	return
}
