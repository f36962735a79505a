// Package pivot cross-tabulates dataset tables: rows of the result are
// the distinct values of an index column, columns are either the single
// value column or the distinct values of a group column, and every cell
// is an aggregation over the matching source rows. Missing combinations
// in the dense cross product are filled with a configured default.
package pivot

import (
	"errors"
	"fmt"

	"marketdash/internal/dataset"
)

// ErrInvalidSpec marks a pivot specification the source table cannot
// satisfy: absent columns, a non-numeric value column, an unknown
// aggregation, or index and group naming the same column.
var ErrInvalidSpec = errors.New("invalid pivot spec")

// AggFunc names an aggregation applied per partition.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggMean  AggFunc = "mean"
	AggCount AggFunc = "count"
	AggMax   AggFunc = "max"
	AggMin   AggFunc = "min"
)

// AggFuncs lists the supported aggregations in presentation order.
func AggFuncs() []AggFunc {
	return []AggFunc{AggSum, AggMean, AggCount, AggMax, AggMin}
}

// Spec parameterizes one cross-tabulation.
type Spec struct {
	Index string  // row axis, required
	Group string  // column axis, optional ("" = single value column)
	Value string  // aggregation target, must be numeric
	Agg   AggFunc // aggregation function
	Fill  float64 // cell value for empty partitions
}

// partition accumulates the source rows behind one (index, group) cell.
type partition struct {
	count int       // all matching rows, null value cells included
	nums  []float64 // non-null numeric value cells
}

// Generate cross-tabulates the table per the spec. The result's index
// rows and group-derived columns are sorted ascending for deterministic
// output. Returns ErrInvalidSpec (wrapped) when the spec does not fit
// the table.
func Generate(t *dataset.Table, spec Spec) (*dataset.Table, error) {
	if err := validate(t, spec); err != nil {
		return nil, err
	}

	grouped := spec.Group != ""

	// Partition rows by (index display key, group display key). Display
	// keys also label the output, so first-seen values need no separate
	// bookkeeping.
	parts := make(map[[2]string]*partition)
	for _, row := range t.Rows {
		key := [2]string{row[spec.Index].Display(), ""}
		if grouped {
			key[1] = row[spec.Group].Display()
		}
		p := parts[key]
		if p == nil {
			p = &partition{}
			parts[key] = p
		}
		p.count++
		if n, ok := row[spec.Value].Number(); ok {
			p.nums = append(p.nums, n)
		}
	}

	indexVals := t.DistinctSorted(spec.Index)
	var groupVals []dataset.Value
	if grouped {
		groupVals = t.DistinctSorted(spec.Group)
	}

	columns := []string{spec.Index}
	if grouped {
		for _, g := range groupVals {
			columns = append(columns, g.Display())
		}
	} else {
		columns = append(columns, spec.Value)
	}

	rows := make([]dataset.Row, 0, len(indexVals))
	for _, iv := range indexVals {
		row := dataset.Row{spec.Index: iv}
		if grouped {
			for _, gv := range groupVals {
				cell := aggregate(parts[[2]string{iv.Display(), gv.Display()}], spec.Agg, spec.Fill)
				row[gv.Display()] = dataset.Number(cell)
			}
		} else {
			cell := aggregate(parts[[2]string{iv.Display(), ""}], spec.Agg, spec.Fill)
			row[spec.Value] = dataset.Number(cell)
		}
		rows = append(rows, row)
	}

	return &dataset.Table{Columns: columns, Rows: rows}, nil
}

// aggregate reduces one partition. A nil partition (a combination absent
// from the source) and a partition without usable numeric cells both
// resolve to the fill value, so there is never a division by zero.
func aggregate(p *partition, fn AggFunc, fill float64) float64 {
	if p == nil {
		return fill
	}
	if fn == AggCount {
		return float64(p.count)
	}
	if len(p.nums) == 0 {
		return fill
	}
	switch fn {
	case AggSum:
		total := 0.0
		for _, n := range p.nums {
			total += n
		}
		return total
	case AggMean:
		total := 0.0
		for _, n := range p.nums {
			total += n
		}
		return total / float64(len(p.nums))
	case AggMax:
		m := p.nums[0]
		for _, n := range p.nums[1:] {
			if n > m {
				m = n
			}
		}
		return m
	default: // AggMin, validated upstream
		m := p.nums[0]
		for _, n := range p.nums[1:] {
			if n < m {
				m = n
			}
		}
		return m
	}
}

func validate(t *dataset.Table, spec Spec) error {
	if spec.Index == "" || !t.HasColumn(spec.Index) {
		return fmt.Errorf("%w: index column %q not in table", ErrInvalidSpec, spec.Index)
	}
	if spec.Value == "" || !t.HasColumn(spec.Value) {
		return fmt.Errorf("%w: value column %q not in table", ErrInvalidSpec, spec.Value)
	}
	if t.ColumnType(spec.Value) != dataset.ColNumeric {
		return fmt.Errorf("%w: value column %q is not numeric", ErrInvalidSpec, spec.Value)
	}
	if spec.Group != "" {
		if !t.HasColumn(spec.Group) {
			return fmt.Errorf("%w: group column %q not in table", ErrInvalidSpec, spec.Group)
		}
		if spec.Group == spec.Index {
			return fmt.Errorf("%w: index and group columns must differ", ErrInvalidSpec)
		}
	}
	if !validAgg(spec.Agg) {
		return fmt.Errorf("%w: unknown aggregation %q", ErrInvalidSpec, spec.Agg)
	}
	return nil
}

func validAgg(fn AggFunc) bool {
	for _, a := range AggFuncs() {
		if fn == a {
			return true
		}
	}
	return false
}
