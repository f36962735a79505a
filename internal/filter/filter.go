// Package filter narrows dataset tables by user-selected predicates:
// set membership over a column, date-range membership, and boolean
// expressions over whole rows. Predicates compose by conjunction and an
// inert predicate (empty operand set) matches everything. Filtering never
// mutates its input.
package filter

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-bexpr"

	"marketdash/internal/dataset"
)

// ErrInvalidExpr marks a row expression that failed to parse.
var ErrInvalidExpr = errors.New("invalid filter expression")

// Predicate is one filter condition over a table.
type Predicate struct {
	// Column the predicate targets. Predicates over absent columns are
	// skipped, not errors. Unused by expression predicates.
	Column string

	// In holds allowed values for a membership predicate, matched
	// against the cell's display form. Empty means inert.
	In []string

	// From/To bound a date-range predicate (inclusive). Nil bounds are
	// open. Cells that cannot be coerced to a timestamp fail the range.
	From *time.Time
	To   *time.Time

	// Expr is a go-bexpr boolean expression evaluated against the whole
	// row. Empty means inert. Rows whose evaluation errors are excluded.
	Expr string
}

// In builds a membership predicate.
func In(column string, values ...string) Predicate {
	return Predicate{Column: column, In: values}
}

// DateRange builds an inclusive date-range predicate.
func DateRange(column string, from, to *time.Time) Predicate {
	return Predicate{Column: column, From: from, To: to}
}

// Expr builds a row-expression predicate.
func Expr(expression string) Predicate {
	return Predicate{Expr: expression}
}

// inert reports whether the predicate imposes no constraint.
func (p Predicate) inert() bool {
	return len(p.In) == 0 && p.From == nil && p.To == nil && p.Expr == ""
}

// Apply returns a fresh table holding the rows that satisfy every active
// predicate. Predicates whose target column is absent are no-ops. The
// only error condition is an unparsable expression predicate.
func Apply(t *dataset.Table, predicates []Predicate) (*dataset.Table, error) {
	type check struct {
		pred Predicate
		eval *bexpr.Evaluator
	}

	var checks []check
	for _, p := range predicates {
		if p.inert() {
			continue
		}
		if p.Expr != "" {
			ev, err := bexpr.CreateEvaluator(p.Expr)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpr, p.Expr, err)
			}
			checks = append(checks, check{pred: p, eval: ev})
			continue
		}
		if !t.HasColumn(p.Column) {
			continue
		}
		checks = append(checks, check{pred: p})
	}

	if len(checks) == 0 {
		return &dataset.Table{Columns: t.Columns, Rows: t.Rows}, nil
	}

	var allowed []map[string]bool
	for _, c := range checks {
		if len(c.pred.In) > 0 {
			set := make(map[string]bool, len(c.pred.In))
			for _, v := range c.pred.In {
				set[v] = true
			}
			allowed = append(allowed, set)
		} else {
			allowed = append(allowed, nil)
		}
	}

	rows := make([]dataset.Row, 0, t.Len())
	for _, row := range t.Rows {
		pass := true
		for i, c := range checks {
			if !matches(row, c.pred, allowed[i], c.eval) {
				pass = false
				break
			}
		}
		if pass {
			rows = append(rows, row)
		}
	}

	return &dataset.Table{Columns: t.Columns, Rows: rows}, nil
}

func matches(row dataset.Row, p Predicate, allowed map[string]bool, eval *bexpr.Evaluator) bool {
	switch {
	case eval != nil:
		ok, err := eval.Evaluate(rowVars(row))
		return err == nil && ok
	case allowed != nil:
		return allowed[row[p.Column].Display()]
	default:
		ts, ok := row[p.Column].Time()
		if !ok {
			return false
		}
		if p.From != nil && ts.Before(*p.From) {
			return false
		}
		if p.To != nil && ts.After(*p.To) {
			return false
		}
		return true
	}
}

// rowVars flattens a row into the map form bexpr evaluates against.
func rowVars(row dataset.Row) map[string]any {
	vars := make(map[string]any, len(row))
	for col, v := range row {
		vars[col] = v.Native()
	}
	return vars
}
