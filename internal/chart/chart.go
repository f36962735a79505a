// Package chart shapes tables into renderer-agnostic chart
// specifications. It does no aggregation: the caller hands it an already
// shaped table (raw, filtered, or pivoted) and names the axis columns.
package chart

import (
	"errors"
	"fmt"
	"strconv"

	"marketdash/internal/dataset"

	"marketdash/pkg/contracts/domain"
)

// ErrInvalidChart marks axis selections the table cannot satisfy.
var ErrInvalidChart = errors.New("invalid chart request")

// palette colors series in order, wrapping when exhausted.
var palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Build maps a table onto a chart spec. x names the label column; an
// empty x labels points by row position. Pie charts take exactly one y
// series; bar and line charts take one or more, each becoming a series
// against the shared x labels. Null or non-numeric y cells plot as zero.
func Build(t *dataset.Table, kind domain.ChartKind, x string, ys []string, title string) (*domain.ChartSpec, error) {
	switch kind {
	case domain.ChartPie, domain.ChartBar, domain.ChartLine:
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidChart, kind)
	}
	if len(ys) == 0 {
		return nil, fmt.Errorf("%w: no value columns selected", ErrInvalidChart)
	}
	if kind == domain.ChartPie && len(ys) != 1 {
		return nil, fmt.Errorf("%w: pie charts take exactly one value column, got %d", ErrInvalidChart, len(ys))
	}
	if x != "" && !t.HasColumn(x) {
		return nil, fmt.Errorf("%w: label column %q not in table", ErrInvalidChart, x)
	}
	for _, y := range ys {
		if !t.HasColumn(y) {
			return nil, fmt.Errorf("%w: value column %q not in table", ErrInvalidChart, y)
		}
	}

	labels := make([]string, t.Len())
	for i, row := range t.Rows {
		if x != "" {
			labels[i] = row[x].Display()
		} else {
			labels[i] = strconv.Itoa(i)
		}
	}

	spec := &domain.ChartSpec{
		Kind:   kind,
		Title:  title,
		XLabel: x,
	}
	for si, y := range ys {
		series := domain.ChartSeries{
			Name:   y,
			Color:  palette[si%len(palette)],
			Points: make([]domain.ChartPoint, 0, t.Len()),
		}
		for i, row := range t.Rows {
			n, _ := row[y].Number()
			series.Points = append(series.Points, domain.ChartPoint{
				Label: labels[i],
				Value: n,
			})
		}
		spec.Series = append(spec.Series, series)
	}
	return spec, nil
}
