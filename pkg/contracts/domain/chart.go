package domain

// ChartKind identifies the renderable chart type
type ChartKind string

const (
	ChartPie  ChartKind = "pie"
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

// ChartPoint is one labeled value within a series
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSeries is one plotted series with an assigned color
type ChartSeries struct {
	Name   string       `json:"name"`
	Color  string       `json:"color,omitempty"`
	Points []ChartPoint `json:"points"`
}

// ChartSpec is an abstract description of a renderable chart: the kind
// plus its data bindings, independent of any rendering library
type ChartSpec struct {
	Kind   ChartKind     `json:"kind"`
	Title  string        `json:"title,omitempty"`
	XLabel string        `json:"x_label,omitempty"`
	Series []ChartSeries `json:"series"`
}
