package domain

// NewsView is the full render state of the news dashboard: filter widget
// options, the two aggregate charts, and the filtered table. Charts whose
// backing columns are missing from the dataset are simply nil.
type NewsView struct {
	CategoryOptions []string     `json:"category_options"`
	SectorOptions   []string     `json:"sector_options"`
	SentimentChart  *ChartSpec   `json:"sentiment_chart,omitempty"`
	SectorScores    *ChartSpec   `json:"sector_scores,omitempty"`
	Table           TablePayload `json:"table"`
	LoadError       string       `json:"load_error,omitempty"`
}

// StocksView is the full render state of the stocks dashboard.
type StocksView struct {
	SectorOptions  []string     `json:"sector_options"`
	NameOptions    []string     `json:"name_options"`
	NumericColumns []string     `json:"numeric_columns"`
	MinDate        string       `json:"min_date,omitempty"`
	MaxDate        string       `json:"max_date,omitempty"`
	Projection     TablePayload `json:"projection"`
	SeriesChart    *ChartSpec   `json:"series_chart,omitempty"`
	Table          TablePayload `json:"table"`
	LoadError      string       `json:"load_error,omitempty"`
}

// PivotRequest parameterizes an ad-hoc cross-tabulation of one of the
// two source datasets.
type PivotRequest struct {
	Dataset string `json:"dataset" validate:"required,oneof=news stocks"`
	Index   string `json:"index" validate:"required"`
	Group   string `json:"group,omitempty"`
	Value   string `json:"value" validate:"required"`
	Agg     string `json:"agg" validate:"required,oneof=sum mean count max min"`
	Chart   string `json:"chart,omitempty" validate:"omitempty,oneof=bar line"`
}

// PivotView is the render state of a generated pivot: the result table
// and its chart.
type PivotView struct {
	Table TablePayload `json:"table"`
	Chart *ChartSpec   `json:"chart,omitempty"`
}

// DatasetInfo describes one selectable source dataset for the pivot
// workspace.
type DatasetInfo struct {
	Name           string   `json:"name"`
	Columns        []string `json:"columns"`
	NumericColumns []string `json:"numeric_columns"`
	RowCount       int      `json:"row_count"`
	LoadError      string   `json:"load_error,omitempty"`
}
