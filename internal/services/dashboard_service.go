package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketdash/internal/chart"
	"marketdash/internal/dataset"
	"marketdash/internal/filter"
	"marketdash/internal/pivot"
	"marketdash/pkg/contracts/domain"
)

// Expected news dataset columns. Each degrades its own feature when
// absent.
const (
	colCategory  = "category"
	colSector    = "sector"
	colSentiment = "market_sentiment"
	colScore     = "sentiment_score"
	colStockName = "stock_name"
	colDate      = "date"
)

// Source is one loaded dataset plus its load failure, if any. The table
// is never nil; a failed load carries an empty table and the message.
type Source struct {
	Name      string
	Table     *dataset.Table
	LoadError string
}

// NewsState holds the user selections driving the news view.
type NewsState struct {
	Categories []string
	Sectors    []string
	Expr       string
}

// StocksState holds the user selections driving the stocks view.
type StocksState struct {
	Sectors []string
	Names   []string
	From    *time.Time
	To      *time.Time
	Columns []string // ad-hoc projection subset
	Series  []string // numeric columns for the time plot
	Expr    string
}

// DashboardService evaluates the three dashboard views. Each call is a
// pure function of the immutable source tables and the request state:
// nothing is retained between calls, so concurrent requests share only
// read-only data.
type DashboardService struct {
	logger *slog.Logger
	news   Source
	stocks Source
}

// NewDashboardService creates the dashboard service over the two loaded
// sources.
func NewDashboardService(logger *slog.Logger, news, stocks Source) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		logger: logger.With(slog.String("component", "dashboard_service")),
		news:   news,
		stocks: stocks,
	}
}

// NewsView filters the news table and derives its two charts: sentiment
// distribution (pie) and mean sentiment score per sector (bar). Either
// chart is omitted when its backing columns are missing.
func (s *DashboardService) NewsView(ctx context.Context, state NewsState) (*domain.NewsView, error) {
	src := s.news.Table

	filtered, err := filter.Apply(src, []filter.Predicate{
		filter.In(colCategory, state.Categories...),
		filter.In(colSector, state.Sectors...),
		filter.Expr(state.Expr),
	})
	if err != nil {
		return nil, err
	}

	view := &domain.NewsView{
		CategoryOptions: src.DistinctStrings(colCategory),
		SectorOptions:   src.DistinctStrings(colSector),
		Table:           toPayload(filtered),
		LoadError:       s.news.LoadError,
	}

	if filtered.HasColumn(colSentiment) {
		counts := pivot.ValueCounts(filtered, colSentiment)
		spec, err := chart.Build(counts, domain.ChartPie, colSentiment, []string{"count"}, "Sentiment Breakdown")
		if err == nil {
			view.SentimentChart = spec
		}
	}

	if filtered.HasColumn(colScore) && filtered.HasColumn(colSector) {
		scores, err := pivot.Generate(filtered, pivot.Spec{
			Index: colSector,
			Value: colScore,
			Agg:   pivot.AggMean,
		})
		if err != nil {
			// Non-numeric score column is a schema quirk, not a view
			// failure.
			s.logger.DebugContext(ctx, "sector score chart skipped",
				slog.String("error", err.Error()))
		} else {
			spec, err := chart.Build(scores, domain.ChartBar, colSector, []string{colScore}, "Avg Sentiment Score by Sector")
			if err == nil {
				view.SectorScores = spec
			}
		}
	}

	s.logger.InfoContext(ctx, "news view evaluated",
		slog.Int("source_rows", src.Len()),
		slog.Int("filtered_rows", filtered.Len()))
	return view, nil
}

// StocksView filters the stocks table by sector, stock name, and date
// range, then derives the ad-hoc column projection and the multi-series
// time plot.
func (s *DashboardService) StocksView(ctx context.Context, state StocksState) (*domain.StocksView, error) {
	src := s.stocks.Table

	filtered, err := filter.Apply(src, []filter.Predicate{
		filter.In(colSector, state.Sectors...),
		filter.In(colStockName, state.Names...),
		filter.DateRange(colDate, state.From, state.To),
		filter.Expr(state.Expr),
	})
	if err != nil {
		return nil, err
	}

	view := &domain.StocksView{
		SectorOptions:  src.DistinctStrings(colSector),
		NameOptions:    src.DistinctStrings(colStockName),
		NumericColumns: filtered.NumericColumns(),
		Table:          toPayload(filtered),
		LoadError:      s.stocks.LoadError,
	}
	if min, max, ok := src.TimeBounds(colDate); ok {
		view.MinDate = min.Format("2006-01-02")
		view.MaxDate = max.Format("2006-01-02")
	}

	if len(state.Columns) > 0 {
		view.Projection = toPayload(filtered.Select(state.Columns...))
	}

	// Plot only selections that are actually numeric columns here, so a
	// stale widget selection degrades instead of erroring.
	series := intersect(state.Series, view.NumericColumns)
	if len(series) > 0 {
		x := ""
		if filtered.HasColumn(colDate) {
			x = colDate
		}
		spec, err := chart.Build(filtered, domain.ChartLine, x, series, "")
		if err == nil {
			view.SeriesChart = spec
		}
	}

	s.logger.InfoContext(ctx, "stocks view evaluated",
		slog.Int("source_rows", src.Len()),
		slog.Int("filtered_rows", filtered.Len()),
		slog.Int("series", len(series)))
	return view, nil
}

// PivotView runs one cross-tabulation request against a source dataset
// and shapes the result into a table plus a bar or line chart. Bad specs
// come back wrapped in pivot.ErrInvalidSpec for the transport layer to
// surface inline.
func (s *DashboardService) PivotView(ctx context.Context, req domain.PivotRequest) (*domain.PivotView, error) {
	src, err := s.source(req.Dataset)
	if err != nil {
		return nil, err
	}
	if src.Table.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", ErrDatasetEmpty, req.Dataset)
	}

	result, err := pivot.Generate(src.Table, pivot.Spec{
		Index: req.Index,
		Group: req.Group,
		Value: req.Value,
		Agg:   pivot.AggFunc(req.Agg),
		Fill:  0,
	})
	if err != nil {
		return nil, err
	}

	kind := domain.ChartBar
	if req.Chart == string(domain.ChartLine) {
		kind = domain.ChartLine
	}
	spec, err := chart.Build(result, kind, req.Index, result.Columns[1:], "")
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "pivot generated",
		slog.String("dataset", req.Dataset),
		slog.String("index", req.Index),
		slog.String("group", req.Group),
		slog.String("value", req.Value),
		slog.String("agg", req.Agg),
		slog.Int("result_rows", result.Len()))

	return &domain.PivotView{
		Table: toPayload(result),
		Chart: spec,
	}, nil
}

// Datasets describes the two selectable sources for the pivot workspace.
func (s *DashboardService) Datasets(ctx context.Context) []domain.DatasetInfo {
	infos := make([]domain.DatasetInfo, 0, 2)
	for _, src := range []Source{s.news, s.stocks} {
		infos = append(infos, domain.DatasetInfo{
			Name:           src.Name,
			Columns:        src.Table.Columns,
			NumericColumns: src.Table.NumericColumns(),
			RowCount:       src.Table.Len(),
			LoadError:      src.LoadError,
		})
	}
	return infos
}

func (s *DashboardService) source(name string) (Source, error) {
	switch name {
	case "news":
		return s.news, nil
	case "stocks":
		return s.stocks, nil
	default:
		return Source{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
}

// toPayload converts a table to its wire form.
func toPayload(t *dataset.Table) domain.TablePayload {
	p := domain.TablePayload{
		Columns: t.Columns,
		Rows:    make([]map[string]any, 0, t.Len()),
	}
	for _, row := range t.Rows {
		out := make(map[string]any, len(t.Columns))
		for _, col := range t.Columns {
			out[col] = row[col].Native()
		}
		p.Rows = append(p.Rows, out)
	}
	return p
}

func intersect(selected, available []string) []string {
	set := make(map[string]bool, len(available))
	for _, c := range available {
		set[c] = true
	}
	var out []string
	for _, c := range selected {
		if set[c] {
			out = append(out, c)
		}
	}
	return out
}
