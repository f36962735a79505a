package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "marketdash/internal/errors"
	"marketdash/internal/export"
	"marketdash/internal/filter"
	"marketdash/internal/infrastructure"
	"marketdash/internal/pivot"
	"marketdash/internal/services"
	"marketdash/pkg/contracts/domain"
)

// DashboardHandler binds HTTP requests to the three dashboard views
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	metrics      *infrastructure.Metrics
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807
// error handling
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.Metrics) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
		metrics:      metrics,
	}
}

// Routes returns the dashboard routes with proper Chi patterns
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/news", h.GetNewsView)
	r.Get("/news/export", h.ExportNews)
	r.Get("/stocks", h.GetStocksView)
	r.Get("/stocks/export", h.ExportStocks)
	r.Get("/datasets", h.GetDatasets)
	r.Post("/pivot", h.GeneratePivot)

	return r
}

// GetNewsView handles GET /api/news: categories/sectors filter the news
// table, expr applies an optional row expression
func (h *DashboardHandler) GetNewsView(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	q := r.URL.Query()

	state := newsState(q)

	h.logger.InfoContext(r.Context(), "evaluating news view",
		slog.String("request_id", reqID),
		slog.Int("categories", len(state.Categories)),
		slog.Int("sectors", len(state.Sectors)),
	)

	view, err := h.service.NewsView(r.Context(), state)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

// GetStocksView handles GET /api/stocks: sector/stock_name filter, an
// inclusive from/to date range, an ad-hoc column projection, and a
// numeric series selection for the time plot
func (h *DashboardHandler) GetStocksView(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	q := r.URL.Query()

	state, badParam, err := stocksState(q)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(badParam, "must be a YYYY-MM-DD date"))
		return
	}

	h.logger.InfoContext(r.Context(), "evaluating stocks view",
		slog.String("request_id", reqID),
		slog.Int("sectors", len(state.Sectors)),
		slog.Int("names", len(state.Names)),
		slog.Int("series", len(state.Series)),
	)

	view, err := h.service.StocksView(r.Context(), state)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

// ExportNews handles GET /api/news/export: the filtered news table as a
// CSV download, honoring the same query parameters as the JSON view
func (h *DashboardHandler) ExportNews(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.NewsView(r.Context(), newsState(r.URL.Query()))
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}
	h.writeCSV(w, r, "news.csv", view.Table)
}

// ExportStocks handles GET /api/stocks/export, the stocks counterpart of
// ExportNews
func (h *DashboardHandler) ExportStocks(w http.ResponseWriter, r *http.Request) {
	state, badParam, err := stocksState(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(badParam, "must be a YYYY-MM-DD date"))
		return
	}

	view, err := h.service.StocksView(r.Context(), state)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}
	h.writeCSV(w, r, "stocks.csv", view.Table)
}

func (h *DashboardHandler) writeCSV(w http.ResponseWriter, r *http.Request, filename string, table domain.TablePayload) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteTable(w, table, export.Options{BOMPrefix: true}); err != nil {
		// Headers are gone at this point; just log the broken stream.
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
	}
}

// GetDatasets handles GET /api/datasets for the pivot workspace pickers
func (h *DashboardHandler) GetDatasets(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"datasets": h.service.Datasets(r.Context()),
		"agg_functions": []string{
			string(pivot.AggSum), string(pivot.AggMean), string(pivot.AggCount),
			string(pivot.AggMax), string(pivot.AggMin),
		},
	})
}

// GeneratePivot handles POST /api/pivot with RFC 7807 errors. A bad
// specification never touches other views; the client renders the
// problem detail inline.
func (h *DashboardHandler) GeneratePivot(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req domain.PivotRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, validationError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "generating pivot",
		slog.String("request_id", reqID),
		slog.String("dataset", req.Dataset),
		slog.String("index", req.Index),
		slog.String("group", req.Group),
		slog.String("value", req.Value),
		slog.String("agg", req.Agg),
	)

	view, err := h.service.PivotView(r.Context(), req)
	if err != nil {
		if h.metrics != nil {
			h.metrics.PivotsTotal.WithLabelValues(req.Dataset, "error").Inc()
		}
		h.handleViewError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.PivotsTotal.WithLabelValues(req.Dataset, "ok").Inc()
	}
	render.JSON(w, r, view)
}

// handleViewError maps service errors to API errors before the RFC 7807
// handler renders them
func (h *DashboardHandler) handleViewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pivot.ErrInvalidSpec):
		h.errorHandler.HandleError(w, r, apierrors.InvalidPivotSpec(err))
	case errors.Is(err, filter.ErrInvalidExpr):
		h.errorHandler.HandleError(w, r, apierrors.InvalidFilterExpr(err))
	case errors.Is(err, services.ErrUnknownDataset):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	case errors.Is(err, services.ErrDatasetEmpty):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetEmpty)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// newsState builds the news view state from query parameters
func newsState(q url.Values) services.NewsState {
	return services.NewsState{
		Categories: multiParam(q, "category"),
		Sectors:    multiParam(q, "sector"),
		Expr:       q.Get("expr"),
	}
}

// stocksState builds the stocks view state from query parameters. On a
// malformed date it returns the offending parameter name.
func stocksState(q url.Values) (services.StocksState, string, error) {
	state := services.StocksState{
		Sectors: multiParam(q, "sector"),
		Names:   multiParam(q, "stock_name"),
		Columns: multiParam(q, "columns"),
		Series:  multiParam(q, "series"),
		Expr:    q.Get("expr"),
	}

	var err error
	if state.From, err = dateParam(q, "from"); err != nil {
		return state, "from", err
	}
	if state.To, err = dateParam(q, "to"); err != nil {
		return state, "to", err
	}
	return state, "", nil
}

// multiParam collects a repeated query parameter
func multiParam(q url.Values, key string) []string {
	vals := q[key]
	// Drop empty entries so "?sector=" stays an inert filter.
	out := vals[:0:0]
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// dateParam parses an optional YYYY-MM-DD query parameter
func dateParam(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// validationError flattens validator output into a field-level APIError
func validationError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]apierrors.ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, apierrors.ValidationError{
				Field:   fe.Field(),
				Message: fe.Tag(),
			})
		}
		return apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", details)
	}
	return apierrors.InvalidRequestWithError(err)
}
