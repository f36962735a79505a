package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "marketdash/internal/errors"
	"marketdash/internal/pivot"
	"marketdash/internal/services"
	"marketdash/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) NewsView(ctx context.Context, state services.NewsState) (*domain.NewsView, error) {
	args := m.Called(state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NewsView), args.Error(1)
}

func (m *MockDashboardService) StocksView(ctx context.Context, state services.StocksState) (*domain.StocksView, error) {
	args := m.Called(state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StocksView), args.Error(1)
}

func (m *MockDashboardService) PivotView(ctx context.Context, req domain.PivotRequest) (*domain.PivotView, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PivotView), args.Error(1)
}

func (m *MockDashboardService) Datasets(ctx context.Context) []domain.DatasetInfo {
	args := m.Called()
	return args.Get(0).([]domain.DatasetInfo)
}

func newTestHandler(svc DashboardServiceInterface) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	errorHandler := apierrors.NewErrorHandler(logger, false)
	h := NewDashboardHandler(svc, logger, errorHandler, nil)

	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	return r
}

func TestGetNewsView(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("NewsView", services.NewsState{
		Categories: []string{"Markets", "Policy"},
		Sectors:    []string{"Tech"},
	}).Return(&domain.NewsView{
		CategoryOptions: []string{"Markets", "Policy"},
		Table:           domain.TablePayload{Columns: []string{"category"}},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/news?category=Markets&category=Policy&sector=Tech", nil)
	rec := httptest.NewRecorder()
	newTestHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.NewsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, []string{"Markets", "Policy"}, view.CategoryOptions)
	svc.AssertExpectations(t)
}

func TestGetStocksView_DateParams(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("StocksView", mock.MatchedBy(func(state services.StocksState) bool {
		return state.From != nil && state.From.Format("2006-01-02") == "2024-01-02" &&
			state.To != nil && state.To.Format("2006-01-02") == "2024-01-02"
	})).Return(&domain.StocksView{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks?from=2024-01-02&to=2024-01-02", nil)
	rec := httptest.NewRecorder()
	newTestHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetStocksView_BadDate(t *testing.T) {
	svc := new(MockDashboardService)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks?from=tomorrow", nil)
	rec := httptest.NewRecorder()
	newTestHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "StocksView", mock.Anything)
}

func TestGeneratePivot(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "successful pivot",
			body: `{"dataset":"stocks","index":"sector","value":"price","agg":"sum"}`,
			setupMock: func(m *MockDashboardService) {
				m.On("PivotView", mock.Anything).Return(&domain.PivotView{
					Table: domain.TablePayload{Columns: []string{"sector", "price"}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing required fields",
			body:           `{"dataset":"stocks"}`,
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown aggregation rejected by validation",
			body:           `{"dataset":"stocks","index":"sector","value":"price","agg":"median"}`,
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"dataset":`,
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid spec surfaces as 422",
			body: `{"dataset":"stocks","index":"sector","value":"stock_name","agg":"sum"}`,
			setupMock: func(m *MockDashboardService) {
				m.On("PivotView", mock.Anything).Return(nil,
					fmt.Errorf("%w: value column %q is not numeric", pivot.ErrInvalidSpec, "stock_name"))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "INVALID_PIVOT_SPEC",
		},
		{
			name: "empty dataset surfaces as 422",
			body: `{"dataset":"news","index":"sector","value":"price","agg":"sum"}`,
			setupMock: func(m *MockDashboardService) {
				m.On("PivotView", mock.Anything).Return(nil,
					fmt.Errorf("%w: news", services.ErrDatasetEmpty))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "DATASET_EMPTY",
		},
		{
			name: "unknown dataset surfaces as 404",
			body: `{"dataset":"stocks","index":"sector","value":"price","agg":"sum"}`,
			setupMock: func(m *MockDashboardService) {
				m.On("PivotView", mock.Anything).Return(nil,
					fmt.Errorf("%w: %q", services.ErrUnknownDataset, "bonds"))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "DATASET_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/pivot", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			newTestHandler(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				var problem map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
				assert.Equal(t, tt.expectedCode, problem["error_code"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGetDatasets(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Datasets").Return([]domain.DatasetInfo{
		{Name: "news", RowCount: 3},
		{Name: "stocks", RowCount: 2},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	rec := httptest.NewRecorder()
	newTestHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Datasets []domain.DatasetInfo `json:"datasets"`
		AggFns   []string             `json:"agg_functions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Datasets, 2)
	assert.Equal(t, []string{"sum", "mean", "count", "max", "min"}, resp.AggFns)
}

func TestHealthHandler(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Datasets").Return([]domain.DatasetInfo{
		{Name: "news", RowCount: 0, LoadError: "Failed to load news"},
		{Name: "stocks", RowCount: 2},
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := NewHealthHandler(svc, logger, "test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// Healthy even when a workbook failed to load.
	assert.Equal(t, "healthy", body["status"])
	datasets := body["datasets"].([]any)
	require.Len(t, datasets, 2)
	assert.Equal(t, "Failed to load news", datasets[0].(map[string]any)["load_error"])
}

func TestExportNews(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("NewsView", services.NewsState{Categories: []string{"Markets"}}).Return(&domain.NewsView{
		Table: domain.TablePayload{
			Columns: []string{"category", "sentiment_score"},
			Rows: []map[string]any{
				{"category": "Markets", "sentiment_score": 0.8},
			},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/news/export?category=Markets", nil)
	rec := httptest.NewRecorder()
	newTestHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "news.csv")

	body := rec.Body.Bytes()
	// UTF-8 BOM for spreadsheet tools, then plain CSV.
	require.Equal(t, []byte{0xEF, 0xBB, 0xBF}, body[:3])
	assert.Equal(t, "category,sentiment_score\nMarkets,0.8\n", string(body[3:]))
	svc.AssertExpectations(t)
}

func TestExportStocks_BadDate(t *testing.T) {
	svc := new(MockDashboardService)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/export?from=January", nil)
	rec := httptest.NewRecorder()
	newTestHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "StocksView")
}
