package http

import (
	"context"

	"marketdash/internal/services"
	"marketdash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the contract the dashboard handler
// depends on, enabling testing with mocks
type DashboardServiceInterface interface {
	NewsView(ctx context.Context, state services.NewsState) (*domain.NewsView, error)
	StocksView(ctx context.Context, state services.StocksState) (*domain.StocksView, error)
	PivotView(ctx context.Context, req domain.PivotRequest) (*domain.PivotView, error)
	Datasets(ctx context.Context) []domain.DatasetInfo
}
