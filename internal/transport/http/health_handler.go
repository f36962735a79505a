package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler reports process liveness and dataset readiness
type HealthHandler struct {
	service DashboardServiceInterface
	logger  *slog.Logger
	started time.Time
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service DashboardServiceInterface, logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("component", "health_handler")),
		started: time.Now(),
		version: version,
	}
}

// ServeHTTP handles GET /healthz. The service stays "healthy" even when
// a workbook failed to load; the per-dataset entries carry the failure
// so operators can see it without the dashboard going down.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type datasetStatus struct {
		Name      string `json:"name"`
		Rows      int    `json:"rows"`
		LoadError string `json:"load_error,omitempty"`
	}

	var datasets []datasetStatus
	for _, info := range h.service.Datasets(r.Context()) {
		datasets = append(datasets, datasetStatus{
			Name:      info.Name,
			Rows:      info.RowCount,
			LoadError: info.LoadError,
		})
	}

	render.JSON(w, r, map[string]any{
		"status":    "healthy",
		"version":   h.version,
		"uptime":    time.Since(h.started).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"datasets":  datasets,
	})
}
