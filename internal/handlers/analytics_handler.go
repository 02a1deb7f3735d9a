package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"arcade-backend/internal/cache"
	"arcade-backend/internal/services"
)

type AnalyticsHandler struct {
	Service *services.AnalyticsService
}

func NewAnalyticsHandler(s *services.AnalyticsService) *AnalyticsHandler {
	cache.RegisterPreWarm(cache.AnalyticsKey, func(ctx context.Context) ([]byte, error) {
		summary, err := s.Summary(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summary)
	})

	return &AnalyticsHandler{Service: s}
}

// Summary serves the dashboard rollup
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *AnalyticsHandler) ValueByCategory(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.Service.ValueByCategory(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(breakdown)
}

func (h *AnalyticsHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.LowStockItems(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
