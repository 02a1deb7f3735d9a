package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"arcade-backend/internal/assignment"
	"arcade-backend/internal/cache"
	"arcade-backend/internal/metrics"
	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"
)

// Item-level stock labels for dashboards. Slot stock levels are a separate,
// coarser scale computed at relink time.
const (
	StockLabelOut     = "Out of Stock"
	StockLabelLow     = "Low Stock"
	StockLabelLimited = "Limited Stock"
	StockLabelGood    = "In Stock"
)

// StockLabel buckets an item's total quantity for display
func StockLabel(totalQuantity int) string {
	switch {
	case totalQuantity <= 0:
		return StockLabelOut
	case totalQuantity <= 11:
		return StockLabelLow
	case totalQuantity <= 25:
		return StockLabelLimited
	default:
		return StockLabelGood
	}
}

// InventorySummary is the dashboard rollup
type InventorySummary struct {
	TotalItems        int            `json:"total_items"`
	TotalUnits        int            `json:"total_units"`
	TotalValue        float64        `json:"total_value"`
	LowStockCount     int            `json:"low_stock_count"`
	OutOfStockCount   int            `json:"out_of_stock_count"`
	AssignedCount     int            `json:"assigned_count"`
	ByCategory        map[string]int `json:"by_category"`
	ByStockLabel      map[string]int `json:"by_stock_label"`
	MachinesByStatus  map[string]int `json:"machines_by_status"`
	ReordersByStatus  map[string]int `json:"reorders_by_status"`
	OpenMaintenance   int            `json:"open_maintenance"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// CategoryValue is one row of the value-by-category breakdown
type CategoryValue struct {
	Category string  `json:"category"`
	Items    int     `json:"items"`
	Units    int     `json:"units"`
	Value    float64 `json:"value"`
}

type AnalyticsService struct {
	Items    *repositories.StockItemRepository
	Machines *repositories.MachineRepository
	Reorders *repositories.ReorderRequestRepository
	Tasks    *repositories.MaintenanceTaskRepository
}

func NewAnalyticsService(
	items *repositories.StockItemRepository,
	machines *repositories.MachineRepository,
	reorders *repositories.ReorderRequestRepository,
	tasks *repositories.MaintenanceTaskRepository,
) *AnalyticsService {
	return &AnalyticsService{Items: items, Machines: machines, Reorders: reorders, Tasks: tasks}
}

// Summary builds the dashboard rollup, cached for five minutes
func (s *AnalyticsService) Summary(ctx context.Context) (*InventorySummary, error) {
	if data, ok := cache.GetCached(ctx, cache.AnalyticsKey); ok {
		var summary InventorySummary
		if err := json.Unmarshal(data, &summary); err == nil {
			return &summary, nil
		}
	}

	items, err := s.Items.List(ctx, false)
	if err != nil {
		return nil, err
	}

	summary := &InventorySummary{
		ByCategory:   make(map[string]int),
		ByStockLabel: make(map[string]int),
		GeneratedAt:  time.Now(),
	}

	for i := range items {
		item := &items[i]
		summary.TotalItems++
		summary.TotalUnits += item.TotalQuantity
		summary.TotalValue += float64(item.TotalQuantity) * item.Value
		summary.ByCategory[item.Category]++
		summary.ByStockLabel[StockLabel(item.TotalQuantity)]++

		if item.TotalQuantity <= 0 {
			summary.OutOfStockCount++
		} else if item.LowStockThreshold > 0 && item.TotalQuantity <= item.LowStockThreshold {
			summary.LowStockCount++
		}
		if assignment.Count(item) > 0 {
			summary.AssignedCount++
		}
	}

	machineCounts, err := s.Machines.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary.MachinesByStatus = machineCounts

	reorderCounts, err := s.Reorders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary.ReordersByStatus = reorderCounts

	taskCounts, err := s.Tasks.CountOpenByMachine(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range taskCounts {
		summary.OpenMaintenance += n
	}

	metrics.LowStockItems.Set(float64(summary.LowStockCount))

	if data, err := json.Marshal(summary); err == nil {
		cache.SetCached(ctx, cache.AnalyticsKey, data, 5*time.Minute)
	}
	return summary, nil
}

// ValueByCategory breaks inventory value down per category, largest first
func (s *AnalyticsService) ValueByCategory(ctx context.Context) ([]CategoryValue, error) {
	items, err := s.Items.List(ctx, false)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategoryValue)
	for i := range items {
		item := &items[i]
		cv, ok := byCategory[item.Category]
		if !ok {
			cv = &CategoryValue{Category: item.Category}
			byCategory[item.Category] = cv
		}
		cv.Items++
		cv.Units += item.TotalQuantity
		cv.Value += float64(item.TotalQuantity) * item.Value
	}

	out := make([]CategoryValue, 0, len(byCategory))
	for _, cv := range byCategory {
		out = append(out, *cv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

// LowStockItems returns active items at or below their reorder threshold
func (s *AnalyticsService) LowStockItems(ctx context.Context) ([]models.StockItem, error) {
	items, err := s.Items.List(ctx, false)
	if err != nil {
		return nil, err
	}

	var low []models.StockItem
	for i := range items {
		threshold := items[i].LowStockThreshold
		if threshold <= 0 {
			continue
		}
		if items[i].TotalQuantity <= threshold {
			low = append(low, items[i])
		}
	}
	return low, nil
}
