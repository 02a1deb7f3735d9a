package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"arcade-backend/internal/assignment"
	"arcade-backend/internal/cache"
	"arcade-backend/internal/metrics"
	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"
	"arcade-backend/internal/timeutil"

	"github.com/google/uuid"
)

// InventoryService owns the stock item lifecycle and the item side of
// machine assignments. All assignment writes go through here so the
// canonical list, its legacy projection and the audit trail stay in step.
type InventoryService struct {
	Items     *repositories.StockItemRepository
	Machines  *repositories.MachineRepository
	AuditRepo *repositories.AuditLogRepository
	Promoter  *assignment.Promoter
}

func NewInventoryService(
	items *repositories.StockItemRepository,
	machines *repositories.MachineRepository,
	auditRepo *repositories.AuditLogRepository,
) *InventoryService {
	return &InventoryService{
		Items:     items,
		Machines:  machines,
		AuditRepo: auditRepo,
		Promoter:  assignment.NewPromoter(&promotionStore{items: items}),
	}
}

// promotionStore adapts the repository to the promoter's single-write contract
type promotionStore struct {
	items *repositories.StockItemRepository
}

func (s *promotionStore) Update(ctx context.Context, id string, patch models.StockItemPatch) error {
	return s.items.UpdateAssignments(ctx, id, patch)
}

func (s *InventoryService) GetItem(ctx context.Context, id string) (*models.StockItem, error) {
	item, err := s.Items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Serve the computed status so callers never read a stale stored value
	item.AssignedStatus = assignment.ComputedStatus(item)
	return item, nil
}

// ListItems returns stock items with computed statuses. The active list is
// the hottest read in the app, so it is served cache-aside.
func (s *InventoryService) ListItems(ctx context.Context, includeArchived bool) ([]models.StockItem, error) {
	if !includeArchived {
		if data, ok := cache.GetCached(ctx, cache.InventoryListKey); ok {
			var items []models.StockItem
			if err := json.Unmarshal(data, &items); err == nil {
				return items, nil
			}
		}
	}

	items, err := s.Items.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].AssignedStatus = assignment.ComputedStatus(&items[i])
	}

	if !includeArchived {
		if data, err := json.Marshal(items); err == nil {
			cache.SetCached(ctx, cache.InventoryListKey, data, 5*time.Minute)
		}
	}
	return items, nil
}

// CreateItem creates a stock item with an authoritative empty assignment list
func (s *InventoryService) CreateItem(ctx context.Context, req *models.CreateStockItemRequest, userID string) (*models.StockItem, error) {
	if req.Name == "" || req.SKU == "" {
		return nil, errors.New("name and sku are required")
	}
	if existing, _ := s.Items.GetBySKU(ctx, req.SKU); existing != nil {
		return nil, errors.New("an item with this sku already exists")
	}

	total := 0
	for _, loc := range req.Locations {
		if loc.Quantity < 0 {
			return nil, errors.New("location quantity cannot be negative")
		}
		total += loc.Quantity
	}

	item := &models.StockItem{
		SKU:                req.SKU,
		Name:               req.Name,
		Category:           req.Category,
		Size:               req.Size,
		Brand:              req.Brand,
		ImageURL:           req.ImageURL,
		Description:        req.Description,
		TotalQuantity:      total,
		LowStockThreshold:  req.LowStockThreshold,
		Value:              req.Value,
		Locations:          req.Locations,
		MachineAssignments: []models.MachineAssignment{},
		AssignedStatus:     models.AssignedStatusNone,
	}

	if err := s.Items.Create(ctx, item); err != nil {
		return nil, err
	}

	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "CREATE",
		EntityType: models.EntityStockItem,
		EntityID:   item.ID,
		UserID:     userID,
		NewValue:   map[string]interface{}{"name": item.Name, "sku": item.SKU},
	})
	cache.InvalidateStockCaches(ctx)
	return item, nil
}

// UpdateItem updates descriptive fields; assignments are untouched
func (s *InventoryService) UpdateItem(ctx context.Context, id string, req *models.UpdateStockItemRequest, userID string) (*models.StockItem, error) {
	item, err := s.Items.Get(ctx, id)
	if err != nil {
		return nil, errors.New("item not found")
	}

	old := map[string]interface{}{"name": item.Name, "category": item.Category}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	item.Size = req.Size
	item.Brand = req.Brand
	item.ImageURL = req.ImageURL
	item.Description = req.Description
	if req.LowStockThreshold > 0 {
		item.LowStockThreshold = req.LowStockThreshold
	}
	if req.Value > 0 {
		item.Value = req.Value
	}
	if req.Locations != nil {
		total := 0
		for _, loc := range req.Locations {
			if loc.Quantity < 0 {
				return nil, errors.New("location quantity cannot be negative")
			}
			total += loc.Quantity
		}
		item.Locations = req.Locations
		item.TotalQuantity = total
	}

	item.History = append(item.History, models.AuditLog{
		ID:         uuid.NewString(),
		Action:     "UPDATE",
		EntityType: models.EntityStockItem,
		EntityID:   item.ID,
		UserID:     userID,
		Timestamp:  timeutil.Now(),
		OldValue:   old,
		NewValue:   map[string]interface{}{"name": item.Name, "category": item.Category},
	})

	if err := s.Items.Update(ctx, item); err != nil {
		return nil, err
	}
	cache.InvalidateStockCaches(ctx)
	return item, nil
}

// AdjustStock changes the quantity at one named location
func (s *InventoryService) AdjustStock(ctx context.Context, id string, req *models.AdjustStockRequest, userID string) (*models.StockItem, error) {
	item, err := s.Items.Get(ctx, id)
	if err != nil {
		return nil, errors.New("item not found")
	}

	idx := -1
	for i, loc := range item.Locations {
		if loc.Name == req.LocationName {
			idx = i
			break
		}
	}
	if idx == -1 {
		if req.AdjustmentType == "remove" {
			return nil, errors.New("location not found")
		}
		item.Locations = append(item.Locations, models.StockLocation{Name: req.LocationName})
		idx = len(item.Locations) - 1
	}

	oldQty := item.Locations[idx].Quantity
	switch req.AdjustmentType {
	case "add":
		item.Locations[idx].Quantity += req.Quantity
	case "remove":
		item.Locations[idx].Quantity -= req.Quantity
	case "set":
		item.Locations[idx].Quantity = req.Quantity
	default:
		return nil, errors.New("adjustment_type must be add, remove or set")
	}
	if item.Locations[idx].Quantity < 0 {
		return nil, errors.New("resulting quantity cannot be negative")
	}

	total := 0
	for _, loc := range item.Locations {
		total += loc.Quantity
	}
	item.TotalQuantity = total

	item.History = append(item.History, models.AuditLog{
		ID:         uuid.NewString(),
		Action:     "STOCK_ADJUSTED",
		EntityType: models.EntityStockItem,
		EntityID:   item.ID,
		UserID:     userID,
		Timestamp:  timeutil.Now(),
		Details: map[string]interface{}{
			"location":     req.LocationName,
			"old_quantity": oldQty,
			"new_quantity": item.Locations[idx].Quantity,
			"notes":        req.Notes,
		},
	})

	if err := s.Items.Update(ctx, item); err != nil {
		return nil, err
	}
	cache.InvalidateStockCaches(ctx)
	return item, nil
}

// AssignToMachine places an item on a machine as Using or queues it as a
// Replacement. Assigning as Using displaces any other item currently Using
// the machine; the displaced item is unassigned with an AUTO_UNASSIGNED
// record rather than silently overwritten.
func (s *InventoryService) AssignToMachine(ctx context.Context, itemID string, req *models.AssignMachineRequest, userID string) (*models.StockItem, error) {
	if req.Status != models.AssignmentUsing && req.Status != models.AssignmentReplacement {
		return nil, errors.New("status must be Using or Replacement")
	}

	item, err := s.Items.Get(ctx, itemID)
	if err != nil {
		return nil, errors.New("item not found")
	}
	machine, err := s.Machines.Get(ctx, req.MachineID)
	if err != nil {
		return nil, errors.New("machine not found")
	}
	if machine.IsArchived {
		return nil, errors.New("machine is archived")
	}

	if req.Status == models.AssignmentUsing {
		if err := s.displaceCurrentItem(ctx, machine, itemID, item.Name, userID); err != nil {
			return nil, err
		}
	}

	assignments := assignment.Add(assignment.Resolve(item), req.MachineID, machine.Name, req.Status)
	history := append(item.History, models.AuditLog{
		ID:         uuid.NewString(),
		Action:     "ASSIGNED",
		EntityType: models.EntityStockItem,
		EntityID:   item.ID,
		UserID:     userID,
		Timestamp:  timeutil.Now(),
		Details: map[string]interface{}{
			"machine":    machine.Name,
			"machine_id": machine.ID,
			"status":     req.Status,
		},
	})

	if err := s.persistAssignments(ctx, item, assignments, history); err != nil {
		return nil, err
	}

	cache.InvalidateStockCaches(ctx)
	return item, nil
}

// RemoveAssignment detaches the item from the machine. When the removed
// assignment was Using, the first queued replacement is promoted.
func (s *InventoryService) RemoveAssignment(ctx context.Context, itemID, machineID, userID string) (*models.StockItem, error) {
	item, err := s.Items.Get(ctx, itemID)
	if err != nil {
		return nil, errors.New("item not found")
	}

	removed := assignment.AssignmentFor(item, machineID)
	if removed == nil {
		return nil, errors.New("item is not assigned to this machine")
	}
	machineName := removed.MachineName
	wasUsing := removed.Status == models.AssignmentUsing

	assignments := assignment.Remove(assignment.Resolve(item), machineID)
	history := append(item.History, models.AuditLog{
		ID:         uuid.NewString(),
		Action:     "UNASSIGNED",
		EntityType: models.EntityStockItem,
		EntityID:   item.ID,
		UserID:     userID,
		Timestamp:  timeutil.Now(),
		Details: map[string]interface{}{
			"machine":    machineName,
			"machine_id": machineID,
		},
	})

	if err := s.persistAssignments(ctx, item, assignments, history); err != nil {
		return nil, err
	}

	if wasUsing {
		if err := s.promoteQueueHead(ctx, machineID, machineName, userID); err != nil {
			// The removal is already committed; surface the promotion
			// failure without rolling it back.
			log.Printf("[Inventory] queue promotion failed for machine %s: %v", machineID, err)
		}
	}

	cache.InvalidateStockCaches(ctx)
	return item, nil
}

// ArchiveItem soft-deletes an item. Archived items drop out of relinking.
func (s *InventoryService) ArchiveItem(ctx context.Context, id, userID string) error {
	item, err := s.Items.Get(ctx, id)
	if err != nil {
		return errors.New("item not found")
	}

	if err := s.Items.SetArchived(ctx, id, true); err != nil {
		return err
	}

	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "ARCHIVE",
		EntityType: models.EntityStockItem,
		EntityID:   id,
		UserID:     userID,
		Details:    map[string]interface{}{"name": item.Name},
	})

	// An archived item vacates its machines; promote queues it headed
	for _, a := range assignment.Resolve(item) {
		if a.Status == models.AssignmentUsing {
			if err := s.promoteQueueHead(ctx, a.MachineID, a.MachineName, userID); err != nil {
				log.Printf("[Inventory] queue promotion failed for machine %s: %v", a.MachineID, err)
			}
		}
	}

	cache.InvalidateStockCaches(ctx)
	return nil
}

// RestoreItem brings an archived item back
func (s *InventoryService) RestoreItem(ctx context.Context, id, userID string) error {
	if err := s.Items.SetArchived(ctx, id, false); err != nil {
		return err
	}
	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "RESTORE",
		EntityType: models.EntityStockItem,
		EntityID:   id,
		UserID:     userID,
	})
	cache.InvalidateStockCaches(ctx)
	return nil
}

// ItemHistory returns an item's embedded audit trail
func (s *InventoryService) ItemHistory(ctx context.Context, id string) ([]models.AuditLog, error) {
	item, err := s.Items.Get(ctx, id)
	if err != nil {
		return nil, errors.New("item not found")
	}
	if item.History == nil {
		return []models.AuditLog{}, nil
	}
	return item.History, nil
}

// displaceCurrentItem unassigns whatever item currently holds the machine as
// Using, logging an AUTO_UNASSIGNED record against the displaced item.
func (s *InventoryService) displaceCurrentItem(ctx context.Context, machine *models.ArcadeMachine, newItemID, newItemName, userID string) error {
	all, err := s.Items.List(ctx, false)
	if err != nil {
		return err
	}

	current, _ := assignment.MachineStockItems(machine.ID, all)
	for i := range current {
		displaced := current[i]
		if displaced.ID == newItemID {
			continue
		}

		assignments := assignment.Remove(assignment.Resolve(&displaced), machine.ID)
		history := append(displaced.History,
			assignment.NewAutoUnassignLog(displaced.ID, machine.ID, machine.Name, newItemName, userID))

		if err := s.persistAssignments(ctx, &displaced, assignments, history); err != nil {
			return err
		}
		metrics.AutoUnassignsTotal.Inc()
	}
	return nil
}

func (s *InventoryService) promoteQueueHead(ctx context.Context, machineID, machineName, userID string) error {
	all, err := s.Items.List(ctx, false)
	if err != nil {
		return err
	}
	promoted, err := s.Promoter.PromoteFirstQueueItem(ctx, machineID, machineName, all, userID)
	if err != nil {
		return err
	}
	if promoted != nil {
		metrics.QueuePromotionsTotal.Inc()
		s.AuditRepo.Create(ctx, &models.AuditLog{
			Action:     models.ActionAutoPromoted,
			EntityType: models.EntityStockItem,
			EntityID:   promoted.ID,
			UserID:     userID,
			UserRole:   "system",
			Details: map[string]interface{}{
				"machine":    machineName,
				"machine_id": machineID,
			},
		})
	}
	return nil
}

// persistAssignments writes the canonical list plus its legacy projection
// in one update and mirrors the result back onto the passed item.
func (s *InventoryService) persistAssignments(ctx context.Context, item *models.StockItem, assignments []models.MachineAssignment, history []models.AuditLog) error {
	item.MachineAssignments = assignments
	legacy := assignment.LegacyProjection(item)

	patch := models.StockItemPatch{
		MachineAssignments: assignments,
		Legacy:             legacy,
		History:            history,
		UpdatedAt:          timeutil.Now(),
	}
	if err := s.Items.UpdateAssignments(ctx, item.ID, patch); err != nil {
		return err
	}

	item.AssignedMachineID = legacy.AssignedMachineID
	item.AssignedMachineName = legacy.AssignedMachineName
	item.AssignedStatus = legacy.AssignedStatus
	item.ReplacementMachines = legacy.ReplacementMachines
	item.History = history
	item.UpdatedAt = patch.UpdatedAt
	return nil
}
