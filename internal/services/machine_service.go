package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"arcade-backend/internal/assignment"
	"arcade-backend/internal/cache"
	"arcade-backend/internal/metrics"
	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"

	"github.com/google/uuid"
)

// MachineService owns the machine fleet. Slot occupancy is derived from
// stock item assignments, so every fleet read goes through a relink pass.
type MachineService struct {
	Machines  *repositories.MachineRepository
	Items     *repositories.StockItemRepository
	AuditRepo *repositories.AuditLogRepository
}

func NewMachineService(
	machines *repositories.MachineRepository,
	items *repositories.StockItemRepository,
	auditRepo *repositories.AuditLogRepository,
) *MachineService {
	return &MachineService{
		Machines:  machines,
		Items:     items,
		AuditRepo: auditRepo,
	}
}

// FleetView returns all machines with slots rebuilt from current stock item
// assignments. Results are cached until the next stock or machine write.
func (s *MachineService) FleetView(ctx context.Context) ([]models.ArcadeMachine, error) {
	if data, ok := cache.GetCached(ctx, cache.FleetViewKey); ok {
		var machines []models.ArcadeMachine
		if err := json.Unmarshal(data, &machines); err == nil {
			return machines, nil
		}
	}

	machines, err := s.relinkedFleet(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(machines); err == nil {
		cache.SetCached(ctx, cache.FleetViewKey, data, 5*time.Minute)
	}
	return machines, nil
}

// Relink rebuilds slot occupancy for the whole fleet and persists the
// result, returning the rebuilt machines.
func (s *MachineService) Relink(ctx context.Context) ([]models.ArcadeMachine, error) {
	machines, err := s.relinkedFleet(ctx)
	if err != nil {
		return nil, err
	}

	for i := range machines {
		if err := s.Machines.UpdateSlots(ctx, machines[i].ID, machines[i].Slots); err != nil {
			return nil, err
		}
	}

	metrics.RelinksTotal.Inc()
	cache.InvalidateMachineCaches(ctx)

	// Re-warm the fleet view with the result we just computed
	rebuilt := machines
	cache.PreWarmKey(cache.FleetViewKey, func(ctx context.Context) ([]byte, error) {
		return json.Marshal(rebuilt)
	}, 5*time.Minute)

	return machines, nil
}

func (s *MachineService) relinkedFleet(ctx context.Context) ([]models.ArcadeMachine, error) {
	machines, err := s.Machines.List(ctx, false)
	if err != nil {
		return nil, err
	}
	items, err := s.Items.List(ctx, false)
	if err != nil {
		return nil, err
	}
	return assignment.Relink(machines, items), nil
}

// GetMachine returns one machine with relinked slots plus the full stock
// items currently on it and queued for it.
func (s *MachineService) GetMachine(ctx context.Context, id string) (*models.ArcadeMachine, []models.StockItem, []models.StockItem, error) {
	machine, err := s.Machines.Get(ctx, id)
	if err != nil {
		return nil, nil, nil, errors.New("machine not found")
	}

	items, err := s.Items.List(ctx, false)
	if err != nil {
		return nil, nil, nil, err
	}

	relinked := assignment.Relink([]models.ArcadeMachine{*machine}, items)
	current, queue := assignment.MachineStockItems(id, items)
	return &relinked[0], current, queue, nil
}

// CreateMachine creates a machine with its slot layout
func (s *MachineService) CreateMachine(ctx context.Context, req *models.CreateMachineRequest, userID string) (*models.ArcadeMachine, error) {
	if req.Name == "" || req.Location == "" {
		return nil, errors.New("name and location are required")
	}

	slotNames := req.SlotNames
	if len(slotNames) == 0 {
		slotNames = []string{"Main"}
	}
	slots := make([]models.MachineSlot, len(slotNames))
	for i, name := range slotNames {
		slots[i] = models.MachineSlot{
			ID:            uuid.NewString(),
			Name:          name,
			Status:        "online",
			UpcomingQueue: []models.UpcomingStockItem{},
			StockLevel:    models.StockLevelEmpty,
		}
	}

	machine := &models.ArcadeMachine{
		AssetTag: req.AssetTag,
		Name:     req.Name,
		Location: req.Location,
		Group:    req.Group,
		Type:     req.Type,
		Status:   models.MachineOnline,
		Slots:    slots,
		ImageURL: req.ImageURL,
		Notes:    req.Notes,
	}

	if err := s.Machines.Create(ctx, machine); err != nil {
		return nil, err
	}

	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "CREATE",
		EntityType: models.EntityMachine,
		EntityID:   machine.ID,
		UserID:     userID,
		NewValue:   map[string]interface{}{"name": machine.Name, "location": machine.Location},
	})
	cache.InvalidateMachineCaches(ctx)
	return machine, nil
}

// UpdateMachine updates descriptive fields and status
func (s *MachineService) UpdateMachine(ctx context.Context, id string, req *models.UpdateMachineRequest, userID string) (*models.ArcadeMachine, error) {
	machine, err := s.Machines.Get(ctx, id)
	if err != nil {
		return nil, errors.New("machine not found")
	}

	old := map[string]interface{}{"name": machine.Name, "status": machine.Status}

	if req.Name != "" {
		machine.Name = req.Name
	}
	if req.Location != "" {
		machine.Location = req.Location
	}
	machine.Group = req.Group
	machine.Type = req.Type
	machine.ImageURL = req.ImageURL
	machine.Notes = req.Notes
	if req.Status != "" {
		if !validMachineStatus(req.Status) {
			return nil, errors.New("invalid machine status")
		}
		machine.Status = req.Status
	}

	if err := s.Machines.Update(ctx, machine); err != nil {
		return nil, err
	}

	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "UPDATE",
		EntityType: models.EntityMachine,
		EntityID:   machine.ID,
		UserID:     userID,
		OldValue:   old,
		NewValue:   map[string]interface{}{"name": machine.Name, "status": machine.Status},
	})
	cache.InvalidateMachineCaches(ctx)
	return machine, nil
}

// ArchiveMachine soft-deletes a machine. Item assignments to it become
// dangling and get skipped at relink time.
func (s *MachineService) ArchiveMachine(ctx context.Context, id, userID string) error {
	machine, err := s.Machines.Get(ctx, id)
	if err != nil {
		return errors.New("machine not found")
	}

	if err := s.Machines.SetArchived(ctx, id, true); err != nil {
		return err
	}

	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "ARCHIVE",
		EntityType: models.EntityMachine,
		EntityID:   id,
		UserID:     userID,
		Details:    map[string]interface{}{"name": machine.Name},
	})
	cache.InvalidateMachineCaches(ctx)
	return nil
}

// RestoreMachine brings an archived machine back
func (s *MachineService) RestoreMachine(ctx context.Context, id, userID string) error {
	if err := s.Machines.SetArchived(ctx, id, false); err != nil {
		return err
	}
	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "RESTORE",
		EntityType: models.EntityMachine,
		EntityID:   id,
		UserID:     userID,
	})
	cache.InvalidateMachineCaches(ctx)
	return nil
}

func validMachineStatus(status string) bool {
	switch status {
	case models.MachineOnline, models.MachineOffline, models.MachineMaintenance, models.MachineError:
		return true
	}
	return false
}
