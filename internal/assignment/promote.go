package assignment

import (
	"context"
	"time"

	"arcade-backend/internal/models"

	"github.com/google/uuid"
)

// StockStore is the single storage collaborator the promoter writes through.
type StockStore interface {
	Update(ctx context.Context, id string, patch models.StockItemPatch) error
}

// Promoter advances a machine's replacement queue when its current item is
// removed. It is the only part of this package with side effects: one
// storage write per promotion, nothing else.
type Promoter struct {
	Store StockStore
}

func NewPromoter(store StockStore) *Promoter {
	return &Promoter{Store: store}
}

// PromoteFirstQueueItem flips the head of the machine's replacement queue
// from Replacement to Using, appends one AUTO_PROMOTED history record and
// persists the result in a single write. Returns nil with no store call when
// the queue is empty. A storage failure propagates to the caller; the
// caller's item slice is never mutated.
func (p *Promoter) PromoteFirstQueueItem(ctx context.Context, machineID, machineName string, allItems []models.StockItem, userID string) (*models.StockItem, error) {
	_, queue := MachineStockItems(machineID, allItems)
	if len(queue) == 0 {
		return nil, nil
	}

	promoted := queue[0]
	assignments := SetStatus(Resolve(&promoted), machineID, models.AssignmentUsing)
	promoted.MachineAssignments = assignments

	logEntry := newAutoPromotionLog(promoted.ID, machineID, machineName, userID)
	history := make([]models.AuditLog, 0, len(promoted.History)+1)
	history = append(history, promoted.History...)
	history = append(history, logEntry)
	promoted.History = history

	legacy := LegacyProjection(&promoted)
	promoted.AssignedMachineID = legacy.AssignedMachineID
	promoted.AssignedMachineName = legacy.AssignedMachineName
	promoted.AssignedStatus = legacy.AssignedStatus
	promoted.ReplacementMachines = legacy.ReplacementMachines
	promoted.UpdatedAt = time.Now()

	patch := models.StockItemPatch{
		MachineAssignments: assignments,
		Legacy:             legacy,
		History:            history,
		UpdatedAt:          promoted.UpdatedAt,
	}
	if err := p.Store.Update(ctx, promoted.ID, patch); err != nil {
		return nil, err
	}

	return &promoted, nil
}

func newAutoPromotionLog(itemID, machineID, machineName, userID string) models.AuditLog {
	return models.AuditLog{
		ID:         uuid.NewString(),
		Action:     models.ActionAutoPromoted,
		EntityType: models.EntityStockItem,
		EntityID:   itemID,
		UserID:     userID,
		UserRole:   "system",
		Timestamp:  time.Now(),
		Details: map[string]interface{}{
			"machine":    machineName,
			"machine_id": machineID,
			"reason":     "Previous item removed - promoted from queue",
		},
	}
}

// NewAutoUnassignLog builds the audit record for an item displaced by a new
// Using assignment. The caller creates and persists it when a user assigns a
// new item on top of an existing one; the promoter never does this itself.
func NewAutoUnassignLog(itemID, machineID, machineName, replacedByName, userID string) models.AuditLog {
	return models.AuditLog{
		ID:         uuid.NewString(),
		Action:     models.ActionAutoUnassigned,
		EntityType: models.EntityStockItem,
		EntityID:   itemID,
		UserID:     userID,
		UserRole:   "system",
		Timestamp:  time.Now(),
		Details: map[string]interface{}{
			"machine":     machineName,
			"machine_id":  machineID,
			"replaced_by": replacedByName,
			"reason":      "New item assigned as Using",
		},
	}
}
