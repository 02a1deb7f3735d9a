package assignment

// Relink is a full rebuild, not an incremental patch: slot occupancy is
// recomputed from scratch on every call so the machine list can never drift
// from the stock item data. Keeping the two collections incrementally
// consistent would need transactional updates the storage layer does not
// offer.

import "arcade-backend/internal/models"

const defaultLowStockThreshold = 10

// Relink rebuilds every machine's slot occupancy from the full stock item
// set and returns a new machine list. Inputs are never mutated.
//
// Archived items are skipped. Assignments referencing unknown machine IDs
// are skipped. Assignments bind to the machine's first slot; when two items
// both claim Using on the same machine, the later one in iteration order
// wins. Replacement assignments append to the slot queue in iteration order.
func Relink(machines []models.ArcadeMachine, items []models.StockItem) []models.ArcadeMachine {
	updated := ClearSlotAssignments(machines)

	byID := make(map[string]*models.ArcadeMachine, len(updated))
	for i := range updated {
		byID[updated[i].ID] = &updated[i]
	}

	for i := range items {
		item := items[i]
		if item.IsArchived {
			continue
		}

		for _, a := range Resolve(&item) {
			machine, ok := byID[a.MachineID]
			if !ok || len(machine.Slots) == 0 {
				continue
			}

			// Assignments carry no slot reference, so everything binds to
			// the first slot.
			slot := &machine.Slots[0]

			switch a.Status {
			case models.AssignmentUsing:
				current := item
				slot.CurrentItem = &current
			case models.AssignmentReplacement:
				slot.UpcomingQueue = append(slot.UpcomingQueue, models.UpcomingStockItem{
					ItemID:   item.ID,
					Name:     item.Name,
					SKU:      item.SKU,
					ImageURL: item.ImageURL,
					AddedBy:  "system",
					AddedAt:  a.AssignedAt,
				})
			}
		}
	}

	for i := range updated {
		for j := range updated[i].Slots {
			slot := &updated[i].Slots[j]
			slot.StockLevel = slotStockLevel(slot.CurrentItem)
		}
	}

	return updated
}

func slotStockLevel(item *models.StockItem) string {
	if item == nil || item.TotalQuantity == 0 {
		return models.StockLevelEmpty
	}
	threshold := item.LowStockThreshold
	if threshold == 0 {
		threshold = defaultLowStockThreshold
	}
	if item.TotalQuantity < threshold {
		return models.StockLevelLow
	}
	return models.StockLevelGood
}

// ClearSlotAssignments returns a copy of the machines with every slot's
// current item and upcoming queue reset, without consulting stock items.
func ClearSlotAssignments(machines []models.ArcadeMachine) []models.ArcadeMachine {
	out := make([]models.ArcadeMachine, len(machines))
	for i, m := range machines {
		slots := make([]models.MachineSlot, len(m.Slots))
		for j, s := range m.Slots {
			s.CurrentItem = nil
			s.UpcomingQueue = []models.UpcomingStockItem{}
			slots[j] = s
		}
		m.Slots = slots
		out[i] = m
	}
	return out
}

// MachineStockItems splits the stock items assigned to a machine into the
// current (Using) items and the queued (Replacement) items, preserving
// iteration order.
func MachineStockItems(machineID string, items []models.StockItem) (current, queue []models.StockItem) {
	for i := range items {
		a := AssignmentFor(&items[i], machineID)
		if a == nil {
			continue
		}
		switch a.Status {
		case models.AssignmentUsing:
			current = append(current, items[i])
		case models.AssignmentReplacement:
			queue = append(queue, items[i])
		}
	}
	return current, queue
}
