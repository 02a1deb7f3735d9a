// Package assignment derives machine slot occupancy from stock item
// assignment records. Stock items are the source of truth: machines never
// store authoritative assignment data, they only carry a projection rebuilt
// by Relink.
package assignment

import (
	"time"

	"arcade-backend/internal/models"
)

// Resolve returns the canonical assignment list for a stock item.
//
// A non-nil MachineAssignments slice (even empty) is authoritative and is
// returned de-duplicated by machine ID, first occurrence wins, order
// preserved. A nil slice means the item predates the assignment array and
// the list is synthesized from the legacy scalar fields: one entry from
// assigned_machine_id/name plus one Replacement entry per replacement
// machine, skipping machine IDs already present.
//
// Never mutates the input item.
func Resolve(item *models.StockItem) []models.MachineAssignment {
	if item.MachineAssignments != nil {
		seen := make(map[string]bool, len(item.MachineAssignments))
		out := make([]models.MachineAssignment, 0, len(item.MachineAssignments))
		for _, a := range item.MachineAssignments {
			if seen[a.MachineID] {
				continue
			}
			seen[a.MachineID] = true
			out = append(out, a)
		}
		return out
	}

	var out []models.MachineAssignment

	if item.AssignedMachineID != nil && *item.AssignedMachineID != "" &&
		item.AssignedMachineName != nil && *item.AssignedMachineName != "" {
		status := models.AssignmentUsing
		if item.AssignedStatus == models.AssignedStatusReplacement {
			status = models.AssignmentReplacement
		}
		out = append(out, models.MachineAssignment{
			MachineID:   *item.AssignedMachineID,
			MachineName: *item.AssignedMachineName,
			Status:      status,
			AssignedAt:  item.UpdatedAt,
		})
	}

	for _, rm := range item.ReplacementMachines {
		if containsMachine(out, rm.ID) {
			continue
		}
		out = append(out, models.MachineAssignment{
			MachineID:   rm.ID,
			MachineName: rm.Name,
			Status:      models.AssignmentReplacement,
			AssignedAt:  item.UpdatedAt,
		})
	}

	return out
}

func containsMachine(assignments []models.MachineAssignment, machineID string) bool {
	for _, a := range assignments {
		if a.MachineID == machineID {
			return true
		}
	}
	return false
}

// ComputedStatus derives the item-level assigned status from the canonical
// assignment list.
func ComputedStatus(item *models.StockItem) string {
	assignments := Resolve(item)
	if len(assignments) == 0 {
		return models.AssignedStatusNone
	}
	for _, a := range assignments {
		if a.Status == models.AssignmentUsing {
			return models.AssignedStatusAssigned
		}
	}
	return models.AssignedStatusReplacement
}

// PrimaryAssignment returns the Using assignment, or nil if the item has none.
func PrimaryAssignment(item *models.StockItem) *models.MachineAssignment {
	for _, a := range Resolve(item) {
		if a.Status == models.AssignmentUsing {
			a := a
			return &a
		}
	}
	return nil
}

// Replacements returns all Replacement assignments in order.
func Replacements(item *models.StockItem) []models.MachineAssignment {
	var out []models.MachineAssignment
	for _, a := range Resolve(item) {
		if a.Status == models.AssignmentReplacement {
			out = append(out, a)
		}
	}
	return out
}

// Count returns the number of canonical assignments.
func Count(item *models.StockItem) int {
	return len(Resolve(item))
}

// IsAssignedTo reports whether the item has any assignment for the machine.
func IsAssignedTo(item *models.StockItem, machineID string) bool {
	return AssignmentFor(item, machineID) != nil
}

// AssignmentFor returns the item's assignment for a machine, or nil.
func AssignmentFor(item *models.StockItem, machineID string) *models.MachineAssignment {
	for _, a := range Resolve(item) {
		if a.MachineID == machineID {
			a := a
			return &a
		}
	}
	return nil
}

// LegacyProjection computes the legacy scalar fields from the canonical
// assignment list. The primary assignment is the Using one, falling back to
// the first entry. The patch is merged into persisted storage on every
// assignment write so unmigrated readers stay consistent.
func LegacyProjection(item *models.StockItem) models.LegacyAssignmentFields {
	assignments := Resolve(item)

	var primary *models.MachineAssignment
	for i := range assignments {
		if assignments[i].Status == models.AssignmentUsing {
			primary = &assignments[i]
			break
		}
	}
	if primary == nil && len(assignments) > 0 {
		primary = &assignments[0]
	}

	fields := models.LegacyAssignmentFields{
		AssignedStatus:      ComputedStatus(item),
		ReplacementMachines: []models.MachineRef{},
	}
	if primary != nil {
		id, name := primary.MachineID, primary.MachineName
		fields.AssignedMachineID = &id
		fields.AssignedMachineName = &name
	}
	for _, a := range assignments {
		if a.Status == models.AssignmentReplacement {
			fields.ReplacementMachines = append(fields.ReplacementMachines, models.MachineRef{ID: a.MachineID, Name: a.MachineName})
		}
	}
	return fields
}

// Add returns a new assignment list with the machine added. If the machine
// is already present its status and timestamp are refreshed in place.
func Add(current []models.MachineAssignment, machineID, machineName, status string) []models.MachineAssignment {
	if containsMachine(current, machineID) {
		out := make([]models.MachineAssignment, len(current))
		for i, a := range current {
			if a.MachineID == machineID {
				a.MachineName = machineName
				a.Status = status
				a.AssignedAt = time.Now()
			}
			out[i] = a
		}
		return out
	}

	out := make([]models.MachineAssignment, 0, len(current)+1)
	out = append(out, current...)
	out = append(out, models.MachineAssignment{
		MachineID:   machineID,
		MachineName: machineName,
		Status:      status,
		AssignedAt:  time.Now(),
	})
	return out
}

// Remove returns a new assignment list without the machine.
func Remove(current []models.MachineAssignment, machineID string) []models.MachineAssignment {
	out := make([]models.MachineAssignment, 0, len(current))
	for _, a := range current {
		if a.MachineID != machineID {
			out = append(out, a)
		}
	}
	return out
}

// SetStatus returns a new assignment list with the machine's status changed.
func SetStatus(current []models.MachineAssignment, machineID, status string) []models.MachineAssignment {
	out := make([]models.MachineAssignment, len(current))
	for i, a := range current {
		if a.MachineID == machineID {
			a.Status = status
		}
		out[i] = a
	}
	return out
}
