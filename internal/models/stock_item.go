package models

import "time"

// Assignment status values recorded on a stock item per machine.
const (
	AssignmentUsing       = "Using"
	AssignmentReplacement = "Replacement"
)

// Computed item-level assignment status values (derived, never stored as truth).
const (
	AssignedStatusNone        = "Not Assigned"
	AssignedStatusAssigned    = "Assigned"
	AssignedStatusReplacement = "Assigned for Replacement"
)

// MachineAssignment records that a stock item is placed on ('Using') or
// queued for ('Replacement') a machine.
type MachineAssignment struct {
	MachineID   string    `json:"machine_id"`
	MachineName string    `json:"machine_name"`
	Status      string    `json:"status"` // 'Using' or 'Replacement'
	AssignedAt  time.Time `json:"assigned_at"`
}

// MachineRef is the lightweight machine reference used by the legacy
// replacement_machines field.
type MachineRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StockLocation is a named storage location holding part of an item's quantity.
type StockLocation struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type StockItem struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Size              string          `json:"size,omitempty"`
	Brand             string          `json:"brand,omitempty"`
	ImageURL          string          `json:"image_url,omitempty"`
	Description       string          `json:"description,omitempty"`
	TotalQuantity     int             `json:"total_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Value             float64         `json:"value,omitempty"` // cost per unit
	Locations         []StockLocation `json:"locations,omitempty"`
	IsArchived        bool            `json:"is_archived"`

	// Canonical assignment list. nil means the item has never been migrated
	// and the legacy scalar fields below are the only record; a non-nil empty
	// slice is an authoritative "no assignments".
	MachineAssignments []MachineAssignment `json:"machine_assignments,omitempty"`

	// Legacy scalar fields, maintained as a write-time projection of
	// MachineAssignments for consumers that have not migrated.
	AssignedMachineID   *string      `json:"assigned_machine_id,omitempty"`
	AssignedMachineName *string      `json:"assigned_machine_name,omitempty"`
	AssignedStatus      string       `json:"assigned_status,omitempty"`
	ReplacementMachines []MachineRef `json:"replacement_machines,omitempty"`

	History   []AuditLog `json:"history,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LegacyAssignmentFields is the projection patch produced from the canonical
// assignment list and merged into storage on every assignment write.
type LegacyAssignmentFields struct {
	AssignedMachineID   *string      `json:"assigned_machine_id"`
	AssignedMachineName *string      `json:"assigned_machine_name"`
	AssignedStatus      string       `json:"assigned_status"`
	ReplacementMachines []MachineRef `json:"replacement_machines"`
}

// StockItemPatch is the partial update the queue promoter persists in a
// single write: new assignments, the legacy projection, appended history and
// the bumped timestamp.
type StockItemPatch struct {
	MachineAssignments []MachineAssignment
	Legacy             LegacyAssignmentFields
	History            []AuditLog
	UpdatedAt          time.Time
}

// CreateStockItemRequest represents the request body for creating a stock item
type CreateStockItemRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Size              string          `json:"size"`
	Brand             string          `json:"brand"`
	ImageURL          string          `json:"image_url"`
	Description       string          `json:"description"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Value             float64         `json:"value"`
	Locations         []StockLocation `json:"locations"`
}

// UpdateStockItemRequest represents the request body for updating a stock item
type UpdateStockItemRequest struct {
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Size              string          `json:"size"`
	Brand             string          `json:"brand"`
	ImageURL          string          `json:"image_url"`
	Description       string          `json:"description"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Value             float64         `json:"value"`
	Locations         []StockLocation `json:"locations"`
}

// AssignMachineRequest assigns an item to a machine as Using or Replacement
type AssignMachineRequest struct {
	MachineID   string `json:"machine_id"`
	MachineName string `json:"machine_name"`
	Status      string `json:"status"`
}

// AdjustStockRequest changes the quantity at one location
type AdjustStockRequest struct {
	LocationName   string `json:"location_name"`
	AdjustmentType string `json:"adjustment_type"` // 'add', 'remove' or 'set'
	Quantity       int    `json:"quantity"`
	Notes          string `json:"notes,omitempty"`
}
