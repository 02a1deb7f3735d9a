package models

import "time"

// Audit action codes produced by the assignment reconciliation logic.
// Handlers and services log other free-form action strings as well
// (e.g. "CREATE", "UPDATE", "ARCHIVE").
const (
	ActionAutoPromoted   = "AUTO_PROMOTED"
	ActionAutoUnassigned = "AUTO_UNASSIGNED"
)

// Audit entity types
const (
	EntityStockItem = "StockItem"
	EntityMachine   = "Machine"
	EntitySettings  = "Settings"
	EntityUser      = "User"
)

type AuditLog struct {
	ID         string                 `json:"id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	OldValue   map[string]interface{} `json:"old_value,omitempty"`
	NewValue   map[string]interface{} `json:"new_value,omitempty"`
	UserID     string                 `json:"user_id"`
	UserRole   string                 `json:"user_role,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Details    map[string]interface{} `json:"details,omitempty"`
}
