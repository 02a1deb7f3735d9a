package models

import "time"

// Snapshot entity types
const (
	SnapshotStockItem = "stockItem"
	SnapshotMachine   = "machine"
)

// Snapshot is a point-in-time copy of a stock item or machine, versioned
// per entity. The full entity JSON is kept in Data.
type Snapshot struct {
	ID         string                 `json:"id"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	EntityName string                 `json:"entity_name"`
	Version    int                    `json:"version"`
	Label      string                 `json:"label,omitempty"`
	Data       map[string]interface{} `json:"data"`
	CreatedBy  string                 `json:"created_by"`
	CreatedAt  time.Time              `json:"created_at"`
}

// SnapshotDiff is one changed field between two snapshots of the same entity.
type SnapshotDiff struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
}

// CreateSnapshotRequest represents the request body for creating a snapshot
type CreateSnapshotRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Label      string `json:"label"`
}
