package models

import "time"

// Maintenance task priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Maintenance task statuses
const (
	TaskOpen       = "open"
	TaskInProgress = "in-progress"
	TaskResolved   = "resolved"
)

type MaintenanceTask struct {
	ID          string     `json:"id"`
	MachineID   string     `json:"machine_id"`
	MachineName string     `json:"machine_name,omitempty"` // denormalized for display
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// CreateMaintenanceTaskRequest represents the request body for opening a task
type CreateMaintenanceTaskRequest struct {
	MachineID   string `json:"machine_id"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assigned_to,omitempty"`
}

// UpdateMaintenanceTaskRequest represents the request body for updating a task
type UpdateMaintenanceTaskRequest struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assigned_to,omitempty"`
}
