package models

import "time"

// Reorder request statuses, in workflow order
const (
	ReorderSubmitted = "submitted"
	ReorderApproved  = "approved"
	ReorderOrdered   = "ordered"
	ReorderFulfilled = "fulfilled"
	ReorderReceived  = "received"
	ReorderOrganized = "organized"
	ReorderRejected  = "rejected"
)

type ReorderRequest struct {
	ID                string    `json:"id"`
	ItemID            *string   `json:"item_id,omitempty"` // nil for a brand-new item request
	ItemName          string    `json:"item_name"`
	ItemCategory      string    `json:"item_category,omitempty"`
	QuantityRequested int       `json:"quantity_requested"`
	QuantityReceived  int       `json:"quantity_received"`
	RequestedBy       string    `json:"requested_by"`
	Status            string    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateReorderRequest represents the request body for submitting a reorder
type CreateReorderRequest struct {
	ItemID            string `json:"item_id,omitempty"`
	ItemName          string `json:"item_name"`
	ItemCategory      string `json:"item_category"`
	QuantityRequested int    `json:"quantity_requested"`
	Notes             string `json:"notes"`
}

// TransitionReorderRequest moves a reorder to a new workflow status
type TransitionReorderRequest struct {
	Status           string `json:"status"`
	QuantityReceived int    `json:"quantity_received,omitempty"`
	Notes            string `json:"notes,omitempty"`
}
