package models

import "time"

// Machine status values
const (
	MachineOnline      = "Online"
	MachineOffline     = "Offline"
	MachineMaintenance = "Maintenance"
	MachineError       = "Error"
)

// Slot stock level labels, recomputed on every relink
const (
	StockLevelEmpty = "Empty"
	StockLevelLow   = "Low"
	StockLevelGood  = "Good"
)

// UpcomingStockItem is a lightweight queue entry in a slot's replacement queue.
type UpcomingStockItem struct {
	ItemID   string    `json:"item_id"`
	Name     string    `json:"name"`
	SKU      string    `json:"sku,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	AddedBy  string    `json:"added_by"`
	AddedAt  time.Time `json:"added_at"`
}

// MachineSlot is a sub-position of a machine holding at most one current item
// and an ordered queue of upcoming replacements. CurrentItem and UpcomingQueue
// are derived from stock item assignments and rebuilt by relinking; they are
// never edited directly.
type MachineSlot struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"` // e.g. "Claw 1"
	GameType      string              `json:"game_type,omitempty"`
	Status        string              `json:"status"` // 'online', 'offline', 'error'
	CurrentItem   *StockItem          `json:"current_item"`
	UpcomingQueue []UpcomingStockItem `json:"upcoming_queue"`
	StockLevel    string              `json:"stock_level"`
}

type ArcadeMachine struct {
	ID         string        `json:"id"`
	AssetTag   string        `json:"asset_tag"`
	Name       string        `json:"name"`
	Location   string        `json:"location"`
	Group      string        `json:"group,omitempty"` // e.g. "Cranes"
	Type       string        `json:"type,omitempty"`  // e.g. "Trend Catcher"
	Status     string        `json:"status"`
	Slots      []MachineSlot `json:"slots"`
	ImageURL   string        `json:"image_url,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	IsArchived bool          `json:"is_archived"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// CreateMachineRequest represents the request body for creating a machine
type CreateMachineRequest struct {
	AssetTag  string   `json:"asset_tag"`
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Group     string   `json:"group"`
	Type      string   `json:"type"`
	ImageURL  string   `json:"image_url"`
	Notes     string   `json:"notes"`
	SlotNames []string `json:"slot_names"` // defaults to one slot when empty
}

// UpdateMachineRequest represents the request body for updating a machine
type UpdateMachineRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Group    string `json:"group"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	ImageURL string `json:"image_url"`
	Notes    string `json:"notes"`
}
