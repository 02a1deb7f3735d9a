package models

import "time"

type SystemSetting struct {
	ID              int       `json:"id"`
	SettingKey      string    `json:"setting_key"`
	SettingValue    string    `json:"setting_value"`
	Description     string    `json:"description,omitempty"`
	UpdatedByUserID *string   `json:"updated_by_user_id,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateSettingRequest represents the request body for updating a setting
type UpdateSettingRequest struct {
	SettingValue string `json:"setting_value"`
}
