package models

import "time"

// TOTPSetupResponse is returned when a user starts 2FA enrollment
type TOTPSetupResponse struct {
	Secret      string `json:"secret"`
	QRCode      string `json:"qr_code"` // data URI PNG
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
}

// BackupCodesResponse carries freshly generated backup codes. Shown once,
// only hashes are stored.
type BackupCodesResponse struct {
	Codes []string `json:"codes"`
}

// User2FAStatus reports a user's 2FA enrollment state
type User2FAStatus struct {
	Enabled        bool       `json:"enabled"`
	EnabledAt      *time.Time `json:"enabled_at,omitempty"`
	HasBackupCodes bool       `json:"has_backup_codes"`
}

// TOTPLoginRequest finishes a login that was answered with totp_required
type TOTPLoginRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

// VerifyTOTPRequest represents the request body for TOTP verification
type VerifyTOTPRequest struct {
	Code string `json:"code"`
}

// DisableTOTPRequest represents the request body for disabling 2FA
type DisableTOTPRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}
