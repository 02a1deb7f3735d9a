package services

import (
	"context"
	"errors"
	"log"

	"arcade-backend/internal/cache"
	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"
)

type SettingService struct {
	Settings  *repositories.SystemSettingRepository
	AuditRepo *repositories.AuditLogRepository
}

func NewSettingService(settings *repositories.SystemSettingRepository, auditRepo *repositories.AuditLogRepository) *SettingService {
	return &SettingService{Settings: settings, AuditRepo: auditRepo}
}

func (s *SettingService) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	return s.Settings.Get(ctx, key)
}

func (s *SettingService) List(ctx context.Context) ([]models.SystemSetting, error) {
	return s.Settings.List(ctx)
}

// Set upserts a setting and records the change
func (s *SettingService) Set(ctx context.Context, key, value, userID string) error {
	if key == "" {
		return errors.New("setting key is required")
	}

	var oldValue string
	if existing, err := s.Settings.Get(ctx, key); err == nil {
		oldValue = existing.SettingValue
	}

	if err := s.Settings.Set(ctx, key, value, userID); err != nil {
		return err
	}

	audit := &models.AuditLog{
		Action:     "SETTING_UPDATED",
		EntityType: models.EntitySettings,
		EntityID:   key,
		UserID:     userID,
		Details:    map[string]interface{}{"old_value": oldValue, "new_value": value},
	}
	if err := s.AuditRepo.Create(ctx, audit); err != nil {
		log.Printf("[Settings] Failed to record audit log for %s: %v", key, err)
	}

	cache.InvalidateSettingCaches(ctx)
	return nil
}
