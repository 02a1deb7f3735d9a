package repositories

import (
	"context"

	"arcade-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SystemSettingRepository struct {
	DB *pgxpool.Pool
}

func NewSystemSettingRepository(db *pgxpool.Pool) *SystemSettingRepository {
	return &SystemSettingRepository{DB: db}
}

func (r *SystemSettingRepository) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, setting_key, setting_value, COALESCE(description, ''), updated_by_user_id, updated_at
		 FROM system_settings WHERE setting_key=$1`, key)

	var s models.SystemSetting
	err := row.Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.Description, &s.UpdatedByUserID, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SystemSettingRepository) List(ctx context.Context) ([]models.SystemSetting, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, setting_key, setting_value, COALESCE(description, ''), updated_by_user_id, updated_at
		 FROM system_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []models.SystemSetting
	for rows.Next() {
		var s models.SystemSetting
		err := rows.Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.Description, &s.UpdatedByUserID, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Set upserts a setting value
func (r *SystemSettingRepository) Set(ctx context.Context, key, value, updatedBy string) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO system_settings(setting_key, setting_value, updated_by_user_id)
		 VALUES($1, $2, $3)
		 ON CONFLICT (setting_key) DO UPDATE
		 SET setting_value=EXCLUDED.setting_value,
		     updated_by_user_id=EXCLUDED.updated_by_user_id,
		     updated_at=CURRENT_TIMESTAMP`,
		key, value, nullableString(updatedBy))
	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
