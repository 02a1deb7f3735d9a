package repositories

import (
	"context"
	"encoding/json"

	"arcade-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditLogRepository struct {
	DB *pgxpool.Pool
}

func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	oldValue, err := marshalNullable(log.OldValue)
	if err != nil {
		return err
	}
	newValue, err := marshalNullable(log.NewValue)
	if err != nil {
		return err
	}
	details, err := marshalNullable(log.Details)
	if err != nil {
		return err
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO audit_logs(id, action, entity_type, entity_id, old_value, new_value, user_id, user_role, details)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		log.ID, log.Action, log.EntityType, log.EntityID,
		oldValue, newValue, log.UserID, log.UserRole, details,
	).Scan(&log.Timestamp)
}

// ListByEntity returns the audit trail for one entity, newest first
func (r *AuditLogRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, action, entity_type, entity_id, old_value, new_value, user_id, COALESCE(user_role, ''), details, created_at
		 FROM audit_logs
		 WHERE entity_type=$1 AND entity_id=$2
		 ORDER BY created_at DESC LIMIT $3`,
		entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditLogs(rows)
}

// ListRecent returns the most recent audit records across all entities
func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, action, entity_type, entity_id, old_value, new_value, user_id, COALESCE(user_role, ''), details, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditLogs(rows)
}

// ListByAction returns recent audit records with a given action code
func (r *AuditLogRepository) ListByAction(ctx context.Context, action string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, action, entity_type, entity_id, old_value, new_value, user_id, COALESCE(user_role, ''), details, created_at
		 FROM audit_logs WHERE action=$1 ORDER BY created_at DESC LIMIT $2`, action, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditLogs(rows)
}

func scanAuditLogs(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	for rows.Next() {
		var log models.AuditLog
		var oldValue, newValue, details []byte
		err := rows.Scan(&log.ID, &log.Action, &log.EntityType, &log.EntityID,
			&oldValue, &newValue, &log.UserID, &log.UserRole, &details, &log.Timestamp)
		if err != nil {
			return nil, err
		}
		if len(oldValue) > 0 {
			if err := json.Unmarshal(oldValue, &log.OldValue); err != nil {
				return nil, err
			}
		}
		if len(newValue) > 0 {
			if err := json.Unmarshal(newValue, &log.NewValue); err != nil {
				return nil, err
			}
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &log.Details); err != nil {
				return nil, err
			}
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func marshalNullable(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
