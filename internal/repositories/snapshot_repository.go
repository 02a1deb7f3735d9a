package repositories

import (
	"context"
	"encoding/json"

	"arcade-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SnapshotRepository struct {
	DB *pgxpool.Pool
}

func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{DB: db}
}

// Create stores a snapshot with the next version number for its entity.
// Versions are per entity, starting at 1.
func (r *SnapshotRepository) Create(ctx context.Context, s *models.Snapshot) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	data, err := json.Marshal(s.Data)
	if err != nil {
		return err
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO snapshots(id, entity_type, entity_id, entity_name, version, label, data, created_by)
		 VALUES($1, $2, $3, $4,
		        (SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE entity_type=$2 AND entity_id=$3),
		        $5, $6, $7)
		 RETURNING version, created_at`,
		s.ID, s.EntityType, s.EntityID, s.EntityName, s.Label, data, s.CreatedBy,
	).Scan(&s.Version, &s.CreatedAt)
}

func (r *SnapshotRepository) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, entity_type, entity_id, entity_name, version, COALESCE(label, ''), data, created_by, created_at
		 FROM snapshots WHERE id=$1`, id)
	return scanSnapshot(row)
}

// GetVersion fetches a specific version of an entity's snapshot history
func (r *SnapshotRepository) GetVersion(ctx context.Context, entityType, entityID string, version int) (*models.Snapshot, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, entity_type, entity_id, entity_name, version, COALESCE(label, ''), data, created_by, created_at
		 FROM snapshots WHERE entity_type=$1 AND entity_id=$2 AND version=$3`,
		entityType, entityID, version)
	return scanSnapshot(row)
}

// ListByEntity returns an entity's snapshots, newest version first
func (r *SnapshotRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.Snapshot, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, entity_type, entity_id, entity_name, version, COALESCE(label, ''), data, created_by, created_at
		 FROM snapshots WHERE entity_type=$1 AND entity_id=$2
		 ORDER BY version DESC`, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	return snapshots, rows.Err()
}

// Delete removes a snapshot
func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM snapshots WHERE id=$1`, id)
	return err
}

func scanSnapshot(row rowScanner) (*models.Snapshot, error) {
	var s models.Snapshot
	var data []byte

	err := row.Scan(&s.ID, &s.EntityType, &s.EntityID, &s.EntityName,
		&s.Version, &s.Label, &data, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.Data); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
