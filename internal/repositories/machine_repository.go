package repositories

import (
	"context"
	"encoding/json"

	"arcade-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MachineRepository struct {
	DB *pgxpool.Pool
}

func NewMachineRepository(db *pgxpool.Pool) *MachineRepository {
	return &MachineRepository{DB: db}
}

const machineColumns = `
	id, asset_tag, name, location, COALESCE(machine_group, ''), COALESCE(machine_type, ''),
	status, slots, COALESCE(image_url, ''), COALESCE(notes, ''), is_archived,
	created_at, updated_at`

func (r *MachineRepository) Create(ctx context.Context, m *models.ArcadeMachine) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = models.MachineOffline
	}

	slots, err := json.Marshal(m.Slots)
	if err != nil {
		return err
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO machines(
			id, asset_tag, name, location, machine_group, machine_type,
			status, slots, image_url, notes, is_archived
		) VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		m.ID, m.AssetTag, m.Name, m.Location, m.Group, m.Type,
		m.Status, slots, m.ImageURL, m.Notes, m.IsArchived,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MachineRepository) Get(ctx context.Context, id string) (*models.ArcadeMachine, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+machineColumns+` FROM machines WHERE id=$1`, id)
	return scanMachine(row)
}

// List returns all machines; archived machines are included only when asked.
func (r *MachineRepository) List(ctx context.Context, includeArchived bool) ([]models.ArcadeMachine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines`
	if !includeArchived {
		query += ` WHERE is_archived=false`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var machines []models.ArcadeMachine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, *m)
	}
	return machines, rows.Err()
}

// Update updates a machine's descriptive fields and status
func (r *MachineRepository) Update(ctx context.Context, m *models.ArcadeMachine) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE machines SET
			name=$1, location=$2, machine_group=$3, machine_type=$4,
			status=$5, image_url=$6, notes=$7, updated_at=CURRENT_TIMESTAMP
		 WHERE id=$8`,
		m.Name, m.Location, m.Group, m.Type, m.Status, m.ImageURL, m.Notes, m.ID)
	return err
}

// UpdateSlots overwrites a machine's slot layout, used after a relink pass
func (r *MachineRepository) UpdateSlots(ctx context.Context, id string, slots []models.MachineSlot) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx,
		`UPDATE machines SET slots=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		data, id)
	return err
}

// SetArchived archives or restores a machine
func (r *MachineRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE machines SET is_archived=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		archived, id)
	return err
}

// Delete permanently removes a machine
func (r *MachineRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM machines WHERE id=$1`, id)
	return err
}

// CountByStatus returns the number of active machines per status
func (r *MachineRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT status, COUNT(*) FROM machines WHERE is_archived=false GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanMachine(row rowScanner) (*models.ArcadeMachine, error) {
	var m models.ArcadeMachine
	var slots []byte

	err := row.Scan(
		&m.ID, &m.AssetTag, &m.Name, &m.Location, &m.Group, &m.Type,
		&m.Status, &slots, &m.ImageURL, &m.Notes, &m.IsArchived,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &m.Slots); err != nil {
			return nil, err
		}
	}
	return &m, nil
}
