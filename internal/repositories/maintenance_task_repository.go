package repositories

import (
	"context"

	"arcade-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MaintenanceTaskRepository struct {
	DB *pgxpool.Pool
}

func NewMaintenanceTaskRepository(db *pgxpool.Pool) *MaintenanceTaskRepository {
	return &MaintenanceTaskRepository{DB: db}
}

func (r *MaintenanceTaskRepository) Create(ctx context.Context, t *models.MaintenanceTask) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TaskOpen
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO maintenance_tasks(id, machine_id, description, priority, status, assigned_to, created_by)
		 VALUES($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		t.ID, t.MachineID, t.Description, t.Priority, t.Status, t.AssignedTo, t.CreatedBy,
	).Scan(&t.CreatedAt)
}

func (r *MaintenanceTaskRepository) Get(ctx context.Context, id string) (*models.MaintenanceTask, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT t.id, t.machine_id, m.name, t.description, t.priority, t.status,
		        t.assigned_to, t.created_by, t.created_at, t.resolved_at
		 FROM maintenance_tasks t
		 JOIN machines m ON t.machine_id = m.id
		 WHERE t.id=$1`, id)

	var t models.MaintenanceTask
	err := row.Scan(&t.ID, &t.MachineID, &t.MachineName, &t.Description, &t.Priority,
		&t.Status, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tasks, optionally filtered by status and/or machine
func (r *MaintenanceTaskRepository) List(ctx context.Context, status, machineID string) ([]models.MaintenanceTask, error) {
	query := `
		SELECT t.id, t.machine_id, m.name, t.description, t.priority, t.status,
		       t.assigned_to, t.created_by, t.created_at, t.resolved_at
		FROM maintenance_tasks t
		JOIN machines m ON t.machine_id = m.id
		WHERE 1=1`
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += ` AND t.status=$1`
	}
	if machineID != "" {
		args = append(args, machineID)
		if len(args) == 1 {
			query += ` AND t.machine_id=$1`
		} else {
			query += ` AND t.machine_id=$2`
		}
	}
	query += `
		ORDER BY CASE t.priority
			WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3
		END, t.created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.MaintenanceTask
	for rows.Next() {
		var t models.MaintenanceTask
		err := rows.Scan(&t.ID, &t.MachineID, &t.MachineName, &t.Description, &t.Priority,
			&t.Status, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.ResolvedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update updates a task; resolved_at is set when the task moves to resolved
func (r *MaintenanceTaskRepository) Update(ctx context.Context, t *models.MaintenanceTask) error {
	if t.Status == models.TaskResolved {
		_, err := r.DB.Exec(ctx,
			`UPDATE maintenance_tasks SET description=$1, priority=$2, status=$3, assigned_to=$4,
			 resolved_at=COALESCE(resolved_at, CURRENT_TIMESTAMP)
			 WHERE id=$5`,
			t.Description, t.Priority, t.Status, t.AssignedTo, t.ID)
		return err
	}
	_, err := r.DB.Exec(ctx,
		`UPDATE maintenance_tasks SET description=$1, priority=$2, status=$3, assigned_to=$4, resolved_at=NULL
		 WHERE id=$5`,
		t.Description, t.Priority, t.Status, t.AssignedTo, t.ID)
	return err
}

// Delete removes a task
func (r *MaintenanceTaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM maintenance_tasks WHERE id=$1`, id)
	return err
}

// CountOpenByMachine returns the number of unresolved tasks per machine
func (r *MaintenanceTaskRepository) CountOpenByMachine(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT machine_id, COUNT(*) FROM maintenance_tasks
		 WHERE status != 'resolved' GROUP BY machine_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var machineID string
		var count int
		if err := rows.Scan(&machineID, &count); err != nil {
			return nil, err
		}
		counts[machineID] = count
	}
	return counts, rows.Err()
}
