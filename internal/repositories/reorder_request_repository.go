package repositories

import (
	"context"

	"arcade-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReorderRequestRepository struct {
	DB *pgxpool.Pool
}

func NewReorderRequestRepository(db *pgxpool.Pool) *ReorderRequestRepository {
	return &ReorderRequestRepository{DB: db}
}

func (r *ReorderRequestRepository) Create(ctx context.Context, req *models.ReorderRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.ReorderSubmitted
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO reorder_requests(id, item_id, item_name, item_category, quantity_requested, requested_by, status, notes)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		req.ID, req.ItemID, req.ItemName, req.ItemCategory, req.QuantityRequested,
		req.RequestedBy, req.Status, req.Notes,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *ReorderRequestRepository) Get(ctx context.Context, id string) (*models.ReorderRequest, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, item_id, item_name, COALESCE(item_category, ''), quantity_requested,
		        quantity_received, requested_by, status, COALESCE(notes, ''), created_at, updated_at
		 FROM reorder_requests WHERE id=$1`, id)

	var req models.ReorderRequest
	err := row.Scan(&req.ID, &req.ItemID, &req.ItemName, &req.ItemCategory,
		&req.QuantityRequested, &req.QuantityReceived, &req.RequestedBy,
		&req.Status, &req.Notes, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns reorder requests, optionally filtered by status
func (r *ReorderRequestRepository) List(ctx context.Context, status string) ([]models.ReorderRequest, error) {
	query := `
		SELECT id, item_id, item_name, COALESCE(item_category, ''), quantity_requested,
		       quantity_received, requested_by, status, COALESCE(notes, ''), created_at, updated_at
		FROM reorder_requests`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.ReorderRequest
	for rows.Next() {
		var req models.ReorderRequest
		err := rows.Scan(&req.ID, &req.ItemID, &req.ItemName, &req.ItemCategory,
			&req.QuantityRequested, &req.QuantityReceived, &req.RequestedBy,
			&req.Status, &req.Notes, &req.CreatedAt, &req.UpdatedAt)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// UpdateStatus moves a request to a new workflow status
func (r *ReorderRequestRepository) UpdateStatus(ctx context.Context, id, status string, quantityReceived int, notes string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE reorder_requests SET status=$1, quantity_received=$2,
		 notes=CASE WHEN $3 != '' THEN $3 ELSE notes END, updated_at=CURRENT_TIMESTAMP
		 WHERE id=$4`,
		status, quantityReceived, notes, id)
	return err
}

// Delete removes a request
func (r *ReorderRequestRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM reorder_requests WHERE id=$1`, id)
	return err
}

// CountByStatus returns the number of requests in each workflow status
func (r *ReorderRequestRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT status, COUNT(*) FROM reorder_requests GROUP BY status`)
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
