package repositories

import (
	"context"
	"encoding/json"

	"arcade-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StockItemRepository struct {
	DB *pgxpool.Pool
}

func NewStockItemRepository(db *pgxpool.Pool) *StockItemRepository {
	return &StockItemRepository{DB: db}
}

const stockItemColumns = `
	id, sku, name, category, COALESCE(size, ''), COALESCE(brand, ''),
	COALESCE(image_url, ''), COALESCE(description, ''),
	total_quantity, low_stock_threshold, COALESCE(value, 0),
	locations, is_archived,
	machine_assignments, assigned_machine_id, assigned_machine_name,
	COALESCE(assigned_status, ''), replacement_machines, history,
	created_at, updated_at`

func (r *StockItemRepository) Create(ctx context.Context, item *models.StockItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	locations, err := json.Marshal(item.Locations)
	if err != nil {
		return err
	}
	assignments, err := marshalAssignments(item.MachineAssignments)
	if err != nil {
		return err
	}
	replacements, err := json.Marshal(item.ReplacementMachines)
	if err != nil {
		return err
	}
	history, err := json.Marshal(item.History)
	if err != nil {
		return err
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO stock_items(
			id, sku, name, category, size, brand, image_url, description,
			total_quantity, low_stock_threshold, value, locations, is_archived,
			machine_assignments, assigned_machine_id, assigned_machine_name,
			assigned_status, replacement_machines, history
		) VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at`,
		item.ID, item.SKU, item.Name, item.Category, item.Size, item.Brand,
		item.ImageURL, item.Description, item.TotalQuantity, item.LowStockThreshold,
		item.Value, locations, item.IsArchived,
		assignments, item.AssignedMachineID, item.AssignedMachineName,
		item.AssignedStatus, replacements, history,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
}

func (r *StockItemRepository) Get(ctx context.Context, id string) (*models.StockItem, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+stockItemColumns+` FROM stock_items WHERE id=$1`, id)
	return scanStockItem(row)
}

func (r *StockItemRepository) GetBySKU(ctx context.Context, sku string) (*models.StockItem, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+stockItemColumns+` FROM stock_items WHERE sku=$1`, sku)
	return scanStockItem(row)
}

// List returns all stock items; archived items are included only when asked.
func (r *StockItemRepository) List(ctx context.Context, includeArchived bool) ([]models.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items`
	if !includeArchived {
		query += ` WHERE is_archived=false`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Update updates the descriptive fields of a stock item
func (r *StockItemRepository) Update(ctx context.Context, item *models.StockItem) error {
	locations, err := json.Marshal(item.Locations)
	if err != nil {
		return err
	}
	history, err := json.Marshal(item.History)
	if err != nil {
		return err
	}

	_, err = r.DB.Exec(ctx,
		`UPDATE stock_items SET
			name=$1, category=$2, size=$3, brand=$4, image_url=$5, description=$6,
			total_quantity=$7, low_stock_threshold=$8, value=$9, locations=$10,
			history=$11, updated_at=CURRENT_TIMESTAMP
		 WHERE id=$12`,
		item.Name, item.Category, item.Size, item.Brand, item.ImageURL,
		item.Description, item.TotalQuantity, item.LowStockThreshold, item.Value,
		locations, history, item.ID)
	return err
}

// UpdateAssignments persists an assignment reconciliation result in one
// write: the canonical list, its legacy projection and the appended history.
func (r *StockItemRepository) UpdateAssignments(ctx context.Context, id string, patch models.StockItemPatch) error {
	assignments, err := marshalAssignments(patch.MachineAssignments)
	if err != nil {
		return err
	}
	replacements, err := json.Marshal(patch.Legacy.ReplacementMachines)
	if err != nil {
		return err
	}
	history, err := json.Marshal(patch.History)
	if err != nil {
		return err
	}

	_, err = r.DB.Exec(ctx,
		`UPDATE stock_items SET
			machine_assignments=$1, assigned_machine_id=$2, assigned_machine_name=$3,
			assigned_status=$4, replacement_machines=$5, history=$6, updated_at=$7
		 WHERE id=$8`,
		assignments, patch.Legacy.AssignedMachineID, patch.Legacy.AssignedMachineName,
		patch.Legacy.AssignedStatus, replacements, history, patch.UpdatedAt, id)
	return err
}

// SetArchived archives or restores an item
func (r *StockItemRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE stock_items SET is_archived=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		archived, id)
	return err
}

// Delete permanently removes an item
func (r *StockItemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM stock_items WHERE id=$1`, id)
	return err
}

// CountLowStock returns the number of active items at or below their threshold
func (r *StockItemRepository) CountLowStock(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_items
		 WHERE is_archived=false AND total_quantity <= low_stock_threshold`).Scan(&count)
	return count, err
}

// marshalAssignments keeps the nil/empty distinction on disk: a nil list
// stores SQL NULL (item never migrated), an empty list stores '[]'
// (authoritative no assignments).
func marshalAssignments(assignments []models.MachineAssignment) ([]byte, error) {
	if assignments == nil {
		return nil, nil
	}
	return json.Marshal(assignments)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStockItem(row rowScanner) (*models.StockItem, error) {
	var item models.StockItem
	var locations, assignments, replacements, history []byte

	err := row.Scan(
		&item.ID, &item.SKU, &item.Name, &item.Category, &item.Size, &item.Brand,
		&item.ImageURL, &item.Description,
		&item.TotalQuantity, &item.LowStockThreshold, &item.Value,
		&locations, &item.IsArchived,
		&assignments, &item.AssignedMachineID, &item.AssignedMachineName,
		&item.AssignedStatus, &replacements, &history,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(locations) > 0 {
		if err := json.Unmarshal(locations, &item.Locations); err != nil {
			return nil, err
		}
	}
	// NULL stays nil so the resolver falls back to the legacy fields.
	if assignments != nil {
		item.MachineAssignments = []models.MachineAssignment{}
		if err := json.Unmarshal(assignments, &item.MachineAssignments); err != nil {
			return nil, err
		}
	}
	if len(replacements) > 0 {
		if err := json.Unmarshal(replacements, &item.ReplacementMachines); err != nil {
			return nil, err
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &item.History); err != nil {
			return nil, err
		}
	}
	return &item, nil
}
