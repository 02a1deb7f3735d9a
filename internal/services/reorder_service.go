package services

import (
	"context"
	"errors"
	"fmt"

	"arcade-backend/internal/cache"
	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"
)

// allowedTransitions is the reorder workflow. Rejection is only possible
// before the order is placed.
var allowedTransitions = map[string][]string{
	models.ReorderSubmitted: {models.ReorderApproved, models.ReorderRejected},
	models.ReorderApproved:  {models.ReorderOrdered, models.ReorderRejected},
	models.ReorderOrdered:   {models.ReorderFulfilled},
	models.ReorderFulfilled: {models.ReorderReceived},
	models.ReorderReceived:  {models.ReorderOrganized},
	models.ReorderOrganized: {},
	models.ReorderRejected:  {},
}

// transitionRoles maps each target status to the roles allowed to set it
var transitionRoles = map[string][]string{
	models.ReorderApproved:  {models.RoleManager, models.RoleAdmin},
	models.ReorderRejected:  {models.RoleManager, models.RoleAdmin},
	models.ReorderOrdered:   {models.RoleManager, models.RoleAdmin},
	models.ReorderFulfilled: {models.RoleManager, models.RoleAdmin},
	models.ReorderReceived:  {models.RoleCrew, models.RoleTech, models.RoleManager, models.RoleAdmin},
	models.ReorderOrganized: {models.RoleCrew, models.RoleTech, models.RoleManager, models.RoleAdmin},
}

type ReorderService struct {
	Reorders  *repositories.ReorderRequestRepository
	Items     *repositories.StockItemRepository
	AuditRepo *repositories.AuditLogRepository
}

func NewReorderService(
	reorders *repositories.ReorderRequestRepository,
	items *repositories.StockItemRepository,
	auditRepo *repositories.AuditLogRepository,
) *ReorderService {
	return &ReorderService{Reorders: reorders, Items: items, AuditRepo: auditRepo}
}

// CreateReorder submits a reorder, for an existing item or a brand-new one
func (s *ReorderService) CreateReorder(ctx context.Context, req *models.CreateReorderRequest, userID string) (*models.ReorderRequest, error) {
	if req.QuantityRequested <= 0 {
		return nil, errors.New("quantity_requested must be positive")
	}

	reorder := &models.ReorderRequest{
		ItemName:          req.ItemName,
		ItemCategory:      req.ItemCategory,
		QuantityRequested: req.QuantityRequested,
		RequestedBy:       userID,
		Status:            models.ReorderSubmitted,
		Notes:             req.Notes,
	}

	if req.ItemID != "" {
		item, err := s.Items.Get(ctx, req.ItemID)
		if err != nil {
			return nil, errors.New("item not found")
		}
		reorder.ItemID = &item.ID
		reorder.ItemName = item.Name
		reorder.ItemCategory = item.Category
	} else if req.ItemName == "" {
		return nil, errors.New("item_name is required for a new item request")
	}

	if err := s.Reorders.Create(ctx, reorder); err != nil {
		return nil, err
	}
	cache.InvalidateReorderCaches(ctx)
	return reorder, nil
}

func (s *ReorderService) GetReorder(ctx context.Context, id string) (*models.ReorderRequest, error) {
	return s.Reorders.Get(ctx, id)
}

func (s *ReorderService) ListReorders(ctx context.Context, status string) ([]models.ReorderRequest, error) {
	return s.Reorders.List(ctx, status)
}

// DeleteReorder removes a request outright. Only submitted requests may be
// deleted; anything further along is part of the purchasing record.
func (s *ReorderService) DeleteReorder(ctx context.Context, id string) error {
	reorder, err := s.Reorders.Get(ctx, id)
	if err != nil {
		return errors.New("reorder request not found")
	}
	if reorder.Status != models.ReorderSubmitted {
		return fmt.Errorf("cannot delete a %s request", reorder.Status)
	}
	if err := s.Reorders.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateReorderCaches(ctx)
	return nil
}

// Transition moves a reorder to the next workflow status. Reaching
// 'received' books the received quantity into the linked item's stock.
func (s *ReorderService) Transition(ctx context.Context, id string, req *models.TransitionReorderRequest, userID, userRole string) (*models.ReorderRequest, error) {
	reorder, err := s.Reorders.Get(ctx, id)
	if err != nil {
		return nil, errors.New("reorder request not found")
	}

	if !transitionAllowed(reorder.Status, req.Status) {
		return nil, fmt.Errorf("cannot move a %s request to %s", reorder.Status, req.Status)
	}
	if !roleAllowed(req.Status, userRole) {
		return nil, fmt.Errorf("role %s cannot set status %s", userRole, req.Status)
	}

	quantityReceived := reorder.QuantityReceived
	if req.Status == models.ReorderReceived {
		quantityReceived = req.QuantityReceived
		if quantityReceived <= 0 {
			quantityReceived = reorder.QuantityRequested
		}

		if reorder.ItemID != nil {
			if err := s.bookReceivedStock(ctx, *reorder.ItemID, quantityReceived, userID); err != nil {
				return nil, err
			}
		}
	}

	if err := s.Reorders.UpdateStatus(ctx, id, req.Status, quantityReceived, req.Notes); err != nil {
		return nil, err
	}

	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "REORDER_" + req.Status,
		EntityType: models.EntityStockItem,
		EntityID:   id,
		UserID:     userID,
		Details: map[string]interface{}{
			"from":      reorder.Status,
			"to":        req.Status,
			"item_name": reorder.ItemName,
		},
	})

	reorder.Status = req.Status
	reorder.QuantityReceived = quantityReceived
	if req.Notes != "" {
		reorder.Notes = req.Notes
	}
	cache.InvalidateReorderCaches(ctx)
	return reorder, nil
}

// bookReceivedStock adds the received quantity to the item's first location
func (s *ReorderService) bookReceivedStock(ctx context.Context, itemID string, quantity int, userID string) error {
	item, err := s.Items.Get(ctx, itemID)
	if err != nil {
		return errors.New("linked item no longer exists")
	}

	if len(item.Locations) == 0 {
		item.Locations = []models.StockLocation{{Name: "Receiving"}}
	}
	item.Locations[0].Quantity += quantity

	total := 0
	for _, loc := range item.Locations {
		total += loc.Quantity
	}
	item.TotalQuantity = total

	if err := s.Items.Update(ctx, item); err != nil {
		return err
	}
	cache.InvalidateStockCaches(ctx)
	return nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func roleAllowed(status, role string) bool {
	roles, ok := transitionRoles[status]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
