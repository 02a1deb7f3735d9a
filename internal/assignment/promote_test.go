package assignment

import (
	"context"
	"errors"
	"testing"

	"arcade-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedUpdate struct {
	id    string
	patch models.StockItemPatch
}

type fakeStockStore struct {
	updates []recordedUpdate
	err     error
}

func (f *fakeStockStore) Update(_ context.Context, id string, patch models.StockItemPatch) error {
	f.updates = append(f.updates, recordedUpdate{id: id, patch: patch})
	return f.err
}

func queueItems() []models.StockItem {
	return []models.StockItem{
		{
			ID: "a", Name: "Plush Bear",
			MachineAssignments: []models.MachineAssignment{
				{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentReplacement},
			},
		},
		{
			ID: "b", Name: "Plush Cat",
			MachineAssignments: []models.MachineAssignment{
				{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentReplacement},
			},
		},
	}
}

func TestPromoteEmptyQueue(t *testing.T) {
	store := &fakeStockStore{}
	p := NewPromoter(store)

	items := []models.StockItem{
		{ID: "u", MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentUsing},
		}},
	}

	got, err := p.PromoteFirstQueueItem(context.Background(), "m1", "Claw A", items, "user-1")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, store.updates, "no persistence call on empty queue")
}

func TestPromoteFlipsQueueHead(t *testing.T) {
	store := &fakeStockStore{}
	p := NewPromoter(store)
	items := queueItems()

	got, err := p.PromoteFirstQueueItem(context.Background(), "m1", "Claw A", items, "user-1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)

	a := AssignmentFor(got, "m1")
	require.NotNil(t, a)
	assert.Equal(t, models.AssignmentUsing, a.Status)

	// Legacy fields follow the canonical list.
	require.NotNil(t, got.AssignedMachineID)
	assert.Equal(t, "m1", *got.AssignedMachineID)
	assert.Equal(t, models.AssignedStatusAssigned, got.AssignedStatus)

	// Second queue entry is untouched.
	assert.Equal(t, models.AssignmentReplacement, items[1].MachineAssignments[0].Status)
}

func TestPromoteAppendsSinglePromotionRecord(t *testing.T) {
	store := &fakeStockStore{}
	p := NewPromoter(store)
	items := queueItems()
	items[0].History = []models.AuditLog{{ID: "h1", Action: "UPDATE"}}

	got, err := p.PromoteFirstQueueItem(context.Background(), "m1", "Claw A", items, "user-1")

	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.History, 2)

	entry := got.History[1]
	assert.Equal(t, models.ActionAutoPromoted, entry.Action)
	assert.Equal(t, models.EntityStockItem, entry.EntityType)
	assert.Equal(t, "a", entry.EntityID)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, "system", entry.UserRole)
	assert.Equal(t, "Claw A", entry.Details["machine"])
	assert.Equal(t, "m1", entry.Details["machine_id"])
	assert.NotEmpty(t, entry.ID)

	promoted := 0
	for _, h := range got.History {
		if h.Action == models.ActionAutoPromoted {
			promoted++
		}
	}
	assert.Equal(t, 1, promoted)
}

func TestPromoteIssuesSingleWrite(t *testing.T) {
	store := &fakeStockStore{}
	p := NewPromoter(store)

	_, err := p.PromoteFirstQueueItem(context.Background(), "m1", "Claw A", queueItems(), "user-1")

	require.NoError(t, err)
	require.Len(t, store.updates, 1)
	update := store.updates[0]
	assert.Equal(t, "a", update.id)

	a := update.patch.MachineAssignments
	require.Len(t, a, 1)
	assert.Equal(t, models.AssignmentUsing, a[0].Status)
	require.Len(t, update.patch.History, 1)
	assert.Equal(t, models.ActionAutoPromoted, update.patch.History[0].Action)
	require.NotNil(t, update.patch.Legacy.AssignedMachineID)
	assert.Equal(t, "m1", *update.patch.Legacy.AssignedMachineID)
	assert.False(t, update.patch.UpdatedAt.IsZero())
}

func TestPromoteStoreErrorPropagates(t *testing.T) {
	wantErr := errors.New("write failed")
	store := &fakeStockStore{err: wantErr}
	p := NewPromoter(store)

	got, err := p.PromoteFirstQueueItem(context.Background(), "m1", "Claw A", queueItems(), "user-1")

	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, got)
}

func TestPromoteDoesNotMutateCallerItems(t *testing.T) {
	store := &fakeStockStore{}
	p := NewPromoter(store)
	items := queueItems()

	_, err := p.PromoteFirstQueueItem(context.Background(), "m1", "Claw A", items, "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.AssignmentReplacement, items[0].MachineAssignments[0].Status)
	assert.Empty(t, items[0].History)
}

func TestPromoteThenRelinkPlacesItemAsCurrent(t *testing.T) {
	store := &fakeStockStore{}
	p := NewPromoter(store)
	machines := []models.ArcadeMachine{testMachine("m1", "Claw A")}
	items := queueItems()
	items[0].TotalQuantity = 20

	got, err := p.PromoteFirstQueueItem(context.Background(), "m1", "Claw A", items, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	// Apply the promotion the way a caller would before relinking.
	items[0] = *got

	relinked := Relink(machines, items)
	slot := relinked[0].Slots[0]
	require.NotNil(t, slot.CurrentItem)
	assert.Equal(t, "a", slot.CurrentItem.ID)
	require.Len(t, slot.UpcomingQueue, 1)
	assert.Equal(t, "b", slot.UpcomingQueue[0].ItemID)
}

func TestNewAutoUnassignLog(t *testing.T) {
	entry := NewAutoUnassignLog("item-1", "m1", "Claw A", "Plush Cat", "user-9")

	assert.Equal(t, models.ActionAutoUnassigned, entry.Action)
	assert.Equal(t, models.EntityStockItem, entry.EntityType)
	assert.Equal(t, "item-1", entry.EntityID)
	assert.Equal(t, "user-9", entry.UserID)
	assert.Equal(t, "system", entry.UserRole)
	assert.Equal(t, "Claw A", entry.Details["machine"])
	assert.Equal(t, "Plush Cat", entry.Details["replaced_by"])
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
}
