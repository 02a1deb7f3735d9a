package assignment

import (
	"testing"
	"time"

	"arcade-backend/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMachine(id, name string) models.ArcadeMachine {
	return models.ArcadeMachine{
		ID:     id,
		Name:   name,
		Status: models.MachineOnline,
		Slots: []models.MachineSlot{
			{ID: id + "-s0", Name: "Main"},
		},
	}
}

func TestRelinkBindsUsingAndQueuesReplacements(t *testing.T) {
	addedAt := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	machines := []models.ArcadeMachine{testMachine("m1", "Claw A")}
	items := []models.StockItem{
		{
			ID: "x", Name: "Plush Bear", SKU: "PB-1", TotalQuantity: 40,
			MachineAssignments: []models.MachineAssignment{
				{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentUsing},
			},
		},
		{
			ID: "y", Name: "Plush Cat", SKU: "PC-1", TotalQuantity: 15,
			MachineAssignments: []models.MachineAssignment{
				{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentReplacement, AssignedAt: addedAt},
			},
		},
	}

	got := Relink(machines, items)

	require.Len(t, got, 1)
	slot := got[0].Slots[0]
	require.NotNil(t, slot.CurrentItem)
	assert.Equal(t, "x", slot.CurrentItem.ID)
	require.Len(t, slot.UpcomingQueue, 1)
	assert.Equal(t, "y", slot.UpcomingQueue[0].ItemID)
	assert.Equal(t, "Plush Cat", slot.UpcomingQueue[0].Name)
	assert.Equal(t, addedAt, slot.UpcomingQueue[0].AddedAt)
	assert.Equal(t, models.StockLevelGood, slot.StockLevel)
}

func TestRelinkIsDeterministic(t *testing.T) {
	machines := []models.ArcadeMachine{testMachine("m1", "Claw A"), testMachine("m2", "Claw B")}
	items := []models.StockItem{
		{ID: "a", TotalQuantity: 5, MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentUsing},
			{MachineID: "m2", Status: models.AssignmentReplacement},
		}},
		{ID: "b", TotalQuantity: 30, MachineAssignments: []models.MachineAssignment{
			{MachineID: "m2", Status: models.AssignmentUsing},
		}},
	}

	first := Relink(machines, items)
	second := Relink(machines, items)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("relink not deterministic (-first +second):\n%s", diff)
	}
}

func TestRelinkSkipsArchivedItems(t *testing.T) {
	machines := []models.ArcadeMachine{testMachine("m1", "Claw A")}
	items := []models.StockItem{
		{ID: "a", IsArchived: true, MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentUsing},
		}},
	}

	got := Relink(machines, items)

	assert.Nil(t, got[0].Slots[0].CurrentItem)
	assert.Empty(t, got[0].Slots[0].UpcomingQueue)
	assert.Equal(t, models.StockLevelEmpty, got[0].Slots[0].StockLevel)
}

func TestRelinkSkipsDanglingMachineIDs(t *testing.T) {
	machines := []models.ArcadeMachine{testMachine("m1", "Claw A")}
	items := []models.StockItem{
		{ID: "a", MachineAssignments: []models.MachineAssignment{
			{MachineID: "gone", Status: models.AssignmentUsing},
		}},
	}

	got := Relink(machines, items)

	assert.Nil(t, got[0].Slots[0].CurrentItem)
}

func TestRelinkLastUsingWins(t *testing.T) {
	machines := []models.ArcadeMachine{testMachine("m1", "Claw A")}
	items := []models.StockItem{
		{ID: "a", TotalQuantity: 10, MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentUsing},
		}},
		{ID: "b", TotalQuantity: 10, MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentUsing},
		}},
	}

	got := Relink(machines, items)

	require.NotNil(t, got[0].Slots[0].CurrentItem)
	assert.Equal(t, "b", got[0].Slots[0].CurrentItem.ID)
}

func TestRelinkQueuePreservesItemOrder(t *testing.T) {
	machines := []models.ArcadeMachine{testMachine("m1", "Claw A")}
	var items []models.StockItem
	for _, id := range []string{"q1", "q2", "q3"} {
		items = append(items, models.StockItem{
			ID: id,
			MachineAssignments: []models.MachineAssignment{
				{MachineID: "m1", Status: models.AssignmentReplacement},
			},
		})
	}

	got := Relink(machines, items)

	queue := got[0].Slots[0].UpcomingQueue
	require.Len(t, queue, 3)
	assert.Equal(t, "q1", queue[0].ItemID)
	assert.Equal(t, "q2", queue[1].ItemID)
	assert.Equal(t, "q3", queue[2].ItemID)
}

func TestRelinkLegacyItemsParticipate(t *testing.T) {
	machines := []models.ArcadeMachine{testMachine("m1", "Claw A")}
	items := []models.StockItem{
		{
			ID: "legacy", TotalQuantity: 50,
			AssignedMachineID:   strPtr("m1"),
			AssignedMachineName: strPtr("Claw A"),
			AssignedStatus:      models.AssignedStatusAssigned,
		},
	}

	got := Relink(machines, items)

	require.NotNil(t, got[0].Slots[0].CurrentItem)
	assert.Equal(t, "legacy", got[0].Slots[0].CurrentItem.ID)
}

func TestSlotStockLevel(t *testing.T) {
	tests := []struct {
		name string
		item *models.StockItem
		want string
	}{
		{"empty slot", nil, models.StockLevelEmpty},
		{"zero quantity", &models.StockItem{TotalQuantity: 0}, models.StockLevelEmpty},
		{"below default threshold", &models.StockItem{TotalQuantity: 9}, models.StockLevelLow},
		{"at default threshold", &models.StockItem{TotalQuantity: 10}, models.StockLevelGood},
		{"custom threshold low", &models.StockItem{TotalQuantity: 20, LowStockThreshold: 25}, models.StockLevelLow},
		{"custom threshold good", &models.StockItem{TotalQuantity: 30, LowStockThreshold: 25}, models.StockLevelGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slotStockLevel(tt.item))
		})
	}
}

func TestRelinkDoesNotMutateInputs(t *testing.T) {
	machines := []models.ArcadeMachine{testMachine("m1", "Claw A")}
	items := []models.StockItem{
		{ID: "a", MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentUsing},
		}},
	}

	_ = Relink(machines, items)

	assert.Nil(t, machines[0].Slots[0].CurrentItem)
	assert.Nil(t, machines[0].Slots[0].UpcomingQueue)
	assert.Empty(t, machines[0].Slots[0].StockLevel)
}

func TestClearSlotAssignments(t *testing.T) {
	item := models.StockItem{ID: "a"}
	machines := []models.ArcadeMachine{
		{
			ID: "m1",
			Slots: []models.MachineSlot{
				{ID: "s0", CurrentItem: &item, UpcomingQueue: []models.UpcomingStockItem{{ItemID: "b"}}},
			},
		},
	}

	got := ClearSlotAssignments(machines)

	assert.Nil(t, got[0].Slots[0].CurrentItem)
	assert.Empty(t, got[0].Slots[0].UpcomingQueue)
	assert.NotNil(t, got[0].Slots[0].UpcomingQueue)
	require.NotNil(t, machines[0].Slots[0].CurrentItem, "input must not be mutated")
}

func TestMachineStockItems(t *testing.T) {
	items := []models.StockItem{
		{ID: "u1", MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentUsing},
		}},
		{ID: "r1", MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentReplacement},
		}},
		{ID: "other", MachineAssignments: []models.MachineAssignment{
			{MachineID: "m2", Status: models.AssignmentUsing},
		}},
		{ID: "r2", MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentReplacement},
		}},
	}

	current, queue := MachineStockItems("m1", items)

	require.Len(t, current, 1)
	assert.Equal(t, "u1", current[0].ID)
	require.Len(t, queue, 2)
	assert.Equal(t, "r1", queue[0].ID)
	assert.Equal(t, "r2", queue[1].ID)
}
