package services

import (
	"testing"

	"arcade-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAssignedSummary(t *testing.T) {
	unassigned := &models.StockItem{ID: "i1"}
	assert.Equal(t, "", assignedSummary(unassigned))

	single := &models.StockItem{
		ID: "i2",
		MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentUsing},
		},
	}
	assert.Equal(t, "Claw A", assignedSummary(single))

	withQueue := &models.StockItem{
		ID: "i3",
		MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentUsing},
			{MachineID: "m2", MachineName: "Claw B", Status: models.AssignmentReplacement},
			{MachineID: "m3", MachineName: "Claw C", Status: models.AssignmentReplacement},
		},
	}
	assert.Equal(t, "Claw A (+2)", assignedSummary(withQueue))

	// Queued on two machines but not current anywhere
	queuedOnly := &models.StockItem{
		ID: "i4",
		MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentReplacement},
			{MachineID: "m2", MachineName: "Claw B", Status: models.AssignmentReplacement},
		},
	}
	assert.Equal(t, "2 queued", assignedSummary(queuedOnly))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-ten", truncate("exactly-ten", 11))
	assert.Equal(t, "a very l...", truncate("a very long item name", 11))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
