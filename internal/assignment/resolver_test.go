package assignment

import (
	"testing"
	"time"

	"arcade-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestResolveDeduplicatesByMachineID(t *testing.T) {
	item := &models.StockItem{
		ID: "item-1",
		MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentUsing},
			{MachineID: "m2", MachineName: "Claw B", Status: models.AssignmentReplacement},
			{MachineID: "m1", MachineName: "Claw A dup", Status: models.AssignmentReplacement},
		},
	}

	got := Resolve(item)

	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].MachineID)
	assert.Equal(t, "Claw A", got[0].MachineName) // first occurrence wins
	assert.Equal(t, "m2", got[1].MachineID)
}

func TestResolveExplicitEmptyIsAuthoritative(t *testing.T) {
	item := &models.StockItem{
		ID:                 "item-1",
		MachineAssignments: []models.MachineAssignment{},
		// Legacy fields present but must be ignored.
		AssignedMachineID:   strPtr("m1"),
		AssignedMachineName: strPtr("Claw A"),
		AssignedStatus:      models.AssignedStatusAssigned,
	}

	assert.Empty(t, Resolve(item))
	assert.Equal(t, models.AssignedStatusNone, ComputedStatus(item))
}

func TestResolveSynthesizesFromLegacyFields(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := &models.StockItem{
		ID:                  "item-1",
		AssignedMachineID:   strPtr("m1"),
		AssignedMachineName: strPtr("Claw A"),
		AssignedStatus:      models.AssignedStatusAssigned,
		ReplacementMachines: []models.MachineRef{
			{ID: "m2", Name: "Claw B"},
			{ID: "m1", Name: "Claw A"}, // already present, skipped
		},
		UpdatedAt: updated,
	}

	got := Resolve(item)

	require.Len(t, got, 2)
	assert.Equal(t, models.MachineAssignment{
		MachineID: "m1", MachineName: "Claw A",
		Status: models.AssignmentUsing, AssignedAt: updated,
	}, got[0])
	assert.Equal(t, models.MachineAssignment{
		MachineID: "m2", MachineName: "Claw B",
		Status: models.AssignmentReplacement, AssignedAt: updated,
	}, got[1])
}

func TestResolveMapsLegacyReplacementStatus(t *testing.T) {
	item := &models.StockItem{
		AssignedMachineID:   strPtr("m1"),
		AssignedMachineName: strPtr("Claw A"),
		AssignedStatus:      models.AssignedStatusReplacement,
	}

	got := Resolve(item)

	require.Len(t, got, 1)
	assert.Equal(t, models.AssignmentReplacement, got[0].Status)
}

func TestResolveToleratesMalformedLegacyFields(t *testing.T) {
	// ID without name yields no synthesized primary entry.
	item := &models.StockItem{AssignedMachineID: strPtr("m1")}
	assert.Empty(t, Resolve(item))

	assert.Empty(t, Resolve(&models.StockItem{}))
}

func TestResolveNeverMutatesInput(t *testing.T) {
	item := &models.StockItem{
		MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", Status: models.AssignmentUsing},
			{MachineID: "m1", Status: models.AssignmentReplacement},
		},
	}

	_ = Resolve(item)

	assert.Len(t, item.MachineAssignments, 2)
}

func TestResolveNeverReturnsDuplicateMachineIDs(t *testing.T) {
	items := []*models.StockItem{
		{MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1"}, {MachineID: "m1"}, {MachineID: "m1"},
		}},
		{
			AssignedMachineID:   strPtr("m1"),
			AssignedMachineName: strPtr("Claw A"),
			ReplacementMachines: []models.MachineRef{{ID: "m1", Name: "Claw A"}, {ID: "m2", Name: "Claw B"}},
		},
	}

	for _, item := range items {
		seen := make(map[string]bool)
		for _, a := range Resolve(item) {
			assert.False(t, seen[a.MachineID], "duplicate machine id %s", a.MachineID)
			seen[a.MachineID] = true
		}
	}
}

func TestComputedStatus(t *testing.T) {
	tests := []struct {
		name string
		item *models.StockItem
		want string
	}{
		{
			name: "no assignments",
			item: &models.StockItem{MachineAssignments: []models.MachineAssignment{}},
			want: models.AssignedStatusNone,
		},
		{
			name: "has a using assignment",
			item: &models.StockItem{MachineAssignments: []models.MachineAssignment{
				{MachineID: "m1", Status: models.AssignmentReplacement},
				{MachineID: "m2", Status: models.AssignmentUsing},
			}},
			want: models.AssignedStatusAssigned,
		},
		{
			name: "replacements only",
			item: &models.StockItem{MachineAssignments: []models.MachineAssignment{
				{MachineID: "m1", Status: models.AssignmentReplacement},
			}},
			want: models.AssignedStatusReplacement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputedStatus(tt.item))
			if tt.want == models.AssignedStatusNone {
				assert.Empty(t, Resolve(tt.item))
			} else {
				assert.NotEmpty(t, Resolve(tt.item))
			}
		})
	}
}

func TestLegacyProjectionRoundTrip(t *testing.T) {
	// Item with legacy fields only: projecting the synthesized canonical
	// list must reproduce equivalent legacy fields.
	item := &models.StockItem{
		AssignedMachineID:   strPtr("m1"),
		AssignedMachineName: strPtr("Claw A"),
		AssignedStatus:      models.AssignedStatusAssigned,
		ReplacementMachines: []models.MachineRef{{ID: "m2", Name: "Claw B"}},
	}

	fields := LegacyProjection(item)

	require.NotNil(t, fields.AssignedMachineID)
	assert.Equal(t, "m1", *fields.AssignedMachineID)
	require.NotNil(t, fields.AssignedMachineName)
	assert.Equal(t, "Claw A", *fields.AssignedMachineName)
	assert.Equal(t, models.AssignedStatusAssigned, fields.AssignedStatus)
	assert.Equal(t, []models.MachineRef{{ID: "m2", Name: "Claw B"}}, fields.ReplacementMachines)
}

func TestLegacyProjectionPrefersUsing(t *testing.T) {
	item := &models.StockItem{
		MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentReplacement},
			{MachineID: "m2", MachineName: "Claw B", Status: models.AssignmentUsing},
		},
	}

	fields := LegacyProjection(item)

	require.NotNil(t, fields.AssignedMachineID)
	assert.Equal(t, "m2", *fields.AssignedMachineID)
	assert.Equal(t, []models.MachineRef{{ID: "m1", Name: "Claw A"}}, fields.ReplacementMachines)
}

func TestLegacyProjectionFallsBackToFirst(t *testing.T) {
	item := &models.StockItem{
		MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentReplacement},
		},
	}

	fields := LegacyProjection(item)

	require.NotNil(t, fields.AssignedMachineID)
	assert.Equal(t, "m1", *fields.AssignedMachineID)
	assert.Equal(t, models.AssignedStatusReplacement, fields.AssignedStatus)
}

func TestLegacyProjectionEmpty(t *testing.T) {
	fields := LegacyProjection(&models.StockItem{MachineAssignments: []models.MachineAssignment{}})

	assert.Nil(t, fields.AssignedMachineID)
	assert.Nil(t, fields.AssignedMachineName)
	assert.Equal(t, models.AssignedStatusNone, fields.AssignedStatus)
	assert.Empty(t, fields.ReplacementMachines)
}

func TestAccessors(t *testing.T) {
	item := &models.StockItem{
		MachineAssignments: []models.MachineAssignment{
			{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentReplacement},
			{MachineID: "m2", MachineName: "Claw B", Status: models.AssignmentUsing},
			{MachineID: "m3", MachineName: "Claw C", Status: models.AssignmentReplacement},
		},
	}

	primary := PrimaryAssignment(item)
	require.NotNil(t, primary)
	assert.Equal(t, "m2", primary.MachineID)

	assert.Len(t, Replacements(item), 2)
	assert.Equal(t, 3, Count(item))
	assert.True(t, IsAssignedTo(item, "m3"))
	assert.False(t, IsAssignedTo(item, "m4"))

	a := AssignmentFor(item, "m1")
	require.NotNil(t, a)
	assert.Equal(t, models.AssignmentReplacement, a.Status)
	assert.Nil(t, AssignmentFor(item, "m4"))
}

func TestAddAppendsWithFreshTimestamp(t *testing.T) {
	current := []models.MachineAssignment{
		{MachineID: "m1", MachineName: "Claw A", Status: models.AssignmentUsing},
	}

	got := Add(current, "m2", "Claw B", models.AssignmentReplacement)

	require.Len(t, got, 2)
	assert.Equal(t, "m2", got[1].MachineID)
	assert.Equal(t, models.AssignmentReplacement, got[1].Status)
	assert.WithinDuration(t, time.Now(), got[1].AssignedAt, time.Second)
	assert.Len(t, current, 1, "input slice must not grow")
}

func TestAddUpdatesExistingInPlace(t *testing.T) {
	stale := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	current := []models.MachineAssignment{
		{MachineID: "m1", MachineName: "Old Name", Status: models.AssignmentReplacement, AssignedAt: stale},
	}

	got := Add(current, "m1", "New Name", models.AssignmentUsing)

	require.Len(t, got, 1)
	assert.Equal(t, "New Name", got[0].MachineName)
	assert.Equal(t, models.AssignmentUsing, got[0].Status)
	assert.True(t, got[0].AssignedAt.After(stale))
	assert.Equal(t, models.AssignmentReplacement, current[0].Status, "input must not be mutated")
}

func TestRemove(t *testing.T) {
	current := []models.MachineAssignment{
		{MachineID: "m1"}, {MachineID: "m2"},
	}

	got := Remove(current, "m1")

	require.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].MachineID)
	assert.Len(t, Remove(current, "m9"), 2)
}

func TestSetStatus(t *testing.T) {
	current := []models.MachineAssignment{
		{MachineID: "m1", Status: models.AssignmentReplacement},
		{MachineID: "m2", Status: models.AssignmentReplacement},
	}

	got := SetStatus(current, "m1", models.AssignmentUsing)

	assert.Equal(t, models.AssignmentUsing, got[0].Status)
	assert.Equal(t, models.AssignmentReplacement, got[1].Status)
	assert.Equal(t, models.AssignmentReplacement, current[0].Status, "input must not be mutated")
}
