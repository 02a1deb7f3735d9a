package services

import (
	"testing"

	"arcade-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.ReorderSubmitted, models.ReorderApproved, true},
		{models.ReorderSubmitted, models.ReorderRejected, true},
		{models.ReorderSubmitted, models.ReorderOrdered, false},
		{models.ReorderApproved, models.ReorderOrdered, true},
		{models.ReorderApproved, models.ReorderRejected, true},
		{models.ReorderOrdered, models.ReorderFulfilled, true},
		{models.ReorderOrdered, models.ReorderRejected, false},
		{models.ReorderFulfilled, models.ReorderReceived, true},
		{models.ReorderReceived, models.ReorderOrganized, true},
		{models.ReorderOrganized, models.ReorderReceived, false},
		{models.ReorderRejected, models.ReorderSubmitted, false},
		// going backwards is never allowed
		{models.ReorderReceived, models.ReorderFulfilled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, transitionAllowed(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestRoleAllowed(t *testing.T) {
	// Approval and ordering are management decisions
	assert.True(t, roleAllowed(models.ReorderApproved, models.RoleManager))
	assert.True(t, roleAllowed(models.ReorderApproved, models.RoleAdmin))
	assert.False(t, roleAllowed(models.ReorderApproved, models.RoleCrew))
	assert.False(t, roleAllowed(models.ReorderOrdered, models.RoleTech))

	// Anyone on the floor can book deliveries in
	assert.True(t, roleAllowed(models.ReorderReceived, models.RoleCrew))
	assert.True(t, roleAllowed(models.ReorderOrganized, models.RoleTech))

	// Unknown target status allows nobody
	assert.False(t, roleAllowed("shipped", models.RoleAdmin))
}
