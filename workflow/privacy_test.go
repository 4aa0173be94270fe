package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/priya-tailors/priyas-tailoring-api/models"
)

func TestRoleSeesCustomer(t *testing.T) {
	visible := []string{
		models.RoleAdmin,
		models.RoleSupervisor,
		models.RoleIntake,
		models.RoleBilling,
		models.RoleDelivery,
	}
	for _, role := range visible {
		assert.True(t, RoleSeesCustomer(role), "role %q should see customer details", role)
	}

	hidden := []string{
		models.RoleMaterials,
		models.RoleMarking,
		models.RoleMarkingChecker,
		models.RoleCutting,
		models.RoleCuttingChecker,
		models.RoleAariWork,
		models.RoleStitching,
		models.RoleStitchingChecker,
		models.RoleHooks,
		models.RoleIroning,
	}
	for _, role := range hidden {
		assert.False(t, RoleSeesCustomer(role), "role %q should not see customer details", role)
	}
}

func TestProjectOrderStripsPII(t *testing.T) {
	order := models.Order{
		CustomerName:    "Anita Rao",
		CustomerPhone:   "9876543210",
		CustomerAddress: "12 Gandhi Road, Chennai",
		CustomerID:      "CUST-0042",
		GarmentType:     "aari_blouse",
		Status:          models.OrderStatusInProgress,
		CurrentStage:    StageCutting,
	}

	projected := ProjectOrder(order, models.RoleCutting)
	assert.Empty(t, projected.CustomerName)
	assert.Empty(t, projected.CustomerPhone)
	assert.Empty(t, projected.CustomerAddress)
	assert.Empty(t, projected.CustomerID)

	// Workflow fields survive projection
	assert.Equal(t, "aari_blouse", projected.GarmentType)
	assert.Equal(t, StageCutting, projected.CurrentStage)

	// The input is untouched
	assert.Equal(t, "Anita Rao", order.CustomerName)
	assert.Equal(t, "9876543210", order.CustomerPhone)
}

func TestProjectOrderVisibleRolePassthrough(t *testing.T) {
	order := models.Order{CustomerName: "Anita Rao", CustomerPhone: "9876543210"}

	projected := ProjectOrder(order, models.RoleBilling)
	assert.Equal(t, order, projected)
}

func TestProjectOrderIdempotent(t *testing.T) {
	order := models.Order{
		CustomerName:  "Anita Rao",
		CustomerPhone: "9876543210",
		GarmentType:   "blouse",
	}

	once := ProjectOrder(order, models.RoleStitching)
	twice := ProjectOrder(once, models.RoleStitching)
	assert.Equal(t, once, twice)
}
