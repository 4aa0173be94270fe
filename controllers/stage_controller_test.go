package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/workflow"
)

func setupControllerTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Order{},
		&models.OrderItem{},
		&models.TimelineEntry{},
		&models.StaffWorkLog{},
		&models.AssignmentAuditLog{},
		&models.StageTemplate{},
		&models.CuttingTask{},
		&models.StageDefaults{},
		&models.OTPRequest{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)
	return db
}

// authAs stands in for EnsureValidToken + ResolveStaff in handler tests
func authAs(staff models.Staff, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("staff", staff)
		c.Set("effective_role", role)
		c.Next()
	}
}

func newStageTestRouter(staff models.Staff, role string) *gin.Engine {
	router := gin.New()
	authed := router.Group("/api/v1", authAs(staff, role))
	authed.POST("/orders", CreateOrder)
	authed.GET("/orders/:id", GetOrder)
	authed.GET("/orders", ListOrders)
	authed.GET("/orders/:id/timeline", GetOrderTimeline)
	authed.POST("/orders/:id/deliver", MarkOrderDelivered)
	authed.POST("/orders/:id/items", AddOrderItem)
	authed.POST("/orders/:id/stages/complete", CompleteOrderStage)
	authed.POST("/orders/:id/items/:itemIndex/stages/complete", CompleteItemStage)
	authed.POST("/orders/:id/items/:itemIndex/stages/reject", RejectItemStage)
	return router
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func seedOrder(t *testing.T, db *gorm.DB, currentStage string, activeStages []string) *models.Order {
	t.Helper()

	order := models.Order{
		CustomerName:  "Anita Rao",
		CustomerPhone: "9876543210",
		GarmentType:   "blouse",
		Status:        models.OrderStatusInProgress,
		CurrentStage:  currentStage,
		ActiveStages:  datatypes.NewJSONSlice(activeStages),
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func seedStaff(t *testing.T, db *gorm.DB, name, role string) models.Staff {
	t.Helper()

	staff := models.Staff{Auth0ID: "auth0|" + name, Name: name, Email: name + "@priyas.example", Role: role}
	require.NoError(t, db.Create(&staff).Error)
	return staff
}

func TestCompleteOrderStageEndpoint(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Lakshmi", models.RoleMaterials)
	order := seedOrder(t, db, workflow.StageMaterials,
		[]string{workflow.StageIntake, workflow.StageMaterials, workflow.StageCutting, workflow.StageBilling})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/stages/complete", gin.H{"action": "complete"})

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, true, response["success"])

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, workflow.StageCutting, stored.CurrentStage)
}

func TestCompleteOrderStageForbiddenRole(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Raju", models.RoleCutting)
	seedOrder(t, db, workflow.StageMaterials, []string{workflow.StageMaterials, workflow.StageBilling})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/stages/complete", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, false, response["success"])
}

func TestCompleteOrderStageSupervisorMayWorkAnyStage(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Priya", models.RoleSupervisor)
	seedOrder(t, db, workflow.StageMaterials, []string{workflow.StageMaterials, workflow.StageBilling})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/stages/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCompleteOrderStageUnknownStageEndpoint(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Priya", models.RoleAdmin)
	seedOrder(t, db, "embroidery", []string{workflow.StageIntake, workflow.StageBilling})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/stages/complete", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeResponse(t, w)
	errorInfo := response["error"].(map[string]interface{})
	assert.Equal(t, "UNKNOWN_STAGE", errorInfo["code"])
}

func TestCompleteOrderStageNoNextStageEndpoint(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Priya", models.RoleAdmin)
	seedOrder(t, db, workflow.StageIroning, []string{workflow.StageIntake, workflow.StageMaterials})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/stages/complete", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	response := decodeResponse(t, w)
	errorInfo := response["error"].(map[string]interface{})
	assert.Equal(t, "NO_NEXT_STAGE", errorInfo["code"])
}

func TestCompleteOrderStageNotFound(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Priya", models.RoleAdmin)
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/42/stages/complete", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteOrderStagePersistsMaterials(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Lakshmi", models.RoleMaterials)
	order := seedOrder(t, db, workflow.StageMaterials,
		[]string{workflow.StageMaterials, workflow.StageBilling})
	router := newStageTestRouter(staff, staff.Role)

	body := gin.H{
		"materials": gin.H{
			"items":      []gin.H{{"name": "silk", "quantity": 2, "unit": "m", "cost": 800}},
			"total_cost": 800,
		},
	}
	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/stages/complete", body)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	materials := stored.Materials.Data()
	assert.Equal(t, 800.0, materials.TotalCost)
	assert.Equal(t, staff.ID, materials.CompletedBy)
	assert.Equal(t, workflow.StageBilling, stored.CurrentStage)
}

func TestCompleteOrderStageInstantiatesTasksOnEntry(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Priya", models.RoleSupervisor)
	require.NoError(t, db.Create(&models.StageTemplate{
		GarmentType: "blouse",
		Stage:       workflow.StageMarking,
		TaskName:    "neck outline",
		TaskOrder:   1,
		IsMandatory: true,
	}).Error)
	order := seedOrder(t, db, workflow.StageMaterials,
		[]string{workflow.StageMaterials, workflow.StageMarking, workflow.StageBilling})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/stages/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, workflow.StageMarking, stored.CurrentStage)
	assert.Len(t, stored.MarkingTasks.Data(), 1)
}

func TestCompleteOrderStageHonorsPinnedAssignment(t *testing.T) {
	db := setupControllerTest(t)
	assigned := seedStaff(t, db, "Lakshmi", models.RoleMaterials)
	other := seedStaff(t, db, "Meena", models.RoleMaterials)
	order := seedOrder(t, db, workflow.StageMaterials,
		[]string{workflow.StageMaterials, workflow.StageBilling})
	require.NoError(t, db.Model(order).
		Update("assigned_staff", datatypes.NewJSONType(map[string]uint{workflow.StageMaterials: assigned.ID})).Error)

	// Matching role alone is not enough when the stage is pinned to someone else
	w := performJSON(t, newStageTestRouter(other, other.Role),
		http.MethodPost, "/api/v1/orders/1/stages/complete", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, workflow.StageMaterials, stored.CurrentStage)

	w = performJSON(t, newStageTestRouter(assigned, assigned.Role),
		http.MethodPost, "/api/v1/orders/1/stages/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCompleteOrderStageSupervisorBypassesPinnedAssignment(t *testing.T) {
	db := setupControllerTest(t)
	assigned := seedStaff(t, db, "Lakshmi", models.RoleMaterials)
	supervisor := seedStaff(t, db, "Priya", models.RoleSupervisor)
	order := seedOrder(t, db, workflow.StageMaterials,
		[]string{workflow.StageMaterials, workflow.StageBilling})
	require.NoError(t, db.Model(order).
		Update("assigned_staff", datatypes.NewJSONType(map[string]uint{workflow.StageMaterials: assigned.ID})).Error)

	w := performJSON(t, newStageTestRouter(supervisor, supervisor.Role),
		http.MethodPost, "/api/v1/orders/1/stages/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func seedItem(t *testing.T, db *gorm.DB, orderID uint, position int, currentStage string, activeStages []string) *models.OrderItem {
	t.Helper()

	item := models.OrderItem{
		OrderID:      orderID,
		Position:     position,
		GarmentType:  "blouse",
		Status:       models.ItemStatusInProgress,
		CurrentStage: currentStage,
		ActiveStages: datatypes.NewJSONSlice(activeStages),
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func TestCompleteItemStageEndpoint(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Ravi", models.RoleCuttingChecker)
	order := seedOrder(t, db, workflow.StageCuttingChecker, nil)
	item := seedItem(t, db, order.ID, 0, workflow.StageCuttingChecker,
		[]string{workflow.StageCutting, workflow.StageCuttingChecker, workflow.StageStitching})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/items/0/stages/complete", gin.H{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.OrderItem
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, workflow.StageStitching, stored.CurrentStage)
}

func TestCompleteItemStageHonorsPinnedAssignment(t *testing.T) {
	db := setupControllerTest(t)
	assigned := seedStaff(t, db, "Raju", models.RoleCutting)
	other := seedStaff(t, db, "Sundar", models.RoleCutting)
	order := seedOrder(t, db, workflow.StageCutting, nil)
	require.NoError(t, db.Model(order).
		Update("assigned_staff", datatypes.NewJSONType(map[string]uint{workflow.StageCutting: assigned.ID})).Error)
	seedItem(t, db, order.ID, 0, workflow.StageCutting,
		[]string{workflow.StageCutting, workflow.StageStitching})

	w := performJSON(t, newStageTestRouter(other, other.Role),
		http.MethodPost, "/api/v1/orders/1/items/0/stages/complete", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performJSON(t, newStageTestRouter(assigned, assigned.Role),
		http.MethodPost, "/api/v1/orders/1/items/0/stages/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCompleteItemStageInstantiatesCuttingTasks(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Priya", models.RoleSupervisor)
	require.NoError(t, db.Create(&models.StageTemplate{
		GarmentType: "blouse",
		Stage:       workflow.StageCutting,
		TaskName:    "front panel",
		TaskOrder:   1,
		IsMandatory: true,
	}).Error)
	order := seedOrder(t, db, workflow.StageMarking, nil)
	item := seedItem(t, db, order.ID, 0, workflow.StageMarking,
		[]string{workflow.StageMarking, workflow.StageCutting, workflow.StageBilling})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/items/0/stages/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Entering cutting created the item's own task rows
	var tasks []models.CuttingTask
	require.NoError(t, db.Where("item_id = ?", item.ID).Find(&tasks).Error)
	require.Len(t, tasks, 1)
	assert.Equal(t, "front panel", tasks[0].TaskName)
	assert.Equal(t, order.ID, tasks[0].OrderID)
}

func TestRejectItemStageEndpoint(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Ravi", models.RoleCuttingChecker)
	order := seedOrder(t, db, workflow.StageCuttingChecker, nil)
	item := seedItem(t, db, order.ID, 0, workflow.StageCuttingChecker,
		[]string{workflow.StageCutting, workflow.StageCuttingChecker, workflow.StageStitching})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/items/0/stages/reject",
		gin.H{"previous_stage": workflow.StageCutting})
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.OrderItem
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, workflow.StageCutting, stored.CurrentStage)
	assert.Equal(t, models.ItemStatusInProgress, stored.Status)
}

func TestRejectItemStageRequiresPreviousStage(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Ravi", models.RoleCuttingChecker)
	order := seedOrder(t, db, workflow.StageCuttingChecker, nil)
	seedItem(t, db, order.ID, 0, workflow.StageCuttingChecker,
		[]string{workflow.StageCutting, workflow.StageCuttingChecker})
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/items/0/stages/reject", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestItemStageMissingItem(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Ravi", models.RoleCuttingChecker)
	seedOrder(t, db, workflow.StageCuttingChecker, nil)
	router := newStageTestRouter(staff, staff.Role)

	w := performJSON(t, router, http.MethodPost, "/api/v1/orders/1/items/7/stages/complete", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
