package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/middleware"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/workflow"
)

// CreateOrderItemRequest is one garment line inside an intake request
type CreateOrderItemRequest struct {
	GarmentType  string                 `json:"garment_type" binding:"required"`
	Measurements map[string]interface{} `json:"measurements"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	CustomerName    string                   `json:"customer_name" binding:"required"`
	CustomerPhone   string                   `json:"customer_phone" binding:"required"`
	CustomerAddress string                   `json:"customer_address"`
	CustomerID      string                   `json:"customer_id"`
	GarmentType     string                   `json:"garment_type" binding:"required"`
	Measurements    map[string]interface{}   `json:"measurements"`
	Items           []CreateOrderItemRequest `json:"items"`
}

// orderIDParam parses the :id path parameter
func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ORDER_ID",
				"message": "Order ID must be a number",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// CreateOrder handles POST /api/v1/orders - intake creates a draft order.
// Active stages are derived from the garment type and default staff
// assignments are copied from the stage-defaults settings document.
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()

	// Stage defaults are consulted at intake time only
	assigned := map[string]uint{}
	var defaults models.StageDefaults
	if err := db.First(&defaults).Error; err == nil {
		for stage, staffID := range defaults.Defaults.Data() {
			assigned[stage] = staffID
		}
	}

	order := models.Order{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerID:      req.CustomerID,
		GarmentType:     req.GarmentType,
		Status:          models.OrderStatusDraft,
		ActiveStages:    datatypes.NewJSONSlice(workflow.ActiveStagesFor(req.GarmentType)),
		AssignedStaff:   datatypes.NewJSONType(assigned),
		Measurements:    datatypes.JSONMap(req.Measurements),
	}
	for i, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			Position:     i,
			GarmentType:  item.GarmentType,
			Status:       models.ItemStatusDraft,
			ActiveStages: datatypes.NewJSONSlice(workflow.ActiveStagesFor(item.GarmentType)),
			Measurements: datatypes.JSONMap(item.Measurements),
		})
	}

	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// AddOrderItem handles POST /api/v1/orders/:id/items - appends a garment
// line to a draft order. Items cannot be added once the customer has
// confirmed the order.
func AddOrderItem(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req CreateOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}
	if order.Status != models.OrderStatusDraft && order.Status != models.OrderStatusOTPSent {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_LOCKED",
				"message": "Items can only be added before the order is confirmed",
			},
		})
		return
	}

	var count int64
	if err := db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add item",
			},
		})
		return
	}

	item := models.OrderItem{
		OrderID:      order.ID,
		Position:     int(count),
		GarmentType:  req.GarmentType,
		Status:       models.ItemStatusDraft,
		ActiveStages: datatypes.NewJSONSlice(workflow.ActiveStagesFor(req.GarmentType)),
		Measurements: datatypes.JSONMap(req.Measurements),
	}
	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add item",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}

// GetOrder handles GET /api/v1/orders/:id. The response is projected
// through the privacy filter for the caller's effective role.
func GetOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	role, err := middleware.GetEffectiveRole(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_ROLE",
				"message": "Could not resolve effective role",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    workflow.ProjectOrder(order, role),
	})
}

// ListOrders handles GET /api/v1/orders with optional status/stage filters.
// Every returned order is projected for the caller's effective role.
func ListOrders(c *gin.Context) {
	role, err := middleware.GetEffectiveRole(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_ROLE",
				"message": "Could not resolve effective role",
			},
		})
		return
	}

	db := config.GetDB()
	query := db.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if stage := c.Query("stage"); stage != "" {
		query = query.Where("current_stage = ?", stage)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	projected := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		projected = append(projected, workflow.ProjectOrder(order, role))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    projected,
	})
}

// GetOrderTimeline handles GET /api/v1/orders/:id/timeline - the
// append-only history, oldest first
func GetOrderTimeline(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var entries []models.TimelineEntry
	if err := db.Where("order_id = ?", orderID).Order("created_at asc").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load timeline",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// MarkOrderDelivered handles POST /api/v1/orders/:id/deliver
func MarkOrderDelivered(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	staff, err := middleware.GetStaff(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not resolve staff profile",
			},
		})
		return
	}
	role, _ := middleware.GetEffectiveRole(c)

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	actor := workflow.Actor{StaffID: staff.ID, Name: staff.Name, Role: role}
	if err := workflow.MarkOrderDelivered(db, &order, actor); err != nil {
		renderTransitionError(c, err, order)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
