package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/middleware"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/workflow"
)

// CompleteStageRequest represents a stage completion action
type CompleteStageRequest struct {
	Action    string                 `json:"action"` // complete (default), approve, reject for checkers
	Materials *models.Materials      `json:"materials,omitempty"`
	Billing   *models.Billing        `json:"billing,omitempty"`
	Extra     map[string]interface{} `json:"-"`
}

// RejectItemStageRequest sends an item back from a checker stage
type RejectItemStageRequest struct {
	PreviousStage string `json:"previous_stage" binding:"required"`
	Hold          bool   `json:"hold"`
}

// jsonColumn wraps a sub-record for a targeted JSON column write
func jsonColumn[T any](v T) datatypes.JSONType[T] {
	return datatypes.NewJSONType(v)
}

// actorFromContext builds the workflow actor for the authenticated staff
// member and their effective role
func actorFromContext(c *gin.Context) (workflow.Actor, bool) {
	staff, err := middleware.GetStaff(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not resolve staff profile",
			},
		})
		return workflow.Actor{}, false
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
		return workflow.Actor{}, false
	}
	return workflow.Actor{StaffID: staff.ID, Name: staff.Name, Role: role}, true
}

// canWorkStage reports whether the actor may complete the given stage.
// Stage names double as worker role names; admins and supervisors may
// complete any stage. A stage pinned to a staff member in the order's
// assignment map only accepts that member.
func canWorkStage(actor workflow.Actor, assigned map[string]uint, stage string) bool {
	if actor.Role == models.RoleAdmin || actor.Role == models.RoleSupervisor {
		return true
	}
	if actor.Role != stage {
		return false
	}
	if staffID, ok := assigned[stage]; ok && staffID != actor.StaffID {
		return false
	}
	return true
}

// renderTransitionError maps workflow errors to the response envelope. A
// PartialWriteError means the state write landed: the completion is
// reported as a success and the missing audit row is logged for operator
// follow-up, never rolled back.
func renderTransitionError(c *gin.Context, err error, data interface{}) {
	var partial *workflow.PartialWriteError
	if errors.As(err, &partial) {
		log.Printf("partial write: %v", partial)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    data,
		})
		return
	}

	var unknown *workflow.UnknownStageError
	if errors.As(err, &unknown) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_STAGE",
				"message": unknown.Error(),
			},
		})
		return
	}

	var noNext *workflow.NoNextStageError
	if errors.As(err, &noNext) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_NEXT_STAGE",
				"message": noNext.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusConflict, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "TRANSITION_ERROR",
			"message": err.Error(),
		},
	})
}

// CompleteOrderStage handles POST /api/v1/orders/:id/stages/complete
func CompleteOrderStage(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req CompleteStageRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
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

	if !canWorkStage(actor, order.AssignedStaff.Data(), order.CurrentStage) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Current stage is not assigned to your role",
			},
		})
		return
	}

	// Stage-specific payload columns are merged into the same write as the
	// stage advance
	payload := map[string]interface{}{}
	if req.Materials != nil {
		req.Materials.CompletedBy = actor.StaffID
		payload["materials"] = jsonColumn(*req.Materials)
	}
	if req.Billing != nil {
		payload["billing"] = jsonColumn(*req.Billing)
	}

	if err := workflow.CompleteOrderStage(db, &order, actor, req.Action, payload); err != nil {
		renderTransitionError(c, err, order)
		return
	}

	// Entering a stage instantiates its template tasks; a failure here does
	// not undo the completed transition.
	if order.CurrentStage != "" {
		if err := workflow.InstantiateStageTasks(db, &order, order.CurrentStage); err != nil {
			log.Printf("failed to instantiate %s tasks for order %d: %v", order.CurrentStage, order.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// itemFromParams loads the order item addressed by :id/:itemIndex, along
// with its parent order for the assignment check
func itemFromParams(c *gin.Context) (*models.OrderItem, *models.Order, bool) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return nil, nil, false
	}
	itemIndex, err := strconv.Atoi(c.Param("itemIndex"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ITEM_INDEX",
				"message": "Item index must be a number",
			},
		})
		return nil, nil, false
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
		return nil, nil, false
	}
	var item models.OrderItem
	if err := db.Where("order_id = ? AND position = ?", orderID, itemIndex).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ITEM_NOT_FOUND",
				"message": "Order item not found",
			},
		})
		return nil, nil, false
	}
	return &item, &order, true
}

// CompleteItemStage handles POST /api/v1/orders/:id/items/:itemIndex/stages/complete
func CompleteItemStage(c *gin.Context) {
	item, order, ok := itemFromParams(c)
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req CompleteStageRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
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

	if !canWorkStage(actor, order.AssignedStaff.Data(), item.CurrentStage) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Current stage is not assigned to your role",
			},
		})
		return
	}

	db := config.GetDB()
	if err := workflow.CompleteItemStage(db, item, actor, req.Action); err != nil {
		renderTransitionError(c, err, item)
		return
	}

	// Entering cutting instantiates the item's task rows; a failure here
	// does not undo the completed transition.
	if item.CurrentStage == workflow.StageCutting {
		if err := workflow.InstantiateItemCuttingTasks(db, item); err != nil {
			log.Printf("failed to instantiate cutting tasks for item %d: %v", item.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}

// RejectItemStage handles POST /api/v1/orders/:id/items/:itemIndex/stages/reject -
// a checker sends the item back to a named previous stage
func RejectItemStage(c *gin.Context) {
	item, order, ok := itemFromParams(c)
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req RejectItemStageRequest
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

	if !canWorkStage(actor, order.AssignedStaff.Data(), item.CurrentStage) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Current stage is not assigned to your role",
			},
		})
		return
	}

	db := config.GetDB()
	if err := workflow.RejectItemStage(db, item, req.PreviousStage, req.Hold, actor); err != nil {
		renderTransitionError(c, err, item)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}
