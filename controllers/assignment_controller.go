package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/workflow"
)

// AssignRequest moves one piece of work to a staff member
type AssignRequest struct {
	Target  workflow.AssignmentTarget `json:"target" binding:"required"`
	StaffID uint                      `json:"staff_id" binding:"required"`
}

// BulkAssignRequest applies many assignments to one staff member
type BulkAssignRequest struct {
	Targets []workflow.AssignmentTarget `json:"targets" binding:"required"`
	StaffID uint                        `json:"staff_id" binding:"required"`
}

// AssignWork handles POST /api/v1/assignments (admin/supervisor only)
func AssignWork(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req AssignRequest
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
	var staff models.Staff
	if err := db.First(&staff, req.StaffID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STAFF_NOT_FOUND",
				"message": "Assignee staff profile not found",
			},
		})
		return
	}

	if err := workflow.Assign(db, req.Target, staff, actor); err != nil {
		var targetErr *workflow.AssignmentTargetError
		if errors.As(err, &targetErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ASSIGNMENT_TARGET_ERROR",
					"message": targetErr.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ASSIGNMENT_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// BulkAssignWork handles POST /api/v1/assignments/bulk. Assignments are
// applied independently; the response reports the success count so the
// caller can surface partial failure.
func BulkAssignWork(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req BulkAssignRequest
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
	var staff models.Staff
	if err := db.First(&staff, req.StaffID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STAFF_NOT_FOUND",
				"message": "Assignee staff profile not found",
			},
		})
		return
	}

	successCount, failures := workflow.BulkAssign(db, req.Targets, staff, actor)
	messages := make([]string, 0, len(failures))
	for _, f := range failures {
		messages = append(messages, f.Error())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"success_count": successCount,
			"failure_count": len(failures),
			"failures":      messages,
		},
	})
}

// GetAssignmentLogsForOrder handles GET /api/v1/orders/:id/assignment-logs
func GetAssignmentLogsForOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	logs, err := workflow.AssignmentLogsForOrder(config.GetDB(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load assignment logs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}

// GetAssignmentLogsForStaff handles GET /api/v1/staff/:id/assignment-logs
func GetAssignmentLogsForStaff(c *gin.Context) {
	staffID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STAFF_ID",
				"message": "Staff ID must be a number",
			},
		})
		return
	}

	logs, err := workflow.AssignmentLogsForStaff(config.GetDB(), uint(staffID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load assignment logs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}
