package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/workflow"
)

// GetReport handles GET /api/v1/reports?since=RFC3339&staff_id=&garment_type=
// (admin/supervisor only)
func GetReport(c *gin.Context) {
	sinceParam := c.Query("since")
	if sinceParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "since query parameter is required",
			},
		})
		return
	}
	since, err := time.Parse(time.RFC3339, sinceParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "since must be an RFC3339 timestamp",
			},
		})
		return
	}

	filters := workflow.ReportFilters{
		GarmentType: c.Query("garment_type"),
	}
	if staffParam := c.Query("staff_id"); staffParam != "" {
		staffID, err := strconv.ParseUint(staffParam, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "staff_id must be a number",
				},
			})
			return
		}
		filters.StaffID = uint(staffID)
	}

	metrics, err := workflow.Aggregate(config.GetDB(), since, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to aggregate report",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    metrics,
	})
}
