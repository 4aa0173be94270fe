package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/workflow"
)

// TemplateTaskRequest is one task line in a template replacement
type TemplateTaskRequest struct {
	TaskName    string `json:"task_name" binding:"required"`
	TaskOrder   int    `json:"task_order"`
	IsMandatory bool   `json:"is_mandatory"`
}

// PutTemplateRequest replaces a garment type's task list for one stage
type PutTemplateRequest struct {
	Tasks []TemplateTaskRequest `json:"tasks" binding:"required"`
}

// StageDefaultsRequest replaces the stage-defaults settings document
type StageDefaultsRequest struct {
	Defaults map[string]uint `json:"defaults" binding:"required"`
}

// GetTemplates handles GET /api/v1/templates/:garmentType/:stage
func GetTemplates(c *gin.Context) {
	garmentType := c.Param("garmentType")
	stage := c.Param("stage")
	if !workflow.IsKnownStage(stage) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_STAGE",
				"message": "Unknown workflow stage",
			},
		})
		return
	}

	var templates []models.StageTemplate
	if err := config.GetDB().Where("garment_type = ? AND stage = ?", garmentType, stage).
		Order("task_order asc").Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load templates",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    templates,
	})
}

// PutTemplates handles PUT /api/v1/templates/:garmentType/:stage - replaces
// the task list. Only future orders are affected; already-instantiated
// tasks keep their shape.
func PutTemplates(c *gin.Context) {
	garmentType := c.Param("garmentType")
	stage := c.Param("stage")
	if !workflow.IsKnownStage(stage) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_STAGE",
				"message": "Unknown workflow stage",
			},
		})
		return
	}

	var req PutTemplateRequest
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
	if err := db.Where("garment_type = ? AND stage = ?", garmentType, stage).
		Delete(&models.StageTemplate{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to replace templates",
			},
		})
		return
	}

	templates := make([]models.StageTemplate, 0, len(req.Tasks))
	for i, task := range req.Tasks {
		order := task.TaskOrder
		if order == 0 {
			order = i + 1
		}
		templates = append(templates, models.StageTemplate{
			GarmentType: garmentType,
			Stage:       stage,
			TaskName:    task.TaskName,
			TaskOrder:   order,
			IsMandatory: task.IsMandatory,
		})
	}
	if len(templates) > 0 {
		if err := db.Create(&templates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to store templates",
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    templates,
	})
}

// GetStageDefaults handles GET /api/v1/settings/stage-defaults
func GetStageDefaults(c *gin.Context) {
	var defaults models.StageDefaults
	if err := config.GetDB().First(&defaults).Error; err != nil {
		// Singleton may not exist yet
		defaults = models.StageDefaults{Defaults: datatypes.NewJSONType(map[string]uint{})}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    defaults,
	})
}

// PutStageDefaults handles PUT /api/v1/settings/stage-defaults. Defaults
// are consulted at intake only, so existing orders keep their assignments.
func PutStageDefaults(c *gin.Context) {
	var req StageDefaultsRequest
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

	for stage := range req.Defaults {
		if !workflow.IsKnownStage(stage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNKNOWN_STAGE",
					"message": "Unknown workflow stage in defaults: " + stage,
				},
			})
			return
		}
	}

	db := config.GetDB()
	var defaults models.StageDefaults
	if err := db.First(&defaults).Error; err != nil {
		defaults = models.StageDefaults{ID: 1}
	}
	defaults.Defaults = datatypes.NewJSONType(req.Defaults)
	if err := db.Save(&defaults).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to store stage defaults",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    defaults,
	})
}
