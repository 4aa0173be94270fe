package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/middleware"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/services"
)

// CreateStaffRequest represents the request body for creating a staff profile
type CreateStaffRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// CreateStaffProfile handles POST /api/v1/staff - creates the staff profile
// for the authenticated subject. Name and email default to the Auth0
// userinfo values when omitted.
func CreateStaffProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req CreateStaffRequest
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

	var existing models.Staff
	if err := db.Where("auth0_id = ?", auth0ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROFILE_EXISTS",
				"message": "Staff profile already exists",
			},
		})
		return
	}

	if req.Name == "" || req.Email == "" {
		if auth0 := services.GetAuth0Service(); auth0 != nil {
			token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			if userInfo, err := auth0.GetUserInfo(token); err == nil {
				if req.Name == "" {
					req.Name = userInfo.Name
				}
				if req.Email == "" {
					req.Email = userInfo.Email
				}
			}
		}
	}
	if req.Name == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Name and email are required",
			},
		})
		return
	}

	// Self-registration defaults to intake; the requested role is honored
	// only for the very first profile so the shop can bootstrap an admin.
	// After that, roles are changed through the admin endpoint.
	role := models.RoleIntake
	if req.Role != "" {
		var total int64
		db.Model(&models.Staff{}).Count(&total)
		if total == 0 {
			role = req.Role
		}
	}

	staff := models.Staff{
		Auth0ID: auth0ID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Role:    role,
	}
	if err := db.Create(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create staff profile",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    staff,
	})
}

// GetMyProfile handles GET /api/v1/staff/me
func GetMyProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var staff models.Staff
	if err := db.Where("auth0_id = ?", auth0ID).First(&staff).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STAFF_NOT_FOUND",
				"message": "Staff profile not found. Please create a profile first.",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    staff,
	})
}

// UpdateStaffRoleRequest changes a staff member's role
type UpdateStaffRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateStaffRole handles PUT /api/v1/staff/:id/role (admin only)
func UpdateStaffRole(c *gin.Context) {
	var req UpdateStaffRoleRequest
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
	if err := db.First(&staff, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STAFF_NOT_FOUND",
				"message": "Staff profile not found",
			},
		})
		return
	}

	if err := db.Model(&staff).Update("role", req.Role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update staff role",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    staff,
	})
}
