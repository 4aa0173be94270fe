package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/services"
	"github.com/priya-tailors/priyas-tailoring-api/utils"
)

// UploadImage handles POST /api/v1/uploads - forwards a sampler/design
// image to blob storage and returns the storage key and a download URL
func UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "file form field is required",
			},
		})
		return
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
		uploadErr, ok := err.(*utils.FileUploadError)
		code := "UPLOAD_ERROR"
		if ok {
			code = uploadErr.Code
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	imageService := services.GetImageService()
	key, err := imageService.UploadImage(fileHeader)
	if err != nil {
		// Upload/network errors are surfaced verbatim; the user retries
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	url, err := imageService.GetImageURL(key)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "URL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": url,
		},
	})
}

// AttachOrderImageRequest links an uploaded image key to an order
type AttachOrderImageRequest struct {
	Key string `json:"key" binding:"required"`
}

// AttachOrderImage handles POST /api/v1/orders/:id/images - appends an
// uploaded image key to the order's sampler images
func AttachOrderImage(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req AttachOrderImageRequest
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

	keys := append([]string(order.SamplerImageKeys), req.Key)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("sampler_image_keys", datatypes.NewJSONSlice(keys)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to attach image",
			},
		})
		return
	}
	order.SamplerImageKeys = datatypes.NewJSONSlice(keys)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetImageURL handles GET /api/v1/uploads/url?key= - returns a presigned
// download URL for a stored image
func GetImageURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "key query parameter is required",
			},
		})
		return
	}

	url, err := services.GetImageService().GetImageURL(key)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "URL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": url,
		},
	})
}
