package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/services"
)

// VerifyOTPRequest carries the customer-entered confirmation code
type VerifyOTPRequest struct {
	Code string `json:"code"`
}

// SendOrderOTP handles POST /api/v1/orders/:id/otp/send
func SendOrderOTP(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
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

	if err := services.GetOTPService().SendOrderOTP(db, &order); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OTP_SEND_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// VerifyOrderOTP handles POST /api/v1/orders/:id/otp/verify. On success the
// order is confirmed and locked at its first active stage.
func VerifyOrderOTP(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req VerifyOTPRequest
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

	if err := services.GetOTPService().VerifyOrderOTP(db, &order, req.Code); err != nil {
		status := http.StatusConflict
		code := "OTP_VERIFY_ERROR"
		if errors.Is(err, services.ErrOTPExpired) {
			code = "OTP_EXPIRED"
		} else if errors.Is(err, services.ErrOTPMismatch) {
			status = http.StatusUnauthorized
			code = "OTP_MISMATCH"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
