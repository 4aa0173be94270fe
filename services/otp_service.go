package services

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/utils"
	"github.com/priya-tailors/priyas-tailoring-api/workflow"
)

// OTPExpiry is how long a confirmation code stays valid
const OTPExpiry = 5 * time.Minute

var (
	// ErrOTPExpired means the code's validity window has passed; the row is
	// deleted and a new code must be requested.
	ErrOTPExpired = errors.New("otp code has expired")
	// ErrOTPMismatch means the supplied code does not match the stored hash
	ErrOTPMismatch = errors.New("otp code does not match")
)

// OTPService issues and verifies order-confirmation codes. In mock mode
// (the shipped default) verification confirms unconditionally without
// checking the code.
type OTPService struct {
	gateway  SMSGateway
	mockMode bool
}

var otpServiceInstance *OTPService

// InitOTPService initializes the OTP service
func InitOTPService(gateway SMSGateway, mockMode bool) *OTPService {
	otpServiceInstance = &OTPService{gateway: gateway, mockMode: mockMode}
	return otpServiceInstance
}

// GetOTPService returns the initialized OTP service instance
func GetOTPService() *OTPService {
	return otpServiceInstance
}

// SetOTPService sets the OTP service instance (primarily for testing)
func SetOTPService(s *OTPService) {
	otpServiceInstance = s
}

// SendOrderOTP generates a 6-digit code for the order, stores its bcrypt
// hash with a 5-minute expiry, dispatches it to the customer phone and
// moves the order to otp_sent. Resending replaces any previous code.
func (s *OTPService) SendOrderOTP(db *gorm.DB, order *models.Order) error {
	if order.Status != models.OrderStatusDraft && order.Status != models.OrderStatusOTPSent {
		return fmt.Errorf("order %d cannot be sent an OTP from status %q", order.ID, order.Status)
	}

	code := utils.GenerateOTP()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp code: %w", err)
	}

	// One pending code per order
	if err := db.Where("order_id = ?", order.ID).Delete(&models.OTPRequest{}).Error; err != nil {
		return fmt.Errorf("failed to clear previous otp: %w", err)
	}
	request := models.OTPRequest{
		OrderID:   order.ID,
		Phone:     order.CustomerPhone,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(OTPExpiry),
	}
	if err := db.Create(&request).Error; err != nil {
		return fmt.Errorf("failed to store otp request: %w", err)
	}

	if err := s.gateway.SendOTP(order.CustomerPhone, code); err != nil {
		return fmt.Errorf("failed to dispatch otp: %w", err)
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusOTPSent).Error; err != nil {
		return fmt.Errorf("failed to update order %d: %w", order.ID, err)
	}
	order.Status = models.OrderStatusOTPSent
	return nil
}

// VerifyOrderOTP checks the supplied code and, on success, confirms the
// order: status becomes confirmed_locked, the current stage becomes the
// first active stage, every item enters its own first active stage and the
// OTP row is deleted. In mock mode the code is not checked and the order is
// confirmed unconditionally.
func (s *OTPService) VerifyOrderOTP(db *gorm.DB, order *models.Order, code string) error {
	if order.Status != models.OrderStatusOTPSent {
		return fmt.Errorf("order %d is not awaiting otp verification (status %q)", order.ID, order.Status)
	}

	if !s.mockMode {
		var request models.OTPRequest
		if err := db.Where("order_id = ?", order.ID).First(&request).Error; err != nil {
			return fmt.Errorf("no otp request for order %d: %w", order.ID, err)
		}
		if time.Now().After(request.ExpiresAt) {
			if err := db.Delete(&request).Error; err != nil {
				return fmt.Errorf("failed to delete expired otp: %w", err)
			}
			return ErrOTPExpired
		}
		if err := bcrypt.CompareHashAndPassword([]byte(request.CodeHash), []byte(code)); err != nil {
			return ErrOTPMismatch
		}
	}

	first := workflow.FirstActiveStage(order.ActiveStages)
	if first == "" {
		return fmt.Errorf("order %d has no active stages", order.ID)
	}

	updates := map[string]interface{}{
		"status":        models.OrderStatusConfirmedLocked,
		"current_stage": first,
	}
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to confirm order %d: %w", order.ID, err)
	}
	order.Status = models.OrderStatusConfirmedLocked
	order.CurrentStage = first

	// Items enter the pipeline alongside the order
	var items []models.OrderItem
	if err := db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load items for order %d: %w", order.ID, err)
	}
	for i := range items {
		start := workflow.FirstActiveStage(items[i].ActiveStages)
		if start == "" {
			continue
		}
		if err := db.Model(&models.OrderItem{}).Where("id = ?", items[i].ID).Updates(map[string]interface{}{
			"status":        models.ItemStatusInProgress,
			"current_stage": start,
		}).Error; err != nil {
			return fmt.Errorf("failed to start item %d: %w", items[i].ID, err)
		}
	}

	if err := db.Where("order_id = ?", order.ID).Delete(&models.OTPRequest{}).Error; err != nil {
		return fmt.Errorf("failed to delete otp request: %w", err)
	}
	return nil
}
