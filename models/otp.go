package models

import "time"

// OTPRequest is the transient verification record for an order confirmation
// code. Only the bcrypt hash of the code is stored. The row is deleted on
// successful verification or expiry.
type OTPRequest struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OrderID  uint   `gorm:"uniqueIndex;not null" json:"order_id"`
	Phone    string `gorm:"size:15;not null" json:"phone"`
	CodeHash string `gorm:"not null" json:"-"`

	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the OTPRequest model
func (OTPRequest) TableName() string {
	return "otp_requests"
}
