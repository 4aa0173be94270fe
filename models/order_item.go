package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderItem statuses. Items mirror the order transition rules but a checker
// stage can also place an item on hold when rejecting it.
const (
	ItemStatusDraft      = "draft"
	ItemStatusInProgress = "in_progress"
	ItemStatusCompleted  = "completed"
	ItemStatusDelivered  = "delivered"
	ItemStatusHold       = "hold"
)

// OrderItem is one garment within a multi-item order, with its own stage
// position. Position is the item's index within the order.
type OrderItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	OrderID  uint `gorm:"not null;index" json:"order_id"`
	Position int  `gorm:"not null" json:"position"`

	GarmentType  string `gorm:"not null" json:"garment_type"`
	Status       string `gorm:"not null;default:'draft'" json:"status"`
	CurrentStage string `json:"current_stage"`

	ActiveStages datatypes.JSONSlice[string] `json:"active_stages"`

	AssignedStaffID   *uint  `gorm:"index" json:"assigned_staff_id"`
	AssignedStaffName string `json:"assigned_staff_name"`

	Measurements       datatypes.JSONMap           `json:"measurements"`
	ReferenceImageKeys datatypes.JSONSlice[string] `json:"reference_image_keys"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
