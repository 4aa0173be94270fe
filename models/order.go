package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order lifecycle statuses
const (
	OrderStatusDraft           = "draft"
	OrderStatusOTPSent         = "otp_sent"
	OrderStatusConfirmedLocked = "confirmed_locked"
	OrderStatusInProgress      = "in_progress"
	OrderStatusCompleted       = "completed"
	OrderStatusDelivered       = "delivered"
)

// MaterialItem is one material line used (or planned) for an order
type MaterialItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Cost     float64 `json:"cost"`
}

// Materials records material usage for an order. PlannedMaterials uses the
// same shape but is a pre-stage estimate and never affects inventory.
type Materials struct {
	Items       []MaterialItem `json:"items"`
	TotalCost   float64        `json:"total_cost"`
	CompletedBy uint           `json:"completed_by,omitempty"`
}

// BillingLineItem is one charge line on the bill
type BillingLineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Billing holds the billing sub-record of an order
type Billing struct {
	LineItems     []BillingLineItem `json:"line_items"`
	FinalAmount   float64           `json:"final_amount"`
	MaterialsCost float64           `json:"materials_cost"`
	PaymentStatus string            `json:"payment_status"` // pending, partial, paid
}

// StageTask is one task instantiated from a template when a stage is
// entered. Marking and stitching tasks are embedded on the order keyed by
// task key; cutting tasks live in their own table (see CuttingTask).
type StageTask struct {
	TaskKey           string `json:"task_key"`
	TaskName          string `json:"task_name"`
	TaskOrder         int    `json:"task_order"`
	IsMandatory       bool   `json:"is_mandatory"`
	Status            string `json:"status"` // pending, done
	AssignedStaffID   uint   `json:"assigned_staff_id,omitempty"`
	AssignedStaffName string `json:"assigned_staff_name,omitempty"`
}

// Order represents a customer purchase moving through the production pipeline
type Order struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	CustomerName    string `gorm:"not null" json:"customer_name,omitempty"`
	CustomerPhone   string `gorm:"size:15" json:"customer_phone,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`
	CustomerID      string `gorm:"index" json:"customer_id,omitempty"`

	GarmentType  string `gorm:"not null" json:"garment_type"`
	Status       string `gorm:"not null;default:'draft';index" json:"status"`
	CurrentStage string `gorm:"index" json:"current_stage"` // empty until confirmed, and after completion

	ActiveStages  datatypes.JSONSlice[string]         `json:"active_stages"`
	AssignedStaff datatypes.JSONType[map[string]uint] `json:"assigned_staff"` // stage -> staff ID

	Measurements     datatypes.JSONMap                        `json:"measurements"`
	Materials        datatypes.JSONType[Materials]            `json:"materials"`
	PlannedMaterials datatypes.JSONType[Materials]            `json:"planned_materials"`
	Billing          datatypes.JSONType[Billing]              `json:"billing"`
	SamplerImageKeys datatypes.JSONSlice[string]              `json:"sampler_image_keys"`
	MarkingTasks     datatypes.JSONType[map[string]StageTask] `json:"marking_tasks"`
	StitchingTasks   datatypes.JSONType[map[string]StageTask] `json:"stitching_tasks"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
