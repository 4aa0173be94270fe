package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StageTemplate is one task line of a per-garment-type task list for a
// stage (marking, stitching or cutting). Templates are instantiated into
// task records when an order enters the stage; editing a template only
// affects future orders.
type StageTemplate struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	GarmentType string `gorm:"not null;index:idx_template_garment_stage" json:"garment_type"`
	Stage       string `gorm:"not null;index:idx_template_garment_stage" json:"stage"`
	TaskName    string `gorm:"not null" json:"task_name"`
	TaskOrder   int    `gorm:"not null" json:"task_order"`
	IsMandatory bool   `gorm:"not null;default:true" json:"is_mandatory"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the StageTemplate model
func (StageTemplate) TableName() string {
	return "stage_templates"
}

// CuttingTask is a standalone task record instantiated from a cutting
// template. Unlike marking/stitching tasks it is not embedded on the order.
type CuttingTask struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OrderID uint  `gorm:"not null;index" json:"order_id"`
	ItemID  *uint `json:"item_id,omitempty"`

	TaskName    string `gorm:"not null" json:"task_name"`
	TaskOrder   int    `gorm:"not null" json:"task_order"`
	IsMandatory bool   `gorm:"not null;default:true" json:"is_mandatory"`
	Status      string `gorm:"not null;default:'pending'" json:"status"`

	AssignedStaffID   *uint  `gorm:"index" json:"assigned_staff_id"`
	AssignedStaffName string `json:"assigned_staff_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the CuttingTask model
func (CuttingTask) TableName() string {
	return "cutting_tasks"
}

// StageDefaults is the singleton configuration row mapping each stage name
// to a default staff ID, consulted at order intake only.
type StageDefaults struct {
	ID       uint                                `gorm:"primaryKey" json:"id"`
	Defaults datatypes.JSONType[map[string]uint] `json:"defaults"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the StageDefaults model
func (StageDefaults) TableName() string {
	return "stage_defaults"
}
