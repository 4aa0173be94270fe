package models

import "time"

// Assignment targets
const (
	AssignmentTargetOrderItem = "order_item"
	AssignmentTargetStageTask = "stage_task"
)

// AssignmentAuditLog is the append-only record of staff-to-work
// reassignments: who assigned what to whom and when. AssignedFromID is nil
// only for a first-time assignment.
type AssignmentAuditLog struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	LogID   string `gorm:"uniqueIndex;not null" json:"log_id"`
	OrderID uint   `gorm:"not null;index" json:"order_id"`
	ItemID  *uint  `json:"item_id,omitempty"`

	AssignmentTarget string `gorm:"not null" json:"assignment_target"` // order_item or stage_task
	Stage            string `json:"stage,omitempty"`
	SubStage         string `json:"sub_stage,omitempty"`

	AssignedFromID   *uint  `json:"assigned_from_id,omitempty"`
	AssignedFromName string `json:"assigned_from_name,omitempty"`
	AssignedToID     uint   `gorm:"not null;index" json:"assigned_to_id"`
	AssignedToName   string `gorm:"not null" json:"assigned_to_name"`

	AssignedByID   uint   `gorm:"not null" json:"assigned_by_id"`
	AssignedByName string `gorm:"not null" json:"assigned_by_name"`
	AssignedByRole string `gorm:"not null" json:"assigned_by_role"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for the AssignmentAuditLog model
func (AssignmentAuditLog) TableName() string {
	return "assignment_logs"
}
