package models

import "time"

// StaffWorkLog is one append-only global record of work performed, used for
// payroll and performance analytics. It is written alongside each timeline
// entry but lives in its own collection and is never read by the transition
// logic itself.
type StaffWorkLog struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	StaffID uint  `gorm:"not null;index" json:"staff_id"`
	OrderID uint  `gorm:"not null;index" json:"order_id"`
	ItemID  *uint `json:"item_id,omitempty"`

	Role   string `gorm:"not null" json:"role"`
	Stage  string `gorm:"not null" json:"stage"`
	Action string `gorm:"not null" json:"action"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for the StaffWorkLog model
func (StaffWorkLog) TableName() string {
	return "staff_work_logs"
}
