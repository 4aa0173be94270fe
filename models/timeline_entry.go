package models

import "time"

// Timeline/work-log actions
const (
	ActionCompleted     = "completed"
	ActionCheckedOK     = "checked_ok"
	ActionCheckedReject = "checked_reject"
	ActionDelivered     = "delivered"
)

// TimelineEntry is one append-only history record of a stage action on an
// order. Entries are never updated or deleted; CreatedAt is server-assigned
// and the timeline is read ordered by it ascending.
type TimelineEntry struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OrderID uint  `gorm:"not null;index" json:"order_id"`
	ItemID  *uint `gorm:"index" json:"item_id,omitempty"`

	StaffID uint   `gorm:"not null" json:"staff_id"`
	Role    string `gorm:"not null" json:"role"`
	Stage   string `gorm:"not null" json:"stage"`
	Action  string `gorm:"not null" json:"action"`
	Notes   string `json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for the TimelineEntry model
func (TimelineEntry) TableName() string {
	return "timeline_entries"
}
