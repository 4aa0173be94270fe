package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff roles. Production roles work one stage of the pipeline; the
// customer-facing roles additionally see customer contact details.
const (
	RoleAdmin            = "admin"
	RoleSupervisor       = "supervisor"
	RoleIntake           = "intake"
	RoleMaterials        = "materials"
	RoleMarking          = "marking"
	RoleMarkingChecker   = "marking_checker"
	RoleCutting          = "cutting"
	RoleCuttingChecker   = "cutting_checker"
	RoleAariWork         = "aari_work"
	RoleStitching        = "stitching"
	RoleStitchingChecker = "stitching_checker"
	RoleHooks            = "hooks"
	RoleIroning          = "ironing"
	RoleBilling          = "billing"
	RoleDelivery         = "delivery"
)

// Staff represents a shop worker or administrator
type Staff struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // identity provider subject
	Name      string         `gorm:"not null" json:"name"`
	Phone     string         `gorm:"size:15" json:"phone"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'intake'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Staff model
func (Staff) TableName() string {
	return "staff"
}
