package workflow

import (
	"time"

	"gorm.io/gorm"

	"github.com/priya-tailors/priyas-tailoring-api/models"
)

// StaffMetrics are per-staff analytics derived from the work-log and
// assignment-log collections. Read-only and non-authoritative: they never
// feed back into transition logic.
type StaffMetrics struct {
	StaffID             uint `json:"staff_id"`
	AssignedCount       int  `json:"assigned_count"`
	CompletedCount      int  `json:"completed_count"`
	ReassignedAwayCount int  `json:"reassigned_away_count"`
	ActiveItemCount     int  `json:"active_item_count"`
}

// Metrics is the aggregated report over a date window
type Metrics struct {
	TotalRevenue       float64                `json:"total_revenue"`
	TotalMaterialsCost float64                `json:"total_materials_cost"`
	Profit             float64                `json:"profit"`
	OrderCount         int                    `json:"order_count"`
	Staff              map[uint]*StaffMetrics `json:"staff"`
}

// ReportFilters narrows the aggregation
type ReportFilters struct {
	GarmentType string
	StaffID     uint
}

func (m *Metrics) staff(id uint) *StaffMetrics {
	s, ok := m.Staff[id]
	if !ok {
		s = &StaffMetrics{StaffID: id}
		m.Staff[id] = s
	}
	return s
}

// Aggregate scans orders, staff work logs and assignment logs created at or
// after since and derives revenue, cost and staff performance metrics.
// Profit is revenue minus materials cost only; labor cost is not netted.
func Aggregate(db *gorm.DB, since time.Time, filters ReportFilters) (*Metrics, error) {
	metrics := &Metrics{Staff: make(map[uint]*StaffMetrics)}

	ordersQuery := db.Where("created_at >= ?", since)
	if filters.GarmentType != "" {
		ordersQuery = ordersQuery.Where("garment_type = ?", filters.GarmentType)
	}
	var orders []models.Order
	if err := ordersQuery.Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, order := range orders {
		billing := order.Billing.Data()
		metrics.TotalRevenue += billing.FinalAmount
		metrics.TotalMaterialsCost += billing.MaterialsCost
	}
	metrics.OrderCount = len(orders)
	metrics.Profit = metrics.TotalRevenue - metrics.TotalMaterialsCost

	workLogQuery := db.Where("created_at >= ?", since)
	if filters.StaffID != 0 {
		workLogQuery = workLogQuery.Where("staff_id = ?", filters.StaffID)
	}
	var workLogs []models.StaffWorkLog
	if err := workLogQuery.Find(&workLogs).Error; err != nil {
		return nil, err
	}
	for _, wl := range workLogs {
		if wl.Action == models.ActionCompleted || wl.Action == models.ActionCheckedOK {
			metrics.staff(wl.StaffID).CompletedCount++
		}
	}

	var assignmentLogs []models.AssignmentAuditLog
	if err := db.Where("created_at >= ?", since).Find(&assignmentLogs).Error; err != nil {
		return nil, err
	}
	for _, al := range assignmentLogs {
		if filters.StaffID == 0 || al.AssignedToID == filters.StaffID {
			metrics.staff(al.AssignedToID).AssignedCount++
		}
		if al.AssignedFromID != nil && (filters.StaffID == 0 || *al.AssignedFromID == filters.StaffID) {
			metrics.staff(*al.AssignedFromID).ReassignedAwayCount++
		}
	}

	// Active items are a current snapshot, not windowed.
	var activeItems []models.OrderItem
	itemsQuery := db.Where("status = ? AND assigned_staff_id IS NOT NULL", models.ItemStatusInProgress)
	if filters.StaffID != 0 {
		itemsQuery = itemsQuery.Where("assigned_staff_id = ?", filters.StaffID)
	}
	if err := itemsQuery.Find(&activeItems).Error; err != nil {
		return nil, err
	}
	for _, item := range activeItems {
		metrics.staff(*item.AssignedStaffID).ActiveItemCount++
	}

	return metrics, nil
}
