package workflow

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/priya-tailors/priyas-tailoring-api/models"
)

// TaskRef kinds. Stage tasks are stored in two shapes: embedded maps on the
// order document (marking, stitching) and standalone rows (cutting). The
// assignment subsystem dispatches on the tag, never on stage-name
// comparison.
const (
	TaskRefEmbedded   = "embedded"
	TaskRefStandalone = "standalone"
)

// TaskRef points at one stage task regardless of its storage shape
type TaskRef struct {
	Kind string `json:"kind"` // embedded or standalone

	// embedded: a key into the order's task map for Stage
	OrderID uint   `json:"order_id,omitempty"`
	Stage   string `json:"stage,omitempty"`
	TaskKey string `json:"task_key,omitempty"`

	// standalone: a row in its own collection
	Collection string `json:"collection,omitempty"`
	DocID      uint   `json:"doc_id,omitempty"`
}

// AssignmentTarget discriminates what is being (re)assigned: a whole order
// item, addressed by its index within the order, or a single stage task.
type AssignmentTarget struct {
	Kind      string  `json:"kind"` // order_item or stage_task
	OrderID   uint    `json:"order_id"`
	ItemIndex int     `json:"item_index"`
	Task      TaskRef `json:"task"`
	SubStage  string  `json:"sub_stage,omitempty"`
}

// AssignmentTargetError is returned when an assignment target cannot be
// resolved; the assignment is not applied.
type AssignmentTargetError struct {
	Reason string
}

func (e *AssignmentTargetError) Error() string {
	return fmt.Sprintf("unsupported assignment target: %s", e.Reason)
}

// Assign moves a piece of work to newStaff and appends exactly one
// AssignmentAuditLog row recording the from/to staff and the acting
// admin/supervisor. The audit row is the only durable record of who
// assigned what to whom and when, so it is written even though nothing else
// is logged.
func Assign(db *gorm.DB, target AssignmentTarget, newStaff models.Staff, actor Actor) error {
	logRow := models.AssignmentAuditLog{
		LogID:            uuid.NewString(),
		OrderID:          target.OrderID,
		AssignmentTarget: target.Kind,
		SubStage:         target.SubStage,
		AssignedToID:     newStaff.ID,
		AssignedToName:   newStaff.Name,
		AssignedByID:     actor.StaffID,
		AssignedByName:   actor.Name,
		AssignedByRole:   actor.Role,
	}

	switch target.Kind {
	case models.AssignmentTargetOrderItem:
		var item models.OrderItem
		if err := db.Where("order_id = ? AND position = ?", target.OrderID, target.ItemIndex).
			First(&item).Error; err != nil {
			return &AssignmentTargetError{Reason: fmt.Sprintf("order %d has no item at index %d", target.OrderID, target.ItemIndex)}
		}
		if item.AssignedStaffID != nil {
			from := *item.AssignedStaffID
			logRow.AssignedFromID = &from
			logRow.AssignedFromName = item.AssignedStaffName
		}
		logRow.ItemID = &item.ID
		logRow.Stage = item.CurrentStage

		updates := map[string]interface{}{
			"assigned_staff_id":   newStaff.ID,
			"assigned_staff_name": newStaff.Name,
		}
		if err := db.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to assign item %d: %w", item.ID, err)
		}

	case models.AssignmentTargetStageTask:
		logRow.Stage = target.Task.Stage
		switch target.Task.Kind {
		case TaskRefEmbedded:
			if err := assignEmbeddedTask(db, target.Task, newStaff, &logRow); err != nil {
				return err
			}
		case TaskRefStandalone:
			if err := assignStandaloneTask(db, target.Task, newStaff, &logRow); err != nil {
				return err
			}
		default:
			return &AssignmentTargetError{Reason: fmt.Sprintf("unknown task ref kind %q", target.Task.Kind)}
		}

	default:
		return &AssignmentTargetError{Reason: fmt.Sprintf("unknown target kind %q", target.Kind)}
	}

	if err := db.Create(&logRow).Error; err != nil {
		return fmt.Errorf("assignment applied but audit log write failed: %w", err)
	}
	return nil
}

func assignEmbeddedTask(db *gorm.DB, ref TaskRef, newStaff models.Staff, logRow *models.AssignmentAuditLog) error {
	var order models.Order
	if err := db.First(&order, ref.OrderID).Error; err != nil {
		return &AssignmentTargetError{Reason: fmt.Sprintf("order %d not found", ref.OrderID)}
	}

	var tasks map[string]models.StageTask
	column := ""
	switch ref.Stage {
	case StageMarking:
		tasks, column = order.MarkingTasks.Data(), "marking_tasks"
	case StageStitching:
		tasks, column = order.StitchingTasks.Data(), "stitching_tasks"
	default:
		return &AssignmentTargetError{Reason: fmt.Sprintf("stage %q has no embedded tasks", ref.Stage)}
	}

	task, ok := tasks[ref.TaskKey]
	if !ok {
		return &AssignmentTargetError{Reason: fmt.Sprintf("task %q not found on order %d", ref.TaskKey, ref.OrderID)}
	}
	if task.AssignedStaffID != 0 {
		from := task.AssignedStaffID
		logRow.AssignedFromID = &from
		logRow.AssignedFromName = task.AssignedStaffName
	}

	task.AssignedStaffID = newStaff.ID
	task.AssignedStaffName = newStaff.Name
	tasks[ref.TaskKey] = task

	// Only the task map column is rewritten so sibling order fields written
	// concurrently by other stages are not clobbered.
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update(column, newTaskMap(tasks)).Error; err != nil {
		return fmt.Errorf("failed to assign task %q: %w", ref.TaskKey, err)
	}
	return nil
}

func assignStandaloneTask(db *gorm.DB, ref TaskRef, newStaff models.Staff, logRow *models.AssignmentAuditLog) error {
	if ref.Collection != (models.CuttingTask{}).TableName() {
		return &AssignmentTargetError{Reason: fmt.Sprintf("unknown task collection %q", ref.Collection)}
	}

	var task models.CuttingTask
	if err := db.First(&task, ref.DocID).Error; err != nil {
		return &AssignmentTargetError{Reason: fmt.Sprintf("task %d not found in %s", ref.DocID, ref.Collection)}
	}
	if task.AssignedStaffID != nil {
		from := *task.AssignedStaffID
		logRow.AssignedFromID = &from
		logRow.AssignedFromName = task.AssignedStaffName
	}

	updates := map[string]interface{}{
		"assigned_staff_id":   newStaff.ID,
		"assigned_staff_name": newStaff.Name,
	}
	if err := db.Model(&models.CuttingTask{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to assign cutting task %d: %w", task.ID, err)
	}
	return nil
}

// BulkAssign applies assignments independently: a failure on one target
// never aborts the others. It returns the number of successes; per-target
// failures are logged and returned for the caller to report.
func BulkAssign(db *gorm.DB, targets []AssignmentTarget, newStaff models.Staff, actor Actor) (int, []error) {
	successCount := 0
	var failures []error
	for _, target := range targets {
		if err := Assign(db, target, newStaff, actor); err != nil {
			log.Printf("bulk assign: target on order %d failed: %v", target.OrderID, err)
			failures = append(failures, err)
			continue
		}
		successCount++
	}
	return successCount, failures
}

// AssignmentLogsForOrder returns the audit trail for an order, newest first
func AssignmentLogsForOrder(db *gorm.DB, orderID uint) ([]models.AssignmentAuditLog, error) {
	var logs []models.AssignmentAuditLog
	err := db.Where("order_id = ?", orderID).Order("created_at desc").Find(&logs).Error
	return logs, err
}

// AssignmentLogsForStaff returns the audit trail of work assigned to a
// staff member, newest first
func AssignmentLogsForStaff(db *gorm.DB, staffID uint) ([]models.AssignmentAuditLog, error) {
	var logs []models.AssignmentAuditLog
	err := db.Where("assigned_to_id = ?", staffID).Order("created_at desc").Find(&logs).Error
	return logs, err
}
