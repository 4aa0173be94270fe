package workflow

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/priya-tailors/priyas-tailoring-api/models"
)

// Actor identifies the staff member performing a workflow action
type Actor struct {
	StaffID uint
	Name    string
	Role    string
}

// PartialWriteError reports that the primary state mutation succeeded but a
// trailing audit write (timeline or work log) failed. The state write is
// never reversed; the caller should log the error and move on, treating the
// missing history as a retryable inconsistency.
type PartialWriteError struct {
	OrderID uint
	Stage   string
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("order %d stage %q advanced but audit write failed: %v", e.OrderID, e.Stage, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// NormalizeAction maps a caller-supplied action to the recorded timeline
// action: checker stages record checked_ok/checked_reject, every other
// stage records completed.
func NormalizeAction(stage, action string) string {
	if IsCheckerStage(stage) {
		if action == "reject" || action == models.ActionCheckedReject {
			return models.ActionCheckedReject
		}
		return models.ActionCheckedOK
	}
	return models.ActionCompleted
}

// appendAuditRecords writes the timeline entry and the staff work log for a
// completed stage action. The two writes are independent; the first failure
// is returned wrapped in PartialWriteError.
func appendAuditRecords(db *gorm.DB, orderID uint, itemID *uint, actor Actor, stage, action string) error {
	entry := models.TimelineEntry{
		OrderID: orderID,
		ItemID:  itemID,
		StaffID: actor.StaffID,
		Role:    actor.Role,
		Stage:   stage,
		Action:  action,
	}
	if err := db.Create(&entry).Error; err != nil {
		return &PartialWriteError{OrderID: orderID, Stage: stage, Err: fmt.Errorf("timeline entry: %w", err)}
	}

	workLog := models.StaffWorkLog{
		StaffID: actor.StaffID,
		OrderID: orderID,
		ItemID:  itemID,
		Role:    actor.Role,
		Stage:   stage,
		Action:  action,
	}
	if err := db.Create(&workLog).Error; err != nil {
		return &PartialWriteError{OrderID: orderID, Stage: stage, Err: fmt.Errorf("staff work log: %w", err)}
	}
	return nil
}

// CompleteOrderStage advances an order past its current stage. It resolves
// the next stage, merge-writes the order mutation (plus any stage-specific
// payload columns), then appends the timeline entry and staff work log.
//
// The three writes are sequential and not fenced by a transaction or a
// version check: if the state write lands and an audit write fails, the
// order stays advanced and a PartialWriteError is returned. Concurrent
// completions of the same order are last-write-wins.
func CompleteOrderStage(db *gorm.DB, order *models.Order, actor Actor, action string, payload map[string]interface{}) error {
	if order.Status != models.OrderStatusInProgress && order.Status != models.OrderStatusConfirmedLocked {
		return fmt.Errorf("order %d is not in a completable state (status %q)", order.ID, order.Status)
	}

	completedStage := order.CurrentStage
	next, err := NextStage(completedStage, order.ActiveStages)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	for k, v := range payload {
		updates[k] = v
	}

	if next == "" {
		// Terminal only when the completed stage is genuinely the last
		// active one; otherwise the active-stage set is misconfigured.
		if !ContainsStage(order.ActiveStages, completedStage) {
			return &NoNextStageError{Stage: completedStage}
		}
		updates["current_stage"] = ""
		updates["status"] = models.OrderStatusCompleted
		order.CurrentStage = ""
		order.Status = models.OrderStatusCompleted
	} else {
		updates["current_stage"] = next
		updates["status"] = models.OrderStatusInProgress
		order.CurrentStage = next
		order.Status = models.OrderStatusInProgress
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order %d: %w", order.ID, err)
	}

	normalized := NormalizeAction(completedStage, action)
	return appendAuditRecords(db, order.ID, nil, actor, completedStage, normalized)
}

// CompleteItemStage advances a single order item past its current stage,
// with the same write sequence and failure semantics as CompleteOrderStage.
func CompleteItemStage(db *gorm.DB, item *models.OrderItem, actor Actor, action string) error {
	if item.Status != models.ItemStatusInProgress && item.Status != models.ItemStatusDraft {
		return fmt.Errorf("item %d is not in a completable state (status %q)", item.ID, item.Status)
	}

	completedStage := item.CurrentStage
	next, err := NextStage(completedStage, item.ActiveStages)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if next == "" {
		if !ContainsStage(item.ActiveStages, completedStage) {
			return &NoNextStageError{Stage: completedStage}
		}
		updates["current_stage"] = ""
		updates["status"] = models.ItemStatusCompleted
		item.CurrentStage = ""
		item.Status = models.ItemStatusCompleted
	} else {
		updates["current_stage"] = next
		updates["status"] = models.ItemStatusInProgress
		item.CurrentStage = next
		item.Status = models.ItemStatusInProgress
	}

	if err := db.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}

	normalized := NormalizeAction(completedStage, action)
	return appendAuditRecords(db, item.OrderID, &item.ID, actor, completedStage, normalized)
}

// RejectItemStage sends an item backward from a checker stage to the
// caller-supplied previous stage, bypassing the forward resolver. The item
// status resets to in_progress, or to hold when hold is set.
func RejectItemStage(db *gorm.DB, item *models.OrderItem, previousStage string, hold bool, actor Actor) error {
	checkerStage := item.CurrentStage
	if !IsCheckerStage(checkerStage) {
		return fmt.Errorf("item %d current stage %q is not a checker stage", item.ID, checkerStage)
	}
	if !IsKnownStage(previousStage) {
		return &UnknownStageError{Stage: previousStage}
	}
	if !ContainsStage(item.ActiveStages, previousStage) {
		return fmt.Errorf("previous stage %q is not active for item %d", previousStage, item.ID)
	}

	status := models.ItemStatusInProgress
	if hold {
		status = models.ItemStatusHold
	}

	updates := map[string]interface{}{
		"current_stage": previousStage,
		"status":        status,
	}
	if err := db.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	item.CurrentStage = previousStage
	item.Status = status

	return appendAuditRecords(db, item.OrderID, &item.ID, actor, checkerStage, models.ActionCheckedReject)
}

// MarkOrderDelivered moves a completed order to delivered and records the
// handover in the timeline and work log.
func MarkOrderDelivered(db *gorm.DB, order *models.Order, actor Actor) error {
	if order.Status != models.OrderStatusCompleted {
		return fmt.Errorf("order %d cannot be delivered from status %q", order.ID, order.Status)
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusDelivered).Error; err != nil {
		return fmt.Errorf("failed to update order %d: %w", order.ID, err)
	}
	order.Status = models.OrderStatusDelivered

	// The handover is recorded against the last stage the order worked
	// through, whatever its active-stage set was.
	if err := appendAuditRecords(db, order.ID, nil, actor, LastActiveStage(order.ActiveStages), models.ActionDelivered); err != nil {
		// Secondary write; the delivery itself stands.
		log.Printf("delivery audit write failed for order %d: %v", order.ID, err)
		return err
	}
	return nil
}
