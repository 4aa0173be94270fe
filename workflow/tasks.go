package workflow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/priya-tailors/priyas-tailoring-api/models"
)

// InstantiateStageTasks creates the task records for a stage the order has
// just entered, from the garment type's templates. Marking and stitching
// tasks are written as an embedded map on the order; cutting tasks become
// standalone rows. Stages without templates are a no-op, and a stage whose
// tasks already exist is never re-instantiated, so editing a template only
// affects future orders.
func InstantiateStageTasks(db *gorm.DB, order *models.Order, stage string) error {
	switch stage {
	case StageMarking, StageStitching, StageCutting:
	default:
		return nil
	}

	var templates []models.StageTemplate
	if err := db.Where("garment_type = ? AND stage = ?", order.GarmentType, stage).
		Order("task_order asc").Find(&templates).Error; err != nil {
		return fmt.Errorf("failed to load %s templates: %w", stage, err)
	}
	if len(templates) == 0 {
		return nil
	}

	if stage == StageCutting {
		var count int64
		if err := db.Model(&models.CuttingTask{}).
			Where("order_id = ? AND item_id IS NULL", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, tpl := range templates {
			task := models.CuttingTask{
				OrderID:     order.ID,
				TaskName:    tpl.TaskName,
				TaskOrder:   tpl.TaskOrder,
				IsMandatory: tpl.IsMandatory,
				Status:      "pending",
			}
			if err := db.Create(&task).Error; err != nil {
				return fmt.Errorf("failed to create cutting task: %w", err)
			}
		}
		return nil
	}

	column := "marking_tasks"
	existing := order.MarkingTasks.Data()
	if stage == StageStitching {
		column = "stitching_tasks"
		existing = order.StitchingTasks.Data()
	}
	if len(existing) > 0 {
		return nil
	}

	tasks := make(map[string]models.StageTask, len(templates))
	for _, tpl := range templates {
		key := uuid.NewString()
		tasks[key] = models.StageTask{
			TaskKey:     key,
			TaskName:    tpl.TaskName,
			TaskOrder:   tpl.TaskOrder,
			IsMandatory: tpl.IsMandatory,
			Status:      "pending",
		}
	}

	value := newTaskMap(tasks)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update(column, value).Error; err != nil {
		return fmt.Errorf("failed to write %s: %w", column, err)
	}
	if stage == StageStitching {
		order.StitchingTasks = value
	} else {
		order.MarkingTasks = value
	}
	return nil
}

func newTaskMap(tasks map[string]models.StageTask) datatypes.JSONType[map[string]models.StageTask] {
	return datatypes.NewJSONType(tasks)
}

// InstantiateItemCuttingTasks creates the standalone cutting rows for an
// item entering the cutting stage, from the item's own garment type's
// templates. An item whose rows already exist is never re-instantiated.
func InstantiateItemCuttingTasks(db *gorm.DB, item *models.OrderItem) error {
	var templates []models.StageTemplate
	if err := db.Where("garment_type = ? AND stage = ?", item.GarmentType, StageCutting).
		Order("task_order asc").Find(&templates).Error; err != nil {
		return fmt.Errorf("failed to load cutting templates: %w", err)
	}
	if len(templates) == 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.CuttingTask{}).Where("item_id = ?", item.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, tpl := range templates {
		task := models.CuttingTask{
			OrderID:     item.OrderID,
			ItemID:      &item.ID,
			TaskName:    tpl.TaskName,
			TaskOrder:   tpl.TaskOrder,
			IsMandatory: tpl.IsMandatory,
			Status:      "pending",
		}
		if err := db.Create(&task).Error; err != nil {
			return fmt.Errorf("failed to create cutting task: %w", err)
		}
	}
	return nil
}

// CompleteEmbeddedTask marks one embedded marking/stitching task done. Only
// the affected task map column is rewritten, leaving sibling order fields
// untouched.
func CompleteEmbeddedTask(db *gorm.DB, order *models.Order, stage, taskKey string, actor Actor) error {
	var tasks map[string]models.StageTask
	column := ""
	switch stage {
	case StageMarking:
		tasks, column = order.MarkingTasks.Data(), "marking_tasks"
	case StageStitching:
		tasks, column = order.StitchingTasks.Data(), "stitching_tasks"
	default:
		return fmt.Errorf("stage %q has no embedded tasks", stage)
	}

	task, ok := tasks[taskKey]
	if !ok {
		return errors.New("task not found")
	}
	task.Status = "done"
	tasks[taskKey] = task

	value := newTaskMap(tasks)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update(column, value).Error; err != nil {
		return fmt.Errorf("failed to write %s: %w", column, err)
	}
	if stage == StageStitching {
		order.StitchingTasks = value
	} else {
		order.MarkingTasks = value
	}
	return nil
}
