package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/priya-tailors/priyas-tailoring-api/models"
)

func createTestTemplates(t *testing.T, db *gorm.DB, garmentType, stage string, names ...string) {
	t.Helper()

	for i, name := range names {
		require.NoError(t, db.Create(&models.StageTemplate{
			GarmentType: garmentType,
			Stage:       stage,
			TaskName:    name,
			TaskOrder:   i + 1,
			IsMandatory: true,
		}).Error)
	}
}

func TestInstantiateMarkingTasks(t *testing.T) {
	db := setupWorkflowTestDB(t)
	createTestTemplates(t, db, "blouse", StageMarking, "neck outline", "dart lines")
	order := createTestOrder(t, db, StageMarking, []string{StageMarking})

	require.NoError(t, InstantiateStageTasks(db, order, StageMarking))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	tasks := stored.MarkingTasks.Data()
	require.Len(t, tasks, 2)
	names := map[string]bool{}
	for key, task := range tasks {
		assert.Equal(t, key, task.TaskKey)
		assert.Equal(t, "pending", task.Status)
		assert.True(t, task.IsMandatory)
		names[task.TaskName] = true
	}
	assert.True(t, names["neck outline"])
	assert.True(t, names["dart lines"])
}

func TestInstantiateCuttingTasksAsRows(t *testing.T) {
	db := setupWorkflowTestDB(t)
	createTestTemplates(t, db, "blouse", StageCutting, "front panel", "sleeve panels", "lining")
	order := createTestOrder(t, db, StageCutting, []string{StageCutting})

	require.NoError(t, InstantiateStageTasks(db, order, StageCutting))

	var tasks []models.CuttingTask
	require.NoError(t, db.Where("order_id = ?", order.ID).Order("task_order asc").Find(&tasks).Error)
	require.Len(t, tasks, 3)
	assert.Equal(t, "front panel", tasks[0].TaskName)
	assert.Equal(t, "pending", tasks[0].Status)

	// Nothing lands on the embedded columns
	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Empty(t, stored.MarkingTasks.Data())
	assert.Empty(t, stored.StitchingTasks.Data())
}

func TestInstantiateItemCuttingTasks(t *testing.T) {
	db := setupWorkflowTestDB(t)
	createTestTemplates(t, db, "blouse", StageCutting, "front panel", "sleeve panels")
	order := createTestOrder(t, db, StageMarking, []string{StageMarking, StageCutting})
	item := createTestItem(t, db, order.ID, StageCutting, []string{StageCutting})

	require.NoError(t, InstantiateItemCuttingTasks(db, item))

	var tasks []models.CuttingTask
	require.NoError(t, db.Where("item_id = ?", item.ID).Order("task_order asc").Find(&tasks).Error)
	require.Len(t, tasks, 2)
	assert.Equal(t, "front panel", tasks[0].TaskName)
	assert.Equal(t, order.ID, tasks[0].OrderID)

	// Re-entry never duplicates the rows
	require.NoError(t, InstantiateItemCuttingTasks(db, item))
	var count int64
	require.NoError(t, db.Model(&models.CuttingTask{}).Where("item_id = ?", item.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestOrderAndItemCuttingTasksCoexist(t *testing.T) {
	db := setupWorkflowTestDB(t)
	createTestTemplates(t, db, "blouse", StageCutting, "front panel")
	order := createTestOrder(t, db, StageCutting, []string{StageCutting})
	item := createTestItem(t, db, order.ID, StageCutting, []string{StageCutting})

	// Item rows landing first do not suppress the order-level rows
	require.NoError(t, InstantiateItemCuttingTasks(db, item))
	require.NoError(t, InstantiateStageTasks(db, order, StageCutting))

	var orderLevel int64
	require.NoError(t, db.Model(&models.CuttingTask{}).
		Where("order_id = ? AND item_id IS NULL", order.ID).Count(&orderLevel).Error)
	assert.Equal(t, int64(1), orderLevel)

	var itemLevel []models.CuttingTask
	require.NoError(t, db.Where("item_id = ?", item.ID).Find(&itemLevel).Error)
	require.Len(t, itemLevel, 1)
	require.NotNil(t, itemLevel[0].ItemID)
	assert.Equal(t, item.ID, *itemLevel[0].ItemID)
}

func TestInstantiateStageTasksIdempotent(t *testing.T) {
	db := setupWorkflowTestDB(t)
	createTestTemplates(t, db, "blouse", StageStitching, "attach sleeves")
	order := createTestOrder(t, db, StageStitching, []string{StageStitching})

	require.NoError(t, InstantiateStageTasks(db, order, StageStitching))
	firstTasks := order.StitchingTasks.Data()
	require.Len(t, firstTasks, 1)

	// Template edits after instantiation do not touch the order
	createTestTemplates(t, db, "blouse", StageStitching, "hemming")
	require.NoError(t, InstantiateStageTasks(db, order, StageStitching))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, firstTasks, stored.StitchingTasks.Data())
}

func TestInstantiateStageTasksNoTemplates(t *testing.T) {
	db := setupWorkflowTestDB(t)
	order := createTestOrder(t, db, StageMarking, []string{StageMarking})

	require.NoError(t, InstantiateStageTasks(db, order, StageMarking))
	require.NoError(t, InstantiateStageTasks(db, order, StageIroning))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Empty(t, stored.MarkingTasks.Data())
}

func TestCompleteEmbeddedTask(t *testing.T) {
	db := setupWorkflowTestDB(t)
	createTestTemplates(t, db, "blouse", StageMarking, "neck outline")
	order := createTestOrder(t, db, StageMarking, []string{StageMarking})
	require.NoError(t, InstantiateStageTasks(db, order, StageMarking))

	var taskKey string
	for key := range order.MarkingTasks.Data() {
		taskKey = key
	}
	require.NotEmpty(t, taskKey)

	actor := Actor{StaffID: 5, Name: "Vani", Role: models.RoleMarking}
	require.NoError(t, CompleteEmbeddedTask(db, order, StageMarking, taskKey, actor))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, "done", stored.MarkingTasks.Data()[taskKey].Status)

	assert.Error(t, CompleteEmbeddedTask(db, order, StageMarking, "missing-key", actor))
	assert.Error(t, CompleteEmbeddedTask(db, order, StageCutting, taskKey, actor))
}
