package repository

import (
	"database/sql"
	"time"

	"github.com/hitoha/lifequest-api/internal/database"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// CreateBatch inserts all tasks in a single multi-row statement.
func (r *GormTaskRepository) CreateBatch(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.Create(&tasks).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.user_id = ?", filter.UserID)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.TaskType != nil {
		query = query.Where("tasks.task_type = ?", *filter.TaskType)
	}
	if filter.ParentTaskID != nil {
		query = query.Where("tasks.parent_task_id = ?", *filter.ParentTaskID)
	}
	if filter.HomepageOnly {
		query = query.Where("tasks.parent_task_id IS NOT NULL OR (tasks.task_type = ? AND tasks.parent_task_id IS NULL)", models.TaskTypeDaily)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.HomepageOnly {
		listQuery = listQuery.Order("tasks.task_order ASC, tasks.created_at ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListChildren lists a parent's children ordered by task_order
func (r *GormTaskRepository) ListChildren(parentID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("parent_task_id = ?", parentID).
		Order("task_order ASC").
		Find(&tasks).Error
	return tasks, err
}

// ListByUserAndStatuses lists a user's tasks in the given states
func (r *GormTaskRepository) ListByUserAndStatuses(userID string, statuses []models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("user_id = ? AND status IN ?", userID, statusValues(statuses)).
		Order("updated_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete hard-deletes a task
func (r *GormTaskRepository) Delete(id string) error {
	return r.db.Delete(&models.Task{}, "id = ?", id).Error
}

// ResumePausedChildren moves a parent's paused children back to pending
func (r *GormTaskRepository) ResumePausedChildren(parentID string) (int64, error) {
	result := r.db.Model(&models.Task{}).
		Where("parent_task_id = ? AND status = ?", parentID, models.TaskStatusPaused).
		Update("status", models.TaskStatusPending)
	return result.RowsAffected, result.Error
}

// PauseActiveChildren pauses every child not in a completed terminal state
func (r *GormTaskRepository) PauseActiveChildren(parentID string) (int64, error) {
	result := r.db.Model(&models.Task{}).
		Where("parent_task_id = ? AND status NOT IN ?", parentID, statusValues(models.CompletedTerminalStatuses())).
		Update("status", models.TaskStatusPaused)
	return result.RowsAffected, result.Error
}

// DeleteActiveChildren hard-deletes every child not in a completed terminal state
func (r *GormTaskRepository) DeleteActiveChildren(parentID string) (int64, error) {
	result := r.db.
		Where("parent_task_id = ? AND status NOT IN ?", parentID, statusValues(models.CompletedTerminalStatuses())).
		Delete(&models.Task{})
	return result.RowsAffected, result.Error
}

// CountChildrenOnDate counts a parent's instances dated to one day
func (r *GormTaskRepository) CountChildrenOnDate(parentID, taskDate string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("parent_task_id = ? AND task_date = ?", parentID, taskDate).
		Count(&count).Error
	return count, err
}

// CountByUserAndStatuses counts a user's tasks in the given states
func (r *GormTaskRepository) CountByUserAndStatuses(userID string, statuses []models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("user_id = ? AND status IN ?", userID, statusValues(statuses)).
		Count(&count).Error
	return count, err
}

// CountCompletedWithSkillTag counts completed tasks carrying a skill tag
func (r *GormTaskRepository) CountCompletedWithSkillTag(userID, tag string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("user_id = ? AND status IN ?", userID, statusValues(models.CompletedTerminalStatuses())).
		Where("skill_tags LIKE ?", "%\""+tag+"\"%").
		Count(&count).Error
	return count, err
}

// CountCompletedAfter counts tasks completed strictly after a point in time
func (r *GormTaskRepository) CountCompletedAfter(userID string, after time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("user_id = ? AND status IN ? AND updated_at > ?", userID, statusValues(models.CompletedTerminalStatuses()), after).
		Count(&count).Error
	return count, err
}

// LatestCancellation returns the most recent last_cancelled_at across the user's tasks
func (r *GormTaskRepository) LatestCancellation(userID string) (*time.Time, error) {
	row := r.db.Model(&models.Task{}).
		Select("MAX(last_cancelled_at)").
		Where("user_id = ? AND last_cancelled_at IS NOT NULL", userID).
		Row()

	var latest sql.NullTime
	if err := row.Scan(&latest); err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	t := latest.Time
	return &t, nil
}

// statusValues converts typed statuses to their storage encoding for queries.
func statusValues(statuses []models.TaskStatus) []int {
	values := make([]int, len(statuses))
	for i, s := range statuses {
		values[i] = int(s)
	}
	return values
}
