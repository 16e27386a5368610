package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotParentTask = errors.New("task is not a parent task")
	ErrNotCancelled  = errors.New("only a cancelled task can be restarted")
)

// LifecycleService enforces task status transitions and cascades them to
// child instances. Every transition is caller-initiated; there are no timed
// transitions.
type LifecycleService struct {
	taskRepo   repository.TaskRepository
	recurrence *RecurrenceService
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(taskRepo repository.TaskRepository, recurrence *RecurrenceService) *LifecycleService {
	return &LifecycleService{
		taskRepo:   taskRepo,
		recurrence: recurrence,
	}
}

// StartResult describes the outcome of starting a parent task.
type StartResult struct {
	Parent   *models.Task  `json:"parent_task"`
	Subtasks []models.Task `json:"subtasks"`
	Resumed  int64         `json:"resumed_count"`
}

// Start moves a parent task to in-progress. Existing paused children are
// resumed; when no children exist yet they are generated (recurrence
// expansion for recurring parents, template subtasks otherwise).
func (s *LifecycleService) Start(taskID string, generateSubtasks bool) (*StartResult, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsParentTask {
		return nil, ErrNotParentTask
	}

	task.Status = models.TaskStatusInProgress
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to start task: %w", err)
	}

	result := &StartResult{Parent: task, Subtasks: []models.Task{}}
	if !generateSubtasks {
		return result, nil
	}

	children, err := s.taskRepo.ListChildren(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	if len(children) > 0 {
		resumed, err := s.taskRepo.ResumePausedChildren(task.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resume paused children: %w", err)
		}
		result.Resumed = resumed

		if result.Subtasks, err = s.taskRepo.ListChildren(task.ID); err != nil {
			return nil, fmt.Errorf("failed to reload children: %w", err)
		}
		return result, nil
	}

	if task.IsRecurring {
		result.Subtasks, err = s.recurrence.ExpandRecurringTask(task)
	} else {
		result.Subtasks, err = s.recurrence.GenerateTemplateSubtasks(task)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Pause moves the task and every child not already completed to paused.
// Completed children are left untouched.
func (s *LifecycleService) Pause(taskID string) (*models.Task, int64, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, 0, err
	}

	task.Status = models.TaskStatusPaused
	if err := s.taskRepo.Update(task); err != nil {
		return nil, 0, fmt.Errorf("failed to pause task: %w", err)
	}

	// Cascade failure after the parent write leaves the pair inconsistent;
	// surfaced to the caller, not retried.
	paused, err := s.taskRepo.PauseActiveChildren(task.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to pause children: %w", err)
	}

	return task, paused, nil
}

// Cancel marks the task cancelled, bumps its cancel counter and hard-deletes
// every child that is not in a completed terminal state. The deletion is
// irreversible.
func (s *LifecycleService) Cancel(taskID string) (*models.Task, int64, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	task.Status = models.TaskStatusCancelled
	task.CancelCount++
	task.LastCancelledAt = &now
	if err := s.taskRepo.Update(task); err != nil {
		return nil, 0, fmt.Errorf("failed to cancel task: %w", err)
	}

	deleted, err := s.taskRepo.DeleteActiveChildren(task.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to delete children: %w", err)
	}

	return task, deleted, nil
}

// Restart moves a cancelled parent task back to pending. The cancel counter
// keeps its value.
func (s *LifecycleService) Restart(taskID string) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusCancelled {
		return nil, ErrNotCancelled
	}
	if !task.IsParentTask {
		return nil, ErrNotParentTask
	}

	task.Status = models.TaskStatusPending
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to restart task: %w", err)
	}

	return task, nil
}

func (s *LifecycleService) findTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}
