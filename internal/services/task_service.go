package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hitoha/lifequest-api/internal/constants"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrNotTaskOwner     = errors.New("only the task owner can perform this action")
	ErrTitleRequired    = errors.New("title is required")
	ErrTitleEmpty       = errors.New("title cannot be empty")
	ErrInvalidTaskType  = errors.New("invalid task type")
	ErrInvalidStatus    = errors.New("invalid task status")
	ErrInvalidDateRange = errors.New("end date must not be before start date")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo     repository.TaskRepository
	templateRepo repository.SubtaskTemplateRepository
	evaluator    *AchievementService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, templateRepo repository.SubtaskTemplateRepository, evaluator *AchievementService) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		templateRepo: templateRepo,
		evaluator:    evaluator,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID       string
	Status       *models.TaskStatus
	TaskType     *string
	ParentTaskID *string
	HomepageOnly bool
	Page         int
	PageSize     int
}

// CreateTaskInput represents input for creating a standalone task
type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	TaskType    string
	Category    string
	Difficulty  int
	Experience  int
	DueDate     *time.Time
	SkillTags   []string
}

// SubtaskTemplateInput describes one template row of a recurring task
type SubtaskTemplateInput struct {
	Title      string
	Difficulty int
	Experience int
}

// CreateRecurringTaskInput represents input for creating a recurring parent
type CreateRecurringTaskInput struct {
	UserID            string
	Title             string
	Description       string
	Category          string
	Difficulty        int
	Experience        int
	RecurrencePattern models.RecurrencePattern
	StartDate         *time.Time
	EndDate           *time.Time
	CompletionTarget  *float64
	SkillTags         []string
	SubtaskTemplates  []SubtaskTemplateInput
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Category    *string
	Difficulty  *int
	Experience  *int
	DueDate     *time.Time
	ClearDue    bool
}

// ListTasks returns a user's tasks with the given filters applied
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		UserID:       input.UserID,
		Status:       input.Status,
		TaskType:     input.TaskType,
		ParentTaskID: input.ParentTaskID,
		HomepageOnly: input.HomepageOnly,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a single task owned by the user
func (s *TaskService) GetTask(taskID, userID string) (*models.Task, error) {
	return s.findOwnedTask(taskID, userID)
}

// GetSubtasks returns a parent's children ordered by task_order
func (s *TaskService) GetSubtasks(taskID, userID string) ([]models.Task, error) {
	if _, err := s.findOwnedTask(taskID, userID); err != nil {
		return nil, err
	}

	subtasks, err := s.taskRepo.ListChildren(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}

	return subtasks, nil
}

// CreateTask creates a standalone (non-recurring) task
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.TaskType == "" {
		input.TaskType = models.TaskTypeSide
	}
	if !models.ValidTaskType(input.TaskType) {
		return nil, ErrInvalidTaskType
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusPending,
		TaskType:    input.TaskType,
		Category:    input.Category,
		Difficulty:  input.Difficulty,
		Experience:  input.Experience,
		DueDate:     input.DueDate,
	}
	if err := setSkillTags(task, input.SkillTags); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// CreateRecurringTask creates a recurring parent task together with its
// subtask templates. Instances are generated later, when the task is started.
func (s *TaskService) CreateRecurringTask(input CreateRecurringTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if !input.RecurrencePattern.Valid() {
		return nil, ErrInvalidPattern
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	target := constants.DefaultCompletionTarget
	if input.CompletionTarget != nil {
		target = *input.CompletionTarget
	}

	task := &models.Task{
		ID:                uuid.NewString(),
		UserID:            input.UserID,
		Title:             input.Title,
		Description:       input.Description,
		Status:            models.TaskStatusPending,
		TaskType:          models.TaskTypeDaily,
		Category:          input.Category,
		Difficulty:        input.Difficulty,
		Experience:        input.Experience,
		IsParentTask:      true,
		IsRecurring:       true,
		RecurrencePattern: input.RecurrencePattern,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		CompletionTarget:  &target,
	}
	if err := setSkillTags(task, input.SkillTags); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create recurring task: %w", err)
	}

	if len(input.SubtaskTemplates) > 0 {
		templates := make([]models.SubtaskTemplate, len(input.SubtaskTemplates))
		for i, tpl := range input.SubtaskTemplates {
			templates[i] = models.SubtaskTemplate{
				ID:           uuid.NewString(),
				ParentTaskID: task.ID,
				Title:        tpl.Title,
				Difficulty:   tpl.Difficulty,
				Experience:   tpl.Experience,
				TaskOrder:    i + 1,
			}
		}
		if err := s.templateRepo.CreateBatch(templates); err != nil {
			return nil, fmt.Errorf("failed to create subtask templates: %w", err)
		}
	}

	return task, nil
}

// UpdateTask updates an existing task. When the update moves the task into a
// completed state, achievement rules are re-evaluated for the owner.
func (s *TaskService) UpdateTask(taskID, userID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findOwnedTask(taskID, userID)
	if err != nil {
		return nil, err
	}

	wasCompleted := task.Status.IsCompletedTerminal()

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Category != nil {
		task.Category = *input.Category
	}
	if input.Difficulty != nil {
		task.Difficulty = *input.Difficulty
	}
	if input.Experience != nil {
		task.Experience = *input.Experience
	}
	if input.ClearDue {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// A fresh completion is the signal that drives achievement unlocks.
	// Evaluation failures never fail the update itself.
	if !wasCompleted && task.Status.IsCompletedTerminal() && s.evaluator != nil {
		if _, err := s.evaluator.CheckAndUnlock(task.UserID); err != nil {
			log.Printf("achievement evaluation after completing task %s failed: %v", task.ID, err)
		}
	}

	return task, nil
}

// DeleteTask hard-deletes a task owned by the user
func (s *TaskService) DeleteTask(taskID, userID string) error {
	if _, err := s.findOwnedTask(taskID, userID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) findOwnedTask(taskID, userID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	// Another user's task is indistinguishable from a missing one.
	if task.UserID != userID {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

func setSkillTags(task *models.Task, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode skill tags: %w", err)
	}
	task.SkillTags = raw
	return nil
}
