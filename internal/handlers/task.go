package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/hitoha/lifequest-api/internal/errors"
	"github.com/hitoha/lifequest-api/internal/middleware"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/services"
	"github.com/hitoha/lifequest-api/internal/utils"
)

// TaskHandler coordinates task CRUD and AI generation endpoints.
type TaskHandler struct {
	taskService *services.TaskService
	aiService   *services.AIService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, aiService *services.AIService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		aiService:   aiService,
	}
}

// ListTasks returns the current user's tasks, optionally filtered by status,
// task type or parent.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		UserID:       userID,
		HomepageOnly: c.Query("homepage") == "true",
		Page:         params.Page,
		PageSize:     params.Limit,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		value, err := strconv.Atoi(statusStr)
		if err != nil || !models.TaskStatus(value).Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		status := models.TaskStatus(value)
		input.Status = &status
	}
	if taskType := c.Query("task_type"); taskType != "" {
		if !models.ValidTaskType(taskType) {
			apierrors.BadRequest(c, "Invalid task_type")
			return
		}
		input.TaskType = &taskType
	}
	if parentID := c.Query("parent_task_id"); parentID != "" {
		input.ParentTaskID = &parentID
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a specific task by ID.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.taskService.GetTask(c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// GetSubtasks returns a parent task's children in task order.
func (h *TaskHandler) GetSubtasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	subtasks, err := h.taskService.GetSubtasks(c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subtasks": subtasks})
}

// CreateTask creates a new one-off task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		TaskType    string     `json:"task_type"`
		Category    string     `json:"category"`
		Difficulty  int        `json:"difficulty" binding:"omitempty,min=1,max=5"`
		Experience  int        `json:"experience" binding:"omitempty,min=0"`
		DueDate     *time.Time `json:"due_date"`
		SkillTags   []string   `json:"skill_tags"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		TaskType:    req.TaskType,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Experience:  req.Experience,
		DueDate:     req.DueDate,
		SkillTags:   req.SkillTags,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// CreateRecurringTask creates a recurring parent task with optional subtask
// templates. Dated instances appear when the task is started.
func (h *TaskHandler) CreateRecurringTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type TemplateRequest struct {
		Title      string `json:"title" binding:"required"`
		Difficulty int    `json:"difficulty" binding:"omitempty,min=1,max=5"`
		Experience int    `json:"experience" binding:"omitempty,min=0"`
	}
	type CreateRecurringTaskRequest struct {
		Title             string            `json:"title" binding:"required"`
		Description       string            `json:"description"`
		Category          string            `json:"category"`
		Difficulty        int               `json:"difficulty" binding:"omitempty,min=1,max=5"`
		Experience        int               `json:"experience" binding:"omitempty,min=0"`
		RecurrencePattern string            `json:"recurrence_pattern" binding:"required"`
		StartDate         *time.Time        `json:"start_date"`
		EndDate           *time.Time        `json:"end_date"`
		CompletionTarget  *float64          `json:"completion_target" binding:"omitempty,min=0,max=1"`
		SkillTags         []string          `json:"skill_tags"`
		SubtaskTemplates  []TemplateRequest `json:"subtask_templates"`
	}

	var req CreateRecurringTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateRecurringTaskInput{
		UserID:            userID,
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Difficulty:        req.Difficulty,
		Experience:        req.Experience,
		RecurrencePattern: models.RecurrencePattern(req.RecurrencePattern),
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		CompletionTarget:  req.CompletionTarget,
		SkillTags:         req.SkillTags,
	}
	for _, tpl := range req.SubtaskTemplates {
		input.SubtaskTemplates = append(input.SubtaskTemplates, services.SubtaskTemplateInput{
			Title:      tpl.Title,
			Difficulty: tpl.Difficulty,
			Experience: tpl.Experience,
		})
	}

	task, err := h.taskService.CreateRecurringTask(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask updates an existing task. Completing a task here also triggers
// achievement evaluation.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateTaskRequest struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		Status       *int       `json:"status"`
		Category     *string    `json:"category"`
		Difficulty   *int       `json:"difficulty" binding:"omitempty,min=1,max=5"`
		Experience   *int       `json:"experience" binding:"omitempty,min=0"`
		DueDate      *time.Time `json:"due_date"`
		ClearDueDate bool       `json:"clear_due_date"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Experience:  req.Experience,
		DueDate:     req.DueDate,
		ClearDue:    req.ClearDueDate,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.taskService.UpdateTask(c.Param("id"), userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask hard-deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.taskService.DeleteTask(c.Param("id"), userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// GenerateTasks extracts tasks from free text with AI and creates them for
// the current user.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// Check if AI service is available
	if h.aiService == nil {
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		return
	}

	generated, err := h.aiService.GenerateTasksFromText(c.Request.Context(), req.Text)
	if err != nil {
		apierrors.InternalError(c, "Failed to generate tasks")
		return
	}

	created := make([]models.Task, 0, len(generated))
	for _, g := range generated {
		task, err := h.taskService.CreateTask(services.CreateTaskInput{
			UserID:      userID,
			Title:       g.Title,
			Description: g.Description,
			Category:    g.Category,
			Difficulty:  g.Difficulty,
			DueDate:     g.DueDate,
		})
		if err != nil {
			continue
		}
		created = append(created, *task)
	}

	c.JSON(http.StatusCreated, gin.H{
		"tasks": created,
		"count": len(created),
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidTaskType),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrInvalidPattern):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.RespondWithError(c, http.StatusForbidden,
			apierrors.NewAPIError(apierrors.ErrCodeInvalidOperation, err.Error()))
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
