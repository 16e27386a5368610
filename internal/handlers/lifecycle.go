package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/hitoha/lifequest-api/internal/errors"
	"github.com/hitoha/lifequest-api/internal/middleware"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/services"
)

// LifecycleHandler exposes the status-transition and progress endpoints of
// parent tasks.
type LifecycleHandler struct {
	taskService      *services.TaskService
	lifecycleService *services.LifecycleService
	progressService  *services.ProgressService
	recurrence       *services.RecurrenceService
}

// NewLifecycleHandler creates a new LifecycleHandler.
func NewLifecycleHandler(
	taskService *services.TaskService,
	lifecycleService *services.LifecycleService,
	progressService *services.ProgressService,
	recurrence *services.RecurrenceService,
) *LifecycleHandler {
	return &LifecycleHandler{
		taskService:      taskService,
		lifecycleService: lifecycleService,
		progressService:  progressService,
		recurrence:       recurrence,
	}
}

// ownedTask resolves the path task and rejects other users' tasks.
func (h *LifecycleHandler) ownedTask(c *gin.Context) (*models.Task, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}

	task, err := h.taskService.GetTask(c.Param("id"), userID)
	if err != nil {
		respondLifecycleError(c, err)
		return nil, false
	}
	return task, true
}

// StartTask moves a parent task to in-progress, resuming or generating its
// subtasks.
func (h *LifecycleHandler) StartTask(c *gin.Context) {
	task, ok := h.ownedTask(c)
	if !ok {
		return
	}

	type StartTaskRequest struct {
		GenerateSubtasks *bool `json:"generate_subtasks"`
	}

	generate := true
	var req StartTaskRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.GenerateSubtasks != nil {
		generate = *req.GenerateSubtasks
	}

	result, err := h.lifecycleService.Start(task.ID, generate)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PauseTask pauses a task and its unfinished children.
func (h *LifecycleHandler) PauseTask(c *gin.Context) {
	task, ok := h.ownedTask(c)
	if !ok {
		return
	}

	paused, pausedChildren, err := h.lifecycleService.Pause(task.ID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":            paused,
		"paused_children": pausedChildren,
	})
}

// CancelTask cancels a task and hard-deletes its unfinished children.
func (h *LifecycleHandler) CancelTask(c *gin.Context) {
	task, ok := h.ownedTask(c)
	if !ok {
		return
	}

	cancelled, deletedChildren, err := h.lifecycleService.Cancel(task.ID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":             cancelled,
		"deleted_children": deletedChildren,
	})
}

// RestartTask returns a cancelled parent task to pending.
func (h *LifecycleHandler) RestartTask(c *gin.Context) {
	task, ok := h.ownedTask(c)
	if !ok {
		return
	}

	restarted, err := h.lifecycleService.Restart(task.ID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, restarted)
}

// GetProgress reports completion statistics for a task.
func (h *LifecycleHandler) GetProgress(c *gin.Context) {
	task, ok := h.ownedTask(c)
	if !ok {
		return
	}

	progress, err := h.progressService.Calculate(task.ID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GenerateDailyTasks stamps today's subtasks from a recurring parent's
// templates. Calling it twice on the same day is rejected.
func (h *LifecycleHandler) GenerateDailyTasks(c *gin.Context) {
	task, ok := h.ownedTask(c)
	if !ok {
		return
	}

	created, err := h.recurrence.GenerateDailyTasks(task)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"subtasks": created,
		"count":    len(created),
	})
}

func respondLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotParentTask),
		errors.Is(err, services.ErrNotCancelled),
		errors.Is(err, services.ErrNotRecurringTask),
		errors.Is(err, services.ErrInvalidPattern),
		errors.Is(err, services.ErrNoSubtaskTemplates):
		apierrors.InvalidOperation(c, err.Error())
	case errors.Is(err, services.ErrDailyTasksExist):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
