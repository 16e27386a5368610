package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/hitoha/lifequest-api/internal/constants"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/repository"
	"gorm.io/gorm"
)

// TaskProgress is the derived, non-persisted progress of a task.
type TaskProgress struct {
	TaskID           string  `json:"task_id"`
	TotalDays        int     `json:"total_days"`
	CompletedDays    int     `json:"completed_days"`
	MissedDays       int     `json:"missed_days"`
	RemainingDays    int     `json:"remaining_days"`
	CompletionRate   float64 `json:"completion_rate"`
	TargetRate       float64 `json:"target_rate"`
	IsDailyCompleted bool    `json:"is_daily_completed"`
}

// ProgressService derives completion metrics from a parent task and its
// instances. It never writes.
type ProgressService struct {
	taskRepo repository.TaskRepository
}

// NewProgressService creates a new ProgressService
func NewProgressService(taskRepo repository.TaskRepository) *ProgressService {
	return &ProgressService{taskRepo: taskRepo}
}

// Calculate computes the progress of a task. For a recurring parent the day
// counts follow the recurrence pattern; a non-recurring task degenerates to
// a single expected day.
func (s *ProgressService) Calculate(taskID string) (*TaskProgress, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !task.IsRecurring {
		return s.singleTaskProgress(task), nil
	}
	return s.recurringProgress(task)
}

func (s *ProgressService) singleTaskProgress(task *models.Task) *TaskProgress {
	completed := 0
	if task.Status == models.TaskStatusCompleted {
		completed = 1
	}

	target := 1.0
	if task.CompletionTarget != nil {
		target = *task.CompletionTarget
	}

	return &TaskProgress{
		TaskID:           task.ID,
		TotalDays:        1,
		CompletedDays:    completed,
		RemainingDays:    1 - completed,
		CompletionRate:   float64(completed),
		TargetRate:       target,
		IsDailyCompleted: completed == 1,
	}
}

func (s *ProgressService) recurringProgress(task *models.Task) (*TaskProgress, error) {
	if !task.RecurrencePattern.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, task.RecurrencePattern)
	}

	start := dateOnly(time.Now())
	if task.StartDate != nil {
		start = dateOnly(*task.StartDate)
	}
	end := start.AddDate(0, 0, constants.DefaultRecurrenceDays)
	if task.EndDate != nil {
		end = dateOnly(*task.EndDate)
	}

	totalDays := countPatternDays(task.RecurrencePattern, start, end)

	today := dateOnly(time.Now())
	horizon := today
	if end.Before(horizon) {
		horizon = end
	}
	daysSinceStart := 0
	if !horizon.Before(start) {
		daysSinceStart = countPatternDays(task.RecurrencePattern, start, horizon)
	}

	children, err := s.taskRepo.ListChildren(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	todayStr := today.Format(constants.TaskDateLayout)
	completedDates := make(map[string]struct{})
	todayTotal, todayCompleted := 0, 0
	for _, child := range children {
		if child.TaskDate == nil {
			continue
		}
		if child.Status.IsCompletedTerminal() {
			completedDates[*child.TaskDate] = struct{}{}
		}
		if *child.TaskDate == todayStr {
			todayTotal++
			if child.Status.IsCompletedTerminal() {
				todayCompleted++
			}
		}
	}

	completedDays := len(completedDates)

	missedDays := daysSinceStart - completedDays
	if missedDays < 0 {
		missedDays = 0
	}
	remainingDays := totalDays - daysSinceStart
	if remainingDays < 0 {
		remainingDays = 0
	}

	rate := 0.0
	if totalDays > 0 {
		rate = float64(completedDays) / float64(totalDays)
	}
	if rate > 1 {
		rate = 1
	}

	target := constants.DefaultCompletionTarget
	if task.CompletionTarget != nil {
		target = *task.CompletionTarget
	}

	return &TaskProgress{
		TaskID:           task.ID,
		TotalDays:        totalDays,
		CompletedDays:    completedDays,
		MissedDays:       missedDays,
		RemainingDays:    remainingDays,
		CompletionRate:   rate,
		TargetRate:       target,
		IsDailyCompleted: todayTotal > 0 && todayCompleted == todayTotal,
	}, nil
}
