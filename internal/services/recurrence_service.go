package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hitoha/lifequest-api/internal/constants"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/repository"
)

var (
	ErrNotRecurringTask   = errors.New("task is not recurring")
	ErrInvalidPattern     = errors.New("unknown recurrence pattern")
	ErrDailyTasksExist    = errors.New("today's tasks have already been generated")
	ErrNoSubtaskTemplates = errors.New("parent task has no subtask templates")
)

// RecurrenceService expands recurring task definitions into dated child
// instances.
type RecurrenceService struct {
	taskRepo     repository.TaskRepository
	templateRepo repository.SubtaskTemplateRepository
}

// NewRecurrenceService creates a new RecurrenceService
func NewRecurrenceService(taskRepo repository.TaskRepository, templateRepo repository.SubtaskTemplateRepository) *RecurrenceService {
	return &RecurrenceService{
		taskRepo:     taskRepo,
		templateRepo: templateRepo,
	}
}

// ExpandRecurringTask generates one dated instance per pattern-matching day
// in the parent's [start, end] range and persists them. The whole batch is
// written in one statement; if that fails the instances are inserted one at
// a time and whatever succeeded stays. Returns the instances actually
// created, in ascending date order.
func (s *RecurrenceService) ExpandRecurringTask(parent *models.Task) ([]models.Task, error) {
	if !parent.IsRecurring {
		return nil, ErrNotRecurringTask
	}
	if !parent.RecurrencePattern.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, parent.RecurrencePattern)
	}

	start := dateOnly(time.Now())
	if parent.StartDate != nil {
		start = dateOnly(*parent.StartDate)
	}
	end := start.AddDate(0, 0, constants.DefaultRecurrenceDays)
	if parent.EndDate != nil {
		end = dateOnly(*parent.EndDate)
	}

	now := time.Now()
	instances := make([]models.Task, 0)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if !matchesPattern(parent.RecurrencePattern, date, start.Weekday()) {
			continue
		}

		dateStr := date.Format(constants.TaskDateLayout)
		due := date.Add(24*time.Hour - time.Second)
		instances = append(instances, models.Task{
			ID:           uuid.NewString(),
			UserID:       parent.UserID,
			Title:        fmt.Sprintf("%s - %s", parent.Title, dateStr),
			Description:  parent.Description,
			Status:       models.TaskStatusPending,
			TaskType:     models.TaskTypeInstance,
			Category:     parent.Category,
			Difficulty:   parent.Difficulty,
			Experience:   parent.Experience,
			ParentTaskID: &parent.ID,
			IsParentTask: false,
			TaskOrder:    len(instances) + 1,
			DueDate:      &due,
			TaskDate:     &dateStr,
			SkillTags:    parent.SkillTags,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if len(instances) == 0 {
		return instances, nil
	}

	created := instances
	if err := s.taskRepo.CreateBatch(instances); err != nil {
		log.Printf("batch insert of %d instances for task %s failed, falling back to row-by-row: %v",
			len(instances), parent.ID, err)

		created = make([]models.Task, 0, len(instances))
		for i := range instances {
			if insErr := s.taskRepo.Create(&instances[i]); insErr != nil {
				log.Printf("failed to insert instance %s (%s): %v", instances[i].ID, *instances[i].TaskDate, insErr)
				continue
			}
			created = append(created, instances[i])
		}
	}

	parent.CompletionRate = 0
	if err := s.taskRepo.Update(parent); err != nil {
		log.Printf("failed to reset completion rate for task %s: %v", parent.ID, err)
	}

	return created, nil
}

// GenerateDailyTasks stamps the parent's subtask templates into instances
// dated today. Generation is refused when today's instances already exist.
func (s *RecurrenceService) GenerateDailyTasks(parent *models.Task) ([]models.Task, error) {
	today := dateOnly(time.Now()).Format(constants.TaskDateLayout)

	existing, err := s.taskRepo.CountChildrenOnDate(parent.ID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to check today's tasks: %w", err)
	}
	if existing > 0 {
		return nil, ErrDailyTasksExist
	}

	templates, err := s.templateRepo.ListByParent(parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subtask templates: %w", err)
	}
	if len(templates) == 0 {
		return nil, ErrNoSubtaskTemplates
	}

	generated := make([]models.Task, 0, len(templates))
	for _, tpl := range templates {
		task := templateInstance(parent, tpl)
		task.TaskDate = &today
		if err := s.taskRepo.Create(&task); err != nil {
			log.Printf("failed to create daily task from template %s: %v", tpl.ID, err)
			continue
		}
		generated = append(generated, task)
	}

	return generated, nil
}

// GenerateTemplateSubtasks creates undated children from the parent's
// templates, used when starting a non-recurring parent task.
func (s *RecurrenceService) GenerateTemplateSubtasks(parent *models.Task) ([]models.Task, error) {
	templates, err := s.templateRepo.ListByParent(parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subtask templates: %w", err)
	}

	subtasks := make([]models.Task, 0, len(templates))
	for _, tpl := range templates {
		task := templateInstance(parent, tpl)
		if err := s.taskRepo.Create(&task); err != nil {
			log.Printf("failed to create subtask from template %s: %v", tpl.ID, err)
			continue
		}
		subtasks = append(subtasks, task)
	}

	return subtasks, nil
}

func templateInstance(parent *models.Task, tpl models.SubtaskTemplate) models.Task {
	now := time.Now()
	return models.Task{
		ID:           uuid.NewString(),
		UserID:       parent.UserID,
		Title:        tpl.Title,
		Description:  tpl.Description,
		Status:       models.TaskStatusPending,
		TaskType:     models.TaskTypeInstance,
		Category:     parent.Category,
		Difficulty:   tpl.Difficulty,
		Experience:   tpl.Experience,
		ParentTaskID: &parent.ID,
		IsParentTask: false,
		TaskOrder:    tpl.TaskOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// matchesPattern decides whether a recurring task includes the given date.
// The weekly pattern anchors on the start date's weekday; weekday and
// weekend checks use the raw calendar weekday, never the holiday calendar.
func matchesPattern(pattern models.RecurrencePattern, date time.Time, startWeekday time.Weekday) bool {
	switch pattern {
	case models.PatternDaily:
		return true
	case models.PatternWeekdays:
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case models.PatternWeekends:
		wd := date.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	case models.PatternWeekly:
		return date.Weekday() == startWeekday
	default:
		return false
	}
}

// countPatternDays counts the dates in [start, end] the pattern includes.
func countPatternDays(pattern models.RecurrencePattern, start, end time.Time) int {
	start = dateOnly(start)
	end = dateOnly(end)

	count := 0
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if matchesPattern(pattern, date, start.Weekday()) {
			count++
		}
	}
	return count
}

// dateOnly truncates a timestamp to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
