package models

import (
	"time"

	"gorm.io/datatypes"
)

// TaskStatus is the closed set of task states. The numeric values are the
// storage encoding and must not be reordered.
type TaskStatus int

const (
	TaskStatusPending           TaskStatus = 0
	TaskStatusInProgress        TaskStatus = 1
	TaskStatusCompleted         TaskStatus = 2
	TaskStatusCancelled         TaskStatus = 3
	TaskStatusPaused            TaskStatus = 4
	TaskStatusDailyInProgress   TaskStatus = 5
	TaskStatusDailyCompleted    TaskStatus = 6
	TaskStatusDailyNotCompleted TaskStatus = 7
)

// String returns the API name of the status.
func (s TaskStatus) String() string {
	switch s {
	case TaskStatusPending:
		return "pending"
	case TaskStatusInProgress:
		return "in_progress"
	case TaskStatusCompleted:
		return "completed"
	case TaskStatusCancelled:
		return "cancelled"
	case TaskStatusPaused:
		return "paused"
	case TaskStatusDailyInProgress:
		return "daily_in_progress"
	case TaskStatusDailyCompleted:
		return "daily_completed"
	case TaskStatusDailyNotCompleted:
		return "daily_not_completed"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s >= TaskStatusPending && s <= TaskStatusDailyNotCompleted
}

// IsCompletedTerminal reports whether the status counts as a successful
// completion. Children in one of these states survive pause and cancel
// cascades.
func (s TaskStatus) IsCompletedTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusDailyCompleted
}

// CompletedTerminalStatuses lists the states IsCompletedTerminal accepts,
// for use in queries.
func CompletedTerminalStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusCompleted, TaskStatusDailyCompleted}
}

// RecurrencePattern selects which dates a recurring task expands to.
type RecurrencePattern string

const (
	PatternDaily    RecurrencePattern = "daily"
	PatternWeekdays RecurrencePattern = "weekdays"
	PatternWeekends RecurrencePattern = "weekends"
	PatternWeekly   RecurrencePattern = "weekly"
)

// Valid reports whether p is a known pattern.
func (p RecurrencePattern) Valid() bool {
	switch p {
	case PatternDaily, PatternWeekdays, PatternWeekends, PatternWeekly:
		return true
	}
	return false
}

// Task kinds
const (
	TaskTypeMain      = "main"
	TaskTypeSide      = "side"
	TaskTypeChallenge = "challenge"
	TaskTypeDaily     = "daily"
	// TaskTypeInstance marks a dated child generated from a recurring parent.
	TaskTypeInstance = "instance"
)

// ValidTaskType reports whether t is a known task kind.
func ValidTaskType(t string) bool {
	switch t {
	case TaskTypeMain, TaskTypeSide, TaskTypeChallenge, TaskTypeDaily, TaskTypeInstance:
		return true
	}
	return false
}

type Task struct {
	ID          string     `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID      string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"not null;default:0" json:"status"`
	TaskType    string     `gorm:"type:varchar(20);not null;default:'side'" json:"task_type"`
	Category    string     `gorm:"type:varchar(50)" json:"category"`
	Difficulty  int        `gorm:"not null;default:1" json:"difficulty"`
	Experience  int        `gorm:"not null;default:10" json:"experience"`

	ParentTaskID *string `gorm:"type:varchar(36);index" json:"parent_task_id"`
	IsParentTask bool    `gorm:"not null;default:false" json:"is_parent_task"`
	TaskOrder    int     `gorm:"not null;default:0" json:"task_order"`

	DueDate *time.Time `json:"due_date"`

	IsRecurring       bool              `gorm:"not null;default:false" json:"is_recurring"`
	RecurrencePattern RecurrencePattern `gorm:"type:varchar(20)" json:"recurrence_pattern,omitempty"`
	StartDate         *time.Time        `json:"start_date"`
	EndDate           *time.Time        `json:"end_date"`
	CompletionTarget  *float64          `json:"completion_target"`
	CompletionRate    float64           `gorm:"not null;default:0" json:"completion_rate"`

	// TaskDate is the calendar day a dated instance belongs to
	// (YYYY-MM-DD); nil for anything that is not a generated instance.
	TaskDate *string `gorm:"type:varchar(10);index" json:"task_date"`

	CancelCount     int        `gorm:"not null;default:0" json:"cancel_count"`
	LastCancelledAt *time.Time `json:"last_cancelled_at"`

	SkillTags datatypes.JSON `json:"skill_tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
