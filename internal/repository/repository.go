package repository

import (
	"time"

	"github.com/hitoha/lifequest-api/internal/models"
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID       string
	Status       *models.TaskStatus
	TaskType     *string
	ParentTaskID *string

	// HomepageOnly restricts the listing to generated instances plus
	// standalone daily tasks, ordered by task_order.
	HomepageOnly bool

	Page     int
	PageSize int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// CreateBatch inserts all tasks in one statement; it fails as a unit
	CreateBatch(tasks []models.Task) error

	// FindByID finds a task by ID
	FindByID(id string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListChildren lists a parent's children ordered by task_order
	ListChildren(parentID string) ([]models.Task, error)

	// ListByUserAndStatuses lists a user's tasks in the given states,
	// most recently updated first
	ListByUserAndStatuses(userID string, statuses []models.TaskStatus) ([]models.Task, error)

	// Update saves a task
	Update(task *models.Task) error

	// Delete hard-deletes a task
	Delete(id string) error

	// ResumePausedChildren moves a parent's paused children back to pending
	ResumePausedChildren(parentID string) (int64, error)

	// PauseActiveChildren pauses every child not in a completed terminal state
	PauseActiveChildren(parentID string) (int64, error)

	// DeleteActiveChildren hard-deletes every child not in a completed
	// terminal state
	DeleteActiveChildren(parentID string) (int64, error)

	// CountChildrenOnDate counts a parent's instances dated to one day
	CountChildrenOnDate(parentID, taskDate string) (int64, error)

	// CountByUserAndStatuses counts a user's tasks in the given states
	CountByUserAndStatuses(userID string, statuses []models.TaskStatus) (int64, error)

	// CountCompletedWithSkillTag counts completed tasks carrying a skill tag
	CountCompletedWithSkillTag(userID, tag string) (int64, error)

	// CountCompletedAfter counts tasks completed strictly after a point in time
	CountCompletedAfter(userID string, after time.Time) (int64, error)

	// LatestCancellation returns the most recent last_cancelled_at across the
	// user's tasks, or nil when nothing was ever cancelled
	LatestCancellation(userID string) (*time.Time, error)
}

// SubtaskTemplateRepository defines data access for recurring subtask templates
type SubtaskTemplateRepository interface {
	// CreateBatch inserts the templates of one parent task
	CreateBatch(templates []models.SubtaskTemplate) error

	// ListByParent lists templates ordered by task_order
	ListByParent(parentTaskID string) ([]models.SubtaskTemplate, error)
}

// AchievementRepository defines data access for the achievement catalog and unlocks
type AchievementRepository interface {
	// Create adds a catalog entry (seed/admin/AI authored)
	Create(achievement *models.Achievement) error

	// ListAll returns the full catalog in insertion order
	ListAll() ([]models.Achievement, error)

	// ListUnlockedIDs returns the set of achievement ids a user has unlocked
	ListUnlockedIDs(userID string) (map[string]bool, error)

	// ListUnlockedNames returns the names of a user's unlocked achievements
	ListUnlockedNames(userID string) ([]string, error)

	// CreateUserAchievement records one unlock; the unique (user, achievement)
	// index makes duplicates fail
	CreateUserAchievement(ua *models.UserAchievement) error

	// ListUserAchievements lists a user's unlocks with catalog rows preloaded
	ListUserAchievements(userID string) ([]models.UserAchievement, error)
}

// SkillRepository defines data access for user skills
type SkillRepository interface {
	Create(skill *models.Skill) error
	ListByUser(userID string) ([]models.Skill, error)
}

// ProfileRepository defines data access for gamified profile data
type ProfileRepository interface {
	FindProfile(userID string) (*models.UserProfile, error)
	FindAttributes(userID string) (*models.UserAttributes, error)
	UpdateAttributes(attrs *models.UserAttributes) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithGamifiedDefaults creates a user together with their profile
	// and attribute rows within a single transaction.
	CreateWithGamifiedDefaults(user *models.User, profile *models.UserProfile, attrs *models.UserAttributes) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
