package constants

// Session / context keys
const (
	ContextKeyUserID = "user_id"
)

// Authentication
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TaskDateLayout is the storage format of Task.TaskDate and of all
// completion-date grouping in analytics.
const TaskDateLayout = "2006-01-02"

// Recurrence defaults
const (
	// DefaultRecurrenceDays is the expansion horizon when a recurring task
	// has no end date.
	DefaultRecurrenceDays = 90
	// DefaultCompletionTarget is applied to recurring tasks created without
	// an explicit target rate.
	DefaultCompletionTarget = 0.8
)

// LearningSkillTag marks a task as a learning task for the
// learning_task_complete achievement requirement.
const LearningSkillTag = "learning"

// Behavior analytics limits
const (
	TopCategoryLimit         = 5
	RecentCompletionsLimit   = 20
	RecentCancellationsLimit = 10

	MilestoneCompletedThreshold = 100
	MilestoneStreakDays         = 7
)

// AI generation
const (
	MaxAIGeneratedTasks = 10
	// AchievementXPPerDifficulty sets the experience reward of a generated
	// task-scoped achievement (difficulty 1..5 -> 50..250).
	AchievementXPPerDifficulty = 50
)
