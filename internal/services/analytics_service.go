package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/hitoha/lifequest-api/internal/constants"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/repository"
)

const uncategorized = "uncategorized"

// StreakInfo describes a run of consecutive completion days.
type StreakInfo struct {
	Days      int     `json:"days"`
	TaskTitle string  `json:"task_title"`
	Category  string  `json:"category"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// CategoryStats aggregates outcomes per task category.
type CategoryStats struct {
	Category       string  `json:"category"`
	CompletedCount int     `json:"completed_count"`
	CancelledCount int     `json:"cancelled_count"`
	CompletionRate float64 `json:"completion_rate"`
	AvgDifficulty  float64 `json:"avg_difficulty"`
}

// TaskTypeStats aggregates completed tasks per type.
type TaskTypeStats struct {
	TaskType      string  `json:"task_type"`
	Count         int     `json:"count"`
	AvgExperience float64 `json:"avg_experience"`
}

// TaskSummary is a sample row for recent completions/cancellations.
type TaskSummary struct {
	Title          string `json:"title"`
	Category       string `json:"category"`
	CompletionDate string `json:"completion_date"`
}

// MilestoneEvent is a derived, non-persisted notable event.
type MilestoneEvent struct {
	EventType   string `json:"event_type"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// UserBehaviorSummary is the full on-demand behavior report for one user.
type UserBehaviorSummary struct {
	TotalTasksCompleted int `json:"total_tasks_completed"`
	TotalTasksCancelled int `json:"total_tasks_cancelled"`
	TotalTasksPending   int `json:"total_tasks_pending"`

	LongestStreak    StreakInfo `json:"longest_streak"`
	CurrentStreak    StreakInfo `json:"current_streak"`
	ActiveDaysLast30 int        `json:"active_days_last_30"`
	ActiveDaysLast90 int        `json:"active_days_last_90"`

	TopCategories []CategoryStats `json:"top_categories"`
	TopTaskTypes  []TaskTypeStats `json:"top_task_types"`

	RecentCompletions   []TaskSummary    `json:"recent_completions"`
	RecentCancellations []TaskSummary    `json:"recent_cancellations"`
	MilestoneEvents     []MilestoneEvent `json:"milestone_events"`

	UnlockedAchievements []string `json:"unlocked_achievements"`
	TotalExperience      int      `json:"total_experience"`
}

// AnalyticsService derives behavior statistics from a user's task history.
// Everything is recomputed on demand; nothing is cached or persisted.
type AnalyticsService struct {
	taskRepo        repository.TaskRepository
	achievementRepo repository.AchievementRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(taskRepo repository.TaskRepository, achievementRepo repository.AchievementRepository) *AnalyticsService {
	return &AnalyticsService{
		taskRepo:        taskRepo,
		achievementRepo: achievementRepo,
	}
}

// GenerateSummary builds the full behavior summary for a user.
func (s *AnalyticsService) GenerateSummary(userID string) (*UserBehaviorSummary, error) {
	completed, err := s.taskRepo.ListByUserAndStatuses(userID, models.CompletedTerminalStatuses())
	if err != nil {
		return nil, fmt.Errorf("failed to load completed tasks: %w", err)
	}
	cancelled, err := s.taskRepo.ListByUserAndStatuses(userID, []models.TaskStatus{models.TaskStatusCancelled})
	if err != nil {
		return nil, fmt.Errorf("failed to load cancelled tasks: %w", err)
	}
	pending, err := s.taskRepo.CountByUserAndStatuses(userID, []models.TaskStatus{
		models.TaskStatusPending,
		models.TaskStatusInProgress,
		models.TaskStatusPaused,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %w", err)
	}

	names, err := s.achievementRepo.ListUnlockedNames(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}
	if names == nil {
		names = []string{}
	}

	totalExperience := 0
	for _, t := range completed {
		totalExperience += t.Experience
	}

	return &UserBehaviorSummary{
		TotalTasksCompleted: len(completed),
		TotalTasksCancelled: len(cancelled),
		TotalTasksPending:   int(pending),

		LongestStreak:    longestStreak(completed),
		CurrentStreak:    currentStreak(completed),
		ActiveDaysLast30: activeDays(completed, 30),
		ActiveDaysLast90: activeDays(completed, 90),

		TopCategories: categoryStats(completed, cancelled, constants.TopCategoryLimit),
		TopTaskTypes:  taskTypeStats(completed),

		RecentCompletions:   taskSummaries(completed, constants.RecentCompletionsLimit),
		RecentCancellations: taskSummaries(cancelled, constants.RecentCancellationsLimit),
		MilestoneEvents:     milestones(completed),

		UnlockedAchievements: names,
		TotalExperience:      totalExperience,
	}, nil
}

// completionDate reduces a task's completion timestamp to its calendar day.
func completionDate(t models.Task) string {
	return t.UpdatedAt.UTC().Format(constants.TaskDateLayout)
}

// longestStreak finds the longest run of consecutive completion days.
// Dates whose (ordinal day - rank) is equal belong to one run; the largest
// group wins, ties broken arbitrarily.
func longestStreak(completed []models.Task) StreakInfo {
	if len(completed) == 0 {
		return emptyStreak()
	}

	// Anchor each date on one of its tasks; which one is arbitrary.
	taskByDate := make(map[string]models.Task)
	for _, t := range completed {
		d := completionDate(t)
		if _, ok := taskByDate[d]; !ok {
			taskByDate[d] = t
		}
	}

	dates := make([]string, 0, len(taskByDate))
	for d := range taskByDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var best struct {
		start, end string
		days       int
	}
	runStart := 0
	for i := 1; i <= len(dates); i++ {
		if i < len(dates) && ordinalDay(dates[i]) == ordinalDay(dates[i-1])+1 {
			continue
		}
		if days := i - runStart; days > best.days {
			best.days = days
			best.start = dates[runStart]
			best.end = dates[i-1]
		}
		runStart = i
	}

	anchor := taskByDate[best.start]
	end := best.end
	return StreakInfo{
		Days:      best.days,
		TaskTitle: anchor.Title,
		Category:  categoryOf(anchor),
		StartDate: best.start,
		EndDate:   &end,
	}
}

// currentStreak anchors on the most recently completed task and reports a
// length of 1. It does not walk backward over consecutive days; the reference
// behavior is preserved for output compatibility.
func currentStreak(completed []models.Task) StreakInfo {
	if len(completed) == 0 {
		return emptyStreak()
	}

	latest := completed[0] // ListByUserAndStatuses orders by updated_at DESC
	today := dateOnly(time.Now()).Format(constants.TaskDateLayout)
	return StreakInfo{
		Days:      1,
		TaskTitle: latest.Title,
		Category:  categoryOf(latest),
		StartDate: completionDate(latest),
		EndDate:   &today,
	}
}

func emptyStreak() StreakInfo {
	return StreakInfo{
		Days:      0,
		TaskTitle: "none",
		Category:  "",
		StartDate: dateOnly(time.Now()).Format(constants.TaskDateLayout),
	}
}

// activeDays counts distinct completion dates in the trailing window.
func activeDays(completed []models.Task, days int) int {
	cutoff := time.Now().AddDate(0, 0, -days)
	seen := make(map[string]struct{})
	for _, t := range completed {
		if t.UpdatedAt.Before(cutoff) {
			continue
		}
		seen[completionDate(t)] = struct{}{}
	}
	return len(seen)
}

func categoryStats(completed, cancelled []models.Task, limit int) []CategoryStats {
	type bucket struct {
		completed, cancelled int
		difficultySum        int
	}
	buckets := make(map[string]*bucket)
	get := func(category string) *bucket {
		b, ok := buckets[category]
		if !ok {
			b = &bucket{}
			buckets[category] = b
		}
		return b
	}

	for _, t := range completed {
		b := get(categoryOf(t))
		b.completed++
		b.difficultySum += t.Difficulty
	}
	for _, t := range cancelled {
		get(categoryOf(t)).cancelled++
	}

	stats := make([]CategoryStats, 0, len(buckets))
	for category, b := range buckets {
		total := b.completed + b.cancelled
		rate := 0.0
		if total > 0 {
			rate = float64(b.completed) / float64(total)
		}
		avgDifficulty := 0.0
		if b.completed > 0 {
			avgDifficulty = float64(b.difficultySum) / float64(b.completed)
		}
		stats = append(stats, CategoryStats{
			Category:       category,
			CompletedCount: b.completed,
			CancelledCount: b.cancelled,
			CompletionRate: rate,
			AvgDifficulty:  avgDifficulty,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].CompletedCount != stats[j].CompletedCount {
			return stats[i].CompletedCount > stats[j].CompletedCount
		}
		return stats[i].Category < stats[j].Category
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func taskTypeStats(completed []models.Task) []TaskTypeStats {
	type bucket struct {
		count         int
		experienceSum int
	}
	buckets := make(map[string]*bucket)
	for _, t := range completed {
		taskType := t.TaskType
		if taskType == "" {
			taskType = models.TaskTypeSide
		}
		b, ok := buckets[taskType]
		if !ok {
			b = &bucket{}
			buckets[taskType] = b
		}
		b.count++
		b.experienceSum += t.Experience
	}

	stats := make([]TaskTypeStats, 0, len(buckets))
	for taskType, b := range buckets {
		stats = append(stats, TaskTypeStats{
			TaskType:      taskType,
			Count:         b.count,
			AvgExperience: float64(b.experienceSum) / float64(b.count),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].TaskType < stats[j].TaskType
	})
	return stats
}

func taskSummaries(tasks []models.Task, limit int) []TaskSummary {
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	summaries := make([]TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		summaries = append(summaries, TaskSummary{
			Title:          t.Title,
			Category:       categoryOf(t),
			CompletionDate: completionDate(t),
		})
	}
	return summaries
}

func milestones(completed []models.Task) []MilestoneEvent {
	events := []MilestoneEvent{}
	today := dateOnly(time.Now()).Format(constants.TaskDateLayout)

	if len(completed) >= constants.MilestoneCompletedThreshold {
		events = append(events, MilestoneEvent{
			EventType:   "breakthrough",
			Description: fmt.Sprintf("completed %d tasks", len(completed)),
			Date:        today,
		})
	}

	longest := longestStreak(completed)
	if longest.Days >= constants.MilestoneStreakDays {
		date := today
		if longest.EndDate != nil {
			date = *longest.EndDate
		}
		events = append(events, MilestoneEvent{
			EventType:   "sustained effort",
			Description: fmt.Sprintf("%q completed %d days in a row", longest.TaskTitle, longest.Days),
			Date:        date,
		})
	}

	return events
}

func categoryOf(t models.Task) string {
	if t.Category == "" {
		return uncategorized
	}
	return t.Category
}

// ordinalDay converts a YYYY-MM-DD string to a day count since the epoch.
func ordinalDay(date string) int {
	t, err := time.Parse(constants.TaskDateLayout, date)
	if err != nil {
		return -1
	}
	return int(t.Unix() / 86400)
}
